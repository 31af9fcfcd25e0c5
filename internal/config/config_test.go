package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Tenancy.RootDomain != "localhost" {
		t.Errorf("RootDomain = %q, expected %q", cfg.Tenancy.RootDomain, "localhost")
	}
	if cfg.Tenancy.OperatorSubdomain != "app" {
		t.Errorf("OperatorSubdomain = %q, expected %q", cfg.Tenancy.OperatorSubdomain, "app")
	}
	if cfg.Versions.Retention != 20 {
		t.Errorf("Retention = %d, expected 20", cfg.Versions.Retention)
	}
	if cfg.Server.StoreTimeout != 5*time.Second {
		t.Errorf("StoreTimeout = %v, expected 5s", cfg.Server.StoreTimeout)
	}
	for _, p := range cfg.Routing.PublicRoutes {
		if p == "/metrics" {
			t.Error("/metrics must not be public by default")
		}
	}
	if cfg.Observability.MetricsAddr != "" {
		t.Errorf("MetricsAddr = %q, expected disabled", cfg.Observability.MetricsAddr)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9090"
  store_timeout: 2s
tenancy:
  root_domain: Root.Test
  operator_subdomain: ops
  reserved_subdomains: [ops, Admin]
versions:
  retention: 5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q, expected %q", cfg.Server.Port, "9090")
	}
	if cfg.Server.StoreTimeout != 2*time.Second {
		t.Errorf("StoreTimeout = %v, expected 2s", cfg.Server.StoreTimeout)
	}
	if cfg.Tenancy.RootDomain != "root.test" {
		t.Errorf("RootDomain should be lower-cased, got %q", cfg.Tenancy.RootDomain)
	}
	if cfg.Tenancy.OperatorSubdomain != "ops" {
		t.Errorf("OperatorSubdomain = %q, expected %q", cfg.Tenancy.OperatorSubdomain, "ops")
	}
	if len(cfg.Tenancy.ReservedSubdomains) != 2 || cfg.Tenancy.ReservedSubdomains[1] != "admin" {
		t.Errorf("ReservedSubdomains = %v", cfg.Tenancy.ReservedSubdomains)
	}
	if cfg.Versions.Retention != 5 {
		t.Errorf("Retention = %d, expected 5", cfg.Versions.Retention)
	}
	// Untouched sections keep their defaults.
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, expected default sqlite", cfg.Database.Driver)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on malformed YAML")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ROOT_DOMAIN", "root.test")
	t.Setenv("OPERATOR_SUBDOMAIN", "console")
	t.Setenv("RESERVED_SUBDOMAINS", "console, www ,,api")
	t.Setenv("VERSION_RETENTION", "7")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("METRICS_ADDR", "127.0.0.1:9464")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Tenancy.RootDomain != "root.test" {
		t.Errorf("RootDomain = %q", cfg.Tenancy.RootDomain)
	}
	if cfg.Tenancy.OperatorSubdomain != "console" {
		t.Errorf("OperatorSubdomain = %q", cfg.Tenancy.OperatorSubdomain)
	}
	expected := []string{"console", "www", "api"}
	if len(cfg.Tenancy.ReservedSubdomains) != len(expected) {
		t.Fatalf("ReservedSubdomains = %v, expected %v", cfg.Tenancy.ReservedSubdomains, expected)
	}
	for i, v := range expected {
		if cfg.Tenancy.ReservedSubdomains[i] != v {
			t.Errorf("ReservedSubdomains[%d] = %q, expected %q", i, cfg.Tenancy.ReservedSubdomains[i], v)
		}
	}
	if cfg.Versions.Retention != 7 {
		t.Errorf("Retention = %d, expected 7", cfg.Versions.Retention)
	}
	if cfg.Server.StoreTimeout != 750*time.Millisecond {
		t.Errorf("StoreTimeout = %v, expected 750ms", cfg.Server.StoreTimeout)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Errorf("Secret = %q", cfg.JWT.Secret)
	}
	if cfg.Observability.MetricsAddr != "127.0.0.1:9464" {
		t.Errorf("MetricsAddr = %q", cfg.Observability.MetricsAddr)
	}
}

func TestNormalize_RepairsInvalidValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Versions.Retention = 0
	cfg.Tenancy.MinLabelLength = 1
	cfg.Tenancy.ClaimAttempts = -3
	cfg.Server.StoreTimeout = 0
	cfg.Routing.LoginPath = ""

	cfg.normalize()

	if cfg.Versions.Retention != 20 {
		t.Errorf("Retention = %d, expected 20", cfg.Versions.Retention)
	}
	if cfg.Tenancy.MinLabelLength != 3 {
		t.Errorf("MinLabelLength = %d, expected 3", cfg.Tenancy.MinLabelLength)
	}
	if cfg.Tenancy.ClaimAttempts != 5 {
		t.Errorf("ClaimAttempts = %d, expected 5", cfg.Tenancy.ClaimAttempts)
	}
	if cfg.Server.StoreTimeout != 5*time.Second {
		t.Errorf("StoreTimeout = %v, expected 5s", cfg.Server.StoreTimeout)
	}
	if cfg.Routing.LoginPath != "/login" {
		t.Errorf("LoginPath = %q, expected /login", cfg.Routing.LoginPath)
	}
}

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		addr     string
		password string
		db       int
	}{
		{"host only", "redis://localhost:6379", "localhost:6379", "", 0},
		{"with db", "redis://localhost:6379/3", "localhost:6379", "", 3},
		{"with password", "redis://:s3cret@cache:6380/1", "cache:6380", "s3cret", 1},
		{"user and password", "redis://user:pw@cache:6379", "cache:6379", "pw", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.parseRedisURL(tt.url)
			if cfg.Redis.Addr != tt.addr {
				t.Errorf("Addr = %q, expected %q", cfg.Redis.Addr, tt.addr)
			}
			if cfg.Redis.Password != tt.password {
				t.Errorf("Password = %q, expected %q", cfg.Redis.Password, tt.password)
			}
			if cfg.Redis.DB != tt.db {
				t.Errorf("DB = %d, expected %d", cfg.Redis.DB, tt.db)
			}
		})
	}
}
