package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	JWT           JWTConfig           `yaml:"jwt"`
	Redis         RedisConfig         `yaml:"redis"`
	Tenancy       TenancyConfig       `yaml:"tenancy"`
	Routing       RoutingConfig       `yaml:"routing"`
	Versions      VersionsConfig      `yaml:"versions"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	Mode         string        `yaml:"mode"` // debug, release, test
	LogLevel     string        `yaml:"log_level"`
	StoreTimeout time.Duration `yaml:"store_timeout"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret        string `yaml:"secret"`
	SessionCookie string `yaml:"session_cookie"`
}

// RedisConfig backs the profile cache and the async sweep queue.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type TenancyConfig struct {
	RootDomain         string   `yaml:"root_domain"`
	OperatorSubdomain  string   `yaml:"operator_subdomain"`
	ReservedSubdomains []string `yaml:"reserved_subdomains"`
	MinLabelLength     int      `yaml:"min_label_length"`
	ClaimAttempts      int      `yaml:"claim_attempts"`
}

type RoutingConfig struct {
	PublicRoutes     []string `yaml:"public_routes"`
	TenantPublicAPIs []string `yaml:"tenant_public_apis"`
	LoginPath        string   `yaml:"login_path"`
	PublicAPIRPS     float64  `yaml:"public_api_rps"`
	PublicAPIBurst   int      `yaml:"public_api_burst"`
}

type VersionsConfig struct {
	Retention     int    `yaml:"retention"`
	SweepSchedule string `yaml:"sweep_schedule"` // cron spec, empty disables the sweep
}

type ObservabilityConfig struct {
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"` // empty disables tracing export
	SampleRatio  float64 `yaml:"sample_ratio"`
	MetricsAddr  string  `yaml:"metrics_addr"` // internal scrape listener, empty disables it
}

// DefaultReservedSubdomains never go to a tenant.
var DefaultReservedSubdomains = []string{
	"app", "www", "api", "admin", "dashboard", "mail", "smtp", "imap", "pop", "ftp",
	"ns1", "ns2", "dns", "cdn", "static", "assets", "media", "img", "files", "status",
	"help", "support", "docs", "blog", "dev", "staging", "test", "beta", "login",
	"auth", "signup", "billing", "portal", "internal", "metrics", "grafana", "vercel",
}

func Load(configPath string) (*Config, error) {
	// .env is optional; real environment variables still win below.
	_ = godotenv.Load()

	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.overrideFromEnv()
	cfg.normalize()
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         "8080",
			Mode:         "debug",
			LogLevel:     "info",
			StoreTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "bizboard.db",
		},
		JWT: JWTConfig{
			Secret:        "bizboard-secret-key-change-in-production",
			SessionCookie: "session",
		},
		Redis: RedisConfig{
			Enabled:  false,
			Addr:     "localhost:6379",
			DB:       0,
			CacheTTL: 10 * time.Minute,
		},
		Tenancy: TenancyConfig{
			RootDomain:         "localhost",
			OperatorSubdomain:  "app",
			ReservedSubdomains: append([]string(nil), DefaultReservedSubdomains...),
			MinLabelLength:     3,
			ClaimAttempts:      5,
		},
		Routing: RoutingConfig{
			PublicRoutes: []string{
				"/", "/login", "/signup", "/pricing", "/about", "/health",
				"/api/auth", "/api/tenant/subdomain/check", "/api/webhooks",
			},
			TenantPublicAPIs: []string{
				"/api/public", "/api/booking", "/api/ordering", "/api/signing", "/api/portal/auth",
			},
			LoginPath:      "/login",
			PublicAPIRPS:   10,
			PublicAPIBurst: 20,
		},
		Versions: VersionsConfig{
			Retention:     20,
			SweepSchedule: "@every 1h",
		},
		Observability: ObservabilityConfig{
			ServiceName: "bizboard",
			SampleRatio: 1,
		},
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Server.LogLevel = level
	}
	if timeout := os.Getenv("STORE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Server.StoreTimeout = d
		}
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if root := os.Getenv("ROOT_DOMAIN"); root != "" {
		c.Tenancy.RootDomain = root
	}
	if op := os.Getenv("OPERATOR_SUBDOMAIN"); op != "" {
		c.Tenancy.OperatorSubdomain = op
	}
	if reserved := os.Getenv("RESERVED_SUBDOMAINS"); reserved != "" {
		c.Tenancy.ReservedSubdomains = splitAndTrim(reserved, ",")
	}
	if retention := os.Getenv("VERSION_RETENTION"); retention != "" {
		if n, err := strconv.Atoi(retention); err == nil {
			c.Versions.Retention = n
		}
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		c.Observability.OTLPEndpoint = endpoint
	}
	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		c.Observability.MetricsAddr = addr
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
}

// normalize lower-cases host-related settings and repairs values that would
// otherwise break routing or retention.
func (c *Config) normalize() {
	c.Tenancy.RootDomain = strings.ToLower(strings.TrimSpace(c.Tenancy.RootDomain))
	c.Tenancy.OperatorSubdomain = strings.ToLower(strings.TrimSpace(c.Tenancy.OperatorSubdomain))
	for i, r := range c.Tenancy.ReservedSubdomains {
		c.Tenancy.ReservedSubdomains[i] = strings.ToLower(strings.TrimSpace(r))
	}
	if c.Tenancy.MinLabelLength < 3 {
		c.Tenancy.MinLabelLength = 3
	}
	if c.Tenancy.ClaimAttempts <= 0 {
		c.Tenancy.ClaimAttempts = 5
	}
	if c.Versions.Retention <= 0 {
		c.Versions.Retention = 20
	}
	if c.Server.StoreTimeout <= 0 {
		c.Server.StoreTimeout = 5 * time.Second
	}
	if c.Routing.LoginPath == "" {
		c.Routing.LoginPath = "/login"
	}
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	url := strings.TrimPrefix(redisURL, "redis://")

	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		// Password format: :password or user:password
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	c.Redis.Addr = url
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
