// Package tenant classifies request hosts and resolves tenant identity.
package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangang/bizboard/internal/models"
	"github.com/huangang/bizboard/internal/store"
	"github.com/huangang/bizboard/internal/subdomain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Kind string

const (
	KindOperatorApp Kind = "operator_app"
	KindMainSite    Kind = "main_site"
	KindTenantSite  Kind = "tenant_site"
)

// ErrTenantNotFound covers both an unknown label and a tenant without an
// active config. Callers answer it with 404.
var ErrTenantNotFound = errors.New("tenant not found")

// Classification is the routing decision for a host. Label is set only for
// KindTenantSite.
type Classification struct {
	Kind  Kind
	Label string
}

func (c Classification) IsTenant() bool { return c.Kind == KindTenantSite }

// Tenant is a resolved tenant: its profile and the config flagged active.
type Tenant struct {
	Label   string
	Profile *models.Profile
	Config  *models.DashboardConfig
}

type Resolver struct {
	store    store.Store
	root     string
	operator string
	tracer   trace.Tracer
}

func NewResolver(s store.Store, rootDomain, operatorLabel string) *Resolver {
	return &Resolver{
		store:    s,
		root:     rootDomain,
		operator: operatorLabel,
		tracer:   otel.Tracer("github.com/huangang/bizboard/internal/tenant"),
	}
}

func (r *Resolver) RootDomain() string { return r.root }

// Classify decides which surface host targets. The operator label wins over
// any tenant lookup; hosts outside the root domain get the main site.
func (r *Resolver) Classify(host string) Classification {
	label, ok := subdomain.ExtractLabel(host, r.root)
	if !ok || !subdomain.IsUnderRoot(host, r.root) {
		return Classification{Kind: KindMainSite}
	}
	if label == r.operator {
		return Classification{Kind: KindOperatorApp}
	}
	return Classification{Kind: KindTenantSite, Label: label}
}

// Resolve loads the profile for label and its active config. Missing rows in
// either lookup yield ErrTenantNotFound; other store failures are returned
// wrapped.
func (r *Resolver) Resolve(ctx context.Context, label string) (*Tenant, error) {
	ctx, span := r.tracer.Start(ctx, "tenant.Resolve", trace.WithAttributes(attribute.String("tenant.label", label)))
	defer span.End()

	if label == "" || label == r.operator {
		span.SetStatus(codes.Error, "not a tenant label")
		return nil, ErrTenantNotFound
	}

	profile, err := r.store.GetProfileBySubdomain(ctx, label)
	if err != nil {
		return nil, r.fail(span, "profile", err)
	}

	cfg, err := r.store.GetActiveConfig(ctx, profile.ID)
	if err != nil {
		return nil, r.fail(span, "active config", err)
	}

	span.SetAttributes(attribute.Int64("tenant.user_id", int64(profile.ID)))
	return &Tenant{Label: label, Profile: profile, Config: cfg}, nil
}

func (r *Resolver) fail(span trace.Span, what string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, what+" lookup failed")
	if errors.Is(err, store.ErrNotFound) {
		return ErrTenantNotFound
	}
	return fmt.Errorf("resolve tenant %s: %w", what, err)
}
