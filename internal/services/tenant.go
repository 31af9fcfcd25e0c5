package services

import (
	"context"
	"errors"
	"strings"

	"github.com/huangang/bizboard/internal/models"
	"github.com/huangang/bizboard/internal/observability"
	"github.com/huangang/bizboard/internal/presets"
	"github.com/huangang/bizboard/internal/store"
	"github.com/huangang/bizboard/internal/subdomain"
	"github.com/huangang/bizboard/pkg/logger"
	"github.com/huangang/bizboard/pkg/response"
	"gorm.io/datatypes"
)

// Claim outcomes reported to metrics.
const (
	claimCreated  = "created"
	claimRepaired = "repaired"
	claimConflict = "conflict"
	claimInvalid  = "invalid"
	claimError    = "error"
)

type ClaimRequest struct {
	BusinessName string `json:"business_name" binding:"required"`
	BusinessType string `json:"business_type"`
	Email        string `json:"email"`
	Subdomain    string `json:"subdomain"`
}

type ClaimResult struct {
	Profile *models.Profile         `json:"profile"`
	Config  *models.DashboardConfig `json:"config"`
}

type SubdomainCheck struct {
	Label     string `json:"label"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// TenantService assigns subdomains. A user gets exactly one, and it never
// changes afterwards.
type TenantService struct {
	store     store.Store
	codec     *subdomain.Codec
	presets   *presets.Registry
	minLength int
	attempts  int
	metrics   *observability.Metrics
}

func NewTenantService(s store.Store, codec *subdomain.Codec, reg *presets.Registry, minLength, attempts int, metrics *observability.Metrics) *TenantService {
	if minLength < subdomain.MinLength {
		minLength = subdomain.MinLength
	}
	if attempts <= 0 {
		attempts = 5
	}
	return &TenantService{
		store:     s,
		codec:     codec,
		presets:   reg,
		minLength: minLength,
		attempts:  attempts,
		metrics:   metrics,
	}
}

// Check reports whether label could be claimed right now.
func (s *TenantService) Check(ctx context.Context, label string) (*SubdomainCheck, error) {
	label = normalizeLabel(label)
	result := &SubdomainCheck{Label: label}

	if err := s.codec.Validate(label); err != nil {
		var invalid *subdomain.InvalidLabelError
		if errors.As(err, &invalid) {
			result.Reason = invalid.Reason
		}
		return result, nil
	}

	exists, err := s.store.SubdomainExists(ctx, label)
	if err != nil {
		return nil, response.WrapUpstream("check subdomain", err)
	}
	if exists {
		result.Reason = "taken"
		return result, nil
	}
	result.Available = true
	return result, nil
}

// Claim creates the caller's profile and initial dashboard. A requested
// subdomain must be valid and free; otherwise one is derived from the
// business name, with random suffixes on collision.
func (s *TenantService) Claim(ctx context.Context, userID uint, req *ClaimRequest) (*ClaimResult, error) {
	result, outcome, err := s.claim(ctx, userID, req)
	s.metrics.ObserveClaim(outcome)
	if err != nil {
		return nil, err
	}
	logger.Info().Uint("user_id", userID).Str("subdomain", result.Profile.Subdomain).Str("outcome", outcome).Msg("[TenantService] subdomain claimed")
	return result, nil
}

func (s *TenantService) claim(ctx context.Context, userID uint, req *ClaimRequest) (*ClaimResult, string, error) {
	businessType := presets.ParseBusinessType(req.BusinessType)

	profile, err := s.store.GetProfileByUserID(ctx, userID)
	switch {
	case err == nil:
		if _, err := s.store.GetActiveConfig(ctx, userID); err == nil {
			return nil, claimConflict, response.NewConflict("subdomain already claimed")
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, claimError, response.WrapUpstream("load active config", err)
		}
		// a profile without a config is a half-finished claim
		cfg, err := s.createConfig(ctx, profile, req.BusinessName, businessType)
		if err != nil {
			return nil, claimError, err
		}
		return &ClaimResult{Profile: profile, Config: cfg}, claimRepaired, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, claimError, response.WrapUpstream("load profile", err)
	}

	profile = &models.Profile{
		ID:           userID,
		Email:        strings.TrimSpace(req.Email),
		BusinessName: strings.TrimSpace(req.BusinessName),
		Plan:         models.PlanFree,
	}

	if req.Subdomain != "" {
		outcome, err := s.claimRequested(ctx, profile, normalizeLabel(req.Subdomain))
		if err != nil {
			return nil, outcome, err
		}
	} else if err := s.claimGenerated(ctx, profile); err != nil {
		if response.IsCode(err, response.CodeConflict) {
			return nil, claimConflict, err
		}
		return nil, claimError, err
	}

	cfg, err := s.createConfig(ctx, profile, req.BusinessName, businessType)
	if err != nil {
		return nil, claimError, err
	}
	return &ClaimResult{Profile: profile, Config: cfg}, claimCreated, nil
}

func (s *TenantService) claimRequested(ctx context.Context, profile *models.Profile, label string) (string, error) {
	if err := s.codec.Validate(label); err != nil {
		return claimInvalid, response.NewBadRequest(err.Error())
	}
	exists, err := s.store.SubdomainExists(ctx, label)
	if err != nil {
		return claimError, response.WrapUpstream("check subdomain", err)
	}
	if exists {
		return claimConflict, response.NewConflict("subdomain is already taken")
	}

	profile.Subdomain = label
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			if s.profileExists(ctx, profile.ID) {
				return claimConflict, response.NewConflict("subdomain already claimed")
			}
			return claimConflict, response.NewConflict("subdomain is already taken")
		}
		return claimError, response.WrapUpstream("create profile", err)
	}
	return claimCreated, nil
}

func (s *TenantService) claimGenerated(ctx context.Context, profile *models.Profile) error {
	base := subdomain.EnsureMinLength(subdomain.Slugify(profile.BusinessName), s.minLength)

	for attempt := 0; attempt < s.attempts; attempt++ {
		candidate := base
		if attempt > 0 {
			candidate = subdomain.WithRandomSuffix(base)
		}
		if s.codec.Validate(candidate) != nil {
			continue
		}
		exists, err := s.store.SubdomainExists(ctx, candidate)
		if err != nil {
			return response.WrapUpstream("check subdomain", err)
		}
		if exists {
			continue
		}

		profile.Subdomain = candidate
		err = s.store.CreateProfile(ctx, profile)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return response.WrapUpstream("create profile", err)
		}
		// the duplicate may be the user's own row from a concurrent claim
		if s.profileExists(ctx, profile.ID) {
			return response.NewConflict("subdomain already claimed")
		}
	}
	return response.NewConflict("could not find a free subdomain, please choose one")
}

func (s *TenantService) profileExists(ctx context.Context, userID uint) bool {
	_, err := s.store.GetProfileByUserID(ctx, userID)
	return err == nil
}

func (s *TenantService) createConfig(ctx context.Context, profile *models.Profile, businessName string, businessType presets.BusinessType) (*models.DashboardConfig, error) {
	name := strings.TrimSpace(businessName)
	if name == "" {
		name = profile.BusinessName
	}
	cfg := &models.DashboardConfig{
		UserID:       profile.ID,
		IsActive:     true,
		BusinessName: name,
		BusinessType: string(businessType),
		Tabs:         datatypes.NewJSONType(s.presets.DefaultTabs(businessType)),
		Colors:       datatypes.NewJSONType(presets.DefaultColors()),
		NavStyle:     "sidebar",
		Integrations: datatypes.NewJSONType(map[string]any{}),
	}
	if err := s.store.CreateConfig(ctx, cfg); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, response.NewConflict("subdomain already claimed")
		}
		return nil, response.WrapUpstream("create config", err)
	}
	return cfg, nil
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
