package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/huangang/bizboard/internal/models"
	"github.com/huangang/bizboard/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const profileKeyPrefix = "bizboard:profile:subdomain:"

// CachedProfiles caches profile-by-subdomain lookups in Redis. Subdomains
// never change once assigned, so entries only expire; misses are not cached
// so a freshly claimed label resolves immediately. Redis failures fall back to
// the wrapped store.
type CachedProfiles struct {
	Store
	rdb *redis.Client
	ttl time.Duration
}

func NewCachedProfiles(inner Store, rdb *redis.Client, ttl time.Duration) *CachedProfiles {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedProfiles{Store: inner, rdb: rdb, ttl: ttl}
}

func profileKey(label string) string {
	return profileKeyPrefix + label
}

func (c *CachedProfiles) GetProfileBySubdomain(ctx context.Context, label string) (*models.Profile, error) {
	raw, err := c.rdb.Get(ctx, profileKey(label)).Bytes()
	if err == nil {
		var profile models.Profile
		if jsonErr := json.Unmarshal(raw, &profile); jsonErr == nil {
			return &profile, nil
		}
		logger.Warn().Str("subdomain", label).Msg("Discarding undecodable cached profile")
	} else if !errors.Is(err, redis.Nil) {
		logger.Warn().Err(err).Str("subdomain", label).Msg("Profile cache read failed")
	}

	profile, err := c.Store.GetProfileBySubdomain(ctx, label)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(profile); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, profileKey(label), data, c.ttl).Err(); setErr != nil {
			logger.Warn().Err(setErr).Str("subdomain", label).Msg("Profile cache write failed")
		}
	}
	return profile, nil
}
