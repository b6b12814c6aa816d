package cache

import (
	"context"
	"elevator-sim/internal/domain"
	"elevator-sim/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	DefaultKeyPrefix = "elevator-sim:report:"
	DefaultTTL       = 24 * time.Hour
)

// Redis-backed cache of run reports keyed by scenario fingerprint.
// A zero TTL keeps entries until Redis evicts them.
type RedisReportCache struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
	Log    zerolog.Logger
}

func NewRedisReportCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisReportCache {
	return &RedisReportCache{Client: client, Prefix: DefaultKeyPrefix, TTL: ttl, Log: log}
}

func (c *RedisReportCache) key(fingerprint string) string {
	return c.Prefix + fingerprint
}

// Fetch the report cached for a fingerprint.
func (c *RedisReportCache) Get(ctx context.Context, fingerprint string) (_ *domain.RunReport, _ bool, err error) {
	defer obs.Time(ctx, c.Log, "report.cache.Get")(&err)

	if c.Client == nil {
		return nil, false, errors.New("report cache: client is nil")
	}
	if strings.TrimSpace(fingerprint) == "" {
		return nil, false, errors.New("get report cache: fingerprint must not be empty")
	}

	data, err := c.Client.Get(ctx, c.key(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get report cache: %w", err)
	}

	var report domain.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false, fmt.Errorf("get report cache: decode %q: %w", fingerprint, err)
	}
	return &report, true, nil
}

// Store a report under its fingerprint, replacing any previous entry.
func (c *RedisReportCache) Put(ctx context.Context, fingerprint string, report *domain.RunReport) (err error) {
	defer obs.Time(ctx, c.Log, "report.cache.Put")(&err)

	if c.Client == nil {
		return errors.New("report cache: client is nil")
	}
	if strings.TrimSpace(fingerprint) == "" {
		return errors.New("put report cache: fingerprint must not be empty")
	}
	if report == nil {
		return errors.New("put report cache: report must be non-nil")
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("put report cache: encode: %w", err)
	}

	if err := c.Client.Set(ctx, c.key(fingerprint), data, c.TTL).Err(); err != nil {
		return fmt.Errorf("put report cache: %w", err)
	}
	return nil
}
