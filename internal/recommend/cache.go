package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"coach-server/internal/telemetry"
)

// Entry is the stored form of one memoized recommendation.
type Entry struct {
	Key              string          `json:"key"`
	OwnerID          string          `json:"owner_id"`
	Value            json.RawMessage `json:"value"`
	InputFingerprint string          `json:"input_fingerprint"`
	CreatedAt        time.Time       `json:"created_at"`
	ExpiresAt        time.Time       `json:"expires_at"`
}

// ComputeFunc produces the value on a cache miss. It is treated as pure,
// possibly slow, possibly failing.
type ComputeFunc func(ctx context.Context) (json.RawMessage, error)

// StoreOptions configures a Store.
type StoreOptions struct {
	// TTL is the fixed entry lifetime.
	TTL time.Duration
	// ComputeTimeout bounds one ComputeFunc invocation so a hung generator
	// cannot block the caller indefinitely.
	ComputeTimeout time.Duration
}

const (
	defaultTTL            = 6 * time.Hour
	defaultComputeTimeout = 30 * time.Second
)

// Store is the Redis-backed recommendation cache. Writes are whole-entry
// upserts, so readers never observe partial updates. Concurrent misses on
// the same key may each invoke the compute function; the last successful
// write wins. That duplicate work is an accepted cost, not a correctness
// problem.
type Store struct {
	client *redis.Client
	opts   StoreOptions
	logger zerolog.Logger
	now    func() time.Time
}

func NewStore(client *redis.Client, opts StoreOptions, logger zerolog.Logger) *Store {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.ComputeTimeout <= 0 {
		opts.ComputeTimeout = defaultComputeTimeout
	}
	return &Store{client: client, opts: opts, logger: logger, now: time.Now}
}

// GetOrCompute returns the cached value for (ownerID, reqCtx) if present and
// unexpired, otherwise invokes compute and caches its result. A failed
// compute is propagated and never cached, so the next request retries
// cleanly.
func (s *Store) GetOrCompute(ctx context.Context, ownerID string, reqCtx Context, compute ComputeFunc) (json.RawMessage, error) {
	key := DeriveKey(ownerID, reqCtx)

	if value, ok := s.lookup(ctx, key); ok {
		telemetry.CacheHits.Inc()
		return value, nil
	}
	telemetry.CacheMisses.Inc()

	computeCtx, cancel := context.WithTimeout(ctx, s.opts.ComputeTimeout)
	defer cancel()
	value, err := compute(computeCtx)
	if err != nil {
		telemetry.CacheComputeErrors.Inc()
		return nil, fmt.Errorf("compute recommendation: %w", err)
	}

	now := s.now()
	entry := Entry{
		Key:              key,
		OwnerID:          ownerID,
		Value:            value,
		InputFingerprint: Fingerprint(reqCtx),
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.opts.TTL),
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode cache entry: %w", err)
	}
	if err := s.client.Set(ctx, key, payload, s.opts.TTL).Err(); err != nil {
		// Serving the freshly computed value beats failing the request over
		// a cache write error.
		s.logger.Warn().Err(err).Str("key", key).Msg("cache: write failed")
	}
	return value, nil
}

// lookup returns the cached value when present and unexpired. The entry's
// own expiry field is authoritative; the Redis TTL is retention cleanup.
func (s *Store) lookup(ctx context.Context, key string) (json.RawMessage, bool) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache: read failed")
		}
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache: corrupt entry")
		return nil, false
	}
	if !s.now().Before(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Value, true
}
