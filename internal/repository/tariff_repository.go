// Package repository contains the persistence layer: tariff overrides
// and quotes in PostgreSQL, with Redis fast paths where reads are hot.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/maarten/chauffeur/internal/model"
)

// TariffRepository serves admin-configured tariff overrides. The
// static per-class table lives in code; this repository only stores
// the fields an admin has tuned away from it.
type TariffRepository struct {
	pool  *pgxpool.Pool
	redis *redis.Client
}

// NewTariffRepository creates a tariff repository.
func NewTariffRepository(pool *pgxpool.Pool, redis *redis.Client) *TariffRepository {
	return &TariffRepository{pool: pool, redis: redis}
}

const (
	tariffCachePrefix = "cache:tariff:"
	tariffCacheTTL    = 30 * time.Second // Admin edits show up within 30s.
)

// GetOverride returns the override for a vehicle class, or nil when
// the admin has not tuned that class.
//
// Strategy: Redis first (fare quotes hit this on every request), then
// Postgres on a miss, caching the row for tariffCacheTTL.
func (r *TariffRepository) GetOverride(ctx context.Context, vehicleClass string) (*model.PricingOverride, error) {
	cacheKey := tariffCachePrefix + vehicleClass

	// ── Fast path: Redis cache ──────────────────────────
	if data, err := r.redis.Get(ctx, cacheKey).Bytes(); err == nil {
		var override model.PricingOverride
		if err := json.Unmarshal(data, &override); err == nil {
			return &override, nil
		}
	}

	// ── Slow path: Postgres ─────────────────────────────
	query := `
		SELECT base_cents, per_km_cents, per_minute_cents, minimum_cents
		FROM vehicle_pricing
		WHERE vehicle_class = $1
	`

	override := &model.PricingOverride{}
	err := r.pool.QueryRow(ctx, query, vehicleClass).Scan(
		&override.BaseCents,
		&override.PerKmCents,
		&override.PerMinuteCents,
		&override.MinimumCents,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil // No admin override for this class.
	}
	if err != nil {
		return nil, fmt.Errorf("query tariff override: %w", err)
	}

	// Cache the row (fire-and-forget, don't block on errors).
	if data, err := json.Marshal(override); err == nil {
		_ = r.redis.Set(ctx, cacheKey, data, tariffCacheTTL).Err()
	}

	return override, nil
}

// UpsertOverride stores an override and invalidates its cache entry.
func (r *TariffRepository) UpsertOverride(ctx context.Context, vehicleClass string, o *model.PricingOverride) error {
	query := `
		INSERT INTO vehicle_pricing (vehicle_class, base_cents, per_km_cents, per_minute_cents, minimum_cents, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (vehicle_class) DO UPDATE SET
			base_cents       = EXCLUDED.base_cents,
			per_km_cents     = EXCLUDED.per_km_cents,
			per_minute_cents = EXCLUDED.per_minute_cents,
			minimum_cents    = EXCLUDED.minimum_cents,
			updated_at       = NOW()
	`

	_, err := r.pool.Exec(ctx, query, vehicleClass,
		o.BaseCents, o.PerKmCents, o.PerMinuteCents, o.MinimumCents)
	if err != nil {
		return fmt.Errorf("upsert tariff override: %w", err)
	}

	_ = r.redis.Del(ctx, tariffCachePrefix+vehicleClass).Err()
	return nil
}
