package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maarten/chauffeur/internal/model"
)

// ErrQuoteNotFound is returned when no quote exists for the given ID.
var ErrQuoteNotFound = errors.New("quote not found")

// QuoteRepository persists computed price quotes so the booking flow
// can reference a fixed figure later.
type QuoteRepository struct {
	pool *pgxpool.Pool
}

// NewQuoteRepository creates a quote repository.
func NewQuoteRepository(pool *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{pool: pool}
}

// SaveQuote inserts the quote, assigning a UUID and timestamp when
// they are unset. The breakdown is stored as JSONB.
func (r *QuoteRepository) SaveQuote(ctx context.Context, q *model.Quote) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	breakdown, err := json.Marshal(q.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}

	query := `
		INSERT INTO quotes (id, vehicle_class, origin_text, destination_text,
		                    distance_km, duration_min, breakdown, estimated_only, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.pool.Exec(ctx, query,
		q.ID, q.VehicleClass, q.OriginText, q.DestinationText,
		q.DistanceKm, q.DurationMin, breakdown, q.EstimatedOnly, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// GetQuote fetches a quote by ID.
func (r *QuoteRepository) GetQuote(ctx context.Context, id string) (*model.Quote, error) {
	query := `
		SELECT id, vehicle_class, origin_text, destination_text,
		       distance_km, duration_min, breakdown, estimated_only, created_at
		FROM quotes
		WHERE id = $1
	`

	q := &model.Quote{}
	var breakdown []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&q.ID, &q.VehicleClass, &q.OriginText, &q.DestinationText,
		&q.DistanceKm, &q.DurationMin, &breakdown, &q.EstimatedOnly, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query quote: %w", err)
	}

	if err := json.Unmarshal(breakdown, &q.Breakdown); err != nil {
		return nil, fmt.Errorf("unmarshal breakdown: %w", err)
	}
	return q, nil
}
