// Package model contains domain models for the chauffeur pricing service.
// These structs map to the PostgreSQL schema defined in migrations/001_create_schema.up.sql
// and to the JSON payloads exchanged with the booking frontend.
package model

import "time"

// ─── Locations ──────────────────────────────────────────────

// LatLng represents a WGS-84 geographic point (EPSG:4326).
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinates are inside the WGS-84 range.
// Out-of-range values are rejected, never clamped.
func (l LatLng) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// Point is a trip endpoint: either a free-text address, a coordinate
// pair, or both. When Coord is set and valid it takes precedence over
// the address for distance math.
type Point struct {
	Address string  `json:"address,omitempty"`
	Coord   *LatLng `json:"coord,omitempty"`
}

// ─── Distance resolution ────────────────────────────────────

// DistanceStatus tells how a DistanceResult was obtained.
type DistanceStatus string

const (
	// DistanceSuccess means the routing provider returned a real
	// driving distance and duration.
	DistanceSuccess DistanceStatus = "success"

	// DistanceFallback means the provider was unavailable and the
	// figures are a great-circle approximation.
	DistanceFallback DistanceStatus = "fallback"

	// DistanceError means neither the provider nor geocoding worked.
	// Distance and duration are zero and must be treated as unknown,
	// not as a zero-length trip.
	DistanceError DistanceStatus = "error"
)

// DistanceResult is the outcome of a distance resolution.
type DistanceResult struct {
	DistanceKm   float64        `json:"distance_km"`
	DurationMin  float64        `json:"duration_min"`
	Status       DistanceStatus `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// ─── Tariffs ────────────────────────────────────────────────

// VehiclePricing holds the per-class tariff. All amounts are in euro
// cents so that fare arithmetic is exact integer math.
type VehiclePricing struct {
	BaseCents      int64 `json:"base_cents"`
	PerKmCents     int64 `json:"per_km_cents"`
	PerMinuteCents int64 `json:"per_minute_cents"`
	MinimumCents   int64 `json:"minimum_cents"`
}

// PricingOverride carries admin-configured, field-level tariff
// overrides. Nil fields keep the static table value.
type PricingOverride struct {
	BaseCents      *int64 `json:"base_cents,omitempty"`
	PerKmCents     *int64 `json:"per_km_cents,omitempty"`
	PerMinuteCents *int64 `json:"per_minute_cents,omitempty"`
	MinimumCents   *int64 `json:"minimum_cents,omitempty"`
}

// Apply returns the pricing with the non-nil override fields swapped in.
func (o *PricingOverride) Apply(p VehiclePricing) VehiclePricing {
	if o == nil {
		return p
	}
	if o.BaseCents != nil {
		p.BaseCents = *o.BaseCents
	}
	if o.PerKmCents != nil {
		p.PerKmCents = *o.PerKmCents
	}
	if o.PerMinuteCents != nil {
		p.PerMinuteCents = *o.PerMinuteCents
	}
	if o.MinimumCents != nil {
		p.MinimumCents = *o.MinimumCents
	}
	return p
}

// ─── Price breakdown ────────────────────────────────────────

// SurchargeLine is one applied surcharge inside a breakdown.
type SurchargeLine struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	AmountCents int64   `json:"amount_cents"`
	Factor      float64 `json:"factor"`
}

// PriceBreakdown is the computed fare. It is a value object: built
// once by the fare service and never mutated afterwards. Because every
// amount is in cents, BaseCents + DistanceCents + TimeCents + the
// surcharge amounts sum exactly to the pre-adjustment subtotal.
type PriceBreakdown struct {
	BaseCents     int64           `json:"base_cents"`
	DistanceCents int64           `json:"distance_cents"`
	TimeCents     int64           `json:"time_cents"`
	Surcharges    []SurchargeLine `json:"surcharges"`
	SubtotalCents int64           `json:"subtotal_cents"`
	TaxCents      int64           `json:"tax_cents"`
	TotalCents    int64           `json:"total_cents"`
	MinimumCents  int64           `json:"minimum_cents"`
	Currency      string          `json:"currency"`
	EstimatedOnly bool            `json:"estimated_only"`
}

// PriceValidation is the result of a sanity check on a breakdown.
// Valid=false is a hard signal (non-positive or absurd total);
// warnings alone must not block a booking.
type PriceValidation struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings"`
}

// ─── Quotes ─────────────────────────────────────────────────

// Quote maps to the `quotes` table: one persisted price calculation,
// kept so the booking flow can reference a fixed figure.
type Quote struct {
	ID              string         `json:"id"`
	VehicleClass    string         `json:"vehicle_class"`
	OriginText      string         `json:"origin_text"`
	DestinationText string         `json:"destination_text"`
	DistanceKm      float64        `json:"distance_km"`
	DurationMin     float64        `json:"duration_min"`
	Breakdown       PriceBreakdown `json:"breakdown"`
	EstimatedOnly   bool           `json:"estimated_only"`
	CreatedAt       time.Time      `json:"created_at"`
}
