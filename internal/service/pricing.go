// Package service contains the pricing core: distance resolution and
// fare calculation. Fare math is pure and synchronous; only distance
// resolution touches the network.
package service

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/maarten/chauffeur/config"
	"github.com/maarten/chauffeur/internal/model"
)

// ─── Errors ─────────────────────────────────────────────────

// ErrUnknownVehicleClass is returned when the requested class has no
// tariff. It is the only error Calculate can produce — malformed
// numeric input degrades to an estimated-only breakdown instead.
var ErrUnknownVehicleClass = errors.New("unknown vehicle class")

// ─── Constants ──────────────────────────────────────────────

const (
	// FreeDurationMin is the ride time covered by the base fare.
	// Only minutes beyond it are charged per minute.
	FreeDurationMin = 15.0

	// StopoverRate is the surcharge applied on top of the floored
	// subtotal when the trip has a stopover.
	StopoverRate = 0.10

	// StopoverMinCents is the floor for the stopover surcharge (€2.50).
	StopoverMinCents int64 = 250

	// ReturnDiscountRate multiplies the subtotal of a return trip.
	ReturnDiscountRate = 0.90

	// EstimateKmDefault is the distance assumed when quoting before
	// an address is known.
	EstimateKmDefault = 5.0

	// EstimateMinPerKm converts an assumed distance into an assumed
	// duration for rough quotes.
	EstimateMinPerKm = 2.0
)

// DefaultVehiclePricing returns the static per-class tariff table.
// Amounts are euro cents. Admin overrides are applied per field on
// top of this table, never as whole-record replacement.
func DefaultVehiclePricing() map[string]model.VehiclePricing {
	return map[string]model.VehiclePricing{
		"standard": {BaseCents: 3500, PerKmCents: 200, PerMinuteCents: 50, MinimumCents: 4000},
		"premium":  {BaseCents: 5500, PerKmCents: 275, PerMinuteCents: 65, MinimumCents: 6000},
		"van":      {BaseCents: 4500, PerKmCents: 240, PerMinuteCents: 55, MinimumCents: 5000},
	}
}

// ─── FareParams ─────────────────────────────────────────────

// FareParams is the input of one fare calculation.
type FareParams struct {
	VehicleClass string

	// DistanceKm and DurationMin normally come from the distance
	// resolver. Zero or negative distance marks the result as an
	// estimate; it never fails the calculation.
	DistanceKm  float64
	DurationMin float64

	// PickupTime drives the time-based surcharges. The zero value
	// means "now".
	PickupTime time.Time

	// PickupText and DropoffText are the free-text addresses, used
	// for keyword surcharge matching only.
	PickupText  string
	DropoffText string

	HasStopover bool
	IsReturn    bool

	// Overrides are admin-configured field-level tariff overrides.
	Overrides *model.PricingOverride

	// Rules replaces the default surcharge set when non-nil.
	Rules []SurchargeRule
}

// ClassPrice pairs a vehicle class with its computed breakdown, for
// cheapest-first comparisons.
type ClassPrice struct {
	VehicleClass string               `json:"vehicle_class"`
	Breakdown    model.PriceBreakdown `json:"breakdown"`
}

// ─── FareService ────────────────────────────────────────────

// FareService computes price breakdowns. It holds only read-only
// configuration, so a single instance is safe for concurrent use.
//
// Pipeline, in order: base fare → distance fare → time fare (beyond
// the free allowance) → surcharges on (base + distance) → subtotal →
// minimum-fare floor → stopover surcharge → return discount → tax.
// All arithmetic is in integer cents; each derived amount is rounded
// half-up to a cent at the moment it is produced.
type FareService struct {
	tariffs  map[string]model.VehiclePricing
	rules    []SurchargeRule
	taxRate  float64
	currency string

	// now is swappable so tests can pin the pickup default.
	now func() time.Time
}

// NewFareService creates a fare service with the static tariff table
// and default surcharge rules.
func NewFareService(cfg config.PricingConfig) *FareService {
	return &FareService{
		tariffs:  DefaultVehiclePricing(),
		rules:    DefaultSurchargeRules(),
		taxRate:  cfg.TaxRate,
		currency: cfg.Currency,
		now:      time.Now,
	}
}

// Calculate computes the full price breakdown for the given params.
//
// The only error condition is an unknown vehicle class. Missing or
// negative distance/duration are treated as zero and flagged through
// EstimatedOnly rather than failing the call.
func (s *FareService) Calculate(p FareParams) (*model.PriceBreakdown, error) {
	pricing, ok := s.tariffs[p.VehicleClass]
	if !ok {
		return nil, ErrUnknownVehicleClass
	}
	pricing = p.Overrides.Apply(pricing)

	pickup := p.PickupTime
	if pickup.IsZero() {
		pickup = s.now()
	}

	distanceKm := sanitize(p.DistanceKm)
	durationMin := sanitize(p.DurationMin)

	// ── Base, distance, time ────────────────────────────
	base := pricing.BaseCents
	distancePrice := roundCents(distanceKm * float64(pricing.PerKmCents))

	billableMin := durationMin - FreeDurationMin
	if billableMin < 0 {
		billableMin = 0
	}
	timePrice := roundCents(billableMin * float64(pricing.PerMinuteCents))

	// ── Surcharges ──────────────────────────────────────
	// Each applicable rule contributes factor−1 of (base + distance).
	// Surcharges never compound with each other or with the time fare.
	rules := p.Rules
	if rules == nil {
		rules = s.rules
	}
	rctx := RuleContext{
		PickupTime: pickup,
		PickupText: p.PickupText,
		DistanceKm: distanceKm,
	}
	surchargeBase := base + distancePrice

	var lines []model.SurchargeLine
	var surchargeTotal int64
	for _, rule := range rules {
		if !rule.Applies(rctx) {
			continue
		}
		amount := roundCents(float64(surchargeBase) * (rule.Factor - 1))
		if amount <= 0 {
			continue
		}
		lines = append(lines, model.SurchargeLine{
			Name:        rule.Name,
			Description: rule.Description,
			AmountCents: amount,
			Factor:      rule.Factor,
		})
		surchargeTotal += amount
	}

	// ── Subtotal, floor, adjustments ────────────────────
	subtotal := base + distancePrice + timePrice + surchargeTotal
	if subtotal < pricing.MinimumCents {
		subtotal = pricing.MinimumCents
	}

	// Stopover is added on the already-floored subtotal; the return
	// discount then applies to the stopover-inclusive amount.
	if p.HasStopover {
		stopover := roundCents(float64(subtotal) * StopoverRate)
		if stopover < StopoverMinCents {
			stopover = StopoverMinCents
		}
		subtotal += stopover
	}
	if p.IsReturn {
		subtotal = roundCents(float64(subtotal) * ReturnDiscountRate)
	}

	tax := roundCents(float64(subtotal) * s.taxRate)

	return &model.PriceBreakdown{
		BaseCents:     base,
		DistanceCents: distancePrice,
		TimeCents:     timePrice,
		Surcharges:    lines,
		SubtotalCents: subtotal,
		TaxCents:      tax,
		TotalCents:    subtotal + tax,
		MinimumCents:  pricing.MinimumCents,
		Currency:      s.currency,
		EstimatedOnly: p.DistanceKm <= 0,
	}, nil
}

// EstimatePrice quotes a class before a real address or distance is
// known, assuming EstimateMinPerKm minutes per kilometer. The result
// is always flagged estimated-only.
func (s *FareService) EstimatePrice(vehicleClass string, estimatedKm float64, pickupTime time.Time) (*model.PriceBreakdown, error) {
	if estimatedKm <= 0 {
		estimatedKm = EstimateKmDefault
	}
	breakdown, err := s.Calculate(FareParams{
		VehicleClass: vehicleClass,
		DistanceKm:   estimatedKm,
		DurationMin:  estimatedKm * EstimateMinPerKm,
		PickupTime:   pickupTime,
	})
	if err != nil {
		return nil, err
	}
	// The distance was assumed, not measured.
	breakdown.EstimatedOnly = true
	return breakdown, nil
}

// ComparePrices runs the calculation once per known vehicle class and
// returns the results sorted ascending by total, cheapest first.
func (s *FareService) ComparePrices(p FareParams) []ClassPrice {
	classes := make([]string, 0, len(s.tariffs))
	for class := range s.tariffs {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	results := make([]ClassPrice, 0, len(classes))
	for _, class := range classes {
		p.VehicleClass = class
		breakdown, err := s.Calculate(p)
		if err != nil {
			continue
		}
		results = append(results, ClassPrice{VehicleClass: class, Breakdown: *breakdown})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Breakdown.TotalCents < results[j].Breakdown.TotalCents
	})
	return results
}

// ValidatePrice sanity-checks a breakdown. Warnings flag figures worth
// a second look; Valid is false only for totals that cannot be a real
// fare (≤ €0 or ≥ €1000). A warning alone must not block a booking.
func (s *FareService) ValidatePrice(b *model.PriceBreakdown) model.PriceValidation {
	v := model.PriceValidation{Valid: true}

	if b.TotalCents > 50000 {
		v.Warnings = append(v.Warnings, "total exceeds €500, check the route")
	}
	if b.EstimatedOnly {
		v.Warnings = append(v.Warnings, "price is an estimate and may change")
	}
	if b.TotalCents <= 0 || b.TotalCents >= 100000 {
		v.Valid = false
	}
	return v
}

// ─── Helpers ────────────────────────────────────────────────

// roundCents rounds a non-negative cent amount half-up to a whole cent.
func roundCents(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}

// sanitize maps NaN, Inf and negative inputs to zero.
func sanitize(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0
	}
	return x
}
