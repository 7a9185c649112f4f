package service

import (
	"errors"
	"testing"
	"time"

	"github.com/maarten/chauffeur/config"
	"github.com/maarten/chauffeur/internal/model"
)

func newTestFareService() *FareService {
	return NewFareService(config.PricingConfig{TaxRate: 0.06, Currency: "EUR"})
}

// quietPickup is a Tuesday late morning: no night, weekend, holiday or
// rush-hour surcharge can fire.
var quietPickup = time.Date(2026, time.March, 10, 11, 0, 0, 0, time.UTC)

func TestCalculate_StandardScenario(t *testing.T) {
	svc := newTestFareService()

	// standard: base €35, €2/km, €0.50/min, minimum €40.
	b, err := svc.Calculate(FareParams{
		VehicleClass: "standard",
		DistanceKm:   10,
		DurationMin:  20,
		PickupTime:   quietPickup,
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if b.BaseCents != 3500 {
		t.Errorf("BaseCents = %d, want 3500", b.BaseCents)
	}
	if b.DistanceCents != 2000 {
		t.Errorf("DistanceCents = %d, want 2000", b.DistanceCents)
	}
	// Only the 5 minutes beyond the 15-minute allowance are charged.
	if b.TimeCents != 250 {
		t.Errorf("TimeCents = %d, want 250", b.TimeCents)
	}
	if len(b.Surcharges) != 0 {
		t.Errorf("Surcharges = %v, want none", b.Surcharges)
	}
	if b.SubtotalCents != 5750 {
		t.Errorf("SubtotalCents = %d, want 5750", b.SubtotalCents)
	}
	if b.TaxCents != 345 {
		t.Errorf("TaxCents = %d, want 345 (6%% of 5750)", b.TaxCents)
	}
	if b.TotalCents != 6095 {
		t.Errorf("TotalCents = %d, want 6095", b.TotalCents)
	}
	if b.EstimatedOnly {
		t.Error("EstimatedOnly = true for a measured distance, want false")
	}
	if b.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", b.Currency)
	}
}

func TestCalculate_ZeroDistanceIsEstimate(t *testing.T) {
	svc := newTestFareService()

	b, err := svc.Calculate(FareParams{
		VehicleClass: "standard",
		DurationMin:  20,
		PickupTime:   quietPickup,
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if !b.EstimatedOnly {
		t.Error("EstimatedOnly = false for zero distance, want true")
	}
	if b.DistanceCents != 0 {
		t.Errorf("DistanceCents = %d, want 0", b.DistanceCents)
	}
}

func TestCalculate_MinimumFareFloor(t *testing.T) {
	svc := newTestFareService()

	// Base alone (€35) is under the €40 minimum.
	b, err := svc.Calculate(FareParams{
		VehicleClass: "standard",
		PickupTime:   quietPickup,
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if b.SubtotalCents != 4000 {
		t.Errorf("SubtotalCents = %d, want floored 4000", b.SubtotalCents)
	}
	if b.TotalCents < b.MinimumCents {
		t.Errorf("TotalCents = %d below minimum %d", b.TotalCents, b.MinimumCents)
	}
}

func TestCalculate_DistanceLinearity(t *testing.T) {
	svc := newTestFareService()

	for _, km := range []float64{1, 4.5, 7.33, 10, 25} {
		b, err := svc.Calculate(FareParams{
			VehicleClass: "standard",
			DistanceKm:   km,
			PickupTime:   quietPickup,
		})
		if err != nil {
			t.Fatalf("Calculate(%v km): %v", km, err)
		}
		want := roundCents(km * 200)
		if b.DistanceCents != want {
			t.Errorf("DistanceCents(%v km) = %d, want %d", km, b.DistanceCents, want)
		}
	}
}

func TestCalculate_TimeFreeAllowance(t *testing.T) {
	svc := newTestFareService()

	cases := []struct {
		durationMin float64
		wantCents   int64
	}{
		{0, 0},
		{10, 0},
		{15, 0}, // exactly the allowance: nothing billable
		{16, 50},
		{20, 250},
		{75, 3000},
	}

	for _, tc := range cases {
		b, err := svc.Calculate(FareParams{
			VehicleClass: "standard",
			DistanceKm:   10,
			DurationMin:  tc.durationMin,
			PickupTime:   quietPickup,
		})
		if err != nil {
			t.Fatalf("Calculate(%v min): %v", tc.durationMin, err)
		}
		if b.TimeCents != tc.wantCents {
			t.Errorf("TimeCents(%v min) = %d, want %d", tc.durationMin, b.TimeCents, tc.wantCents)
		}
	}
}

func TestCalculate_StopoverThenReturnOrdering(t *testing.T) {
	svc := newTestFareService()

	// Floored subtotal 5750 → +10% stopover (575) → 6325 → ×0.90 → 5693.
	b, err := svc.Calculate(FareParams{
		VehicleClass: "standard",
		DistanceKm:   10,
		DurationMin:  20,
		PickupTime:   quietPickup,
		HasStopover:  true,
		IsReturn:     true,
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if b.SubtotalCents != 5693 {
		t.Errorf("SubtotalCents = %d, want 5693 (stopover before return discount)", b.SubtotalCents)
	}
	if b.TaxCents != 342 {
		t.Errorf("TaxCents = %d, want 342", b.TaxCents)
	}
	if b.TotalCents != 6035 {
		t.Errorf("TotalCents = %d, want 6035", b.TotalCents)
	}
}

func TestCalculate_StopoverMinimumAmount(t *testing.T) {
	svc := newTestFareService()

	// Override the tariff down so 10% of the subtotal drops under the
	// €2.50 stopover floor.
	base := int64(800)
	minimum := int64(1000)
	b, err := svc.Calculate(FareParams{
		VehicleClass: "standard",
		PickupTime:   quietPickup,
		HasStopover:  true,
		Overrides: &model.PricingOverride{
			BaseCents:    &base,
			MinimumCents: &minimum,
		},
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	// Floored subtotal 1000; 10% = 100 < 250, so the floor applies.
	if b.SubtotalCents != 1250 {
		t.Errorf("SubtotalCents = %d, want 1250 (€2.50 stopover floor)", b.SubtotalCents)
	}
	if b.MinimumCents != 1000 {
		t.Errorf("MinimumCents = %d, want overridden 1000", b.MinimumCents)
	}
}

func TestCalculate_PerKmOverride(t *testing.T) {
	svc := newTestFareService()

	perKm := int64(300)
	b, err := svc.Calculate(FareParams{
		VehicleClass: "standard",
		DistanceKm:   10,
		PickupTime:   quietPickup,
		Overrides:    &model.PricingOverride{PerKmCents: &perKm},
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if b.DistanceCents != 3000 {
		t.Errorf("DistanceCents = %d, want 3000 with €3/km override", b.DistanceCents)
	}
	// Untouched fields keep the static table values.
	if b.BaseCents != 3500 {
		t.Errorf("BaseCents = %d, want 3500", b.BaseCents)
	}
}

func TestCalculate_UnknownVehicleClass(t *testing.T) {
	svc := newTestFareService()

	_, err := svc.Calculate(FareParams{VehicleClass: "hovercraft"})
	if !errors.Is(err, ErrUnknownVehicleClass) {
		t.Errorf("Calculate(unknown class) err = %v, want ErrUnknownVehicleClass", err)
	}
}

func TestCalculate_NonPositiveSurchargesDropped(t *testing.T) {
	svc := newTestFareService()

	rules := []SurchargeRule{
		{Name: "noop", Description: "no-op", Kind: RuleTimeWindow, Factor: 1.0,
			Days: []time.Weekday{quietPickup.Weekday()}},
		{Name: "discounting", Description: "negative", Kind: RuleTimeWindow, Factor: 0.9,
			Days: []time.Weekday{quietPickup.Weekday()}},
	}

	b, err := svc.Calculate(FareParams{
		VehicleClass: "standard",
		DistanceKm:   10,
		PickupTime:   quietPickup,
		Rules:        rules,
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if len(b.Surcharges) != 0 {
		t.Errorf("Surcharges = %v, want zero/negative amounts dropped", b.Surcharges)
	}
}

func TestCalculate_BreakdownFieldsSumExactly(t *testing.T) {
	svc := newTestFareService()

	// Saturday night: weekend and night surcharges both fire.
	pickup := time.Date(2026, time.March, 14, 23, 0, 0, 0, time.UTC)
	b, err := svc.Calculate(FareParams{
		VehicleClass: "standard",
		DistanceKm:   10,
		DurationMin:  20,
		PickupTime:   pickup,
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if len(b.Surcharges) != 2 {
		t.Fatalf("Surcharges = %v, want night + weekend", b.Surcharges)
	}

	sum := b.BaseCents + b.DistanceCents + b.TimeCents
	for _, line := range b.Surcharges {
		if line.AmountCents <= 0 {
			t.Errorf("surcharge %q amount = %d, want positive", line.Name, line.AmountCents)
		}
		sum += line.AmountCents
	}
	if sum != b.SubtotalCents {
		t.Errorf("field sum = %d, subtotal = %d; cents arithmetic must sum exactly", sum, b.SubtotalCents)
	}
}

func TestEstimatePrice_Defaults(t *testing.T) {
	svc := newTestFareService()

	b, err := svc.EstimatePrice("standard", 0, quietPickup)
	if err != nil {
		t.Fatalf("EstimatePrice: %v", err)
	}

	// Assumes 5 km and 2 min/km; the 10 assumed minutes stay inside
	// the free allowance.
	if b.DistanceCents != 1000 {
		t.Errorf("DistanceCents = %d, want 1000 for the default 5 km", b.DistanceCents)
	}
	if b.TimeCents != 0 {
		t.Errorf("TimeCents = %d, want 0", b.TimeCents)
	}
	if !b.EstimatedOnly {
		t.Error("EstimatedOnly = false, want true for an assumed distance")
	}
}

func TestEstimatePrice_UnknownClass(t *testing.T) {
	svc := newTestFareService()
	if _, err := svc.EstimatePrice("hovercraft", 5, quietPickup); !errors.Is(err, ErrUnknownVehicleClass) {
		t.Errorf("EstimatePrice err = %v, want ErrUnknownVehicleClass", err)
	}
}

func TestComparePrices_SortedAscending(t *testing.T) {
	svc := newTestFareService()

	results := svc.ComparePrices(FareParams{
		DistanceKm:  10,
		DurationMin: 20,
		PickupTime:  quietPickup,
	})

	if len(results) != len(DefaultVehiclePricing()) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(DefaultVehiclePricing()))
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Breakdown.TotalCents > results[i].Breakdown.TotalCents {
			t.Errorf("results not ascending at %d: %d > %d",
				i, results[i-1].Breakdown.TotalCents, results[i].Breakdown.TotalCents)
		}
	}
	if results[0].VehicleClass != "standard" {
		t.Errorf("cheapest class = %q, want standard", results[0].VehicleClass)
	}
}

func TestValidatePrice(t *testing.T) {
	svc := newTestFareService()

	cases := []struct {
		name         string
		breakdown    model.PriceBreakdown
		wantValid    bool
		wantWarnings int
	}{
		{"normal", model.PriceBreakdown{TotalCents: 6095}, true, 0},
		{"expensive", model.PriceBreakdown{TotalCents: 60000}, true, 1},
		{"estimate", model.PriceBreakdown{TotalCents: 6095, EstimatedOnly: true}, true, 1},
		{"zero", model.PriceBreakdown{TotalCents: 0}, false, 0},
		{"negative", model.PriceBreakdown{TotalCents: -100}, false, 0},
		{"absurd", model.PriceBreakdown{TotalCents: 100000}, false, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := svc.ValidatePrice(&tc.breakdown)
			if v.Valid != tc.wantValid {
				t.Errorf("Valid = %v, want %v", v.Valid, tc.wantValid)
			}
			if len(v.Warnings) != tc.wantWarnings {
				t.Errorf("Warnings = %v, want %d entries", v.Warnings, tc.wantWarnings)
			}
		})
	}
}

func TestCalculate_MalformedNumbersDegrade(t *testing.T) {
	svc := newTestFareService()

	b, err := svc.Calculate(FareParams{
		VehicleClass: "standard",
		DistanceKm:   -7,
		DurationMin:  -20,
		PickupTime:   quietPickup,
	})
	if err != nil {
		t.Fatalf("Calculate must not fail on malformed numbers: %v", err)
	}
	if b.DistanceCents != 0 || b.TimeCents != 0 {
		t.Errorf("negative inputs must price as zero, got dist=%d time=%d", b.DistanceCents, b.TimeCents)
	}
	if !b.EstimatedOnly {
		t.Error("EstimatedOnly = false, want true when no usable distance")
	}
}
