package service

import (
	"strings"
	"time"
)

// ─── Surcharge rules ────────────────────────────────────────
//
// Surcharges are data, not code: one Rule struct with a Kind tag,
// evaluated generically against the pickup context. Generic rules use
// the declarative predicates (hour window, time ranges, day set); the
// named kinds cover the cases whose applicability needs real logic
// (holiday calendar, airport keyword, short ride, rush hour).

// RuleKind selects how a surcharge rule is evaluated.
type RuleKind string

const (
	// RuleTimeWindow is the generic kind: the rule applies when ANY
	// of its configured predicates (Hours, TimeRanges, Days) matches.
	RuleTimeWindow RuleKind = "time_window"

	// RuleHoliday applies on public holidays.
	RuleHoliday RuleKind = "holiday"

	// RuleAirport applies when the pickup text mentions an airport.
	RuleAirport RuleKind = "airport"

	// RuleShortRide applies to measured rides under 3 km.
	RuleShortRide RuleKind = "short_ride"

	// RuleRushHour applies on weekdays inside the rule's time ranges.
	RuleRushHour RuleKind = "rush_hour"
)

// HourRange is a [Start, End) window of whole hours. When Start > End
// the window wraps past midnight (e.g. 22–6).
type HourRange struct {
	Start int
	End   int
}

// Contains reports whether the hour falls inside the window.
func (r HourRange) Contains(hour int) bool {
	if r.Start <= r.End {
		return hour >= r.Start && hour < r.End
	}
	return hour >= r.Start || hour < r.End
}

// SurchargeRule is one named surcharge. Factor is multiplicative:
// 1.15 means +15% of (base + distance).
type SurchargeRule struct {
	Name        string
	Description string
	Kind        RuleKind
	Factor      float64

	Hours      *HourRange
	TimeRanges []HourRange
	Days       []time.Weekday
}

// RuleContext is what a rule gets to look at when deciding whether it
// applies.
type RuleContext struct {
	PickupTime time.Time
	PickupText string
	DistanceKm float64
}

// Applies reports whether the rule matches the context.
func (r SurchargeRule) Applies(ctx RuleContext) bool {
	switch r.Kind {
	case RuleHoliday:
		return isPublicHoliday(ctx.PickupTime)
	case RuleAirport:
		return mentionsAirport(ctx.PickupText)
	case RuleShortRide:
		return ctx.DistanceKm > 0 && ctx.DistanceKm < shortRideThresholdKm
	case RuleRushHour:
		// Weekday AND time range, unlike the generic any-match kind.
		if !isWeekday(ctx.PickupTime.Weekday()) {
			return false
		}
		return inAnyRange(r.TimeRanges, ctx.PickupTime.Hour())
	default:
		hour := ctx.PickupTime.Hour()
		if r.Hours != nil && r.Hours.Contains(hour) {
			return true
		}
		if inAnyRange(r.TimeRanges, hour) {
			return true
		}
		for _, d := range r.Days {
			if d == ctx.PickupTime.Weekday() {
				return true
			}
		}
		return false
	}
}

const shortRideThresholdKm = 3.0

// DefaultSurchargeRules returns the standard rule set. Callers may
// pass their own set through FareParams to replace it.
func DefaultSurchargeRules() []SurchargeRule {
	return []SurchargeRule{
		{
			Name:        "night",
			Description: "Night rate (22:00–06:00)",
			Kind:        RuleTimeWindow,
			Factor:      1.15,
			Hours:       &HourRange{Start: 22, End: 6},
		},
		{
			Name:        "weekend",
			Description: "Weekend rate",
			Kind:        RuleTimeWindow,
			Factor:      1.10,
			Days:        []time.Weekday{time.Saturday, time.Sunday},
		},
		{
			Name:        "holiday",
			Description: "Public holiday rate",
			Kind:        RuleHoliday,
			Factor:      1.25,
		},
		{
			Name:        "airport",
			Description: "Airport pickup",
			Kind:        RuleAirport,
			Factor:      1.10,
		},
		{
			Name:        "short_ride",
			Description: "Short ride (under 3 km)",
			Kind:        RuleShortRide,
			Factor:      1.20,
		},
		{
			Name:        "rush_hour",
			Description: "Rush hour (07:00–09:00, 16:00–18:00)",
			Kind:        RuleRushHour,
			Factor:      1.15,
			TimeRanges:  []HourRange{{Start: 7, End: 9}, {Start: 16, End: 18}},
		},
	}
}

// ─── Named predicates ───────────────────────────────────────

// publicHolidays are the fixed-date Belgian public holidays, as MM-DD.
// TODO: movable feasts (Easter Monday, Ascension, Whit Monday) need a
// computed calendar.
var publicHolidays = map[string]struct{}{
	"01-01": {}, // New Year's Day
	"05-01": {}, // Labour Day
	"07-21": {}, // National Day
	"08-15": {}, // Assumption
	"11-01": {}, // All Saints
	"11-11": {}, // Armistice Day
	"12-25": {}, // Christmas
}

func isPublicHoliday(t time.Time) bool {
	_, ok := publicHolidays[t.Format("01-02")]
	return ok
}

// airportKeywords covers the English and Dutch terms. Matching is a
// case-insensitive substring check on the pickup text.
var airportKeywords = []string{"airport", "luchthaven"}

func mentionsAirport(pickupText string) bool {
	lower := strings.ToLower(pickupText)
	for _, kw := range airportKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isWeekday(d time.Weekday) bool {
	return d != time.Saturday && d != time.Sunday
}

func inAnyRange(ranges []HourRange, hour int) bool {
	for _, r := range ranges {
		if r.Contains(hour) {
			return true
		}
	}
	return false
}
