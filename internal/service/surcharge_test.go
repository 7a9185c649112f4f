package service

import (
	"testing"
	"time"
)

func findRule(t *testing.T, name string) SurchargeRule {
	t.Helper()
	for _, r := range DefaultSurchargeRules() {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no default rule named %q", name)
	return SurchargeRule{}
}

func at(month time.Month, day, hour int) RuleContext {
	return RuleContext{PickupTime: time.Date(2026, month, day, hour, 0, 0, 0, time.UTC)}
}

func TestHourRange_Contains(t *testing.T) {
	plain := HourRange{Start: 7, End: 9}
	for hour, want := range map[int]bool{6: false, 7: true, 8: true, 9: false} {
		if got := plain.Contains(hour); got != want {
			t.Errorf("HourRange{7,9}.Contains(%d) = %v, want %v", hour, got, want)
		}
	}

	// Start > End wraps past midnight.
	wrap := HourRange{Start: 22, End: 6}
	for hour, want := range map[int]bool{21: false, 22: true, 23: true, 0: true, 5: true, 6: false, 12: false} {
		if got := wrap.Contains(hour); got != want {
			t.Errorf("HourRange{22,6}.Contains(%d) = %v, want %v", hour, got, want)
		}
	}
}

func TestNightRule_WrapsMidnight(t *testing.T) {
	night := findRule(t, "night")

	cases := []struct {
		hour int
		want bool
	}{
		{23, true},
		{0, true},
		{5, true},
		{22, true},
		{6, false},
		{12, false},
	}
	for _, tc := range cases {
		// March 10 2026 is a Tuesday, so only the hour matters.
		ctx := at(time.March, 10, tc.hour)
		if got := night.Applies(ctx); got != tc.want {
			t.Errorf("night.Applies(hour=%d) = %v, want %v", tc.hour, got, tc.want)
		}
	}
}

func TestWeekendRule(t *testing.T) {
	weekend := findRule(t, "weekend")

	if !weekend.Applies(at(time.March, 14, 11)) { // Saturday
		t.Error("weekend must apply on Saturday")
	}
	if !weekend.Applies(at(time.March, 15, 11)) { // Sunday
		t.Error("weekend must apply on Sunday")
	}
	if weekend.Applies(at(time.March, 10, 11)) { // Tuesday
		t.Error("weekend must not apply on Tuesday")
	}
}

func TestHolidayRule(t *testing.T) {
	holiday := findRule(t, "holiday")

	cases := []struct {
		month time.Month
		day   int
		want  bool
	}{
		{time.January, 1, true},
		{time.July, 21, true},
		{time.December, 25, true},
		{time.December, 24, false},
		{time.March, 10, false},
	}
	for _, tc := range cases {
		if got := holiday.Applies(at(tc.month, tc.day, 11)); got != tc.want {
			t.Errorf("holiday.Applies(%v %d) = %v, want %v", tc.month, tc.day, got, tc.want)
		}
	}
}

func TestAirportRule_EnglishAndDutch(t *testing.T) {
	airport := findRule(t, "airport")

	cases := []struct {
		pickup string
		want   bool
	}{
		{"Brussels Airport (Zaventem)", true},
		{"LUCHTHAVEN Antwerpen", true},
		{"luchthaven Oostende", true},
		{"Grote Markt 1, Brussel", false},
		{"", false},
	}
	for _, tc := range cases {
		ctx := RuleContext{PickupTime: time.Date(2026, time.March, 10, 11, 0, 0, 0, time.UTC), PickupText: tc.pickup}
		if got := airport.Applies(ctx); got != tc.want {
			t.Errorf("airport.Applies(%q) = %v, want %v", tc.pickup, got, tc.want)
		}
	}
}

func TestShortRideRule(t *testing.T) {
	short := findRule(t, "short_ride")

	cases := []struct {
		km   float64
		want bool
	}{
		{0.5, true},
		{2.99, true},
		{0, false}, // no measured distance is not a short ride
		{3, false},
		{10, false},
	}
	for _, tc := range cases {
		ctx := RuleContext{PickupTime: time.Date(2026, time.March, 10, 11, 0, 0, 0, time.UTC), DistanceKm: tc.km}
		if got := short.Applies(ctx); got != tc.want {
			t.Errorf("short_ride.Applies(%v km) = %v, want %v", tc.km, got, tc.want)
		}
	}
}

func TestRushHourRule_WeekdayAndWindow(t *testing.T) {
	rush := findRule(t, "rush_hour")

	cases := []struct {
		name string
		ctx  RuleContext
		want bool
	}{
		{"monday morning", at(time.March, 9, 8), true},
		{"friday evening", at(time.March, 13, 16), true},
		{"monday midday", at(time.March, 9, 12), false},
		{"saturday morning", at(time.March, 14, 8), false},
		{"monday after window", at(time.March, 9, 18), false},
	}
	for _, tc := range cases {
		if got := rush.Applies(tc.ctx); got != tc.want {
			t.Errorf("%s: rush_hour.Applies = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestGenericRule_AnyPredicateMatches(t *testing.T) {
	rule := SurchargeRule{
		Name:   "mixed",
		Kind:   RuleTimeWindow,
		Factor: 1.1,
		Hours:  &HourRange{Start: 10, End: 12},
		Days:   []time.Weekday{time.Sunday},
	}

	// Hour matches, day doesn't.
	if !rule.Applies(at(time.March, 10, 11)) {
		t.Error("rule must apply when the hour window matches")
	}
	// Day matches, hour doesn't.
	if !rule.Applies(at(time.March, 15, 20)) {
		t.Error("rule must apply when the day set matches")
	}
	// Neither matches.
	if rule.Applies(at(time.March, 10, 20)) {
		t.Error("rule must not apply when no predicate matches")
	}
}
