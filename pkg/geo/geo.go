// Package geo provides geographic utility functions for fare estimation.
//
// All distance calculations use the Haversine formula on WGS-84 coordinates.
// Travel time is estimated using a constant average urban speed — it is the
// fallback when the routing provider is unavailable, not a routing engine.
package geo

import (
	"math"

	"github.com/maarten/chauffeur/internal/model"
)

// ─── Constants ──────────────────────────────────────────────

const (
	// EarthRadiusKm is the mean radius of Earth in kilometers.
	EarthRadiusKm = 6371.0

	// AverageSpeedKmph is the assumed average city driving speed,
	// used to derive a duration from a great-circle distance.
	AverageSpeedKmph = 40.0
)

// ─── Distance ───────────────────────────────────────────────

// HaversineKm returns the great-circle distance between two points in
// kilometers.
func HaversineKm(a, b model.LatLng) float64 {
	dLat := degToRad(b.Lat - a.Lat)
	dLng := degToRad(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat +
		math.Cos(degToRad(a.Lat))*math.Cos(degToRad(b.Lat))*sinLng*sinLng

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// HaversineM returns the great-circle distance between two points in meters.
func HaversineM(a, b model.LatLng) float64 {
	return HaversineKm(a, b) * 1000.0
}

// ─── Duration ───────────────────────────────────────────────

// TravelMinutes returns the estimated driving time in minutes for the
// given distance, assuming AverageSpeedKmph.
func TravelMinutes(distanceKm float64) float64 {
	return (distanceKm / AverageSpeedKmph) * 60.0
}

// EstimateTravelMinutes returns the estimated direct travel time
// between two points in minutes.
func EstimateTravelMinutes(a, b model.LatLng) float64 {
	return TravelMinutes(HaversineKm(a, b))
}

// ─── Helpers ────────────────────────────────────────────────

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
