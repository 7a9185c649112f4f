// Package handler contains HTTP request handlers for the pricing API.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/maarten/chauffeur/internal/model"
)

// PointPayload is how a trip endpoint arrives over the wire: an
// address, a coordinate pair, or both.
type PointPayload struct {
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// ToPoint converts the payload to a model.Point. Range validation
// happens in the distance service, not here.
func (p PointPayload) ToPoint() model.Point {
	point := model.Point{Address: p.Address}
	if p.Lat != nil && p.Lng != nil {
		point.Coord = &model.LatLng{Lat: *p.Lat, Lng: *p.Lng}
	}
	return point
}

// parsePickupTime accepts an RFC3339 timestamp or empty (= now).
// A malformed timestamp falls back to now rather than failing the
// quote — pickup time only steers surcharges.
func parsePickupTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// writeJSON is a helper that writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
