// Package maps wraps the Google Maps API behind the small provider
// contract the distance service needs: one distance-matrix call and
// one geocoding call.
package maps

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"github.com/maarten/chauffeur/internal/model"
)

// RouteService handles interactions with the Google Maps API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// TravelEstimate returns the driving distance in meters and duration
// between origin and destination, using metric units.
func (s *RouteService) TravelEstimate(ctx context.Context, origin, destination string) (int, time.Duration, error) {
	r := &maps.DistanceMatrixRequest{
		Origins:      []string{origin},
		Destinations: []string{destination},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsMetric,
	}

	resp, err := s.client.DistanceMatrix(ctx, r)
	if err != nil {
		return 0, 0, fmt.Errorf("distance matrix: %w", err)
	}

	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, 0, fmt.Errorf("distance matrix: no elements returned")
	}

	element := resp.Rows[0].Elements[0]
	if element.Status != "OK" {
		return 0, 0, fmt.Errorf("distance matrix: element status %s", element.Status)
	}

	return element.Distance.Meters, element.Duration, nil
}

// Geocode resolves a free-text address to WGS-84 coordinates.
func (s *RouteService) Geocode(ctx context.Context, address string) (model.LatLng, error) {
	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return model.LatLng{}, fmt.Errorf("geocode: %w", err)
	}
	if len(results) == 0 {
		return model.LatLng{}, fmt.Errorf("geocode: no result for %q", address)
	}

	loc := results[0].Geometry.Location
	return model.LatLng{Lat: loc.Lat, Lng: loc.Lng}, nil
}
