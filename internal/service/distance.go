package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/maarten/chauffeur/internal/model"
	"github.com/maarten/chauffeur/pkg/geo"
)

// ─── Collaborator contracts ─────────────────────────────────

// RouteProvider is the external routing/geocoding collaborator. The
// Google Maps implementation lives in internal/maps; tests inject a
// fake.
type RouteProvider interface {
	// TravelEstimate returns the driving distance in meters and the
	// driving duration between two location strings.
	TravelEstimate(ctx context.Context, origin, destination string) (int, time.Duration, error)

	// Geocode resolves a free-text address to coordinates.
	Geocode(ctx context.Context, address string) (model.LatLng, error)
}

// DistanceCache memoizes distance results per route key. Expired
// entries are treated as misses on Get; Sweep removes them eagerly
// and returns how many it dropped.
type DistanceCache interface {
	Get(ctx context.Context, key string) (model.DistanceResult, bool)
	Put(ctx context.Context, key string, res model.DistanceResult)
	Sweep(ctx context.Context) int
}

// ─── DistanceService ────────────────────────────────────────

// DistanceService resolves a best-effort distance and duration between
// two points. Identical requests within the cache TTL never re-trigger
// provider calls. Provider failures degrade to a great-circle
// estimate; only total unresolvability yields an error-status result.
// Resolve never returns a Go error — callers always get an answer.
type DistanceService struct {
	provider RouteProvider
	cache    DistanceCache
	timeout  time.Duration
}

// NewDistanceService creates a distance service. provider may be nil
// (no API key configured): precise lookups and geocoding are then
// skipped and only coordinate pairs can be resolved, via fallback.
func NewDistanceService(provider RouteProvider, cache DistanceCache, timeout time.Duration) *DistanceService {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &DistanceService{provider: provider, cache: cache, timeout: timeout}
}

// Resolve returns the distance and duration between origin and
// destination. Waypoints are part of the cache key so that quotes for
// trips with stopovers are cached separately; they do not shape the
// route (the booking flow prices stopovers separately).
func (s *DistanceService) Resolve(ctx context.Context, origin, destination model.Point, waypoints []string) model.DistanceResult {
	origin = normalizePoint(origin)
	destination = normalizePoint(destination)

	key := routeKey(origin, destination, waypoints)
	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached
	}

	// The precise attempt always completes (or times out) before the
	// fallback path starts; the two are never raced.
	if res, err := s.preciseLookup(ctx, origin, destination); err == nil {
		s.cache.Put(ctx, key, res)
		return res
	}

	res, err := s.fallbackEstimate(ctx, origin, destination)
	if err != nil {
		// Not cached: a transient outage must not pin a zero result
		// for the whole TTL.
		return model.DistanceResult{
			Status:       model.DistanceError,
			ErrorMessage: fmt.Sprintf("could not resolve distance: %v", err),
		}
	}
	s.cache.Put(ctx, key, res)
	return res
}

// SweepCache evicts expired cache entries and returns the count.
// Without periodic sweeps the in-memory cache only overwrites stale
// entries lazily and keeps growing.
func (s *DistanceService) SweepCache(ctx context.Context) int {
	return s.cache.Sweep(ctx)
}

// preciseLookup asks the routing provider for the driving distance.
// Distance is rounded to 2 decimal km; duration is rounded UP to the
// next whole minute so fares are never under-quoted.
func (s *DistanceService) preciseLookup(ctx context.Context, origin, destination model.Point) (model.DistanceResult, error) {
	if s.provider == nil {
		return model.DistanceResult{}, fmt.Errorf("no routing provider configured")
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	meters, duration, err := s.provider.TravelEstimate(lookupCtx, locationString(origin), locationString(destination))
	if err != nil {
		return model.DistanceResult{}, fmt.Errorf("travel estimate: %w", err)
	}

	return model.DistanceResult{
		DistanceKm:  roundKm(float64(meters) / 1000.0),
		DurationMin: math.Ceil(duration.Minutes()),
		Status:      model.DistanceSuccess,
	}, nil
}

// fallbackEstimate computes a great-circle distance between the two
// endpoints, geocoding addresses when no coordinates were supplied.
// Duration assumes the average urban speed from pkg/geo.
func (s *DistanceService) fallbackEstimate(ctx context.Context, origin, destination model.Point) (model.DistanceResult, error) {
	from, err := s.resolveCoord(ctx, origin)
	if err != nil {
		return model.DistanceResult{}, fmt.Errorf("origin: %w", err)
	}
	to, err := s.resolveCoord(ctx, destination)
	if err != nil {
		return model.DistanceResult{}, fmt.Errorf("destination: %w", err)
	}

	km := geo.HaversineKm(from, to)
	return model.DistanceResult{
		DistanceKm:  roundKm(km),
		DurationMin: math.Ceil(geo.TravelMinutes(km)),
		Status:      model.DistanceFallback,
	}, nil
}

func (s *DistanceService) resolveCoord(ctx context.Context, p model.Point) (model.LatLng, error) {
	if p.Coord != nil {
		return *p.Coord, nil
	}
	if p.Address == "" {
		return model.LatLng{}, fmt.Errorf("no address or coordinates")
	}
	if s.provider == nil {
		return model.LatLng{}, fmt.Errorf("no geocoding provider configured")
	}

	geocodeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	coord, err := s.provider.Geocode(geocodeCtx, p.Address)
	if err != nil {
		return model.LatLng{}, fmt.Errorf("geocode %q: %w", p.Address, err)
	}
	return coord, nil
}

// ─── Keys and normalization ─────────────────────────────────

// normalizePoint drops out-of-range coordinates so they are treated
// as absent, never clamped or fed into distance math.
func normalizePoint(p model.Point) model.Point {
	if p.Coord != nil && !p.Coord.Valid() {
		p.Coord = nil
	}
	p.Address = strings.TrimSpace(p.Address)
	return p
}

// routeKey builds the deterministic cache key for a request.
func routeKey(origin, destination model.Point, waypoints []string) string {
	parts := make([]string, 0, 2+len(waypoints))
	parts = append(parts, pointKey(origin), pointKey(destination))
	for _, wp := range waypoints {
		parts = append(parts, strings.ToLower(strings.TrimSpace(wp)))
	}
	return strings.Join(parts, "|")
}

func pointKey(p model.Point) string {
	if p.Coord != nil {
		return fmt.Sprintf("%.6f,%.6f", p.Coord.Lat, p.Coord.Lng)
	}
	return strings.ToLower(p.Address)
}

// locationString is the provider-facing form of a point.
func locationString(p model.Point) string {
	if p.Coord != nil {
		return fmt.Sprintf("%f,%f", p.Coord.Lat, p.Coord.Lng)
	}
	return p.Address
}

func roundKm(km float64) float64 {
	return math.Round(km*100) / 100
}
