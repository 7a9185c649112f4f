package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/maarten/chauffeur/internal/model"
	"github.com/maarten/chauffeur/internal/repository"
	"github.com/maarten/chauffeur/internal/service"
)

// FareRequest is the JSON body for POST /api/v1/fare/estimate and
// POST /api/v1/fare/compare.
type FareRequest struct {
	Origin       PointPayload `json:"origin"`
	Destination  PointPayload `json:"destination"`
	Waypoints    []string     `json:"waypoints,omitempty"`
	VehicleClass string       `json:"vehicle_class"`
	PickupTime   string       `json:"pickup_time,omitempty"` // RFC3339, empty = now
	HasStopover  bool         `json:"has_stopover"`
	IsReturn     bool         `json:"is_return"`
}

// FareResponse is the estimate endpoint's reply.
type FareResponse struct {
	QuoteID   string               `json:"quote_id,omitempty"`
	Distance  model.DistanceResult `json:"distance"`
	Breakdown model.PriceBreakdown `json:"breakdown"`
	Valid     bool                 `json:"valid"`
	Warnings  []string             `json:"warnings,omitempty"`
}

// PricingHandler handles fare estimation HTTP requests.
type PricingHandler struct {
	distance *service.DistanceService
	fares    *service.FareService
	tariffs  *repository.TariffRepository
	quotes   *repository.QuoteRepository
}

// NewPricingHandler creates a pricing handler wired to the services.
func NewPricingHandler(
	distance *service.DistanceService,
	fares *service.FareService,
	tariffs *repository.TariffRepository,
	quotes *repository.QuoteRepository,
) *PricingHandler {
	return &PricingHandler{distance: distance, fares: fares, tariffs: tariffs, quotes: quotes}
}

// EstimateFare handles POST /api/v1/fare/estimate
//
// Resolves the distance (best effort), applies admin tariff overrides,
// computes the breakdown, and persists a quote. Distance resolution
// failures do not fail the request: the quote comes back flagged
// estimated-only.
func (h *PricingHandler) EstimateFare(w http.ResponseWriter, r *http.Request) {
	var req FareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON body",
		})
		return
	}
	if req.VehicleClass == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "vehicle_class is required",
		})
		return
	}

	params, distance := h.buildParams(r, req)

	breakdown, err := h.fares.Calculate(params)
	if err != nil {
		if errors.Is(err, service.ErrUnknownVehicleClass) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error":   "unknown_vehicle_class",
				"message": "No tariff exists for vehicle class " + req.VehicleClass + ".",
			})
			return
		}
		log.Printf("[handler] fare calculation error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal_error",
		})
		return
	}

	validation := h.fares.ValidatePrice(breakdown)

	quote := &model.Quote{
		VehicleClass:    req.VehicleClass,
		OriginText:      req.Origin.Address,
		DestinationText: req.Destination.Address,
		DistanceKm:      distance.DistanceKm,
		DurationMin:     distance.DurationMin,
		Breakdown:       *breakdown,
		EstimatedOnly:   breakdown.EstimatedOnly,
	}
	if err := h.quotes.SaveQuote(r.Context(), quote); err != nil {
		// The caller still gets a price; only the reference is lost.
		log.Printf("[handler] failed to persist quote: %v", err)
		quote.ID = ""
	}

	writeJSON(w, http.StatusOK, FareResponse{
		QuoteID:   quote.ID,
		Distance:  distance,
		Breakdown: *breakdown,
		Valid:     validation.Valid,
		Warnings:  validation.Warnings,
	})
}

// CompareFares handles POST /api/v1/fare/compare
//
// Runs the same calculation for every vehicle class and returns them
// cheapest first. No quote is persisted — this backs the class picker.
func (h *PricingHandler) CompareFares(w http.ResponseWriter, r *http.Request) {
	var req FareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON body",
		})
		return
	}

	params, distance := h.buildParams(r, req)
	params.Overrides = nil // A single class's override must not skew the comparison.

	results := h.fares.ComparePrices(params)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"distance": distance,
		"prices":   results,
	})
}

// buildParams resolves the distance and assembles FareParams from the
// request. Tariff override lookup failures are logged and skipped so a
// flaky database never blocks quoting.
func (h *PricingHandler) buildParams(r *http.Request, req FareRequest) (service.FareParams, model.DistanceResult) {
	distance := h.distance.Resolve(r.Context(), req.Origin.ToPoint(), req.Destination.ToPoint(), req.Waypoints)
	if distance.Status == model.DistanceError {
		log.Printf("[handler] distance resolution failed: %s", distance.ErrorMessage)
	}

	override, err := h.tariffs.GetOverride(r.Context(), req.VehicleClass)
	if err != nil {
		log.Printf("[handler] tariff override lookup failed: %v", err)
		override = nil
	}

	return service.FareParams{
		VehicleClass: req.VehicleClass,
		DistanceKm:   distance.DistanceKm,
		DurationMin:  distance.DurationMin,
		PickupTime:   parsePickupTime(req.PickupTime),
		PickupText:   req.Origin.Address,
		DropoffText:  req.Destination.Address,
		HasStopover:  req.HasStopover,
		IsReturn:     req.IsReturn,
		Overrides:    override,
	}, distance
}
