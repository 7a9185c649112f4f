package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/maarten/chauffeur/internal/repository"
)

// QuoteHandler serves persisted quotes.
type QuoteHandler struct {
	quotes *repository.QuoteRepository
}

// NewQuoteHandler creates a quote handler.
func NewQuoteHandler(quotes *repository.QuoteRepository) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// GetQuote handles GET /api/v1/quotes/{id}
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	quote, err := h.quotes.GetQuote(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrQuoteNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error":   "not_found",
				"message": "No quote exists with that ID.",
			})
			return
		}
		log.Printf("[handler] quote lookup error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal_error",
		})
		return
	}

	writeJSON(w, http.StatusOK, quote)
}
