package universe

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers provides HTTP handlers for universe endpoints
type Handlers struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandlers creates a new universe handlers instance
func NewHandlers(repo *Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("module", "universe_handlers").Logger(),
	}
}

// RegisterRoutes registers all universe routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/universe", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Delete("/{symbol}", h.Remove)
	})
}

// ListResponse is the response for listing the universe
type ListResponse struct {
	Tickers []Ticker `json:"tickers"`
	Count   int      `json:"count"`
}

// List returns all tickers in the universe
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.repo.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list tickers")
		h.writeError(w, http.StatusInternalServerError, "failed to list tickers")
		return
	}

	if tickers == nil {
		tickers = []Ticker{}
	}

	h.writeJSON(w, http.StatusOK, ListResponse{
		Tickers: tickers,
		Count:   len(tickers),
	})
}

// AddRequest is the request body for adding a ticker
type AddRequest struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
}

// Add inserts a ticker into the universe
func (h *Handlers) Add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	symbol := NormalizeSymbol(req.Symbol)
	if symbol == "" {
		h.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	if err := h.repo.Add(symbol, req.Name); err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to add ticker")
		h.writeError(w, http.StatusInternalServerError, "failed to add ticker")
		return
	}

	h.writeJSON(w, http.StatusCreated, Ticker{Symbol: symbol, Name: req.Name})
}

// Remove deletes a ticker from the universe
func (h *Handlers) Remove(w http.ResponseWriter, r *http.Request) {
	symbol := NormalizeSymbol(chi.URLParam(r, "symbol"))

	removed, err := h.repo.Remove(symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to remove ticker")
		h.writeError(w, http.StatusInternalServerError, "failed to remove ticker")
		return
	}

	if !removed {
		h.writeError(w, http.StatusNotFound, "ticker not found: "+symbol)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"removed": symbol})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
