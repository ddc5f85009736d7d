package charts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/peartrader/peartrader/internal/modules/analysis"
)

// Handlers provides HTTP handlers for chart data endpoints
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new charts handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("module", "charts_handlers").Logger(),
	}
}

// RegisterRoutes registers all chart routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/charts", func(r chi.Router) {
		r.Get("/heatmap", h.Heatmap)
		r.Get("/network", h.Network)
		r.Get("/rolling-correlation", h.RollingCorrelation)
	})
}

// Heatmap returns correlation matrix heatmap data
func (h *Handlers) Heatmap(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Heatmap()
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, data)
}

// Network returns positioned network data for the current session
func (h *Handlers) Network(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Network()
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, data)
}

// RollingCorrelation returns a rolling-correlation series between two symbols
func (h *Handlers) RollingCorrelation(w http.ResponseWriter, r *http.Request) {
	a := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("a")))
	b := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("b")))
	if a == "" || b == "" {
		h.writeError(w, http.StatusBadRequest, "query parameters 'a' and 'b' are required")
		return
	}

	window := 0
	if windowStr := r.URL.Query().Get("window"); windowStr != "" {
		parsed, err := strconv.Atoi(windowStr)
		if err != nil || parsed < 2 {
			h.writeError(w, http.StatusBadRequest, "window must be an integer >= 2")
			return
		}
		window = parsed
	}

	data, err := h.service.RollingCorrelation(a, b, r.URL.Query().Get("range"), window)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, data)
}

// handleServiceError maps analysis error kinds to HTTP status codes
func (h *Handlers) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysis.ErrNoSession):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, analysis.ErrNoData):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, analysis.ErrUnknownInstrument):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Msg("Chart request failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
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
