package analysis

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// SymbolSource supplies the default symbol universe for runs that do not
// name symbols explicitly
type SymbolSource interface {
	Symbols() ([]string, error)
}

// Handlers provides HTTP handlers for analysis endpoints
type Handlers struct {
	service  *Service
	universe SymbolSource
	log      zerolog.Logger
}

// NewHandlers creates a new analysis handlers instance
func NewHandlers(service *Service, universe SymbolSource, log zerolog.Logger) *Handlers {
	return &Handlers{
		service:  service,
		universe: universe,
		log:      log.With().Str("module", "analysis_handlers").Logger(),
	}
}

// RegisterRoutes registers all analysis routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/analysis", func(r chi.Router) {
		r.Post("/run", h.Run)
		r.Get("/session", h.Session)
		r.Get("/communities", h.Communities)
		r.Get("/peers/{symbol}", h.Peers)
		r.Get("/correlation", h.Correlation)
	})
}

// RunRequest is the request body for starting an analysis run
type RunRequest struct {
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Symbols []string `json:"symbols,omitempty"`
}

// SessionSummary describes an analysis session without its full matrix
type SessionSummary struct {
	Start       string    `json:"start"`
	End         string    `json:"end"`
	Symbols     int       `json:"symbols"`
	Edges       int       `json:"edges"`
	Communities int       `json:"communities"`
	Threshold   float64   `json:"threshold"`
	CreatedAt   time.Time `json:"created_at"`
}

func summarize(s *Session) SessionSummary {
	return SessionSummary{
		Start:       s.Start.Format("2006-01-02"),
		End:         s.End.Format("2006-01-02"),
		Symbols:     s.Matrix.Len(),
		Edges:       s.Graph.NumEdges(),
		Communities: len(s.Communities),
		Threshold:   s.Threshold,
		CreatedAt:   s.CreatedAt,
	}
}

// Run executes the analysis pipeline for a date range
func (h *Handlers) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	symbols := normalizeSymbols(req.Symbols)
	if len(symbols) == 0 {
		universeSymbols, err := h.universe.Symbols()
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to load universe symbols")
			h.writeError(w, http.StatusInternalServerError, "failed to load universe symbols")
			return
		}
		symbols = universeSymbols
	}

	session, err := h.service.Run(req.Start, req.End, symbols)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, summarize(session))
}

// Session returns a summary of the current session
func (h *Handlers) Session(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Current()
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, summarize(session))
}

// Communities returns the community partition of the current session
func (h *Handlers) Communities(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Current()
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"communities": session.Communities,
	})
}

// PeersResponse is the response for the same-community peers query
type PeersResponse struct {
	Symbol string   `json:"symbol"`
	Peers  []string `json:"peers"`
}

// Peers returns the instruments correlated with a symbol within its community
func (h *Handlers) Peers(w http.ResponseWriter, r *http.Request) {
	symbol := normalizeSymbol(chi.URLParam(r, "symbol"))

	peers, err := h.service.ConnectedInCommunity(symbol)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, PeersResponse{
		Symbol: symbol,
		Peers:  peers,
	})
}

// CorrelationResponse is the response for the pairwise correlation query.
// Correlation is null when the coefficient is undefined for the pair.
type CorrelationResponse struct {
	A           string   `json:"a"`
	B           string   `json:"b"`
	Correlation *float64 `json:"correlation"`
}

// Correlation returns the correlation between two symbols
func (h *Handlers) Correlation(w http.ResponseWriter, r *http.Request) {
	a := normalizeSymbol(r.URL.Query().Get("a"))
	b := normalizeSymbol(r.URL.Query().Get("b"))
	if a == "" || b == "" {
		h.writeError(w, http.StatusBadRequest, "query parameters 'a' and 'b' are required")
		return
	}

	corr, err := h.service.CorrelationBetween(a, b)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	resp := CorrelationResponse{A: a, B: b}
	if !math.IsNaN(corr) {
		resp.Correlation = &corr
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// handleServiceError maps analysis error kinds to HTTP status codes
func (h *Handlers) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidDateFormat):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNoData):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrNoSession):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrUnknownInstrument):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Msg("Analysis request failed")
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

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func normalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if n := normalizeSymbol(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}
