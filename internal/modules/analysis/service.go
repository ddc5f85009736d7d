package analysis

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/peartrader/peartrader/internal/modules/marketdata"
)

// Service runs the analysis pipeline and answers queries against the most
// recent session. Pipeline runs and query reads share the session pointer
// under a single RWMutex: a run swaps the whole session atomically, so
// partial updates (new matrix with a stale graph) are never observable.
type Service struct {
	prices      marketdata.PriceSource
	partitioner Partitioner
	threshold   float64
	log         zerolog.Logger

	mu      sync.RWMutex
	current *Session
}

// NewService creates a new analysis service
func NewService(prices marketdata.PriceSource, partitioner Partitioner, threshold float64, log zerolog.Logger) *Service {
	return &Service{
		prices:      prices,
		partitioner: partitioner,
		threshold:   threshold,
		log:         log.With().Str("module", "analysis").Logger(),
	}
}

// Threshold returns the configured edge admission threshold
func (s *Service) Threshold() float64 {
	return s.threshold
}

// Run executes the full pipeline for the given date range and symbols:
// validate dates, fetch closing prices, compute the correlation matrix,
// build the thresholded graph, partition it into communities, and install
// the result as the current session. Any failure leaves the prior session
// (if any) untouched.
func (s *Service) Run(startText, endText string, symbols []string) (*Session, error) {
	start, err := ValidateDate(startText)
	if err != nil {
		return nil, err
	}

	end, err := ValidateDate(endText)
	if err != nil {
		return nil, err
	}

	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols requested", ErrNoData)
	}

	table, err := s.prices.ClosingPrices(symbols, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch closing prices: %w", err)
	}

	matrix, err := ComputeCorrelationMatrix(table)
	if err != nil {
		return nil, err
	}

	graph := BuildGraph(matrix, s.threshold)
	communities, err := s.partitioner.Partition(graph)
	if err != nil {
		return nil, fmt.Errorf("community detection failed: %w", err)
	}

	session := &Session{
		Matrix:      matrix,
		Graph:       graph,
		Communities: communities,
		Threshold:   s.threshold,
		Start:       start,
		End:         end,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	s.log.Info().
		Str("start", startText).
		Str("end", endText).
		Int("symbols", matrix.Len()).
		Int("edges", graph.NumEdges()).
		Int("communities", len(communities)).
		Float64("threshold", s.threshold).
		Msg("Analysis session built")

	return session, nil
}

// Current returns the most recent session, or ErrNoSession before the first
// successful run
func (s *Service) Current() (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, ErrNoSession
	}
	return s.current, nil
}

// ConnectedInCommunity answers the same-community peer query against the
// current session
func (s *Service) ConnectedInCommunity(symbol string) ([]string, error) {
	session, err := s.Current()
	if err != nil {
		return nil, err
	}
	return session.ConnectedInCommunity(symbol)
}

// CorrelationBetween answers the pairwise correlation query against the
// current session
func (s *Service) CorrelationBetween(a, b string) (float64, error) {
	session, err := s.Current()
	if err != nil {
		return 0, err
	}
	return session.CorrelationBetween(a, b)
}
