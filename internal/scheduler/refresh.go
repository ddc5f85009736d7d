package scheduler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/peartrader/peartrader/internal/modules/analysis"
)

// RefreshJob periodically rebuilds the analysis session over a trailing
// lookback window, so queries keep answering against reasonably fresh data
// without anyone triggering runs by hand.
type RefreshJob struct {
	analysisService *analysis.Service
	universe        analysis.SymbolSource
	lookbackDays    int
	log             zerolog.Logger
}

// NewRefreshJob creates a new analysis refresh job
func NewRefreshJob(analysisService *analysis.Service, universe analysis.SymbolSource, lookbackDays int, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		analysisService: analysisService,
		universe:        universe,
		lookbackDays:    lookbackDays,
		log:             log.With().Str("job", "analysis_refresh").Logger(),
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "analysis_refresh"
}

// Run rebuilds the session for the trailing window over the full universe
func (j *RefreshJob) Run() error {
	symbols, err := j.universe.Symbols()
	if err != nil {
		return fmt.Errorf("failed to load universe symbols: %w", err)
	}

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -j.lookbackDays).Format("2006-01-02")
	end := now.Format("2006-01-02")

	session, err := j.analysisService.Run(start, end, symbols)
	if err != nil {
		return fmt.Errorf("refresh analysis failed: %w", err)
	}

	j.log.Info().
		Str("start", start).
		Str("end", end).
		Int("symbols", session.Matrix.Len()).
		Int("communities", len(session.Communities)).
		Msg("Analysis session refreshed")

	return nil
}
