package charts

import (
	"fmt"
	"math"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"

	"github.com/peartrader/peartrader/internal/modules/analysis"
	"github.com/peartrader/peartrader/internal/modules/marketdata"
	"github.com/peartrader/peartrader/pkg/formulas"
)

// DefaultRollingWindow is the rolling-correlation window (trading days)
// when a request does not specify one
const DefaultRollingWindow = 30

// Service assembles chart-ready data from the current analysis session and
// the price provider. It renders nothing itself; heatmaps and network plots
// are a client concern.
type Service struct {
	analysis *analysis.Service
	prices   marketdata.PriceSource
	log      zerolog.Logger
}

// NewService creates a new charts service
func NewService(analysisService *analysis.Service, prices marketdata.PriceSource, log zerolog.Logger) *Service {
	return &Service{
		analysis: analysisService,
		prices:   prices,
		log:      log.With().Str("module", "charts").Logger(),
	}
}

// HeatmapData is the full correlation matrix in iteration order.
// Undefined correlations are null cells.
type HeatmapData struct {
	Symbols []string     `json:"symbols"`
	Values  [][]*float64 `json:"values"`
}

// Heatmap returns the current session's correlation matrix as heatmap data
func (s *Service) Heatmap() (*HeatmapData, error) {
	session, err := s.analysis.Current()
	if err != nil {
		return nil, err
	}

	symbols := session.Matrix.Symbols()
	values := make([][]*float64, len(symbols))
	for i, a := range symbols {
		row := make([]*float64, len(symbols))
		for j, b := range symbols {
			corr, err := session.Matrix.At(a, b)
			if err != nil {
				return nil, err
			}
			if !math.IsNaN(corr) {
				v := corr
				row[j] = &v
			}
		}
		values[i] = row
	}

	return &HeatmapData{
		Symbols: symbols,
		Values:  values,
	}, nil
}

// Network returns the positioned correlation network for the current session
func (s *Service) Network() (*analysis.Network, error) {
	session, err := s.analysis.Current()
	if err != nil {
		return nil, err
	}

	return analysis.BuildNetwork(session), nil
}

// RollingPoint is one dated rolling-correlation observation
type RollingPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// RollingCorrelationData is a rolling-correlation time series between two
// symbols
type RollingCorrelationData struct {
	A      string         `json:"a"`
	B      string         `json:"b"`
	Window int            `json:"window"`
	Points []RollingPoint `json:"points"`
}

// RollingCorrelation computes the rolling Pearson correlation of daily
// returns between two symbols over a named date range (1M/3M/6M/1Y/5Y/10Y,
// anything else falls back to 1Y). Dates where either symbol has no valid
// return are dropped before windowing, the same alignment rule the
// correlation matrix uses.
func (s *Service) RollingCorrelation(a, b, dateRange string, window int) (*RollingCorrelationData, error) {
	if window < 2 {
		window = DefaultRollingWindow
	}

	start := parseDateRange(dateRange)
	if start == "" {
		start = parseDateRange("1Y")
	}

	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve date range %q: %w", dateRange, err)
	}

	table, err := s.prices.ClosingPrices([]string{a, b}, startDate, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch closing prices: %w", err)
	}

	colA := table.Column(a)
	colB := table.Column(b)
	if colA == nil {
		return nil, fmt.Errorf("%w for %s in range", analysis.ErrNoData, a)
	}
	if colB == nil {
		return nil, fmt.Errorf("%w for %s in range", analysis.ErrNoData, b)
	}

	dates, retA, retB := alignedReturns(table.Dates, colA, colB)
	if len(retA) < window {
		return nil, fmt.Errorf("%w: %d aligned observations for a %d-day window", analysis.ErrNoData, len(retA), window)
	}

	corr := talib.Correl(retA, retB, window)

	// talib pads the warm-up period with zeros; only emit points once the
	// window is full
	points := make([]RollingPoint, 0, len(corr)-window+1)
	for i := window - 1; i < len(corr); i++ {
		if math.IsNaN(corr[i]) {
			continue
		}
		points = append(points, RollingPoint{
			Date:  dates[i],
			Value: corr[i],
		})
	}

	return &RollingCorrelationData{
		A:      a,
		B:      b,
		Window: window,
		Points: points,
	}, nil
}

// alignedReturns computes daily returns for both columns and keeps only the
// dates where both are defined
func alignedReturns(dates []string, colA, colB []float64) ([]string, []float64, []float64) {
	retA := formulas.CalculateReturns(colA)
	retB := formulas.CalculateReturns(colB)

	outDates := make([]string, 0, len(retA))
	outA := make([]float64, 0, len(retA))
	outB := make([]float64, 0, len(retB))

	for t := 0; t < len(retA) && t < len(retB); t++ {
		if math.IsNaN(retA[t]) || math.IsNaN(retB[t]) {
			continue
		}
		// Return at index t belongs to the later of its two dates
		outDates = append(outDates, dates[t+1])
		outA = append(outA, retA[t])
		outB = append(outB, retB[t])
	}

	return outDates, outA, outB
}

// parseDateRange converts a range string to a start date; empty means no
// recognized range
func parseDateRange(rangeStr string) string {
	if rangeStr == "all" || rangeStr == "" {
		return ""
	}

	now := time.Now()
	var startDate time.Time

	switch rangeStr {
	case "1M":
		startDate = now.AddDate(0, -1, 0)
	case "3M":
		startDate = now.AddDate(0, -3, 0)
	case "6M":
		startDate = now.AddDate(0, -6, 0)
	case "1Y":
		startDate = now.AddDate(-1, 0, 0)
	case "5Y":
		startDate = now.AddDate(-5, 0, 0)
	case "10Y":
		startDate = now.AddDate(-10, 0, 0)
	default:
		return ""
	}

	return startDate.Format("2006-01-02")
}
