package marketdata

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/peartrader/peartrader/internal/clients/yahoo"
)

// Fetcher is the upstream daily-close source (the Yahoo chart client in
// production, a fake in tests)
type Fetcher interface {
	GetDailyCloses(symbol string, start, end time.Time) ([]yahoo.ClosingPrice, error)
}

// Service assembles per-symbol close series into an aligned PriceTable.
// It fetches from the upstream provider, writes through to the sqlite cache,
// and falls back to cached data when a symbol's fetch fails.
type Service struct {
	fetcher Fetcher
	cache   *PriceCache
	log     zerolog.Logger
}

// NewService creates a new market data service
func NewService(fetcher Fetcher, cache *PriceCache, log zerolog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		log:     log.With().Str("module", "marketdata").Logger(),
	}
}

// ClosingPrices returns a table of daily closes for the given symbols over
// [start, end). Symbols with no data in the range are omitted from the table;
// dates a symbol did not trade on hold NaN.
func (s *Service) ClosingPrices(symbols []string, start, end time.Time) (*PriceTable, error) {
	series := make(map[string][]yahoo.ClosingPrice)

	for _, symbol := range symbols {
		prices, err := s.fetcher.GetDailyCloses(symbol, start, end)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Fetch failed, trying cache")
			prices = s.loadFromCache(symbol, start, end)
		} else if s.cache != nil {
			if cacheErr := s.cache.Store(symbol, prices); cacheErr != nil {
				s.log.Warn().Err(cacheErr).Str("symbol", symbol).Msg("Failed to cache prices")
			}
		}

		if len(prices) > 0 {
			series[symbol] = prices
		}
	}

	return buildTable(series), nil
}

// loadFromCache reads whatever the cache holds for the symbol; errors and
// empty results both collapse to "no data" since the caller omits the symbol
func (s *Service) loadFromCache(symbol string, start, end time.Time) []yahoo.ClosingPrice {
	if s.cache == nil {
		return nil
	}

	prices, err := s.cache.Load(symbol, start, end)
	if err != nil {
		s.log.Error().Err(err).Str("symbol", symbol).Msg("Cache read failed")
		return nil
	}
	return prices
}

// buildTable merges per-symbol series into one table over the union of dates
func buildTable(series map[string][]yahoo.ClosingPrice) *PriceTable {
	dateSet := make(map[string]struct{})
	for _, prices := range series {
		for _, p := range prices {
			dateSet[p.Date] = struct{}{}
		}
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	dateIndex := make(map[string]int, len(dates))
	for i, d := range dates {
		dateIndex[d] = i
	}

	symbols := make([]string, 0, len(series))
	for symbol := range series {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	closes := make(map[string][]float64, len(symbols))
	for _, symbol := range symbols {
		col := nanColumn(len(dates))
		for _, p := range series[symbol] {
			col[dateIndex[p.Date]] = p.Close
		}
		closes[symbol] = col
	}

	return &PriceTable{
		Dates:   dates,
		Symbols: symbols,
		Close:   closes,
	}
}
