package marketdata

import (
	"math"
	"time"
)

// PriceTable is a table of daily closing prices: rows are trading dates in
// ascending order, columns are instrument symbols. A missing close for a
// (date, symbol) cell is NaN. Symbols the provider had no data for in the
// requested range are omitted entirely.
type PriceTable struct {
	Dates   []string             // YYYY-MM-DD, ascending
	Symbols []string             // column order, sorted
	Close   map[string][]float64 // symbol -> closes aligned to Dates
}

// Empty reports whether the table has no rows or no columns
func (t *PriceTable) Empty() bool {
	return t == nil || len(t.Dates) == 0 || len(t.Symbols) == 0
}

// Column returns the close series for a symbol, or nil if absent
func (t *PriceTable) Column(symbol string) []float64 {
	if t == nil {
		return nil
	}
	return t.Close[symbol]
}

// PriceSource supplies daily closing prices for a set of symbols over
// [start, end). The analysis pipeline treats implementations as blocking
// external collaborators.
type PriceSource interface {
	ClosingPrices(symbols []string, start, end time.Time) (*PriceTable, error)
}

// nanColumn builds a column of n NaN cells
func nanColumn(n int) []float64 {
	col := make([]float64, n)
	for i := range col {
		col[i] = math.NaN()
	}
	return col
}
