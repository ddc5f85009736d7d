package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/peartrader/peartrader/internal/modules/marketdata"
	"github.com/peartrader/peartrader/pkg/formulas"
)

// CorrelationMatrix holds pairwise Pearson correlations between instrument
// return series. Storage is a gonum symmetric matrix, so symmetry holds by
// construction; the diagonal is always 1. Entries may be NaN when a
// correlation is undefined (zero-variance series), and NaN never satisfies
// a >= threshold comparison, so undefined pairs can never form graph edges.
//
// The matrix is immutable once built.
type CorrelationMatrix struct {
	symbols []string
	index   map[string]int
	data    *mat.SymDense
}

// ComputeCorrelationMatrix computes the correlation matrix from a table of
// daily closing prices.
//
// Each instrument's percentage returns are computed first; any date row where
// at least one instrument has a missing return is dropped, so every pairwise
// correlation is measured over the same aligned dates. Fewer than 2 aligned
// rows leave correlation undefined and yield ErrNoData.
func ComputeCorrelationMatrix(prices *marketdata.PriceTable) (*CorrelationMatrix, error) {
	if prices.Empty() {
		return nil, fmt.Errorf("%w: provider returned no rows", ErrNoData)
	}

	symbols := make([]string, len(prices.Symbols))
	copy(symbols, prices.Symbols)

	returns := make(map[string][]float64, len(symbols))
	for _, symbol := range symbols {
		returns[symbol] = formulas.CalculateReturns(prices.Column(symbol))
	}

	aligned := alignReturns(symbols, returns, len(prices.Dates)-1)
	if obs := alignedLength(symbols, aligned); obs < 2 {
		return nil, fmt.Errorf("%w: only %d aligned return observations", ErrNoData, obs)
	}

	n := len(symbols)
	data := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		data.SetSym(i, i, 1.0)
		for j := i + 1; j < n; j++ {
			data.SetSym(i, j, formulas.Correlation(aligned[symbols[i]], aligned[symbols[j]]))
		}
	}

	index := make(map[string]int, n)
	for i, symbol := range symbols {
		index[symbol] = i
	}

	return &CorrelationMatrix{
		symbols: symbols,
		index:   index,
		data:    data,
	}, nil
}

// alignReturns keeps only the return rows where every symbol has a value
func alignReturns(symbols []string, returns map[string][]float64, rows int) map[string][]float64 {
	aligned := make(map[string][]float64, len(symbols))
	for _, symbol := range symbols {
		aligned[symbol] = make([]float64, 0, rows)
	}

	for t := 0; t < rows; t++ {
		complete := true
		for _, symbol := range symbols {
			r := returns[symbol]
			if t >= len(r) || math.IsNaN(r[t]) {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		for _, symbol := range symbols {
			aligned[symbol] = append(aligned[symbol], returns[symbol][t])
		}
	}

	return aligned
}

func alignedLength(symbols []string, aligned map[string][]float64) int {
	if len(symbols) == 0 {
		return 0
	}
	return len(aligned[symbols[0]])
}

// Symbols returns the instrument symbols in the matrix's fixed iteration order
func (m *CorrelationMatrix) Symbols() []string {
	out := make([]string, len(m.symbols))
	copy(out, m.symbols)
	return out
}

// Len returns the number of instruments
func (m *CorrelationMatrix) Len() int {
	return len(m.symbols)
}

// Has reports whether a symbol is a column of the matrix
func (m *CorrelationMatrix) Has(symbol string) bool {
	_, ok := m.index[symbol]
	return ok
}

// At returns the correlation between two symbols. Argument order is
// irrelevant; a == b returns 1.0. Unknown symbols yield ErrUnknownInstrument.
func (m *CorrelationMatrix) At(a, b string) (float64, error) {
	i, ok := m.index[a]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownInstrument, a)
	}
	j, ok := m.index[b]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownInstrument, b)
	}
	return m.data.At(i, j), nil
}

// at returns the correlation by column index, for iteration
func (m *CorrelationMatrix) at(i, j int) float64 {
	return m.data.At(i, j)
}
