package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peartrader/peartrader/internal/modules/marketdata"
)

// pricesFromReturns builds a close series starting at base and compounding
// the given returns, so tests can state correlations in return space
func pricesFromReturns(base float64, returns []float64) []float64 {
	prices := make([]float64, len(returns)+1)
	prices[0] = base
	for i, r := range returns {
		prices[i+1] = prices[i] * (1 + r)
	}
	return prices
}

// Return series used across the matrix and service tests: A and B move in
// lockstep, C's deviations are orthogonal to A's so corr(A, C) == 0.
var (
	lockstepReturns   = []float64{0.10, -0.05, 0.20, 0.05}
	orthogonalReturns = []float64{0.135, 0.035, -0.015, -0.115}
)

func lockstepTable() *marketdata.PriceTable {
	return &marketdata.PriceTable{
		Dates:   []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"},
		Symbols: []string{"A", "B", "C"},
		Close: map[string][]float64{
			"A": pricesFromReturns(100, lockstepReturns),
			"B": pricesFromReturns(50, lockstepReturns),
			"C": pricesFromReturns(200, orthogonalReturns),
		},
	}
}

func TestComputeCorrelationMatrix(t *testing.T) {
	m, err := ComputeCorrelationMatrix(lockstepTable())
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, m.Symbols())
	assert.Equal(t, 3, m.Len())

	ab, err := m.At("A", "B")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ab, 1e-9, "lockstep series should be perfectly correlated")

	ac, err := m.At("A", "C")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, ac, 1e-6, "orthogonal series should be uncorrelated")
}

func TestComputeCorrelationMatrixProperties(t *testing.T) {
	m, err := ComputeCorrelationMatrix(lockstepTable())
	require.NoError(t, err)

	symbols := m.Symbols()
	for _, a := range symbols {
		diag, err := m.At(a, a)
		require.NoError(t, err)
		assert.Equal(t, 1.0, diag, "diagonal must be exactly 1 for %s", a)

		for _, b := range symbols {
			ab, err := m.At(a, b)
			require.NoError(t, err)
			ba, err := m.At(b, a)
			require.NoError(t, err)
			assert.Equal(t, ab, ba, "matrix must be symmetric for (%s, %s)", a, b)
		}
	}
}

func TestComputeCorrelationMatrixDropsIncompleteRows(t *testing.T) {
	// B is missing a close on the middle date, so the two return rows
	// touching that date are dropped for every symbol
	table := lockstepTable()
	table.Close["B"][2] = math.NaN()

	m, err := ComputeCorrelationMatrix(table)
	require.NoError(t, err)

	// A and B still align perfectly on the remaining rows
	ab, err := m.At("A", "B")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ab, 1e-9)
}

func TestComputeCorrelationMatrixZeroVariance(t *testing.T) {
	table := &marketdata.PriceTable{
		Dates:   []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"},
		Symbols: []string{"FLAT", "MOVER"},
		Close: map[string][]float64{
			"FLAT":  {100, 100, 100, 100},
			"MOVER": {100, 110, 99, 120},
		},
	}

	m, err := ComputeCorrelationMatrix(table)
	require.NoError(t, err)

	corr, err := m.At("FLAT", "MOVER")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(corr), "zero-variance correlation must be NaN, got %v", corr)

	// NaN must never satisfy a threshold comparison
	assert.False(t, corr >= -1.0)
}

func TestComputeCorrelationMatrixNoData(t *testing.T) {
	tests := []struct {
		name  string
		table *marketdata.PriceTable
	}{
		{
			name:  "empty table",
			table: &marketdata.PriceTable{},
		},
		{
			name: "single date row",
			table: &marketdata.PriceTable{
				Dates:   []string{"2024-01-01"},
				Symbols: []string{"A"},
				Close:   map[string][]float64{"A": {100}},
			},
		},
		{
			name: "one aligned return",
			table: &marketdata.PriceTable{
				Dates:   []string{"2024-01-01", "2024-01-02"},
				Symbols: []string{"A", "B"},
				Close: map[string][]float64{
					"A": {100, 110},
					"B": {50, 55},
				},
			},
		},
		{
			name: "gaps leave no complete rows",
			table: &marketdata.PriceTable{
				Dates:   []string{"2024-01-01", "2024-01-02", "2024-01-03"},
				Symbols: []string{"A", "B"},
				Close: map[string][]float64{
					"A": {100, math.NaN(), 120},
					"B": {50, 55, math.NaN()},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeCorrelationMatrix(tt.table)
			assert.ErrorIs(t, err, ErrNoData)
		})
	}
}

func TestCorrelationMatrixUnknownSymbol(t *testing.T) {
	m, err := ComputeCorrelationMatrix(lockstepTable())
	require.NoError(t, err)

	_, err = m.At("A", "ZZZZ")
	assert.ErrorIs(t, err, ErrUnknownInstrument)

	_, err = m.At("ZZZZ", "A")
	assert.ErrorIs(t, err, ErrUnknownInstrument)

	assert.False(t, m.Has("ZZZZ"))
	assert.True(t, m.Has("A"))
}
