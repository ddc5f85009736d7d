package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateReturns(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   []float64
	}{
		{
			name:   "simple gains and losses",
			prices: []float64{100, 110, 99, 99},
			want:   []float64{0.10, -0.10, 0.0},
		},
		{
			name:   "too short",
			prices: []float64{100},
			want:   []float64{},
		},
		{
			name:   "empty",
			prices: nil,
			want:   []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateReturns(tt.prices)

			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12, "return %d", i)
			}
		})
	}
}

func TestCalculateReturnsPreservesGaps(t *testing.T) {
	got := CalculateReturns([]float64{100, math.NaN(), 120, 0, 50})

	require.Len(t, got, 4)
	assert.True(t, math.IsNaN(got[0]), "return into a gap is NaN")
	assert.True(t, math.IsNaN(got[1]), "return out of a gap is NaN")
	assert.Equal(t, -1.0, got[2], "a crash to zero is still a defined return")
	assert.True(t, math.IsNaN(got[3]), "a zero base price yields NaN, not infinity")
}

func TestCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}

	assert.InDelta(t, 1.0, Correlation(x, x), 1e-12)

	inverse := []float64{5, 4, 3, 2, 1}
	assert.InDelta(t, -1.0, Correlation(x, inverse), 1e-12)
}

func TestCorrelationUndefined(t *testing.T) {
	assert.True(t, math.IsNaN(Correlation([]float64{1, 2}, []float64{1, 2, 3})), "mismatched lengths")
	assert.True(t, math.IsNaN(Correlation([]float64{1}, []float64{1})), "too few observations")
	assert.True(t, math.IsNaN(Correlation([]float64{2, 2, 2}, []float64{1, 5, 9})), "zero variance")
}
