package marketdata

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peartrader/peartrader/internal/clients/yahoo"
	"github.com/peartrader/peartrader/internal/database"
)

func newTestCache(t *testing.T) *PriceCache {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate())

	return NewPriceCache(db.Conn(), zerolog.Nop())
}

func TestPriceCacheStoreAndLoad(t *testing.T) {
	cache := newTestCache(t)

	prices := []yahoo.ClosingPrice{
		{Date: "2024-01-02", Close: 185.0},
		{Date: "2024-01-03", Close: 184.5},
		{Date: "2024-01-04", Close: 186.2},
	}
	require.NoError(t, cache.Store("AAPL", prices))

	got, err := cache.Load("AAPL",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, prices, got)
}

func TestPriceCacheLoadRangeIsHalfOpen(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.Store("AAPL", []yahoo.ClosingPrice{
		{Date: "2024-01-02", Close: 185.0},
		{Date: "2024-01-03", Close: 184.5},
		{Date: "2024-01-04", Close: 186.2},
	}))

	got, err := cache.Load("AAPL",
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-02", got[0].Date)
	assert.Equal(t, "2024-01-03", got[1].Date)
}

func TestPriceCacheUpsertOverwrites(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.Store("AAPL", []yahoo.ClosingPrice{{Date: "2024-01-02", Close: 185.0}}))
	require.NoError(t, cache.Store("AAPL", []yahoo.ClosingPrice{{Date: "2024-01-02", Close: 186.0}}))

	got, err := cache.Load("AAPL",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, 186.0, got[0].Close)
}

func TestPriceCacheSkipsNaN(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.Store("AAPL", []yahoo.ClosingPrice{
		{Date: "2024-01-02", Close: 185.0},
		{Date: "2024-01-03", Close: math.NaN()},
	}))

	got, err := cache.Load("AAPL",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-02", got[0].Date)
}

func TestPriceCacheIsolatesSymbols(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.Store("AAPL", []yahoo.ClosingPrice{{Date: "2024-01-02", Close: 185.0}}))
	require.NoError(t, cache.Store("MSFT", []yahoo.ClosingPrice{{Date: "2024-01-02", Close: 370.0}}))

	got, err := cache.Load("MSFT",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, 370.0, got[0].Close)
}
