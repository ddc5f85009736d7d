package marketdata

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/peartrader/peartrader/internal/clients/yahoo"
)

// PriceCache persists fetched daily closes so repeated analysis runs over the
// same range do not hammer the upstream provider, and so a provider outage
// degrades to stale data instead of no data.
type PriceCache struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPriceCache creates a new price cache repository
func NewPriceCache(db *sql.DB, log zerolog.Logger) *PriceCache {
	return &PriceCache{
		db:  db,
		log: log.With().Str("component", "price_cache").Logger(),
	}
}

// Store upserts daily closes for a symbol. NaN closes are skipped: a gap is
// not a price, and re-fetching later may fill it.
func (pc *PriceCache) Store(symbol string, prices []yahoo.ClosingPrice) error {
	if len(prices) == 0 {
		return nil
	}

	tx, err := pc.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO daily_prices (symbol, date, close_price)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET close_price = excluded.close_price
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	stored := 0
	for _, p := range prices {
		if math.IsNaN(p.Close) {
			continue
		}
		if _, err := stmt.Exec(symbol, p.Date, p.Close); err != nil {
			return fmt.Errorf("failed to upsert price for %s on %s: %w", symbol, p.Date, err)
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit prices: %w", err)
	}

	pc.log.Debug().Str("symbol", symbol).Int("stored", stored).Msg("Cached daily closes")
	return nil
}

// Load fetches cached closes for a symbol over [start, end), ascending by date
func (pc *PriceCache) Load(symbol string, start, end time.Time) ([]yahoo.ClosingPrice, error) {
	rows, err := pc.db.Query(`
		SELECT date, close_price
		FROM daily_prices
		WHERE symbol = ? AND date >= ? AND date < ?
		ORDER BY date ASC
	`, symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query cached prices: %w", err)
	}
	defer rows.Close()

	var prices []yahoo.ClosingPrice
	for rows.Next() {
		var p yahoo.ClosingPrice
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("failed to scan cached price: %w", err)
		}
		prices = append(prices, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached prices: %w", err)
	}

	return prices, nil
}
