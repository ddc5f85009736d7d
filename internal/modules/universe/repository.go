package universe

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// Repository stores the analysis universe in the tickers table
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new universe repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "universe_repository").Logger(),
	}
}

// SeedDefaults populates an empty universe with the default ticker list.
// A universe the user has already shaped is left alone.
func (r *Repository) SeedDefaults() error {
	count, err := r.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO tickers (symbol) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare seed insert: %w", err)
	}
	defer stmt.Close()

	for _, symbol := range DefaultSymbols {
		if _, err := stmt.Exec(NormalizeSymbol(symbol)); err != nil {
			return fmt.Errorf("failed to seed ticker %s: %w", symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	r.log.Info().Int("count", len(DefaultSymbols)).Msg("Seeded default universe")
	return nil
}

// Count returns the number of tickers in the universe
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM tickers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tickers: %w", err)
	}
	return count, nil
}

// List returns all tickers ordered by symbol
func (r *Repository) List() ([]Ticker, error) {
	rows, err := r.db.Query(`SELECT symbol, name, added_at FROM tickers ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickers: %w", err)
	}
	defer rows.Close()

	var tickers []Ticker
	for rows.Next() {
		var t Ticker
		if err := rows.Scan(&t.Symbol, &t.Name, &t.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickers: %w", err)
	}

	return tickers, nil
}

// Symbols returns all ticker symbols ordered by symbol
func (r *Repository) Symbols() ([]string, error) {
	tickers, err := r.List()
	if err != nil {
		return nil, err
	}

	symbols := make([]string, len(tickers))
	for i, t := range tickers {
		symbols[i] = t.Symbol
	}
	return symbols, nil
}

// Add inserts a ticker, updating the name if the symbol already exists
func (r *Repository) Add(symbol, name string) error {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	_, err := r.db.Exec(`
		INSERT INTO tickers (symbol, name) VALUES (?, ?)
		ON CONFLICT(symbol) DO UPDATE SET name = excluded.name
	`, symbol, name)
	if err != nil {
		return fmt.Errorf("failed to add ticker %s: %w", symbol, err)
	}

	return nil
}

// Remove deletes a ticker, reporting whether it existed
func (r *Repository) Remove(symbol string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM tickers WHERE symbol = ?`, NormalizeSymbol(symbol))
	if err != nil {
		return false, fmt.Errorf("failed to remove ticker %s: %w", symbol, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check removal of %s: %w", symbol, err)
	}

	return affected > 0, nil
}
