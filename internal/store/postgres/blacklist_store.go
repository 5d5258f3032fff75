package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arbscan/arbscan/internal/domain"
)

// BlacklistStore implements domain.BlacklistStore using PostgreSQL. Symbols
// are stored normalized (upper case, no separators) so lookups match the
// grouping key.
type BlacklistStore struct {
	pool *pgxpool.Pool
}

// NewBlacklistStore creates a new BlacklistStore backed by the given
// connection pool.
func NewBlacklistStore(pool *pgxpool.Pool) *BlacklistStore {
	return &BlacklistStore{pool: pool}
}

// Add blacklists a symbol. Adding an already blacklisted symbol is a no-op.
func (s *BlacklistStore) Add(ctx context.Context, symbol string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO symbol_blacklist (symbol) VALUES ($1) ON CONFLICT (symbol) DO NOTHING`,
		strings.ToUpper(symbol),
	)
	if err != nil {
		return fmt.Errorf("postgres: blacklist %s: %w", symbol, err)
	}
	return nil
}

// Remove un-blacklists a symbol.
func (s *BlacklistStore) Remove(ctx context.Context, symbol string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM symbol_blacklist WHERE symbol = $1`, strings.ToUpper(symbol))
	if err != nil {
		return fmt.Errorf("postgres: unblacklist %s: %w", symbol, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: %w: symbol %s", domain.ErrNotFound, symbol)
	}
	return nil
}

// List returns all blacklisted symbols in alphabetical order.
func (s *BlacklistStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT symbol FROM symbol_blacklist ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list blacklist: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("postgres: scan blacklist: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	return symbols, rows.Err()
}
