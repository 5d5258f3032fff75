package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arbscan/arbscan/internal/domain"
)

// PreferenceStore implements domain.PreferenceStore using PostgreSQL.
type PreferenceStore struct {
	pool *pgxpool.Pool
}

// NewPreferenceStore creates a new PreferenceStore backed by the given
// connection pool.
func NewPreferenceStore(pool *pgxpool.Pool) *PreferenceStore {
	return &PreferenceStore{pool: pool}
}

const preferenceSelectCols = `chat_id, name, budget, min_buy_confidence,
	min_sell_confidence, min_expected_profit, ticker_filter, created_at, updated_at`

func scanPreferenceRows(rows pgx.Rows) ([]domain.UserPreferences, error) {
	var prefs []domain.UserPreferences
	for rows.Next() {
		var p domain.UserPreferences
		if err := rows.Scan(
			&p.ChatID, &p.Name, &p.Budget, &p.MinBuyConfidence,
			&p.MinSellConfidence, &p.MinExpectedProfit, &p.TickerFilter,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

// Upsert inserts the subscriber's preferences, or updates them in place when
// the chat is already registered.
func (s *PreferenceStore) Upsert(ctx context.Context, prefs domain.UserPreferences) error {
	const query = `
		INSERT INTO user_preferences (
			chat_id, name, budget, min_buy_confidence,
			min_sell_confidence, min_expected_profit, ticker_filter
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (chat_id) DO UPDATE SET
			name = EXCLUDED.name,
			budget = EXCLUDED.budget,
			min_buy_confidence = EXCLUDED.min_buy_confidence,
			min_sell_confidence = EXCLUDED.min_sell_confidence,
			min_expected_profit = EXCLUDED.min_expected_profit,
			ticker_filter = EXCLUDED.ticker_filter,
			updated_at = NOW()`

	_, err := s.pool.Exec(ctx, query,
		prefs.ChatID, prefs.Name, prefs.Budget, prefs.MinBuyConfidence,
		prefs.MinSellConfidence, prefs.MinExpectedProfit, prefs.TickerFilter,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert preferences for chat %d: %w", prefs.ChatID, err)
	}
	return nil
}

// GetByChatID returns one subscriber's preferences.
func (s *PreferenceStore) GetByChatID(ctx context.Context, chatID int64) (domain.UserPreferences, error) {
	query := `SELECT ` + preferenceSelectCols + ` FROM user_preferences WHERE chat_id = $1`

	var p domain.UserPreferences
	err := s.pool.QueryRow(ctx, query, chatID).Scan(
		&p.ChatID, &p.Name, &p.Budget, &p.MinBuyConfidence,
		&p.MinSellConfidence, &p.MinExpectedProfit, &p.TickerFilter,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserPreferences{}, fmt.Errorf("postgres: %w: chat %d", domain.ErrNotFound, chatID)
	}
	if err != nil {
		return domain.UserPreferences{}, fmt.Errorf("postgres: get preferences for chat %d: %w", chatID, err)
	}
	return p, nil
}

// List returns every subscriber's preferences, oldest registration first.
func (s *PreferenceStore) List(ctx context.Context) ([]domain.UserPreferences, error) {
	query := `SELECT ` + preferenceSelectCols + ` FROM user_preferences ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list preferences: %w", err)
	}
	defer rows.Close()

	prefs, err := scanPreferenceRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan preferences: %w", err)
	}
	return prefs, nil
}

// Delete removes a subscriber.
func (s *PreferenceStore) Delete(ctx context.Context, chatID int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM user_preferences WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("postgres: delete preferences for chat %d: %w", chatID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: %w: chat %d", domain.ErrNotFound, chatID)
	}
	return nil
}
