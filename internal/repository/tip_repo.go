package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domainerrors "github.com/Cheertaboi/tips-console/internal/errors"
	"github.com/Cheertaboi/tips-console/internal/models"
)

type TipRepo struct {
	db *sql.DB
}

func NewTipRepo(db *sql.DB) *TipRepo {
	return &TipRepo{db: db}
}

func (r *TipRepo) ListTips(ctx context.Context) ([]models.Tip, error) {
	query := `
		SELECT id, match_id, match_name, league, prediction, odds,
		       risk, status, is_free, tip_date, updated_at
		FROM tips
		ORDER BY tip_date DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tips: %w", err)
	}
	defer rows.Close()

	tips := []models.Tip{}
	for rows.Next() {
		var t models.Tip
		if err := rows.Scan(
			&t.ID,
			&t.MatchID,
			&t.Match,
			&t.League,
			&t.Prediction,
			&t.Odds,
			&t.Risk,
			&t.Status,
			&t.IsFree,
			&t.Date,
			&t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan tip: %w", err)
		}
		tips = append(tips, t)
	}
	return tips, rows.Err()
}

// Lock today's free rows and count them.
func (r *TipRepo) lockFree(ctx context.Context, tx *sql.Tx, date string) (int, error) {
	query := `
		SELECT id
		FROM tips
		WHERE tip_date = $1 AND is_free
		FOR UPDATE
	`

	rows, err := tx.QueryContext(ctx, query, date)
	if err != nil {
		return 0, fmt.Errorf("lock free tips: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
	}
	return n, rows.Err()
}

// SetFree writes the free flag of t inside a serializable transaction. When
// t becomes free, the daily quota is checked again against the rows already
// free for t.Date, so concurrent writers (another console instance) cannot
// push the table past capacity. A write whose UpdatedAt is not newer than the
// stored row is stale and ignored, so flips delivered out of order never
// leave an older flag behind.
func (r *TipRepo) SetFree(ctx context.Context, t models.Tip, capacity int) error {
	updatedAt := t.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			current bool
			stored  time.Time
		)
		err := tx.QueryRowContext(ctx, `SELECT is_free, updated_at FROM tips WHERE id = $1 FOR UPDATE`, t.ID).Scan(&current, &stored)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domainerrors.NotFoundf("tip %s not found", t.ID)
			}
			return fmt.Errorf("get lock: %w", err)
		}
		if !updatedAt.After(stored) {
			return nil
		}

		if t.IsFree && !current {
			used, err := r.lockFree(ctx, tx, t.Date)
			if err != nil {
				return err
			}
			if used >= capacity {
				return domainerrors.QuotaExceededf("%d of %d free tips already stored for %s", used, capacity, t.Date)
			}
		}

		// also stamps no-op writes, which then fence off older ones
		query := `
			UPDATE tips
			SET is_free = $2,
			    updated_at = $3
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, query, t.ID, t.IsFree, updatedAt); err != nil {
			return fmt.Errorf("update free flag: %w", err)
		}
		return nil
	})
}

// UpsertTips inserts or replaces catalog tips. Used to seed a database.
func (r *TipRepo) UpsertTips(ctx context.Context, tips []models.Tip) error {
	query := `
		INSERT INTO tips (id, match_id, match_name, league, prediction, odds,
		                  risk, status, is_free, tip_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET match_id = EXCLUDED.match_id,
		    match_name = EXCLUDED.match_name,
		    league = EXCLUDED.league,
		    prediction = EXCLUDED.prediction,
		    odds = EXCLUDED.odds,
		    risk = EXCLUDED.risk,
		    status = EXCLUDED.status,
		    is_free = EXCLUDED.is_free,
		    tip_date = EXCLUDED.tip_date,
		    updated_at = EXCLUDED.updated_at
	`
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, t := range tips {
			updatedAt := t.UpdatedAt
			if updatedAt.IsZero() {
				updatedAt = time.Now().UTC()
			}
			if _, err := tx.ExecContext(ctx, query,
				t.ID, t.MatchID, t.Match, t.League, t.Prediction, t.Odds,
				t.Risk, t.Status, t.IsFree, t.Date, updatedAt,
			); err != nil {
				return fmt.Errorf("upsert tip %s: %w", t.ID, err)
			}
		}
		return nil
	})
}
