package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Cheertaboi/tips-console/internal/models"
)

// EntityRepo reads the collections the console only searches and exports.
type EntityRepo struct {
	db *sql.DB
}

func NewEntityRepo(db *sql.DB) *EntityRepo {
	return &EntityRepo{db: db}
}

// list runs query and scans every row with scan.
func list[T any](ctx context.Context, db *sql.DB, entity, query string, scan func(*sql.Rows, *T) error) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", entity, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var v T
		if err := scan(rows, &v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", entity, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *EntityRepo) ListAccounts(ctx context.Context) ([]models.Account, error) {
	query := `
		SELECT id, name, email, phone, plan, status, created_at
		FROM accounts
		ORDER BY created_at DESC, id
	`
	return list(ctx, r.db, "accounts", query, func(rows *sql.Rows, a *models.Account) error {
		return rows.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Plan, &a.Status, &a.CreatedAt)
	})
}

func (r *EntityRepo) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	query := `
		SELECT id, account_id, account_name, reference, amount, currency, method, status, created_at
		FROM transactions
		ORDER BY created_at DESC, id
	`
	return list(ctx, r.db, "transactions", query, func(rows *sql.Rows, t *models.Transaction) error {
		return rows.Scan(&t.ID, &t.AccountID, &t.AccountName, &t.Reference, &t.Amount,
			&t.Currency, &t.Method, &t.Status, &t.CreatedAt)
	})
}

func (r *EntityRepo) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	query := `
		SELECT id, account_id, requester, subject, category, priority, status, created_at
		FROM tickets
		ORDER BY created_at DESC, id
	`
	return list(ctx, r.db, "tickets", query, func(rows *sql.Rows, t *models.Ticket) error {
		return rows.Scan(&t.ID, &t.AccountID, &t.Requester, &t.Subject, &t.Category,
			&t.Priority, &t.Status, &t.CreatedAt)
	})
}

func (r *EntityRepo) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	query := `
		SELECT id, title, body, channel, audience, status, created_at
		FROM notifications
		ORDER BY created_at DESC, id
	`
	return list(ctx, r.db, "notifications", query, func(rows *sql.Rows, n *models.Notification) error {
		return rows.Scan(&n.ID, &n.Title, &n.Body, &n.Channel, &n.Audience, &n.Status, &n.CreatedAt)
	})
}
