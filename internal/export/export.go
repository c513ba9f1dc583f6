// Package export renders filtered collections as flat CSV documents: one
// header row, then one row per record, in a fixed column order per entity.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Cheertaboi/tips-console/internal/models"
)

// Table fixes the columns of one entity.
type Table[T any] struct {
	Name   string
	Header []string
	Row    func(T) []string
}

// WriteCSV writes the header and one row per record. Values containing the
// delimiter, quotes or newlines are quoted by encoding/csv.
func WriteCSV[T any](w io.Writer, table Table[T], records []T) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Header); err != nil {
		return fmt.Errorf("export %s: header: %w", table.Name, err)
	}
	for i, rec := range records {
		row := table.Row(rec)
		if len(row) != len(table.Header) {
			return fmt.Errorf("export %s: row %d has %d columns, want %d", table.Name, i, len(row), len(table.Header))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export %s: row %d: %w", table.Name, i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename is the download name for an export taken at t.
func Filename(entity string, t time.Time) string {
	return entity + "-" + t.UTC().Format("20060102-150405") + ".csv"
}

func ts(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

var Tips = Table[models.Tip]{
	Name:   "tips",
	Header: []string{"ID", "Date", "Match", "League", "Prediction", "Odds", "Risk", "Status", "Free"},
	Row: func(t models.Tip) []string {
		return []string{t.ID, t.Date, t.Match, t.League, t.Prediction, t.Odds.StringFixed(2),
			string(t.Risk), string(t.Status), strconv.FormatBool(t.IsFree)}
	},
}

var Packages = Table[models.Package]{
	Name:   "packages",
	Header: []string{"ID", "Name", "Description", "Price", "Status", "Tips", "Updated"},
	Row: func(p models.Package) []string {
		return []string{p.ID, p.Name, p.Description, p.Price.StringFixed(2), string(p.Status),
			strconv.Itoa(p.TipCount), ts(p.UpdatedAt)}
	},
}

var Accounts = Table[models.Account]{
	Name:   "accounts",
	Header: []string{"ID", "Name", "Email", "Phone", "Plan", "Status", "Created"},
	Row: func(a models.Account) []string {
		return []string{a.ID, a.Name, a.Email, a.Phone, a.Plan, a.Status, ts(a.CreatedAt)}
	},
}

var Transactions = Table[models.Transaction]{
	Name:   "transactions",
	Header: []string{"ID", "Reference", "Account", "Amount", "Currency", "Method", "Status", "Created"},
	Row: func(t models.Transaction) []string {
		return []string{t.ID, t.Reference, t.AccountName, t.Amount.StringFixed(2), t.Currency,
			t.Method, t.Status, ts(t.CreatedAt)}
	},
}

var Tickets = Table[models.Ticket]{
	Name:   "tickets",
	Header: []string{"ID", "Subject", "Requester", "Category", "Priority", "Status", "Created"},
	Row: func(t models.Ticket) []string {
		return []string{t.ID, t.Subject, t.Requester, t.Category, t.Priority, t.Status, ts(t.CreatedAt)}
	},
}

var Notifications = Table[models.Notification]{
	Name:   "notifications",
	Header: []string{"ID", "Title", "Body", "Channel", "Audience", "Status", "Created"},
	Row: func(n models.Notification) []string {
		return []string{n.ID, n.Title, n.Body, n.Channel, n.Audience, n.Status, ts(n.CreatedAt)}
	},
}
