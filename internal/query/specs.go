package query

import (
	"strconv"

	domainerrors "github.com/Cheertaboi/tips-console/internal/errors"
	"github.com/Cheertaboi/tips-console/internal/models"
)

type field struct{ name, value string }

func requireFields(entity, id string, fields ...field) error {
	if id == "" {
		return domainerrors.Integrityf("%s record without id", entity)
	}
	for _, f := range fields {
		if f.value == "" {
			return domainerrors.Integrityf("%s %s: missing %s", entity, id, f.name)
		}
	}
	return nil
}

var TipSpec = Spec[models.Tip]{
	Name: "tips",
	Key:  func(t models.Tip) string { return t.ID },
	SearchFields: func(t models.Tip) []string {
		return []string{t.Match, t.League, t.Prediction}
	},
	Dimensions: map[string]func(models.Tip) string{
		"risk":   func(t models.Tip) string { return string(t.Risk) },
		"status": func(t models.Tip) string { return string(t.Status) },
		"free":   func(t models.Tip) string { return strconv.FormatBool(t.IsFree) },
		"date":   func(t models.Tip) string { return t.Date },
		"league": func(t models.Tip) string { return t.League },
	},
	Validate: func(t models.Tip) error {
		return requireFields("tip", t.ID,
			field{"match_id", t.MatchID},
			field{"match", t.Match},
			field{"prediction", t.Prediction},
			field{"date", t.Date},
		)
	},
}

var PackageSpec = Spec[models.Package]{
	Name: "packages",
	Key:  func(p models.Package) string { return p.ID },
	SearchFields: func(p models.Package) []string {
		return []string{p.Name, p.Description}
	},
	Dimensions: map[string]func(models.Package) string{
		"status": func(p models.Package) string { return string(p.Status) },
	},
	Validate: func(p models.Package) error {
		return requireFields("package", p.ID, field{"name", p.Name})
	},
}

var AccountSpec = Spec[models.Account]{
	Name: "accounts",
	Key:  func(a models.Account) string { return a.ID },
	SearchFields: func(a models.Account) []string {
		return []string{a.Name, a.Email, a.Phone}
	},
	Dimensions: map[string]func(models.Account) string{
		"status": func(a models.Account) string { return a.Status },
		"plan":   func(a models.Account) string { return a.Plan },
	},
	Validate: func(a models.Account) error {
		return requireFields("account", a.ID, field{"email", a.Email})
	},
}

var TransactionSpec = Spec[models.Transaction]{
	Name: "transactions",
	Key:  func(t models.Transaction) string { return t.ID },
	SearchFields: func(t models.Transaction) []string {
		return []string{t.Reference, t.AccountName, t.ID}
	},
	Dimensions: map[string]func(models.Transaction) string{
		"status": func(t models.Transaction) string { return t.Status },
		"method": func(t models.Transaction) string { return t.Method },
	},
	Validate: func(t models.Transaction) error {
		return requireFields("transaction", t.ID, field{"account_id", t.AccountID})
	},
}

var TicketSpec = Spec[models.Ticket]{
	Name: "tickets",
	Key:  func(t models.Ticket) string { return t.ID },
	SearchFields: func(t models.Ticket) []string {
		return []string{t.Subject, t.Requester, t.ID}
	},
	Dimensions: map[string]func(models.Ticket) string{
		"status":   func(t models.Ticket) string { return t.Status },
		"priority": func(t models.Ticket) string { return t.Priority },
		"category": func(t models.Ticket) string { return t.Category },
	},
	Validate: func(t models.Ticket) error {
		return requireFields("ticket", t.ID, field{"subject", t.Subject})
	},
}

var NotificationSpec = Spec[models.Notification]{
	Name: "notifications",
	Key:  func(n models.Notification) string { return n.ID },
	SearchFields: func(n models.Notification) []string {
		return []string{n.Title, n.Body}
	},
	Dimensions: map[string]func(models.Notification) string{
		"channel":  func(n models.Notification) string { return n.Channel },
		"audience": func(n models.Notification) string { return n.Audience },
		"status":   func(n models.Notification) string { return n.Status },
	},
	Validate: func(n models.Notification) error {
		return requireFields("notification", n.ID, field{"title", n.Title})
	},
}
