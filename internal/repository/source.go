package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Cheertaboi/tips-console/internal/models"
	"github.com/Cheertaboi/tips-console/internal/sink"
)

// Source loads the console collections from Postgres.
type Source struct {
	tips     *TipRepo
	packages *PackageRepo
	entities *EntityRepo
}

func NewSource(db *sql.DB) *Source {
	return &Source{
		tips:     NewTipRepo(db),
		packages: NewPackageRepo(db),
		entities: NewEntityRepo(db),
	}
}

func (s *Source) Tips(ctx context.Context) ([]models.Tip, error) {
	return s.tips.ListTips(ctx)
}

func (s *Source) Packages(ctx context.Context) ([]models.Package, error) {
	return s.packages.ListPackages(ctx)
}

func (s *Source) Accounts(ctx context.Context) ([]models.Account, error) {
	return s.entities.ListAccounts(ctx)
}

func (s *Source) Transactions(ctx context.Context) ([]models.Transaction, error) {
	return s.entities.ListTransactions(ctx)
}

func (s *Source) Tickets(ctx context.Context) ([]models.Ticket, error) {
	return s.entities.ListTickets(ctx)
}

func (s *Source) Notifications(ctx context.Context) ([]models.Notification, error) {
	return s.entities.ListNotifications(ctx)
}

// Sink writes committed console mutations back to Postgres.
type Sink struct {
	tips     *TipRepo
	packages *PackageRepo
	capacity int
}

// NewSink returns a sink that enforces capacity free tips per day when it
// stores a flag change.
func NewSink(db *sql.DB, capacity int) *Sink {
	return &Sink{
		tips:     NewTipRepo(db),
		packages: NewPackageRepo(db),
		capacity: capacity,
	}
}

func (s *Sink) Persist(ctx context.Context, m sink.Mutation) error {
	switch m.Kind {
	case sink.KindTipFlag:
		if m.Tip == nil {
			return fmt.Errorf("mutation %s: tip missing", m.ID)
		}
		return s.tips.SetFree(ctx, *m.Tip, s.capacity)
	case sink.KindPackageTips:
		if m.Package == nil {
			return fmt.Errorf("mutation %s: package missing", m.ID)
		}
		return s.packages.ReplacePackageTips(ctx, *m.Package)
	default:
		return fmt.Errorf("mutation %s: unknown kind %q", m.ID, m.Kind)
	}
}
