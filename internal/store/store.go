// Package store holds the authoritative in-memory collections the console
// works on. Readers get copies; writers go through the Update* entry points,
// each of which runs under one write lock and commits only when its callback
// succeeds.
package store

import (
	"context"
	"fmt"
	"sync"

	domainerrors "github.com/Cheertaboi/tips-console/internal/errors"
	"github.com/Cheertaboi/tips-console/internal/models"
)

// Source supplies the initial collections.
type Source interface {
	Tips(ctx context.Context) ([]models.Tip, error)
	Packages(ctx context.Context) ([]models.Package, error)
	Accounts(ctx context.Context) ([]models.Account, error)
	Transactions(ctx context.Context) ([]models.Transaction, error)
	Tickets(ctx context.Context) ([]models.Ticket, error)
	Notifications(ctx context.Context) ([]models.Notification, error)
}

type Store struct {
	mu            sync.RWMutex
	version       uint64
	tips          []models.Tip
	packages      []models.Package
	accounts      []models.Account
	transactions  []models.Transaction
	tickets       []models.Ticket
	notifications []models.Notification
}

func New() *Store {
	return &Store{}
}

// Load replaces every collection with what src returns. Nothing is replaced
// if any collection fails to load.
func (s *Store) Load(ctx context.Context, src Source) error {
	tips, err := src.Tips(ctx)
	if err != nil {
		return fmt.Errorf("load tips: %w", err)
	}
	packages, err := src.Packages(ctx)
	if err != nil {
		return fmt.Errorf("load packages: %w", err)
	}
	accounts, err := src.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	transactions, err := src.Transactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	tickets, err := src.Tickets(ctx)
	if err != nil {
		return fmt.Errorf("load tickets: %w", err)
	}
	notifications, err := src.Notifications(ctx)
	if err != nil {
		return fmt.Errorf("load notifications: %w", err)
	}

	for i := range packages {
		packages[i].TipCount = len(packages[i].Tips)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tips = models.CloneTips(tips)
	s.packages = models.ClonePackages(packages)
	s.accounts = append([]models.Account(nil), accounts...)
	s.transactions = append([]models.Transaction(nil), transactions...)
	s.tickets = append([]models.Ticket(nil), tickets...)
	s.notifications = append([]models.Notification(nil), notifications...)
	s.version++
	return nil
}

// Version changes whenever any collection changes.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) Tips() []models.Tip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneTips(s.tips)
}

func (s *Store) Tip(id string) (models.Tip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tips {
		if t.ID == id {
			return t, true
		}
	}
	return models.Tip{}, false
}

func (s *Store) ReplaceTips(tips []models.Tip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tips = models.CloneTips(tips)
	s.version++
}

// UpdateTips runs fn on a working copy of the tip collection while holding
// the write lock. The copy replaces the collection only if fn returns nil, so
// a rejected update leaves nothing behind.
func (s *Store) UpdateTips(fn func(tips []models.Tip) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := models.CloneTips(s.tips)
	if err := fn(working); err != nil {
		return err
	}
	s.tips = working
	s.version++
	return nil
}

func (s *Store) Packages() []models.Package {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.ClonePackages(s.packages)
}

func (s *Store) Package(id string) (models.Package, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.packages {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return models.Package{}, false
}

func (s *Store) ReplacePackages(pkgs []models.Package) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages = models.ClonePackages(pkgs)
	s.version++
}

// UpdatePackage runs fn on a copy of package id under the write lock and
// stores the copy if fn returns nil.
func (s *Store) UpdatePackage(id string, fn func(p *models.Package) error) (models.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.packages {
		if s.packages[i].ID != id {
			continue
		}
		working := s.packages[i].Clone()
		if err := fn(&working); err != nil {
			return models.Package{}, err
		}
		s.packages[i] = working
		s.version++
		return working.Clone(), nil
	}
	return models.Package{}, domainerrors.NotFoundf("package %s not found", id)
}

func (s *Store) Accounts() []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Account(nil), s.accounts...)
}

func (s *Store) Transactions() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Transaction(nil), s.transactions...)
}

func (s *Store) Tickets() []models.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Ticket(nil), s.tickets...)
}

func (s *Store) Notifications() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Notification(nil), s.notifications...)
}
