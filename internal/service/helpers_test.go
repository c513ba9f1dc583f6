package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/tips-console/internal/models"
	"github.com/Cheertaboi/tips-console/internal/sink"
	"github.com/Cheertaboi/tips-console/internal/store"
)

var testNow = time.Date(2026, 10, 18, 14, 30, 0, 0, time.UTC)

const testToday = "2026-10-18"

type recordingPublisher struct {
	mu        sync.Mutex
	mutations []sink.Mutation
	reject    bool
}

func (p *recordingPublisher) Submit(m sink.Mutation) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reject {
		return false
	}
	p.mutations = append(p.mutations, m)
	return true
}

func (p *recordingPublisher) all() []sink.Mutation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]sink.Mutation(nil), p.mutations...)
}

type staticSource struct {
	tips     []models.Tip
	packages []models.Package
	accounts []models.Account
}

func (s staticSource) Tips(context.Context) ([]models.Tip, error) { return s.tips, nil }

func (s staticSource) Packages(context.Context) ([]models.Package, error) { return s.packages, nil }

func (s staticSource) Accounts(context.Context) ([]models.Account, error) { return s.accounts, nil }

func (staticSource) Transactions(context.Context) ([]models.Transaction, error) { return nil, nil }

func (staticSource) Tickets(context.Context) ([]models.Ticket, error) { return nil, nil }

func (staticSource) Notifications(context.Context) ([]models.Notification, error) { return nil, nil }

func newStore(t *testing.T, src staticSource) *store.Store {
	t.Helper()
	st := store.New()
	require.NoError(t, st.Load(context.Background(), src))
	return st
}

func catalogTip(n int, date string, free bool) models.Tip {
	return models.Tip{
		ID:         fmt.Sprintf("tip-%d", n),
		MatchID:    fmt.Sprintf("m-%d", n),
		Match:      fmt.Sprintf("Team %d vs Team %d", 2*n, 2*n+1),
		League:     "Premier League",
		Prediction: "Home win",
		Odds:       decimal.RequireFromString("1.90"),
		Risk:       models.RiskMid,
		Status:     models.OutcomePending,
		IsFree:     free,
		Date:       date,
	}
}

func seqTipIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("copy-%d", n)
	}
}
