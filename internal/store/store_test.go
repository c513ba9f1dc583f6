package store

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/Cheertaboi/tips-console/internal/errors"
	"github.com/Cheertaboi/tips-console/internal/models"
)

type staticSource struct {
	tips     []models.Tip
	packages []models.Package
	accounts []models.Account
	err      error
}

func (s staticSource) Tips(context.Context) ([]models.Tip, error) { return s.tips, nil }
func (s staticSource) Packages(context.Context) ([]models.Package, error) {
	return s.packages, nil
}
func (s staticSource) Accounts(context.Context) ([]models.Account, error) {
	return s.accounts, s.err
}
func (s staticSource) Transactions(context.Context) ([]models.Transaction, error) {
	return nil, nil
}
func (s staticSource) Tickets(context.Context) ([]models.Ticket, error) { return nil, nil }
func (s staticSource) Notifications(context.Context) ([]models.Notification, error) {
	return nil, nil
}

func TestStore_LoadComputesTipCount(t *testing.T) {
	s := New()
	src := staticSource{
		tips: []models.Tip{{ID: "t1"}, {ID: "t2"}},
		packages: []models.Package{
			{ID: "p1", Tips: []models.Tip{{ID: "c1"}, {ID: "c2"}}},
		},
		accounts: []models.Account{{ID: "a1"}},
	}

	require.NoError(t, s.Load(context.Background(), src))

	assert.Len(t, s.Tips(), 2)
	assert.Len(t, s.Accounts(), 1)
	p, ok := s.Package("p1")
	require.True(t, ok)
	assert.Equal(t, 2, p.TipCount)
	assert.Equal(t, uint64(1), s.Version())
}

func TestStore_LoadFailureKeepsCollections(t *testing.T) {
	s := New()
	s.ReplaceTips([]models.Tip{{ID: "keep"}})

	err := s.Load(context.Background(), staticSource{tips: []models.Tip{{ID: "new"}}, err: stderrors.New("boom")})
	require.Error(t, err)

	tips := s.Tips()
	require.Len(t, tips, 1)
	assert.Equal(t, "keep", tips[0].ID)
}

func TestStore_ReadsReturnCopies(t *testing.T) {
	s := New()
	s.ReplaceTips([]models.Tip{{ID: "t1", Prediction: "Over 2.5"}})
	s.ReplacePackages([]models.Package{{ID: "p1", Tips: []models.Tip{{ID: "c1", Prediction: "BTTS"}}}})

	tips := s.Tips()
	tips[0].Prediction = "changed"
	p, _ := s.Package("p1")
	p.Tips[0].Prediction = "changed"

	got, _ := s.Tip("t1")
	assert.Equal(t, "Over 2.5", got.Prediction)
	p2, _ := s.Package("p1")
	assert.Equal(t, "BTTS", p2.Tips[0].Prediction)
}

func TestStore_UpdateTipsIsAllOrNothing(t *testing.T) {
	s := New()
	s.ReplaceTips([]models.Tip{{ID: "t1"}, {ID: "t2"}})
	v := s.Version()

	err := s.UpdateTips(func(tips []models.Tip) error {
		tips[0].IsFree = true
		return domainerrors.ErrQuotaExceeded
	})
	require.ErrorIs(t, err, domainerrors.ErrQuotaExceeded)
	got, _ := s.Tip("t1")
	assert.False(t, got.IsFree)
	assert.Equal(t, v, s.Version())

	require.NoError(t, s.UpdateTips(func(tips []models.Tip) error {
		tips[1].IsFree = true
		return nil
	}))
	got, _ = s.Tip("t2")
	assert.True(t, got.IsFree)
	assert.Greater(t, s.Version(), v)
}

func TestStore_UpdatePackage(t *testing.T) {
	s := New()
	s.ReplacePackages([]models.Package{{ID: "p1", Name: "Weekend Acca"}})

	updated, err := s.UpdatePackage("p1", func(p *models.Package) error {
		p.Name = "Weekend Special"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Weekend Special", updated.Name)

	_, err = s.UpdatePackage("p1", func(p *models.Package) error {
		p.Name = "rejected"
		return domainerrors.ErrConflict
	})
	require.Error(t, err)
	p, _ := s.Package("p1")
	assert.Equal(t, "Weekend Special", p.Name)

	_, err = s.UpdatePackage("missing", func(*models.Package) error { return nil })
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
