package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/tips-console/internal/cache"
	domainerrors "github.com/Cheertaboi/tips-console/internal/errors"
	"github.com/Cheertaboi/tips-console/internal/models"
	"github.com/Cheertaboi/tips-console/internal/pagination"
	"github.com/Cheertaboi/tips-console/internal/query"
)

func newTipLister(t *testing.T, tips []models.Tip) (*Lister[models.Tip], *int, func([]models.Tip)) {
	t.Helper()
	st := newStore(t, staticSource{tips: tips})
	fetches := 0
	fetch := func() []models.Tip {
		fetches++
		return st.Tips()
	}
	l := NewLister(query.NewEngine(query.TipSpec, nil), fetch, st.Version,
		cache.NewQueryCache(16), pagination.MustNew(pagination.DefaultConfig()), ListerConfig{MaxPageSize: 50})
	return l, &fetches, st.ReplaceTips
}

func manyTips(n int) []models.Tip {
	tips := make([]models.Tip, 0, n)
	for i := 1; i <= n; i++ {
		tp := catalogTip(i, testToday, false)
		if i%2 == 0 {
			tp.Risk = models.RiskHigh
		}
		tips = append(tips, tp)
	}
	return tips
}

func TestLister_List(t *testing.T) {
	l, _, _ := newTipLister(t, manyTips(120))

	q := query.New().WithFilter("risk", "high").WithPage(4)
	res, err := l.List(q)
	require.NoError(t, err)

	assert.Equal(t, 60, res.TotalItems)
	assert.Equal(t, 6, res.TotalPages)
	assert.Equal(t, 4, res.Page.Page)
	require.Len(t, res.Items, 10)
	assert.Equal(t, "tip-62", res.Items[0].ID)
	assert.Len(t, res.Window, 6)
}

func TestLister_ClampsPage(t *testing.T) {
	l, _, _ := newTipLister(t, manyTips(25))

	res, err := l.List(query.New().WithPage(99))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page.Page)
	assert.Len(t, res.Items, 5)

	res, err = l.List(query.New().WithSearch("no such team"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page.Page)
	assert.Empty(t, res.Items)
	assert.Empty(t, res.Window)
}

func TestLister_RejectsBadQueries(t *testing.T) {
	l, _, _ := newTipLister(t, manyTips(5))

	_, err := l.List(query.New().WithFilter("colour", "red"))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = l.List(query.New().WithPageSize(51))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = l.Filtered(query.New().WithFilter("colour", "red"))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestLister_MemoizesUntilStoreChanges(t *testing.T) {
	l, fetches, replace := newTipLister(t, manyTips(30))
	q := query.New().WithFilter("risk", "high")

	_, err := l.List(q)
	require.NoError(t, err)
	_, err = l.List(q.WithPage(2))
	require.NoError(t, err)
	assert.Equal(t, 1, *fetches, "paging reuses the filtered view")

	replace(manyTips(10))
	res, err := l.List(q)
	require.NoError(t, err)
	assert.Equal(t, 2, *fetches)
	assert.Equal(t, 5, res.TotalItems)
}

func TestLister_FilteredIsACopy(t *testing.T) {
	l, _, _ := newTipLister(t, manyTips(4))

	items, err := l.Filtered(query.New())
	require.NoError(t, err)
	require.Len(t, items, 4)
	items[0].Match = "changed"

	again, err := l.Filtered(query.New())
	require.NoError(t, err)
	assert.NotEqual(t, "changed", again[0].Match)
}

func TestLister_Find(t *testing.T) {
	l, _, _ := newTipLister(t, manyTips(3))

	tp, err := l.Find("tip-2")
	require.NoError(t, err)
	assert.Equal(t, "m-2", tp.MatchID)

	_, err = l.Find("tip-9")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.Equal(t, "tips", l.Name())
	assert.Equal(t, []string{"date", "free", "league", "risk", "status"}, l.Dimensions())
}
