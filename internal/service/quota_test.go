package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/Cheertaboi/tips-console/internal/errors"
	"github.com/Cheertaboi/tips-console/internal/models"
	"github.com/Cheertaboi/tips-console/internal/sink"
)

func newQuota(t *testing.T, tips []models.Tip) (*QuotaManager, *recordingPublisher) {
	t.Helper()
	st := newStore(t, staticSource{tips: tips})
	pub := &recordingPublisher{}
	m := NewQuotaManager(st, QuotaConfig{}, pub, nil, WithClock(func() time.Time { return testNow }))
	return m, pub
}

func freeCount(tips []models.Tip) int {
	return countFree(tips, testToday)
}

func TestQuotaManager_SevenTipsTwoFree(t *testing.T) {
	tips := make([]models.Tip, 0, 7)
	for i := 1; i <= 7; i++ {
		tips = append(tips, catalogTip(i, testToday, i <= 2))
	}
	m, pub := newQuota(t, tips)
	ctx := context.Background()

	got, err := m.SetFree(ctx, "tip-3", true)
	require.NoError(t, err)
	assert.True(t, got.IsFree)
	assert.Equal(t, testNow, got.UpdatedAt)

	_, err = m.SetFree(ctx, "tip-4", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrQuotaExceeded)

	tip4, ok := m.store.Tip("tip-4")
	require.True(t, ok)
	assert.False(t, tip4.IsFree)
	assert.Equal(t, 3, freeCount(m.store.Tips()))

	muts := pub.all()
	require.Len(t, muts, 1)
	assert.Equal(t, sink.KindTipFlag, muts[0].Kind)
	assert.Equal(t, "tip-3", muts[0].Tip.ID)

	// releasing a unit makes room again
	_, err = m.SetFree(ctx, "tip-1", false)
	require.NoError(t, err)
	_, err = m.SetFree(ctx, "tip-4", true)
	require.NoError(t, err)
	assert.Equal(t, 3, freeCount(m.store.Tips()))
}

func TestQuotaManager_TodayOnly(t *testing.T) {
	m, pub := newQuota(t, []models.Tip{
		catalogTip(1, "2026-10-17", false),
		catalogTip(2, "2026-10-19", false),
	})

	for _, free := range []bool{true, false} {
		_, err := m.SetFree(context.Background(), "tip-1", free)
		assert.ErrorIs(t, err, domainerrors.ErrTodayOnly)
	}
	_, err := m.SetFree(context.Background(), "tip-2", true)
	assert.ErrorIs(t, err, domainerrors.ErrTodayOnly)

	assert.Empty(t, pub.all())
	_, ok := m.LastMutatedAt()
	assert.False(t, ok)
}

func TestQuotaManager_TodayOnlyBeforeQuota(t *testing.T) {
	tips := []models.Tip{
		catalogTip(1, testToday, true),
		catalogTip(2, testToday, true),
		catalogTip(3, testToday, true),
		catalogTip(4, "2026-10-17", false),
	}
	m, _ := newQuota(t, tips)

	_, err := m.SetFree(context.Background(), "tip-4", true)
	assert.ErrorIs(t, err, domainerrors.ErrTodayOnly)
}

func TestQuotaManager_NotFoundAndNoop(t *testing.T) {
	m, pub := newQuota(t, []models.Tip{catalogTip(1, testToday, true)})

	_, err := m.SetFree(context.Background(), "missing", true)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	got, err := m.SetFree(context.Background(), "tip-1", true)
	require.NoError(t, err)
	assert.True(t, got.IsFree)
	assert.Empty(t, pub.all())
}

func TestQuotaManager_Usage(t *testing.T) {
	m, _ := newQuota(t, []models.Tip{
		catalogTip(1, testToday, true),
		catalogTip(2, testToday, false),
	})

	u := m.Usage()
	assert.Equal(t, testToday, u.Date)
	assert.Equal(t, 1, u.Used)
	assert.Equal(t, 3, u.Capacity)
	assert.Equal(t, 2, u.Remaining)
	assert.Nil(t, u.LastMutatedAt)

	_, err := m.SetFree(context.Background(), "tip-2", true)
	require.NoError(t, err)

	u = m.Usage()
	assert.Equal(t, 2, u.Used)
	require.NotNil(t, u.LastMutatedAt)
	assert.Equal(t, testNow, *u.LastMutatedAt)
}

func TestQuotaManager_ConfiguredLocationAndCapacity(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	st := newStore(t, staticSource{tips: []models.Tip{
		catalogTip(1, "2026-10-19", false),
		catalogTip(2, "2026-10-19", false),
	}})
	m := NewQuotaManager(st, QuotaConfig{Capacity: 1, Location: loc}, nil, nil,
		WithClock(func() time.Time { return testNow }))

	assert.Equal(t, "2026-10-19", m.Today())
	_, err := m.SetFree(context.Background(), "tip-1", true)
	require.NoError(t, err)
	_, err = m.SetFree(context.Background(), "tip-2", true)
	assert.ErrorIs(t, err, domainerrors.ErrQuotaExceeded)
}

func TestQuotaManager_ConcurrentPublishRespectsCapacity(t *testing.T) {
	tips := make([]models.Tip, 0, 20)
	for i := 1; i <= 20; i++ {
		tips = append(tips, catalogTip(i, testToday, false))
	}
	m, _ := newQuota(t, tips)

	var ok atomic.Int32
	var wg sync.WaitGroup
	for _, tp := range tips {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := m.SetFree(context.Background(), id, true); err == nil {
				ok.Add(1)
			} else {
				assert.ErrorIs(t, err, domainerrors.ErrQuotaExceeded)
			}
		}(tp.ID)
	}
	wg.Wait()

	assert.Equal(t, int32(3), ok.Load())
	assert.Equal(t, 3, freeCount(m.store.Tips()))
}

func TestQuotaManager_Reconcile(t *testing.T) {
	tips := []models.Tip{
		catalogTip(1, "2026-10-17", true),
		catalogTip(2, testToday, true),
		catalogTip(3, testToday, true),
		catalogTip(4, testToday, false),
		catalogTip(5, testToday, true),
		catalogTip(6, testToday, true),
	}
	m, pub := newQuota(t, tips)

	n, err := m.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	after := m.store.Tips()
	for _, tp := range after {
		if tp.IsFree {
			assert.Equal(t, testToday, tp.Date)
		}
	}
	assert.Equal(t, 3, freeCount(after))
	assert.True(t, after[1].IsFree)
	assert.True(t, after[2].IsFree)
	assert.True(t, after[4].IsFree)
	assert.False(t, after[5].IsFree)
	assert.Len(t, pub.all(), 2)

	version := m.store.Version()
	n, err = m.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, version, m.store.Version())
}

func TestQuotaManager_CancelledContext(t *testing.T) {
	m, _ := newQuota(t, []models.Tip{catalogTip(1, testToday, false)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.SetFree(ctx, "tip-1", true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQuotaManager_MutationsFollowCommitOrder(t *testing.T) {
	tips := []models.Tip{catalogTip(1, testToday, false)}
	st := newStore(t, staticSource{tips: tips})
	pub := &recordingPublisher{}

	var tick atomic.Int64
	clock := func() time.Time { return testNow.Add(time.Duration(tick.Add(1)) * time.Millisecond) }
	m := NewQuotaManager(st, QuotaConfig{}, pub, nil, WithClock(clock))

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(free bool) {
			defer wg.Done()
			_, err := m.SetFree(context.Background(), "tip-1", free)
			assert.NoError(t, err)
		}(i%2 == 0)
	}
	wg.Wait()

	muts := pub.all()
	require.NotEmpty(t, muts)
	for i := 1; i < len(muts); i++ {
		assert.True(t, muts[i].Tip.UpdatedAt.After(muts[i-1].Tip.UpdatedAt), "mutation %d", i)
		assert.NotEqual(t, muts[i-1].Tip.IsFree, muts[i].Tip.IsFree, "mutation %d", i)
	}

	final, ok := st.Tip("tip-1")
	require.True(t, ok)
	last := muts[len(muts)-1]
	assert.Equal(t, final.IsFree, last.Tip.IsFree)
	assert.Equal(t, final.UpdatedAt, last.Tip.UpdatedAt)
}
