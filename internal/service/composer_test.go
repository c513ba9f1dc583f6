package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/tips-console/internal/composition"
	domainerrors "github.com/Cheertaboi/tips-console/internal/errors"
	"github.com/Cheertaboi/tips-console/internal/models"
	"github.com/Cheertaboi/tips-console/internal/sink"
	"github.com/Cheertaboi/tips-console/internal/store"
)

type composerFixture struct {
	composer *Composer
	store    *store.Store
	pub      *recordingPublisher
	clock    *time.Time
}

func newComposerFixture(t *testing.T) composerFixture {
	t.Helper()
	catalog := []models.Tip{
		catalogTip(1, testToday, false),
		catalogTip(2, testToday, true),
		catalogTip(3, testToday, false),
	}
	pkgTips, _, _ := composition.AddTips(nil, catalog[:1], func() string { return "entry-1" })
	st := newStore(t, staticSource{
		tips: catalog,
		packages: []models.Package{
			{ID: "pkg-1", Name: "Weekend Banker", Status: models.PackageActive, Tips: pkgTips, Revision: 1},
		},
	})
	clock := testNow
	pub := &recordingPublisher{}
	c := NewComposer(st, ComposerConfig{SessionTTL: time.Hour}, seqTipIDs(), pub, nil,
		WithComposerClock(func() time.Time { return clock }))
	return composerFixture{composer: c, store: st, pub: pub, clock: &clock}
}

func TestComposer_EditAndSave(t *testing.T) {
	f := newComposerFixture(t)
	c := f.composer

	s, err := c.Open("pkg-1")
	require.NoError(t, err)
	require.Len(t, s.Working, 1)

	s, res, err := c.AddTips(s.ID, []string{"tip-1", "tip-2", "tip-3"})
	require.NoError(t, err)
	assert.Equal(t, AddResult{Added: 2, Skipped: 1}, res)
	require.Len(t, s.Working, 3)
	assert.False(t, s.Working[1].IsFree, "copies are never free")

	_, err = c.MoveTip(s.ID, 2, composition.Up)
	require.NoError(t, err)
	_, err = c.DuplicateTip(s.ID, 0)
	require.NoError(t, err)
	s, err = c.EditField(s.ID, 1, composition.FieldOdds, "2.25")
	require.NoError(t, err)
	require.Len(t, s.Working, 4)

	committed, _ := f.store.Package("pkg-1")
	assert.Len(t, committed.Tips, 1, "edits stay in the working copy")

	pkg, err := c.Save(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, pkg.TipCount)
	assert.Equal(t, 2, pkg.Revision)
	assert.Equal(t, s.Working, pkg.Tips)

	stored, _ := f.store.Package("pkg-1")
	assert.Equal(t, pkg, stored)

	_, err = c.Session(s.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound, "save closes the session")

	muts := f.pub.all()
	require.Len(t, muts, 1)
	assert.Equal(t, sink.KindPackageTips, muts[0].Kind)
	assert.Equal(t, 4, muts[0].Package.TipCount)
}

func TestComposer_CatalogUntouched(t *testing.T) {
	f := newComposerFixture(t)
	c := f.composer
	before := f.store.Tips()

	s, err := c.Open("pkg-1")
	require.NoError(t, err)
	s, _, err = c.AddTips(s.ID, []string{"tip-3"})
	require.NoError(t, err)
	_, err = c.EditField(s.ID, 1, composition.FieldPrediction, "Away win")
	require.NoError(t, err)
	_, err = c.Save(context.Background(), s.ID)
	require.NoError(t, err)

	assert.Equal(t, before, f.store.Tips())
}

func TestComposer_CancelRestores(t *testing.T) {
	f := newComposerFixture(t)
	c := f.composer
	original, _ := f.store.Package("pkg-1")

	s, err := c.Open("pkg-1")
	require.NoError(t, err)
	_, err = c.RemoveTip(s.ID, 0)
	require.NoError(t, err)
	require.NoError(t, c.Cancel(s.ID))

	pkg, _ := f.store.Package("pkg-1")
	assert.Equal(t, original, pkg)

	next, err := c.Open("pkg-1")
	require.NoError(t, err)
	assert.Equal(t, original.Tips, next.Working)

	assert.ErrorIs(t, c.Cancel(s.ID), domainerrors.ErrNotFound)
	assert.Empty(t, f.pub.all())
}

func TestComposer_StaleSaveConflicts(t *testing.T) {
	f := newComposerFixture(t)
	c := f.composer

	a, err := c.Open("pkg-1")
	require.NoError(t, err)
	b, err := c.Open("pkg-1")
	require.NoError(t, err)

	_, _, err = c.AddTips(a.ID, []string{"tip-2"})
	require.NoError(t, err)
	_, _, err = c.AddTips(b.ID, []string{"tip-3"})
	require.NoError(t, err)

	saved, err := c.Save(context.Background(), a.ID)
	require.NoError(t, err)

	_, err = c.Save(context.Background(), b.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	pkg, _ := f.store.Package("pkg-1")
	assert.Equal(t, saved, pkg)

	// the rejected session stays open so it can be cancelled or inspected
	_, err = c.Session(b.ID)
	assert.NoError(t, err)
}

func TestComposer_Errors(t *testing.T) {
	f := newComposerFixture(t)
	c := f.composer

	_, err := c.Open("missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	s, err := c.Open("pkg-1")
	require.NoError(t, err)

	_, _, err = c.AddTips(s.ID, []string{"tip-3", "nope"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	cur, err := c.Session(s.ID)
	require.NoError(t, err)
	assert.Len(t, cur.Working, 1, "an unknown tip id adds nothing")

	_, err = c.RemoveTip(s.ID, 5)
	assert.ErrorIs(t, err, domainerrors.ErrIndexOutOfRange)
	_, err = c.MoveTip(s.ID, -1, composition.Down)
	assert.ErrorIs(t, err, domainerrors.ErrIndexOutOfRange)
	_, err = c.DuplicateTip(s.ID, 1)
	assert.ErrorIs(t, err, domainerrors.ErrIndexOutOfRange)
	_, err = c.EditField(s.ID, 0, composition.FieldRisk, "wild")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = c.Session("unknown")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestComposer_SessionExpiry(t *testing.T) {
	f := newComposerFixture(t)
	c := f.composer

	idle, err := c.Open("pkg-1")
	require.NoError(t, err)
	*f.clock = f.clock.Add(50 * time.Minute)
	active, err := c.Open("pkg-1")
	require.NoError(t, err)

	*f.clock = f.clock.Add(20 * time.Minute)
	assert.Equal(t, 1, c.Expire())
	assert.Equal(t, 1, c.Len())

	_, err = c.Session(idle.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = c.Session(active.ID)
	assert.NoError(t, err)

	*f.clock = f.clock.Add(2 * time.Hour)
	_, err = c.Save(context.Background(), active.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.Zero(t, c.Len())
}
