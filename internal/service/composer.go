package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Cheertaboi/tips-console/internal/composition"
	domainerrors "github.com/Cheertaboi/tips-console/internal/errors"
	"github.com/Cheertaboi/tips-console/internal/id"
	"github.com/Cheertaboi/tips-console/internal/models"
	"github.com/Cheertaboi/tips-console/internal/sink"
	"github.com/Cheertaboi/tips-console/internal/store"
)

const DefaultSessionTTL = 30 * time.Minute

type ComposerConfig struct {
	SessionTTL time.Duration
}

// AddResult reports what AddTips did with the requested candidates.
type AddResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// Composer owns the open edit sessions. Sessions edit private working
// copies; Save is the only path that writes a package's tip list.
type Composer struct {
	store  *store.Store
	pub    Publisher
	logger *slog.Logger
	ttl    time.Duration
	newID  composition.IDFunc
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*composition.Session
}

type ComposerOption func(*Composer)

func WithComposerClock(now func() time.Time) ComposerOption {
	return func(c *Composer) { c.now = now }
}

func NewComposer(st *store.Store, cfg ComposerConfig, newID composition.IDFunc, pub Publisher, logger *slog.Logger, opts ...ComposerOption) *Composer {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if newID == nil {
		newID = id.NewTipID
	}
	if pub == nil {
		pub = nopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Composer{
		store:    st,
		pub:      pub,
		logger:   logger,
		ttl:      cfg.SessionTTL,
		newID:    newID,
		now:      time.Now,
		sessions: make(map[string]*composition.Session),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open starts a session on a fresh copy of the package's committed tips.
func (c *Composer) Open(packageID string) (composition.Session, error) {
	pkg, ok := c.store.Package(packageID)
	if !ok {
		return composition.Session{}, domainerrors.NotFoundf("package %s not found", packageID)
	}
	s := composition.NewSession(uuid.NewString(), pkg, c.newID, c.now)

	c.mu.Lock()
	c.sessions[s.ID] = s
	c.mu.Unlock()

	c.logger.Debug("composer session opened", "session_id", s.ID, "package_id", packageID, "revision", pkg.Revision)
	return s.Snapshot(), nil
}

// lookup must be called with c.mu held.
func (c *Composer) lookup(id string) (*composition.Session, error) {
	s, ok := c.sessions[id]
	if !ok {
		return nil, domainerrors.NotFoundf("session %s not found", id)
	}
	if c.now().Sub(s.TouchedAt) > c.ttl {
		delete(c.sessions, id)
		return nil, domainerrors.NotFoundf("session %s expired", id)
	}
	return s, nil
}

func (c *Composer) with(id string, fn func(s *composition.Session) error) (composition.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.lookup(id)
	if err != nil {
		return composition.Session{}, err
	}
	if err := fn(s); err != nil {
		return composition.Session{}, err
	}
	return s.Snapshot(), nil
}

func (c *Composer) Session(id string) (composition.Session, error) {
	return c.with(id, func(*composition.Session) error { return nil })
}

// AddTips adds catalog tips by ID. Unknown IDs are a NotFound error and add
// nothing; duplicates of entries already in the list are skipped.
func (c *Composer) AddTips(id string, tipIDs []string) (composition.Session, AddResult, error) {
	candidates := make([]models.Tip, 0, len(tipIDs))
	for _, tid := range tipIDs {
		t, ok := c.store.Tip(tid)
		if !ok {
			return composition.Session{}, AddResult{}, domainerrors.NotFoundf("tip %s not found", tid)
		}
		candidates = append(candidates, t)
	}

	var res AddResult
	snap, err := c.with(id, func(s *composition.Session) error {
		res.Added, res.Skipped = s.AddTips(candidates)
		return nil
	})
	if err != nil {
		return composition.Session{}, AddResult{}, err
	}
	return snap, res, nil
}

func (c *Composer) RemoveTip(id string, index int) (composition.Session, error) {
	return c.with(id, func(s *composition.Session) error { return s.RemoveTip(index) })
}

func (c *Composer) MoveTip(id string, index int, dir composition.Direction) (composition.Session, error) {
	return c.with(id, func(s *composition.Session) error { return s.MoveTip(index, dir) })
}

func (c *Composer) DuplicateTip(id string, index int) (composition.Session, error) {
	return c.with(id, func(s *composition.Session) error { return s.DuplicateTip(index) })
}

func (c *Composer) EditField(id string, index int, field composition.Field, value string) (composition.Session, error) {
	return c.with(id, func(s *composition.Session) error { return s.EditField(index, field, value) })
}

// Save commits the session's working list to its package and closes the
// session. It fails with Conflict, leaving the package untouched, when
// another save landed after the session opened.
func (c *Composer) Save(ctx context.Context, id string) (models.Package, error) {
	if err := ctx.Err(); err != nil {
		return models.Package{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.lookup(id)
	if err != nil {
		return models.Package{}, err
	}

	now := c.now()
	pkg, err := c.store.UpdatePackage(s.PackageID, func(p *models.Package) error {
		if p.Revision != s.BaseRevision {
			return domainerrors.Conflictf("package %s changed since the session opened (revision %d, now %d)", p.ID, s.BaseRevision, p.Revision).
				WithDetails(map[string]int{"base_revision": s.BaseRevision, "revision": p.Revision})
		}
		p.Tips = models.CloneTips(s.Working)
		p.TipCount = len(p.Tips)
		p.Revision++
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.Package{}, err
	}
	delete(c.sessions, id)

	c.logger.Info("package tips saved", "package_id", pkg.ID, "session_id", id, "tips", pkg.TipCount, "revision", pkg.Revision)
	if !c.pub.Submit(sink.PackageTips(pkg, now)) {
		c.logger.Warn("package tips mutation not queued", "package_id", pkg.ID)
	}
	return pkg, nil
}

// Cancel discards the session. The package is untouched.
func (c *Composer) Cancel(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[id]; !ok {
		return domainerrors.NotFoundf("session %s not found", id)
	}
	delete(c.sessions, id)
	c.logger.Debug("composer session cancelled", "session_id", id)
	return nil
}

// Expire drops every session idle for longer than the TTL and returns how
// many were dropped.
func (c *Composer) Expire() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for id, s := range c.sessions {
		if now.Sub(s.TouchedAt) > c.ttl {
			delete(c.sessions, id)
			n++
		}
	}
	return n
}

// RunExpiry calls Expire every interval until ctx is done.
func (c *Composer) RunExpiry(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Expire(); n > 0 {
				c.logger.Info("expired composer sessions", "count", n)
			}
		}
	}
}

func (c *Composer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}
