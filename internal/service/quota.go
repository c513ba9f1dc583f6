package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainerrors "github.com/Cheertaboi/tips-console/internal/errors"
	"github.com/Cheertaboi/tips-console/internal/models"
	"github.com/Cheertaboi/tips-console/internal/sink"
	"github.com/Cheertaboi/tips-console/internal/store"
)

// Publisher takes committed mutations for persistence (use an interface to allow mocking).
type Publisher interface {
	Submit(m sink.Mutation) bool
}

type nopPublisher struct{}

func (nopPublisher) Submit(sink.Mutation) bool { return true }

const (
	DefaultFreeCapacity = 3
	DefaultDateLayout   = "2006-01-02"
)

// QuotaConfig fixes what "today" means and how many free tips it allows.
type QuotaConfig struct {
	Capacity   int
	Location   *time.Location
	DateLayout string
}

func (c QuotaConfig) withDefaults() QuotaConfig {
	if c.Capacity <= 0 {
		c.Capacity = DefaultFreeCapacity
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.DateLayout == "" {
		c.DateLayout = DefaultDateLayout
	}
	return c
}

// QuotaUsage is the state of today's free-tip quota.
type QuotaUsage struct {
	Date          string     `json:"date"`
	Used          int        `json:"used"`
	Capacity      int        `json:"capacity"`
	Remaining     int        `json:"remaining"`
	LastMutatedAt *time.Time `json:"last_mutated_at,omitempty"`
}

// QuotaManager flips the free flag of catalog tips. At most Capacity tips
// dated today are free at any time, and only tips dated today may change
// their flag.
type QuotaManager struct {
	store  *store.Store
	cfg    QuotaConfig
	pub    Publisher
	logger *slog.Logger
	now    func() time.Time

	mu          sync.Mutex
	lastMutated time.Time
}

type QuotaOption func(*QuotaManager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) QuotaOption {
	return func(m *QuotaManager) { m.now = now }
}

func NewQuotaManager(st *store.Store, cfg QuotaConfig, pub Publisher, logger *slog.Logger, opts ...QuotaOption) *QuotaManager {
	if pub == nil {
		pub = nopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &QuotaManager{
		store:  st,
		cfg:    cfg.withDefaults(),
		pub:    pub,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *QuotaManager) Config() QuotaConfig {
	return m.cfg
}

// Today is the date label of the current day in the configured location.
func (m *QuotaManager) Today() string {
	return m.now().In(m.cfg.Location).Format(m.cfg.DateLayout)
}

func countFree(tips []models.Tip, today string) int {
	n := 0
	for _, t := range tips {
		if t.IsFree && t.Date == today {
			n++
		}
	}
	return n
}

// SetFree moves tip id to the free (free=true) or premium state. The check
// and the write happen inside one store update, so concurrent callers cannot
// both take the last unit of quota. A rejected call changes nothing.
func (m *QuotaManager) SetFree(ctx context.Context, id string, free bool) (models.Tip, error) {
	if err := ctx.Err(); err != nil {
		return models.Tip{}, err
	}

	var (
		now     time.Time
		today   string
		updated models.Tip
		changed bool
	)
	err := m.store.UpdateTips(func(tips []models.Tip) error {
		// taken under the lock so timestamps follow commit order
		now = m.now()
		today = now.In(m.cfg.Location).Format(m.cfg.DateLayout)

		idx := -1
		for i := range tips {
			if tips[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return domainerrors.NotFoundf("tip %s not found", id)
		}
		t := &tips[idx]

		// 1) only today's tips carry the flag
		if t.Date != today {
			return domainerrors.TodayOnlyf("tip %s is dated %s, the free flag can only change on %s", id, t.Date, today)
		}
		if t.IsFree == free {
			updated = *t
			return nil
		}

		// 2) measured before the transition
		if free {
			if used := countFree(tips, today); used >= m.cfg.Capacity {
				return domainerrors.QuotaExceededf("%d of %d free tips already published for %s", used, m.cfg.Capacity, today).
					WithDetails(map[string]int{"used": used, "capacity": m.cfg.Capacity})
			}
		}

		t.IsFree = free
		t.UpdatedAt = now
		updated = *t
		changed = true

		// queued under the lock so the sink sees flips of one tip in commit order
		if !m.pub.Submit(sink.TipFlag(updated, now)) {
			m.logger.Warn("tip flag mutation not queued", "tip_id", id)
		}
		return nil
	})
	if err != nil {
		return models.Tip{}, err
	}
	if !changed {
		return updated, nil
	}

	m.mu.Lock()
	if now.After(m.lastMutated) {
		m.lastMutated = now
	}
	m.mu.Unlock()

	m.logger.Info("tip free flag changed", "tip_id", id, "free", free, "date", today)
	return updated, nil
}

// Usage reports today's quota consumption.
func (m *QuotaManager) Usage() QuotaUsage {
	today := m.Today()
	used := countFree(m.store.Tips(), today)
	u := QuotaUsage{
		Date:      today,
		Used:      used,
		Capacity:  m.cfg.Capacity,
		Remaining: max(m.cfg.Capacity-used, 0),
	}
	if at, ok := m.LastMutatedAt(); ok {
		u.LastMutatedAt = &at
	}
	return u
}

// LastMutatedAt is the time of the last accepted flag change, if any.
func (m *QuotaManager) LastMutatedAt() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastMutated, !m.lastMutated.IsZero()
}

// Reconcile restores the quota invariants after a load or a day rollover:
// free tips not dated today become premium, and of the free tips dated today
// only the first Capacity in collection order stay free. It returns the
// number of demoted tips.
func (m *QuotaManager) Reconcile(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var (
		today   string
		demoted []models.Tip
	)
	err := m.store.UpdateTips(func(tips []models.Tip) error {
		now := m.now()
		today = now.In(m.cfg.Location).Format(m.cfg.DateLayout)

		kept := 0
		for i := range tips {
			t := &tips[i]
			if !t.IsFree {
				continue
			}
			if t.Date == today && kept < m.cfg.Capacity {
				kept++
				continue
			}
			t.IsFree = false
			t.UpdatedAt = now
			demoted = append(demoted, *t)
		}
		if len(demoted) == 0 {
			return errNothingToReconcile
		}
		for _, t := range demoted {
			if !m.pub.Submit(sink.TipFlag(t, now)) {
				m.logger.Warn("tip flag mutation not queued", "tip_id", t.ID)
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errNothingToReconcile) {
		return 0, err
	}

	for _, t := range demoted {
		m.logger.Info("free tip demoted", "tip_id", t.ID, "date", t.Date, "today", today)
	}
	return len(demoted), nil
}

// errNothingToReconcile aborts an update that would change nothing and keeps
// the store version.
var errNothingToReconcile = errors.New("nothing to reconcile")

// RunDaily calls Reconcile at every day boundary in the configured location
// until ctx is done.
func (m *QuotaManager) RunDaily(ctx context.Context) {
	for {
		now := m.now().In(m.cfg.Location)
		y, mo, d := now.Date()
		next := time.Date(y, mo, d+1, 0, 0, 0, 0, m.cfg.Location)

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if n, err := m.Reconcile(ctx); err != nil {
			m.logger.Error("daily quota reconcile failed", "error", err)
		} else {
			m.logger.Info("daily quota reconcile", "demoted", n, "date", m.Today())
		}
	}
}
