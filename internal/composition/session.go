package composition

import (
	"time"

	"github.com/Cheertaboi/tips-console/internal/models"
)

// Session is one edit session over a package's tip list. Working is the
// session's private copy; Committed is the list as it was when the session
// opened. A Session is not safe for concurrent use.
type Session struct {
	ID           string       `json:"id"`
	PackageID    string       `json:"package_id"`
	BaseRevision int          `json:"base_revision"`
	Committed    []models.Tip `json:"-"`
	Working      []models.Tip `json:"tips"`
	OpenedAt     time.Time    `json:"opened_at"`
	TouchedAt    time.Time    `json:"touched_at"`

	newID IDFunc
	now   func() time.Time
}

// Dirty reports whether the working list differs from the committed one.
func (s *Session) Dirty() bool {
	if len(s.Working) != len(s.Committed) {
		return true
	}
	for i := range s.Working {
		if !sameTip(s.Working[i], s.Committed[i]) {
			return true
		}
	}
	return false
}

func sameTip(a, b models.Tip) bool {
	return a.ID == b.ID && a.SourceID == b.SourceID && a.MatchID == b.MatchID &&
		a.Match == b.Match && a.League == b.League && a.Prediction == b.Prediction &&
		a.Odds.Equal(b.Odds) && a.Risk == b.Risk && a.Status == b.Status &&
		a.IsFree == b.IsFree && a.Date == b.Date
}

// NewSession opens a session on a snapshot of pkg.
func NewSession(id string, pkg models.Package, newID IDFunc, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	opened := now()
	committed := models.CloneTips(pkg.Tips)
	if committed == nil {
		committed = []models.Tip{}
	}
	return &Session{
		ID:           id,
		PackageID:    pkg.ID,
		BaseRevision: pkg.Revision,
		Committed:    committed,
		Working:      models.CloneTips(committed),
		OpenedAt:     opened,
		TouchedAt:    opened,
		newID:        newID,
		now:          now,
	}
}

func (s *Session) touch(list []models.Tip) {
	s.Working = list
	s.TouchedAt = s.now()
}

func (s *Session) AddTips(candidates []models.Tip) (added, skipped int) {
	list, added, skipped := AddTips(s.Working, candidates, s.newID)
	s.touch(list)
	return added, skipped
}

func (s *Session) RemoveTip(index int) error {
	list, err := RemoveTip(s.Working, index)
	if err != nil {
		return err
	}
	s.touch(list)
	return nil
}

func (s *Session) MoveTip(index int, dir Direction) error {
	list, err := MoveTip(s.Working, index, dir)
	if err != nil {
		return err
	}
	s.touch(list)
	return nil
}

func (s *Session) DuplicateTip(index int) error {
	list, err := DuplicateTip(s.Working, index, s.newID)
	if err != nil {
		return err
	}
	s.touch(list)
	return nil
}

func (s *Session) EditField(index int, field Field, value string) error {
	list, err := EditField(s.Working, index, field, value)
	if err != nil {
		return err
	}
	s.touch(list)
	return nil
}

// Reset discards every working change.
func (s *Session) Reset() {
	s.touch(models.CloneTips(s.Committed))
}

// Snapshot returns a copy of the session safe to hand to other goroutines.
func (s *Session) Snapshot() Session {
	cp := *s
	cp.Committed = models.CloneTips(s.Committed)
	cp.Working = models.CloneTips(s.Working)
	return cp
}
