// Package sink delivers committed mutations to durable storage. The core
// hands mutations to a Dispatcher and moves on; delivery is asynchronous and
// eventually consistent.
package sink

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Cheertaboi/tips-console/internal/models"
)

type Kind string

const (
	// KindTipFlag is a quota-flag flip on a catalog tip.
	KindTipFlag Kind = "tip_flag"
	// KindPackageTips is a saved package tip list.
	KindPackageTips Kind = "package_tips"
)

// Mutation is one committed change. Exactly one of Tip and Package is set,
// according to Kind.
type Mutation struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Tip       *models.Tip     `json:"tip,omitempty"`
	Package   *models.Package `json:"package,omitempty"`
	Committed time.Time       `json:"committed_at"`
}

func TipFlag(t models.Tip, at time.Time) Mutation {
	return Mutation{ID: uuid.NewString(), Kind: KindTipFlag, Tip: &t, Committed: at}
}

func PackageTips(p models.Package, at time.Time) Mutation {
	p = p.Clone()
	return Mutation{ID: uuid.NewString(), Kind: KindPackageTips, Package: &p, Committed: at}
}

// EntityID is the ID of the tip or package the mutation changes.
func (m Mutation) EntityID() string {
	switch {
	case m.Tip != nil:
		return m.Tip.ID
	case m.Package != nil:
		return m.Package.ID
	}
	return ""
}

type Sink interface {
	Persist(ctx context.Context, m Mutation) error
}

// Func adapts a function to Sink.
type Func func(ctx context.Context, m Mutation) error

func (f Func) Persist(ctx context.Context, m Mutation) error {
	return f(ctx, m)
}

// Nop discards every mutation.
type Nop struct{}

func (Nop) Persist(context.Context, Mutation) error { return nil }

// Multi persists to every sink and joins their errors.
type Multi []Sink

func (m Multi) Persist(ctx context.Context, mut Mutation) error {
	var errs []error
	for _, s := range m {
		if err := s.Persist(ctx, mut); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
