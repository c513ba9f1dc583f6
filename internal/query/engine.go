package query

import (
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	domainerrors "github.com/Cheertaboi/tips-console/internal/errors"
)

// Spec describes how one entity is searched and filtered.
type Spec[T any] struct {
	Name string
	// Key returns the record identity, used for detail lookups.
	Key func(T) string
	// SearchFields returns the whitelisted text fields the search term is
	// matched against.
	SearchFields func(T) []string
	// Dimensions maps a filter dimension name to the field it compares.
	Dimensions map[string]func(T) string
	// Validate reports records missing a required field. Optional.
	Validate func(T) error
}

// DimensionNames returns the spec's filter dimensions in sorted order.
func (s Spec[T]) DimensionNames() []string {
	names := make([]string, 0, len(s.Dimensions))
	for name := range s.Dimensions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Engine[T any] struct {
	spec   Spec[T]
	logger *slog.Logger
}

func NewEngine[T any](spec Spec[T], logger *slog.Logger) *Engine[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine[T]{spec: spec, logger: logger.With("entity", spec.Name)}
}

func (e *Engine[T]) Spec() Spec[T] {
	return e.spec
}

// Validate checks q against the spec: every filter must name a known
// dimension, and page and page size must be positive.
func (e *Engine[T]) Validate(q Query) error {
	details := map[string]string{}
	for dim := range q.Filters {
		if _, ok := e.spec.Dimensions[dim]; !ok {
			details[dim] = "unknown filter dimension"
		}
	}
	if q.Page < 1 {
		details["page"] = "must be at least 1"
	}
	if q.PageSize < 1 {
		details["page_size"] = "must be at least 1"
	}
	if len(details) > 0 {
		return domainerrors.ValidationWithDetails("invalid query for "+e.spec.Name, details)
	}
	return nil
}

// Apply returns the records matching the search term and every active filter,
// in source order. Records failing Spec.Validate are left out. Filters on
// dimensions the spec does not know are ignored; use Validate to reject them.
func (e *Engine[T]) Apply(records []T, q Query) []T {
	// Caser keeps internal state, so each call gets its own.
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(q.Search))

	type check struct {
		field func(T) string
		want  string
	}
	checks := make([]check, 0, len(q.Filters))
	for dim, want := range q.Filters {
		if !Active(want) {
			continue
		}
		field, ok := e.spec.Dimensions[dim]
		if !ok {
			continue
		}
		checks = append(checks, check{field: field, want: want})
	}

	out := make([]T, 0, len(records))
	for _, rec := range records {
		if e.spec.Validate != nil {
			if err := e.spec.Validate(rec); err != nil {
				e.logger.Debug("excluding malformed record", "error", err)
				continue
			}
		}
		if !e.matchesSearch(fold, rec, needle) {
			continue
		}
		ok := true
		for _, c := range checks {
			if c.field(rec) != c.want {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

func (e *Engine[T]) matchesSearch(fold cases.Caser, rec T, needle string) bool {
	if needle == "" {
		return true
	}
	for _, field := range e.spec.SearchFields(rec) {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}

// Find returns the record whose Key equals id.
func (e *Engine[T]) Find(records []T, id string) (T, bool) {
	for _, rec := range records {
		if e.spec.Key(rec) == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}
