package service

import (
	"strconv"

	"github.com/Cheertaboi/tips-console/internal/cache"
	domainerrors "github.com/Cheertaboi/tips-console/internal/errors"
	"github.com/Cheertaboi/tips-console/internal/pagination"
	"github.com/Cheertaboi/tips-console/internal/query"
)

const DefaultMaxPageSize = 100

// ListResult is one page of a filtered collection plus its page strip.
type ListResult[T any] struct {
	query.Page[T]
	Window []pagination.Marker `json:"window"`
}

// Lister answers list queries for one entity. Filtered views are memoized by
// (entity, store version, query key); a mutation bumps the version, so a
// cached view is never served after its data changed.
type Lister[T any] struct {
	engine      *query.Engine[T]
	fetch       func() []T
	version     func() uint64
	memo        *cache.QueryCache
	window      *pagination.Calculator
	maxPageSize int
}

type ListerConfig struct {
	MaxPageSize int
}

func NewLister[T any](engine *query.Engine[T], fetch func() []T, version func() uint64, memo *cache.QueryCache, window *pagination.Calculator, cfg ListerConfig) *Lister[T] {
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = DefaultMaxPageSize
	}
	if memo == nil {
		memo = cache.NewQueryCache(0)
	}
	if window == nil {
		window = pagination.MustNew(pagination.DefaultConfig())
	}
	return &Lister[T]{
		engine:      engine,
		fetch:       fetch,
		version:     version,
		memo:        memo,
		window:      window,
		maxPageSize: cfg.MaxPageSize,
	}
}

func (l *Lister[T]) Name() string {
	return l.engine.Spec().Name
}

func (l *Lister[T]) Dimensions() []string {
	return l.engine.Spec().DimensionNames()
}

func (l *Lister[T]) validate(q query.Query) error {
	if err := l.engine.Validate(q); err != nil {
		return err
	}
	if q.PageSize > l.maxPageSize {
		return domainerrors.ValidationWithDetails("invalid query for "+l.Name(),
			map[string]string{"page_size": "must be at most " + strconv.Itoa(l.maxPageSize)})
	}
	return nil
}

// filtered returns the memoized view for q. The result is shared and must
// not be modified.
func (l *Lister[T]) filtered(q query.Query) []T {
	// Read the version before the data: a racing write then lands under a
	// key no later reader asks for.
	key := l.Name() + "@" + strconv.FormatUint(l.version(), 10) + "?" + q.Key()
	if v, ok := l.memo.Get(key); ok {
		if items, ok := v.([]T); ok {
			return items
		}
	}
	items := l.engine.Apply(l.fetch(), q)
	l.memo.Set(key, items)
	return items
}

// Filtered returns every record matching q, ignoring paging.
func (l *Lister[T]) Filtered(q query.Query) ([]T, error) {
	if err := l.engine.Validate(q.WithPage(1).WithPageSize(1)); err != nil {
		return nil, err
	}
	items := l.filtered(q)
	out := make([]T, len(items))
	copy(out, items)
	return out, nil
}

// List returns the requested page of the records matching q, with the page
// clamped into range, and the page strip for it.
func (l *Lister[T]) List(q query.Query) (ListResult[T], error) {
	if err := l.validate(q); err != nil {
		return ListResult[T]{}, err
	}
	page := query.Paginate(l.filtered(q), q.Page, q.PageSize)
	return ListResult[T]{
		Page:   page,
		Window: l.window.Compute(page.TotalItems, page.PageSize, page.Page),
	}, nil
}

func (l *Lister[T]) Find(id string) (T, error) {
	rec, ok := l.engine.Find(l.fetch(), id)
	if !ok {
		return rec, domainerrors.NotFoundf("%s %s not found", l.Name(), id)
	}
	return rec, nil
}
