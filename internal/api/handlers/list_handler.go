package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/Cheertaboi/tips-console/internal/errors"
	"github.com/Cheertaboi/tips-console/internal/export"
	"github.com/Cheertaboi/tips-console/internal/query"
	"github.com/Cheertaboi/tips-console/internal/service"
)

// Reserved list parameters; every other query parameter names a filter
// dimension.
const (
	paramSearch   = "search"
	paramPage     = "page"
	paramPageSize = "page_size"
)

// ListHandler serves search, detail and export for one entity.
type ListHandler[T any] struct {
	lister          *service.Lister[T]
	table           export.Table[T]
	defaultPageSize int
	logger          *slog.Logger
	now             func() time.Time
}

func NewListHandler[T any](lister *service.Lister[T], table export.Table[T], defaultPageSize int, logger *slog.Logger) *ListHandler[T] {
	if defaultPageSize <= 0 {
		defaultPageSize = query.DefaultPageSize
	}
	return &ListHandler[T]{
		lister:          lister,
		table:           table,
		defaultPageSize: defaultPageSize,
		logger:          logger,
		now:             time.Now,
	}
}

// Mount registers GET /, /export and /{id} on r.
func (h *ListHandler[T]) Mount(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/export", h.Export)
	r.Get("/{id}", h.Get)
}

func parseQuery(r *http.Request, defaultPageSize int) (query.Query, error) {
	values := r.URL.Query()
	q := query.New().WithPageSize(defaultPageSize).WithSearch(values.Get(paramSearch))

	for key, vals := range values {
		switch key {
		case paramSearch, paramPage, paramPageSize:
			continue
		}
		if len(vals) > 0 {
			q = q.WithFilter(key, vals[len(vals)-1])
		}
	}

	details := map[string]string{}
	if raw := values.Get(paramPageSize); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			details[paramPageSize] = "must be an integer"
		} else {
			q = q.WithPageSize(n)
		}
	}
	if raw := values.Get(paramPage); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			details[paramPage] = "must be an integer"
		} else {
			q = q.WithPage(n)
		}
	}
	if len(details) > 0 {
		return query.Query{}, domainerrors.ValidationWithDetails("invalid query", details)
	}
	return q, nil
}

// List handles GET /api/v1/{entity}
func (h *ListHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r, h.defaultPageSize)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	res, err := h.lister.List(q)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Get handles GET /api/v1/{entity}/{id}
func (h *ListHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.lister.Find(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Export handles GET /api/v1/{entity}/export. Every record matching the
// query is written as CSV; paging is ignored.
func (h *ListHandler[T]) Export(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r, h.defaultPageSize)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	records, err := h.lister.Filtered(q)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(h.lister.Name(), h.now())+`"`)
	w.WriteHeader(http.StatusOK)
	if err := export.WriteCSV(w, h.table, records); err != nil {
		// headers are gone; all that is left is to log
		h.logger.Error("export failed", "entity", h.lister.Name(), "error", err)
	}
}
