package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Cheertaboi/tips-console/internal/cache"
	"github.com/Cheertaboi/tips-console/internal/config"
	"github.com/Cheertaboi/tips-console/internal/export"
	"github.com/Cheertaboi/tips-console/internal/fixture"
	"github.com/Cheertaboi/tips-console/internal/models"
	"github.com/Cheertaboi/tips-console/internal/pagination"
	"github.com/Cheertaboi/tips-console/internal/query"
	"github.com/Cheertaboi/tips-console/internal/repository"
	"github.com/Cheertaboi/tips-console/internal/service"
	"github.com/Cheertaboi/tips-console/internal/sink"
	"github.com/Cheertaboi/tips-console/internal/sink/redisstream"
	"github.com/Cheertaboi/tips-console/internal/store"
	"github.com/Cheertaboi/tips-console/pkg/db"
)

// app holds the loaded store and the connections behind it.
type app struct {
	store *store.Store
	db    *sql.DB
	redis *redis.Client
}

// openDB connects to Postgres and applies the schema when configured to.
func openDB(ctx context.Context, c config.Config) (*sql.DB, error) {
	conn, err := db.NewPostgresConnection(ctx, c.Postgres)
	if err != nil {
		return nil, err
	}
	if c.Source.Migrate {
		if err := repository.Migrate(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

// openApp loads the store from the configured source.
func openApp(ctx context.Context, c config.Config, logger *slog.Logger) (*app, error) {
	a := &app{store: store.New()}

	var src store.Source
	switch c.Source.Kind {
	case config.SourcePostgres:
		conn, err := openDB(ctx, c)
		if err != nil {
			return nil, err
		}
		a.db = conn
		src = repository.NewSource(conn)
	default:
		f, err := fixture.Load(c.Source.FixturePath)
		if err != nil {
			return nil, err
		}
		src = f
	}

	if err := a.store.Load(ctx, src); err != nil {
		a.Close()
		return nil, err
	}
	logger.Info("store loaded",
		"source", c.Source.Kind,
		"tips", len(a.store.Tips()),
		"packages", len(a.store.Packages()),
		"accounts", len(a.store.Accounts()),
	)
	return a, nil
}

// buildSink builds the write-behind sink from sink.enabled. Postgres reuses the
// source connection when there is one.
func (a *app) buildSink(ctx context.Context, c config.Config) (sink.Sink, error) {
	var sinks sink.Multi
	if c.SinkEnabled(config.SinkPostgres) {
		if a.db == nil {
			conn, err := openDB(ctx, c)
			if err != nil {
				return nil, err
			}
			a.db = conn
		}
		sinks = append(sinks, repository.NewSink(a.db, c.Quota.Capacity))
	}
	if c.SinkEnabled(config.SinkRedis) {
		client, err := redisstream.Connect(ctx, c.Redis.URL)
		if err != nil {
			return nil, err
		}
		a.redis = client
		sinks = append(sinks, redisstream.NewPublisher(client, c.Redis.Stream, c.Redis.MaxLen))
	}
	if len(sinks) == 0 {
		return sink.Nop{}, nil
	}
	return sinks, nil
}

func (a *app) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

// listers are the query services of every collection, sharing one memo
// cache and one pagination window.
type listers struct {
	tips          *service.Lister[models.Tip]
	packages      *service.Lister[models.Package]
	accounts      *service.Lister[models.Account]
	transactions  *service.Lister[models.Transaction]
	tickets       *service.Lister[models.Ticket]
	notifications *service.Lister[models.Notification]
}

func newListers(st *store.Store, c config.PaginationConfig, logger *slog.Logger) (*listers, error) {
	window, err := pagination.New(c.Window)
	if err != nil {
		return nil, err
	}
	memo := cache.NewQueryCache(c.CacheEntries)
	lc := service.ListerConfig{MaxPageSize: c.MaxPageSize}

	return &listers{
		tips:          service.NewLister(query.NewEngine(query.TipSpec, logger), st.Tips, st.Version, memo, window, lc),
		packages:      service.NewLister(query.NewEngine(query.PackageSpec, logger), st.Packages, st.Version, memo, window, lc),
		accounts:      service.NewLister(query.NewEngine(query.AccountSpec, logger), st.Accounts, st.Version, memo, window, lc),
		transactions:  service.NewLister(query.NewEngine(query.TransactionSpec, logger), st.Transactions, st.Version, memo, window, lc),
		tickets:       service.NewLister(query.NewEngine(query.TicketSpec, logger), st.Tickets, st.Version, memo, window, lc),
		notifications: service.NewLister(query.NewEngine(query.NotificationSpec, logger), st.Notifications, st.Version, memo, window, lc),
	}, nil
}

// exportTo writes every record of entity matching q as CSV.
func (l *listers) exportTo(w io.Writer, entity string, q query.Query) (int, error) {
	switch entity {
	case "tips":
		return exportWith(w, l.tips, export.Tips, q)
	case "packages":
		return exportWith(w, l.packages, export.Packages, q)
	case "accounts":
		return exportWith(w, l.accounts, export.Accounts, q)
	case "transactions":
		return exportWith(w, l.transactions, export.Transactions, q)
	case "tickets":
		return exportWith(w, l.tickets, export.Tickets, q)
	case "notifications":
		return exportWith(w, l.notifications, export.Notifications, q)
	default:
		return 0, fmt.Errorf("unknown entity %q", entity)
	}
}

func exportWith[T any](w io.Writer, l *service.Lister[T], table export.Table[T], q query.Query) (int, error) {
	records, err := l.Filtered(q)
	if err != nil {
		return 0, err
	}
	return len(records), export.WriteCSV(w, table, records)
}
