package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Cheertaboi/tips-console/internal/api"
	"github.com/Cheertaboi/tips-console/internal/id"
	"github.com/Cheertaboi/tips-console/internal/ratelimit"
	"github.com/Cheertaboi/tips-console/internal/service"
	"github.com/Cheertaboi/tips-console/internal/sink"
	"github.com/Cheertaboi/tips-console/internal/validation"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the console API",
		Long: `Load the collections from the configured source and serve the console
API until interrupted. Accepted changes are written behind to the enabled
sinks.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	_ = v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func serve(ctx context.Context) error {
	a, err := openApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.buildSink(ctx, cfg)
	if err != nil {
		return err
	}
	// the dispatcher outlives ctx so Close can drain it after the signal
	dispatcher := sink.NewDispatcher(s, cfg.Sink.Dispatcher, log)
	dispatcher.Start(context.WithoutCancel(ctx))

	loc, err := cfg.Quota.Location()
	if err != nil {
		return err
	}
	quota := service.NewQuotaManager(a.store, service.QuotaConfig{
		Capacity:   cfg.Quota.Capacity,
		Location:   loc,
		DateLayout: cfg.Quota.DateLayout,
	}, dispatcher, log)
	if n, err := quota.Reconcile(ctx); err != nil {
		return err
	} else if n > 0 {
		log.Warn("demoted free tips on startup", "count", n)
	}

	composer := service.NewComposer(a.store, service.ComposerConfig{SessionTTL: cfg.Composer.SessionTTL}, id.NewTipID, dispatcher, log)

	ls, err := newListers(a.store, cfg.Pagination, log)
	if err != nil {
		return err
	}

	limiter := ratelimit.New(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst, cfg.Server.RateLimit.Idle)
	defer limiter.Stop()

	handler := api.NewRouter(api.Deps{
		Logger:          log,
		Tips:            ls.tips,
		Packages:        ls.packages,
		Accounts:        ls.accounts,
		Transactions:    ls.transactions,
		Tickets:         ls.tickets,
		Notifications:   ls.notifications,
		Quota:           quota,
		Composer:        composer,
		Validator:       validation.New(),
		Limiter:         limiter,
		CORSOrigins:     cfg.Server.CORSOrigins,
		RequestTimeout:  cfg.Server.RequestTimeout,
		DefaultPageSize: cfg.Pagination.DefaultPageSize,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go quota.RunDaily(ctx)
	go composer.RunExpiry(ctx, cfg.Composer.ExpiryInterval)

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	log.Info("starting tips-console", "addr", cfg.Server.Addr, "version", version)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-idleConnsClosed

	drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := dispatcher.Close(drainCtx); err != nil {
		log.Error("sink dispatcher did not drain", "error", err, "dropped", dispatcher.Dropped())
	}
	log.Info("server stopped", "failed_mutations", dispatcher.Failed(), "dropped_mutations", dispatcher.Dropped())
	return nil
}
