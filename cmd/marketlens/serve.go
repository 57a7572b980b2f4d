package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketLens/internal/api"
	"MarketLens/internal/model"
	"MarketLens/internal/scheduler"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the cache scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cfg)
		if err != nil {
			return err
		}
		defer d.Close()

		// Context for graceful shutdown
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		period, err := model.ParsePeriod(cfg.Schedule.RefreshPeriod)
		if err != nil {
			return err
		}
		sched := scheduler.NewScheduler(ctx, d.cache, cfg.Schedule.Watchlist, model.PeriodQuery(period), cfg.Cache.Retention)
		if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Cache.EvictionCron); err != nil {
			return fmt.Errorf("register cron tasks: %w", err)
		}
		sched.Start()
		defer sched.Stop()

		if os.Getenv("RUN_ON_START") == "true" {
			log.Info().Msg("RUN_ON_START enabled, refreshing watchlist now")
			go sched.RunRefreshNow()
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           api.NewRouter(api.NewHandlers(d.analyzer, d.cache, log.Logger)),
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", srv.Addr).Msg("MarketLens API listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
		case <-ctx.Done():
			log.Info().Msg("shutdown signal received, stopping...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		log.Info().Msg("MarketLens stopped")
		return nil
	},
}
