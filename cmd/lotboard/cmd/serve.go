package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/lotboard/api"
	"github.com/rustyeddy/lotboard/broker/rest"
	"github.com/rustyeddy/lotboard/internal/telemetry"
	"github.com/rustyeddy/lotboard/quotes"
	"github.com/rustyeddy/lotboard/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API server",
	Long: `Serve the lots dashboard API, poll quotes for live lots and push them
to websocket clients.

Example:
  lotboard serve -c lotboard.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	timeout, _ := cfg.Upstream.ParseTimeout()
	interval, _ := cfg.Quotes.ParseInterval()
	display, err := cfg.Display.ViewOptions()
	if err != nil {
		return err
	}

	st, err := store.NewSQLite(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	m := telemetry.New()
	client := rest.NewClient(cfg.Upstream.URL, cfg.Upstream.Token, timeout)
	cache := quotes.NewCache(client, logger, m)

	srv := api.NewServer(st, client, cache, api.Options{
		Policy:      cfg.Risk,
		Display:     display,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
		Metrics:     m,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.TrackLots(ctx); err != nil {
		return fmt.Errorf("track lots: %w", err)
	}

	poller := &quotes.Poller{
		Cache:       cache,
		Interval:    interval,
		Concurrency: cfg.Quotes.Concurrency,
		OnQuote:     srv.PublishQuote,
		Log:         logger,
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return poller.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("shutdown complete")
	return err
}
