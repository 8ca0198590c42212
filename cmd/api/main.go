// Command api serves an in-memory scrape backend for local development.
// Jobs advance on a timer, so the dashboard can be exercised without the
// real scraping service.
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

	"scrape-dash-go/pkg/scraper/scrapertest"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var (
		host  string
		port  int
		step  time.Duration
		debug bool
	)

	cmd := &cobra.Command{
		Use:          "api",
		Short:        "Run a fake scrape backend for local development",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), fmt.Sprintf("%s:%d", host, port), step, debug)
		},
	}
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Listen address")
	cmd.Flags().IntVar(&port, "port", 8000, "Listen port")
	cmd.Flags().DurationVar(&step, "step", 2*time.Second, "How often jobs advance one query")
	cmd.Flags().BoolVar(&debug, "debug", false, "Verbose logging")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context, addr string, step time.Duration, debug bool) error {
	log, err := newLogger(debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	backend := scrapertest.New(scrapertest.WithLogger(log))

	srv := &http.Server{
		Addr:         addr,
		Handler:      backend.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	simCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go backend.Simulate(simCtx, step)

	errCh := make(chan error, 1)
	go func() {
		log.Info("dev backend starting", zap.String("addr", addr), zap.Duration("step", step))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	log.Info("server exited")
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
