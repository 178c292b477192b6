package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jumpbot/internal/api"
	"jumpbot/internal/config"
	"jumpbot/internal/db"
	"jumpbot/internal/dispatch"
	"jumpbot/internal/logger"
	"jumpbot/internal/sde"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Start the JSON API. The catalog loads in the background; query endpoints
answer 503 until it is ready. A catalog that fails to load or validate stops
the server. Prometheus metrics are served on /metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Banner(version)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	database, err := openDB(cfg, cfg.Source == sde.SourceDB)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}

	return serve(cmd.Context(), cfg, database)
}

// serve runs the API until ctx is canceled or a signal arrives. A catalog that
// fails to load or validate stops the server and is returned as the error.
func serve(ctx context.Context, cfg *config.Config, database *db.DB) error {
	srv := api.NewServer(cfg, database)

	// Load catalog in background
	loadErr := make(chan error, 1)
	go func() {
		data, err := loadCatalog(cfg, database)
		if err == nil {
			var d *dispatch.Dispatcher
			if d, err = buildDispatcher(cfg, data); err == nil {
				data.LogStats()
				srv.SetDispatcher(d, data.Source)
				logger.Success("Engine", "Router ready")
				return
			}
		}
		loadErr <- err
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Server(ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	var result error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case err := <-loadErr:
		logger.Error("Catalog", err.Error())
		result = fmt.Errorf("catalog: %w", err)
	case <-ctx.Done():
		logger.Info("HTTP", "Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && result == nil {
		result = err
	}
	return result
}
