package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/SeamusWaldron/rubik_server/internal/api"
)

const shutdownTimeout = 5 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket API",
	Long: `Serve the cube API.

Legacy endpoints (POST /move, GET /solve, POST /reset-cube) drive the default
cube. Session endpoints live under /api/sessions, and each session streams its
state over /api/sessions/{id}/ws.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config, e.g. :8000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, appOptions{hub: true})
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	opts := []api.Option{
		api.WithHub(a.hub),
		api.WithLogger(a.logger.With("component", "api")),
		api.WithCORSOrigins(a.cfg.CORS.Origins...),
	}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, api.WithMetrics(a.metrics, a.cfg.Metrics.Path))
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(a.sessions, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.hub.Run(gCtx)
	})
	g.Go(func() error {
		return a.sessions.Run(gCtx, a.cfg.Sessions.ReapInterval.Duration)
	})
	g.Go(func() error {
		a.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
