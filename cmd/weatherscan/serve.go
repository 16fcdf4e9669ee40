package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weatherscan/internal/api"
	"weatherscan/internal/config"
	"weatherscan/internal/engine"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		data dataFlags
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve extreme-value queries over HTTP",
		Long: `Serve starts the HTTP API immediately and loads the configured backends in
the background. Queries against a backend that is still loading get 503.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data.resolve(cmd, a.cfg)
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Server.Addr
			}
			return a.serve(cmd.Context(), addr, data)
		},
	}
	data.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config: :8080)")
	return cmd
}

func (a *app) serve(ctx context.Context, addr string, data dataFlags) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Routes are live before any data is loaded.
	h := api.NewHandler(a.log, a.cfg.Server.Backends...)
	e := api.NewServer(h, a.log)

	go a.loadBackends(h, data)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()
	a.log.Info("server ready, data loading in background", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// loadBackends installs an executor for every configured backend as soon as
// its store is ready. A failed backend stays unavailable.
func (a *app) loadBackends(h *api.Handler, data dataFlags) {
	t0 := time.Now()
	var mem *engine.MemoryStore

	for _, b := range a.cfg.Server.Backends {
		var (
			store engine.ColumnStore
			err   error
		)
		switch b {
		case config.BackendMemory:
			mem, err = a.loadMemory(data)
			store = mem
		case config.BackendDisk:
			store, err = a.openDisk(data, mem)
		}
		if err != nil {
			a.log.Error("background load failed", zap.String("backend", b), zap.Error(err))
			continue
		}
		h.SetExecutor(engine.NewExecutor(b, store, a.log))
	}

	a.log.Info("background load complete", zap.Duration("duration", time.Since(t0)))
}
