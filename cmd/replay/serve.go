package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aelred/TheGreaterFool/internal/api"
	"github.com/aelred/TheGreaterFool/internal/store"
)

func runServe(ctx context.Context, e *env, args []string) error {
	st := store.NewMemoryStore()

	// --- Preload logs ---
	for _, path := range args {
		res, err := e.load(ctx, path)
		if err != nil {
			return err
		}
		g := &store.Game{Source: path, Records: res.Records, Info: res.Game}
		if err := st.CreateGame(ctx, g); err != nil {
			return err
		}
		slog.Info("game preloaded", "id", g.ID, "source", path)
	}

	svc := api.NewService(st, e.cfg.TicksPerMinute, e.cfg.MaxGameMinutes, e.cfg.DelimiterRune())

	// --- Server ---
	srv := &http.Server{
		Addr:         e.cfg.HTTPAddr,
		Handler:      svc.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("replay listening", "addr", e.cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.ShutdownTimeout)
	defer cancel()

	slog.Info("shutting down replay server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
