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

	"github.com/opsmock/mockserver-go/internal/adapter"
	"github.com/opsmock/mockserver-go/internal/config"
	"github.com/opsmock/mockserver-go/internal/httpserver"
	"github.com/opsmock/mockserver-go/internal/persistence"
	"github.com/opsmock/mockserver-go/internal/rest"
	"github.com/opsmock/mockserver-go/internal/store"
	"github.com/opsmock/mockserver-go/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mockserver:", err)
		os.Exit(1)
	}
}

func run() error {
	if adapter.IsLambda() {
		return fmt.Errorf("running under a Lambda environment; use the mockserver-lambda binary instead")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(logger.ParseLevel(cfg.LogLevel), os.Stdout, os.Stderr)

	backend, err := persistence.NewBackend(cfg)
	if err != nil {
		return fmt.Errorf("build persistence backend: %w", err)
	}

	s := store.New(backend, cfg.PersistExpectations, log)
	s.Initialize()

	if cfg.InitializationJSONPath != "" {
		loaded := persistence.LoadInitializationFile(cfg.InitializationJSONPath, log)
		for _, e := range loaded {
			if _, err := s.Upsert(e); err != nil {
				log.Warnf("skipping invalid expectation from initialization file: %v", err)
			}
		}

		if cfg.WatchInitializationJSON {
			w := persistence.NewWatcher(cfg.InitializationJSONPath, log)
			watchCtx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(watchCtx, s.ReplaceAll)
		}
	}

	controlAPI := rest.NewRouter(s, log, cfg.Port)
	handler := httpserver.New(s, controlAPI, log, cfg.MaxBodySizeBytes())

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: handler,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", cfg.Addr())
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Infof("shutdown signal received, draining in-flight requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	}
}
