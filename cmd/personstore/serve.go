package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/MASAKi-cell/personstore/internal/config"
	"github.com/MASAKi-cell/personstore/pkg/editor"
	"github.com/MASAKi-cell/personstore/pkg/people"
	"github.com/MASAKi-cell/personstore/pkg/server"
	"github.com/MASAKi-cell/personstore/pkg/storage"
	"github.com/MASAKi-cell/personstore/pkg/swapi"
)

// samplePeople seeds the memory backend when no seed file is configured.
var samplePeople = []people.Person{
	{ID: 1, Name: "Luke Skywalker", Height: "172", Mass: "77", BirthYear: "19BBY", Gender: "male"},
	{ID: 2, Name: "Leia Organa", Height: "150", Mass: "49", BirthYear: "19BBY", Gender: "female"},
	{ID: 3, Name: "Han Solo", Height: "180", Mass: "80", BirthYear: "29BBY", Gender: "male"},
	{ID: 4, Name: "C-3PO", Height: "167", Mass: "75", BirthYear: "112BBY", Gender: "n/a"},
}

func serveCmd() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the person edit server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, configPath)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&configPath, "config", config.ConfigFileName, "path to the configuration file")
	return cmd
}

func runServe(addr, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}

	logger := newLogger(cfg.LogLevel)
	if cfg.Name != "" {
		logger = logger.With("name", cfg.Name)
	}

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	store := editor.New(svc,
		editor.WithLogger(logger),
		editor.WithMetrics(editor.NewMetrics()),
	)
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initial load so clients see data before the first explicit reload.
	list, err := svc.List(ctx)
	if err != nil {
		logger.Warn("initial people load failed", "error", err)
	} else {
		store.LoadPeople(list)
	}

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(store, svc, server.WithLogger(logger)),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr, "storage", cfg.Storage.Kind)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildService constructs the people backend the config selects.
func buildService(cfg *config.Config) (people.Service, error) {
	switch cfg.Storage.Kind {
	case config.StorageMemory:
		seed := samplePeople
		if cfg.Storage.SeedFile != "" {
			loaded, err := loadSeed(cfg.Storage.SeedFile)
			if err != nil {
				return nil, err
			}
			seed = loaded
		}
		return storage.NewMemoryStore(seed...), nil

	case config.StorageS3:
		client := s3.New(s3.Options{Region: cfg.Storage.Region})
		return storage.NewS3Store(client, cfg.Storage.Bucket, cfg.Storage.Prefix), nil

	case config.StorageHTTP:
		return swapi.NewClient(cfg.Storage.BaseURL), nil

	default:
		return nil, fmt.Errorf("unknown storage kind %q", cfg.Storage.Kind)
	}
}

func loadSeed(path string) ([]people.Person, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	var seed []people.Person
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return seed, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
