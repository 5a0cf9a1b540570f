package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jonathan/postsmith/internal/config"
	"github.com/jonathan/postsmith/internal/db"
	"github.com/jonathan/postsmith/internal/extract"
	"github.com/jonathan/postsmith/internal/fetch"
	"github.com/jonathan/postsmith/internal/keystore"
	"github.com/jonathan/postsmith/internal/llm"
	"github.com/jonathan/postsmith/internal/observability"
	"github.com/jonathan/postsmith/internal/pipeline"
	"github.com/jonathan/postsmith/internal/profile"
	"github.com/jonathan/postsmith/internal/scraper"
)

// app bundles the loaded configuration with the objects built from it.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	printer *observability.Printer
	verbose bool
}

func loadApp(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if flags.verbose {
		level = "debug"
	}
	logger, err := observability.NewLogger(cmd.ErrOrStderr(), observability.LogOptions{Level: level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		log:     logger,
		printer: observability.NewPrinter(cmd.OutOrStdout()),
		verbose: flags.verbose,
	}, nil
}

// keys opens the key store. A store that cannot be read is logged and treated as empty.
func (a *app) keys() *keystore.Store {
	store, err := keystore.Open(a.cfg.KeysFile)
	if err != nil {
		a.log.Warn().Err(err).Str("path", a.cfg.KeysFile).Msg("ignoring unreadable key file")
		return nil
	}
	return store
}

func (a *app) resolver() *profile.Resolver {
	return profile.NewResolver(a.cfg.Page.ProfessionLocators, a.cfg.Page.AboutLocators)
}

func (a *app) loadDocument(ctx context.Context, src fetch.Source) (extract.Document, error) {
	return fetch.LoadDocument(ctx, src, a.cfg.FetchOptions(a.log))
}

// openHistory connects to the generation history store when a database is configured.
// It returns nil when none is.
func (a *app) openHistory(ctx context.Context) (*db.DB, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, nil
	}
	database, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// orchestrator wires the pipeline. history may be nil.
func (a *app) orchestrator(history *db.DB) *pipeline.Orchestrator {
	deps := pipeline.Deps{
		Pages:     pipeline.PageLoaderFunc(a.loadDocument),
		Resolver:  a.resolver(),
		Articles:  scraper.New(a.cfg.ScraperOptions(a.log)),
		Generator: llm.NewGateway(a.cfg.LLMConfig(), a.log),
		Logger:    a.log,
	}
	if history != nil {
		deps.History = history
	}
	return pipeline.New(deps)
}

// progressLogger mirrors pipeline status messages as log lines.
func (a *app) progressLogger() pipeline.ProgressCallback {
	return func(e pipeline.ProgressEvent) {
		a.log.Info().Str("step", e.Step).Msg(e.Message)
	}
}
