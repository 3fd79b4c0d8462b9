package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fedwatch/fedwatch/internal/config"
	"github.com/fedwatch/fedwatch/internal/extract"
	"github.com/fedwatch/fedwatch/internal/llmcall"
	"github.com/fedwatch/fedwatch/internal/normalize"
	"github.com/fedwatch/fedwatch/internal/providers"
	"github.com/fedwatch/fedwatch/internal/store"
	"github.com/fedwatch/fedwatch/internal/vocab"
)

// runEnv bundles the pieces every pipeline command needs.
type runEnv struct {
	cfg     *config.Config
	backend providers.Backend
	store   *store.Client
	rec     *llmcall.Recorder
	logger  *slog.Logger
}

// setupRun loads config and wires the backend, content store client,
// and call recorder. The returned cleanup closes the recorder.
func setupRun(ctx context.Context) (*runEnv, func(), error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.Default()

	registry, err := providers.NewRegistryFromConfig(ctx, cfg.ToRegistryConfig(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build backend registry: %w", err)
	}

	name := backend
	if name == "" {
		name = cfg.Defaults.Backend
	}
	be, err := registry.Get(name)
	if err != nil {
		return nil, nil, err
	}

	sc := store.NewClient(store.Config{
		BaseURL: cfg.Store.URL,
		APIKey:  cfg.StoreAPIKey(),
		Timeout: time.Duration(cfg.Store.TimeoutSeconds) * time.Second,
	})

	rec, err := llmcall.Open(filepath.Join(cfg.Output.Dir, cfg.Output.CallLog), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open call log: %w", err)
	}

	env := &runEnv{
		cfg:     cfg,
		backend: be,
		store:   sc,
		rec:     rec,
		logger:  logger,
	}
	cleanup := func() {
		if err := rec.Close(); err != nil {
			logger.Error("failed to close call log", "error", err)
		}
	}
	return env, cleanup, nil
}

// extractor builds the extractor for a run, with every backend call
// recorded to the JSONL audit trail.
func (e *runEnv) extractor(v *vocab.Vocabulary) *extract.Extractor {
	return extract.New(extract.Config{
		Backend:          e.backend,
		Normalizers:      normalize.Registry(v),
		MaxAttempts:      e.cfg.Defaults.MaxAttempts,
		MaxDocumentChars: e.cfg.Defaults.MaxDocumentChars,
		Logger:           e.logger,
		Observer: func(schema string, attempt int, req *providers.ChatRequest, res *providers.ChatResult, err error) {
			e.rec.Record(llmcall.FromChatResult(schema, "", attempt, req, res, err))
		},
	})
}

// environmentalIssues fetches the taxonomy snapshot for the run,
// falling back to the built-in list when the store has no terms.
func (e *runEnv) environmentalIssues(ctx context.Context) (*vocab.Vocabulary, error) {
	terms, err := e.store.EnvironmentalIssues(ctx)
	if err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		e.logger.Warn("store returned no environmental issue terms, using built-in vocabulary")
		return vocab.Default(), nil
	}
	return vocab.New(terms), nil
}

func (e *runEnv) outputPath(name string) string {
	return filepath.Join(e.cfg.Output.Dir, name)
}

// recordLimit resolves the per-run document cap: the command flag wins,
// the config default applies when the flag is unset. Zero means no cap.
func (e *runEnv) recordLimit(flag int) int {
	if flag > 0 {
		return flag
	}
	return e.cfg.Defaults.RecordLimit
}
