package main

import (
	"context"
	"time"

	"github.com/philippgille/chromem-go"
	"github.com/rotisserie/eris"

	"github.com/fundsight/pedocs/internal/classify"
	"github.com/fundsight/pedocs/internal/extract"
	"github.com/fundsight/pedocs/internal/fieldlib"
	"github.com/fundsight/pedocs/internal/pipeline"
	"github.com/fundsight/pedocs/internal/store"
	"github.com/fundsight/pedocs/internal/validate"
	"github.com/fundsight/pedocs/internal/vector"
	anthropicpkg "github.com/fundsight/pedocs/pkg/anthropic"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.SQLitePath
		if dsn == "" {
			dsn = "pedocs.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initLibrary() (*fieldlib.Library, error) {
	if cfg.Fields.CatalogPath != "" {
		return fieldlib.LoadFile(cfg.Fields.CatalogPath)
	}
	return fieldlib.Default()
}

func initVector() (*vector.Store, error) {
	if !cfg.Vector.Enabled {
		return nil, nil
	}
	return vector.New(cfg.Vector.Path, chromem.NewEmbeddingFuncDefault())
}

// initProcessor wires the full pipeline. The returned engine exposes token
// usage for cost reporting after a batch.
func initProcessor(st store.Store) (*pipeline.Processor, *extract.Engine, error) {
	lib, err := initLibrary()
	if err != nil {
		return nil, nil, err
	}

	var client anthropicpkg.Client
	if cfg.Anthropic.Key != "" {
		client = anthropicpkg.RateLimited(
			anthropicpkg.NewClient(cfg.Anthropic.Key),
			cfg.Anthropic.RequestsPerMinute,
		)
	}
	llm := extract.NewLLMExtractor(client, cfg.Anthropic.Model,
		cfg.Anthropic.MaxTokens, time.Duration(cfg.Anthropic.TimeoutSecs)*time.Second)

	engine := extract.NewEngine(lib, llm)
	registry := extract.NewRegistry(engine)
	validator := validate.New(lib, st)

	index, err := initVector()
	if err != nil {
		return nil, nil, err
	}

	proc := pipeline.New(classify.New(), lib, registry, validator, st, index, pipeline.Options{
		MaxConcurrentDocs: cfg.Pipeline.MaxConcurrentDocs,
		ReviewThreshold:   cfg.Pipeline.ReviewThreshold,
		StoreThreshold:    cfg.Pipeline.StoreThreshold,
	})
	return proc, engine, nil
}
