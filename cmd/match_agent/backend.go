package main

import (
	"context"
	"fmt"

	"github.com/jonathan/candidate-matcher/internal/config"
	"github.com/jonathan/candidate-matcher/internal/db"
	"github.com/jonathan/candidate-matcher/internal/engine"
	"github.com/jonathan/candidate-matcher/internal/model"
	"github.com/jonathan/candidate-matcher/internal/store"
	"go.uber.org/zap"
)

// openBackend opens the configured artifact and history store.
func openBackend(ctx context.Context, sc config.StoreConfig) (store.Backend, error) {
	switch sc.Driver {
	case config.DriverFile:
		return store.NewFileStore(sc.Dir)
	case config.DriverSQLite:
		return store.OpenSQLite(sc.SQLitePath)
	case config.DriverPostgres:
		database, err := db.Connect(ctx, sc.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx); err != nil {
			_ = database.Close()
			return nil, err
		}
		return database, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", sc.Driver)
	}
}

// newService builds the engine over the configured backend and loads the
// latest model. The returned close func releases the backend.
func newService(ctx context.Context) (*engine.Service, func(), error) {
	backend, err := openBackend(ctx, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	closeBackend := func() {
		if err := backend.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}

	opts := engine.OptionsFromConfig(cfg)
	opts.History = backend
	opts.Inventory = backend
	if catalog, ok := backend.(store.JobCatalog); ok {
		opts.Catalog = catalog
	}
	opts.Logger = logger

	predictor := model.NewPredictor(cfg.Model.Name, backend, cfg.Model.Train, logger)
	svc, err := engine.New(predictor, opts)
	if err != nil {
		closeBackend()
		return nil, nil, err
	}
	if err := svc.LoadModel(ctx); err != nil {
		closeBackend()
		return nil, nil, fmt.Errorf("failed to load model: %w", err)
	}
	return svc, closeBackend, nil
}
