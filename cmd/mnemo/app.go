package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/mnemo-app/mnemo/internal/config"
	"github.com/mnemo-app/mnemo/internal/platform/logger"
	"github.com/mnemo-app/mnemo/internal/store"
)

// app carries the wiring every command shares: configuration, logger
// and the collection loaded from its snapshot file.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	store   *store.Store
	persist store.Persister
}

func (a *app) init(configFile string, debug bool) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if debug {
		cfg.Logging.Level = "debug"
	}
	a.cfg = cfg
	a.log = logger.Setup(cfg.Logging)
	a.persist = &jsonPersister{path: cfg.Storage.CollectionPath}

	snap, err := a.persist.Load()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		a.store = store.New()
	case err != nil:
		return fmt.Errorf("load collection: %w", err)
	default:
		a.store = store.FromSnapshot(snap)
	}
	return nil
}

func (a *app) saveCollection() error {
	if err := a.persist.Save(a.store.Snapshot()); err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	return nil
}
