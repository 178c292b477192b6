package main

import (
	"errors"
	"fmt"
	"time"

	"jumpbot/internal/config"
	"jumpbot/internal/db"
	"jumpbot/internal/dispatch"
	"jumpbot/internal/engine"
	"jumpbot/internal/logger"
	"jumpbot/internal/resolve"
	"jumpbot/internal/sde"
)

const dbFile = "jumpbot.db"

// loadCatalog reads the catalog from the configured source. With the csv or
// sde source an existing database snapshot is used as a fallback when the
// files cannot be read.
func loadCatalog(cfg *config.Config, database *db.DB) (*sde.Data, error) {
	start := time.Now()
	var (
		data *sde.Data
		err  error
	)
	switch cfg.Source {
	case sde.SourceCSV:
		data, err = sde.LoadCSV(cfg.DataDir)
	case sde.SourceSDE:
		data, err = sde.LoadSDE(cfg.DataDir)
	case sde.SourceDB:
		if database == nil {
			return nil, errors.New("catalog source db needs a database")
		}
		data, err = database.LoadCatalog()
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}

	if err != nil && cfg.Source != sde.SourceDB && database != nil && database.HasCatalog() {
		logger.Warn("Catalog", fmt.Sprintf("%s load failed (%v), using database snapshot", cfg.Source, err))
		data, err = database.LoadCatalog()
	}
	if err != nil {
		return nil, fmt.Errorf("load %s catalog: %w", cfg.Source, err)
	}
	logger.Success("Catalog", fmt.Sprintf("Loaded %d systems from %s in %v", len(data.Systems), data.Source, time.Since(start).Round(time.Millisecond)))
	return data, nil
}

// buildDispatcher validates the catalog and wires the engine and dispatcher.
func buildDispatcher(cfg *config.Config, data *sde.Data) (*dispatch.Dispatcher, error) {
	u, err := data.Universe()
	if err != nil {
		return nil, err
	}
	r := resolve.New(u, nil)
	if n := r.Collisions(); n > 0 {
		logger.Warn("Resolve", fmt.Sprintf("%d system names collide after O/0 flattening; first in catalog order wins", n))
	}
	eng, err := engine.New(u, r, engine.Options{
		PopularSystems: cfg.PopularSystems,
		NearestCount:   cfg.NearestCount,
		MaxStops:       cfg.MaxStops,
	})
	if err != nil {
		return nil, err
	}
	return dispatch.New(eng, dispatch.Options{
		MaxStops:          cfg.MaxStops,
		FleetPingMinJumps: cfg.FleetPingMinJumps,
		FuzzyDenylist:     cfg.FuzzyDenylist,
	}), nil
}

// openDB opens the database, or returns nil when it is not needed and cannot
// be opened.
func openDB(cfg *config.Config, required bool) (*db.DB, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		if required {
			return nil, err
		}
		logger.Warn("DB", fmt.Sprintf("continuing without database: %v", err))
		return nil, nil
	}
	return database, nil
}

// setup is the common path for one-shot query commands.
func setup() (*config.Config, *dispatch.Dispatcher, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	database, err := openDB(cfg, cfg.Source == sde.SourceDB)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() {
		if database != nil {
			database.Close()
		}
	}
	data, err := loadCatalog(cfg, database)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	d, err := buildDispatcher(cfg, data)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return cfg, d, cleanup, nil
}
