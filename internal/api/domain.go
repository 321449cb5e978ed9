package api

import (
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/catalog"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/config"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/coordinator"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/queue"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/sources"
)

// Domain holds the discovery systems behind the API and the CLI.
type Domain struct {
	Queue       queue.System
	Sources     sources.System
	Catalog     catalog.System
	Coordinator *coordinator.Coordinator
}

// NewDomain creates every domain system from the runtime and discovery config.
func NewDomain(runtime *Runtime, cfg *config.DiscoveryConfig) (*Domain, error) {
	db := runtime.Database.Connection()

	queueSystem := queue.New(db, runtime.Logger, runtime.Pagination)
	sourcesSystem := sources.New(db, runtime.Logger, cfg.Smoothing)
	catalogSystem := catalog.New(
		db,
		runtime.Logger,
		runtime.Pagination,
		cfg.Catalog.Table,
		cfg.Catalog.Column,
	)

	registry, err := NewWatchers(cfg, runtime.Logger)
	if err != nil {
		return nil, err
	}

	deps := coordinator.Deps{
		Watchers: registry,
		Queue:    queueSystem,
		Sources:  sourcesSystem,
		Catalog:  catalogSystem,
		Enricher: NewEnricher(cfg, runtime.Logger),
	}
	if runtime.Archive != nil {
		deps.Archive = runtime.Archive
	}

	coord := coordinator.New(deps, coordinator.Options{
		RunBudget:      cfg.RunBudgetDuration(),
		Workers:        cfg.Workers,
		BatchSize:      cfg.BatchSize,
		ReconcileLimit: cfg.Catalog.ReconcileLimit,
	}, runtime.Logger)

	lc := runtime.Lifecycle
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		coord.Wait()
		runtime.Logger.Info("background runs drained")
	})

	return &Domain{
		Queue:       queueSystem,
		Sources:     sourcesSystem,
		Catalog:     catalogSystem,
		Coordinator: coord,
	}, nil
}
