package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gosigtest/adapters/badger"
	"gosigtest/adapters/postgres"
	"gosigtest/adapters/rng"
	"gosigtest/adapters/scorer"
	"gosigtest/app"
	"gosigtest/domain/bootstrap"
	"gosigtest/domain/pairwise"
	"gosigtest/internal"
	"gosigtest/internal/config"
	"gosigtest/internal/migration"
	"gosigtest/ports"
	"gosigtest/ports/store"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure, opened on first use
	DB    *sqlx.DB
	Store store.ResultStore
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	level, _ := internal.ParseLogLevel(cfg.LogLevel)
	return &Container{
		Config: cfg,
		Logger: internal.NewLogger(level).WithPrefix("sigtest"),
	}, nil
}

// ResultStore opens the configured store, migrating Postgres on connect.
func (c *Container) ResultStore(ctx context.Context) (store.ResultStore, error) {
	if c.Store != nil {
		return c.Store, nil
	}
	switch c.Config.Store.Driver {
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, c.Config.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := migration.NewRunner().Run(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		c.DB = db
		c.Store = postgres.NewResultRepository(db)
	case config.DriverBadger:
		cfg := badger.DefaultConfig(c.Config.Store.BadgerPath)
		cfg.Logger = c.Logger.WithPrefix("badger")
		s, err := badger.Open(cfg)
		if err != nil {
			return nil, err
		}
		c.Store = s
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.Config.Store.Driver)
	}
	c.Logger.Debug("opened %s result store", c.Config.Store.Driver)
	return c.Store, nil
}

// Scorer builds the external command scorer.
func (c *Container) Scorer() (*scorer.CommandScorer, error) {
	return scorer.NewCommandScorer(c.Config.Scorer.Command, c.Config.Scorer.Measure)
}

// Service builds the significance service. withScorer requires a scoring
// command; withStore opens the result store.
func (c *Container) Service(ctx context.Context, withScorer, withStore bool) (*app.SignificanceService, error) {
	var (
		sc ports.Scorer
		rs store.ResultStore
	)
	if withScorer {
		cs, err := c.Scorer()
		if err != nil {
			return nil, err
		}
		sc = cs
	}
	if withStore {
		s, err := c.ResultStore(ctx)
		if err != nil {
			return nil, err
		}
		rs = s
	}

	opts := []app.ServiceOption{
		app.WithLogger(c.Logger),
		app.WithMatrixOptions(pairwise.WithWorkers(c.Config.Significance.Workers)),
	}
	if sc != nil && c.Config.Bootstrap.ScratchDir != "" {
		opts = append(opts, app.WithBootstrapper(
			bootstrap.NewBootstrapper(sc, bootstrap.WithScratchDir(c.Config.Bootstrap.ScratchDir))))
	}
	return app.NewSignificanceService(rng.NewAdapter(), sc, rs, opts...), nil
}

// Close releases the store. The Postgres pool is owned by the repository.
func (c *Container) Close() error {
	if c.Store == nil {
		return nil
	}
	err := c.Store.Close()
	c.Store = nil
	c.DB = nil
	return err
}
