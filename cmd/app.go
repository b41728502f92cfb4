package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/schadensbericht/portal/internal/core/ports"
	"github.com/schadensbericht/portal/internal/core/service"
	"github.com/schadensbericht/portal/internal/infrastructure/db/mongo"
	"github.com/schadensbericht/portal/internal/infrastructure/db/postgres"
	"github.com/schadensbericht/portal/internal/infrastructure/db/redis"
	"github.com/schadensbericht/portal/internal/infrastructure/password"
	"github.com/schadensbericht/portal/internal/pkg/config"
	"github.com/schadensbericht/portal/pkg/logger"
)

// app holds the wired services shared by all subcommands.
type app struct {
	cfg          *config.Config
	log          zerolog.Logger
	users        ports.CredentialStore
	sessionStore *redis.SessionStore
	sessions     *service.SessionManager
	auth         *service.AuthService
	provisioning *service.ProvisioningService

	closers []func(context.Context) error
}

// loadConfig reads the environment and initialises the process logger.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "portal",
	})
	return cfg, nil
}

// openCredentialStore connects the backend selected by STORE_DRIVER and
// makes sure its schema is in place.
func openCredentialStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.CredentialStore, func(context.Context) error, error) {
	var (
		store   ports.CredentialStore
		closeFn func(context.Context) error
	)

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		repo, err := postgres.Open(ctx, postgres.Config{
			DSN:      cfg.Postgres.DSN,
			MaxConns: cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, nil, err
		}
		store = repo
		closeFn = func(context.Context) error {
			repo.Close()
			return nil
		}
	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		store = mongo.NewUserRepository(db)
		closeFn = client.Disconnect
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if err := store.EnsureSchema(ctx); err != nil {
		_ = closeFn(ctx)
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}

	log.Info().Str("driver", cfg.StoreDriver).Msg("credential store ready")
	return store, closeFn, nil
}

// newApp connects every backing store and wires the services.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get()

	a := &app{cfg: cfg, log: log}

	users, closeUsers, err := openCredentialStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.users = users
	a.closers = append(a.closers, closeUsers)

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		_ = a.close(ctx)
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
	a.sessionStore = redis.NewSessionStore(rdb)

	hasher := password.NewBcryptHasher(cfg.BcryptCost)
	a.sessions = service.NewSessionManager(a.sessionStore, cfg.Session.Secret, service.SessionPolicy{
		IdleTimeout: cfg.Session.IdleTimeout,
		MaxLifetime: cfg.Session.MaxLifetime,
	}, log)

	a.auth, err = service.NewAuthService(users, hasher, a.sessions, log)
	if err != nil {
		_ = a.close(ctx)
		return nil, err
	}
	a.provisioning = service.NewProvisioningService(users, hasher, service.BootstrapAccount{
		Username: cfg.Bootstrap.AdminUsername,
		Password: cfg.Bootstrap.AdminPassword,
	}, log)

	return a, nil
}

// close releases connections in reverse order of acquisition.
func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
