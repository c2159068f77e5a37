// Package app assembles the borderless core from a Config.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/borderless/internal/adapters/gas"
	"github.com/vncsmyrnk/borderless/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/borderless/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/borderless/internal/adapters/repository/redis"
	"github.com/vncsmyrnk/borderless/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/borderless/internal/config"
	"github.com/vncsmyrnk/borderless/internal/core/ports"
	"github.com/vncsmyrnk/borderless/internal/core/services"
)

type App struct {
	Gateway  *gas.Client
	Store    ports.KeyValueStore
	Identity ports.IdentityService
	Session  ports.VoteSession
	Profiles ports.ProfileService
	Summary  ports.SummaryService
}

type Option func(*options)

type options struct {
	httpClient *http.Client
	store      ports.KeyValueStore
}

// WithHTTPClient overrides the client used for the script endpoint.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithStore skips opening the configured store driver.
func WithStore(kv ports.KeyValueStore) Option {
	return func(o *options) { o.store = kv }
}

func New(cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	kv := o.store
	if kv == nil {
		var err error
		kv, err = OpenStore(cfg)
		if err != nil {
			return nil, err
		}
	}

	gateway := gas.NewClient(cfg.GASAPIURL,
		gas.WithHTTPClient(o.httpClient),
		gas.WithUserAgent(cfg.UserAgent),
		gas.WithLogger(logger),
	)
	if gateway.Demo() {
		logger.Warn("script endpoint not configured, serving demo data")
	}

	identity := services.NewIdentityService(services.NewIdentityStore(kv, logger))
	session := services.NewVoteSession(gateway, identity, logger)
	profiles := services.NewProfileService(gateway, logger)

	return &App{
		Gateway:  gateway,
		Store:    kv,
		Identity: identity,
		Session:  session,
		Profiles: profiles,
		Summary:  services.NewSummaryService(identity, session, profiles),
	}, nil
}

// OpenStore opens the key/value backend selected by cfg.StoreDriver, scoped
// to this device's profile id.
func OpenStore(cfg config.Config) (ports.KeyValueStore, error) {
	profileID := cfg.DeviceProfileID()

	switch cfg.StoreDriver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, profileID)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return store, nil
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.Postgres.ConnString())
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return postgres.NewSettingsRepository(db, profileID), nil
	case config.DriverRedis:
		store, err := redis.NewStore(cfg.RedisAddr, cfg.RedisPassword, profileID)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis store: %w", err)
		}
		return store, nil
	case config.DriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// Close stops applying late vote results and releases the store.
func (a *App) Close() error {
	a.Session.Close()
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	return nil
}
