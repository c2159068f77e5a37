package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

type PostgresConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	DB       string `env:"DB"`
}

func (p PostgresConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.DB)
}

type Config struct {
	GASAPIURL     string         `env:"GAS_API_URL"`
	HTTPAddr      string         `env:"HTTP_ADDR" envDefault:"127.0.0.1:8080"`
	PollInterval  time.Duration  `env:"POLL_INTERVAL" envDefault:"30s"`
	StoreDriver   string         `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath    string         `env:"SQLITE_PATH" envDefault:"borderless.db"`
	Postgres      PostgresConfig `envPrefix:"POSTGRES_"`
	RedisAddr     string         `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string         `env:"REDIS_PASSWORD"`
	ProfileID     string         `env:"PROFILE_ID"`
	LogLevel      string         `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string         `env:"LOG_FORMAT" envDefault:"text"`
	UserAgent     string         `env:"USER_AGENT" envDefault:"borderless/1.0"`
	CORSOrigins   []string       `env:"CORS_ORIGINS" envSeparator:","`
}

// Load reads .env (when present), then the environment, then the flags in
// args. The arguments left after flag parsing are returned.
func Load(name string, args []string) (Config, []string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, nil, fmt.Errorf("parse env: %w", err)
	}

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.StringVar(&cfg.GASAPIURL, "api-url", cfg.GASAPIURL, "Remote script endpoint (blank for demo mode)")
	flags.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "Local API listen address")
	flags.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Vote status polling interval")
	flags.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "Settings store (sqlite, postgres, redis or memory)")
	flags.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database file")
	flags.StringVar(&cfg.ProfileID, "profile", cfg.ProfileID, "Device profile id (uuid)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	if err := flags.Parse(args); err != nil {
		return Config{}, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}

	return cfg, flags.Args(), nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverSQLite, DriverPostgres, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if c.ProfileID != "" {
		if _, err := uuid.Parse(c.ProfileID); err != nil {
			return fmt.Errorf("invalid profile id: %w", err)
		}
	}
	return nil
}

// DeviceProfileID is the namespace for this device's settings. Without an
// explicit PROFILE_ID it is derived from the host and OS user, so it is
// stable across restarts.
func (c Config) DeviceProfileID() uuid.UUID {
	if id, err := uuid.Parse(strings.TrimSpace(c.ProfileID)); err == nil {
		return id
	}

	host, _ := os.Hostname()
	name := ""
	if u, err := user.Current(); err == nil {
		name = u.Username
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("borderless:"+host+":"+name))
}
