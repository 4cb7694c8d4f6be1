package gluedbapi

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/tuannm99/gluedbapi/cache"
	"github.com/tuannm99/gluedbapi/statement"
)

// Config is the YAML profile for one adapter connection.
type Config struct {
	SessionID string `mapstructure:"session_id"`

	Cursor struct {
		// OnParseFailure is "log" (default) or "raise".
		OnParseFailure string        `mapstructure:"on_parse_failure"`
		PollInterval   time.Duration `mapstructure:"poll_interval"`
	} `mapstructure:"cursor"`

	Cache struct {
		// Mode is "" (disabled), "memory" or "redis".
		Mode       string        `mapstructure:"mode"`
		TTL        time.Duration `mapstructure:"ttl"`
		Addr       string        `mapstructure:"addr"`
		MaxEntries int           `mapstructure:"max_entries"`
	} `mapstructure:"cache"`
}

// LoadConfig reads a YAML profile from path.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// NewConnectionFromConfig builds a Connection applying the profile.
// Explicit opts win over the profile.
func NewConnectionFromConfig(ctx context.Context, client statement.Executor, cfg *Config, opts ...Option) (*Connection, error) {
	var base []Option

	switch cfg.Cursor.OnParseFailure {
	case "", "log":
		base = append(base, WithParseFailureMode(statement.ParseFailureLog))
	case "raise":
		base = append(base, WithParseFailureMode(statement.ParseFailureRaise))
	default:
		return nil, fmt.Errorf("gluedbapi: unknown on_parse_failure %q", cfg.Cursor.OnParseFailure)
	}

	if cfg.Cursor.PollInterval > 0 {
		base = append(base, WithPollInterval(cfg.Cursor.PollInterval))
	}

	switch cfg.Cache.Mode {
	case "":
	case "memory":
		base = append(base, WithCache(cache.NewMemory(cfg.Cache.MaxEntries), cfg.Cache.TTL))
	case "redis":
		store, err := cache.NewRedis(ctx, &redis.Options{Addr: cfg.Cache.Addr})
		if err != nil {
			return nil, err
		}
		base = append(base, WithCache(store, cfg.Cache.TTL))
	default:
		return nil, fmt.Errorf("gluedbapi: unknown cache mode %q", cfg.Cache.Mode)
	}

	return NewConnection(client, cfg.SessionID, append(base, opts...)...)
}
