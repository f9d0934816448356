// Package config loads server settings from an optional YAML file and ALGOBATTLE_ env vars.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// AllowedOrigins feeds the websocket origin check; empty means same-origin only.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is json or console.
	Format string `mapstructure:"format"`
}

// BattleConfig holds the pacing of a battle. Delays are UI pacing only; they never change outcomes.
type BattleConfig struct {
	TurnTimer        time.Duration `mapstructure:"turn_timer"`
	DraftPickDelay   time.Duration `mapstructure:"draft_pick_delay"`
	BattleStartDelay time.Duration `mapstructure:"battle_start_delay"`
	ResolveDelay     time.Duration `mapstructure:"resolve_delay"`
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	// Seed fixes the random source of every new lobby. 0 seeds from the clock.
	Seed uint64 `mapstructure:"seed"`
}

// TurnTimerSec is the countdown length in whole seconds.
func (b BattleConfig) TurnTimerSec() int {
	return int(b.TurnTimer / time.Second)
}

type CatalogConfig struct {
	// Source is "file" or "database".
	Source string `mapstructure:"source"`
	// Path points at a roster YAML file. Empty uses the embedded roster.
	Path string `mapstructure:"path"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Battle   BattleConfig   `mapstructure:"battle"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Database DatabaseConfig `mapstructure:"database"`
}

// Validate reports every violation at once.
func (c Config) Validate() error {
	var err error
	err = multierr.Append(err, validateServer(c.Server))
	err = multierr.Append(err, validateLogging(c.Logging))
	err = multierr.Append(err, validateBattle(c.Battle))
	err = multierr.Append(err, validateCatalog(c.Catalog))
	if c.Catalog.Source == "database" {
		err = multierr.Append(err, validateDatabase(c.Database))
	}
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var err error
	if s.Addr == "" {
		err = multierr.Append(err, errors.New("server.addr must not be empty"))
	}
	if s.ShutdownTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("server.shutdown_timeout must be positive, got %s", s.ShutdownTimeout))
	}
	return err
}

func validateLogging(l LoggingConfig) error {
	var err error
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		err = multierr.Append(err, fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		err = multierr.Append(err, fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format))
	}
	return err
}

func validateBattle(b BattleConfig) error {
	var err error
	if b.TurnTimer < time.Second {
		err = multierr.Append(err, fmt.Errorf("battle.turn_timer must be at least 1s, got %s", b.TurnTimer))
	}
	for name, d := range map[string]time.Duration{
		"battle.draft_pick_delay":   b.DraftPickDelay,
		"battle.battle_start_delay": b.BattleStartDelay,
		"battle.resolve_delay":      b.ResolveDelay,
		"battle.tick_interval":      b.TickInterval,
	} {
		if d < 0 {
			err = multierr.Append(err, fmt.Errorf("%s must not be negative, got %s", name, d))
		}
	}
	return err
}

func validateCatalog(c CatalogConfig) error {
	switch c.Source {
	case "file":
		return nil
	case "database":
		return nil
	default:
		return fmt.Errorf("catalog.source must be one of [file, database], got %q", c.Source)
	}
}

func validateDatabase(d DatabaseConfig) error {
	var err error
	if d.Host == "" {
		err = multierr.Append(err, errors.New("database.host must not be empty"))
	}
	if d.Port < 1 || d.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		err = multierr.Append(err, errors.New("database.user must not be empty"))
	}
	if d.Name == "" {
		err = multierr.Append(err, errors.New("database.name must not be empty"))
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		err = multierr.Append(err, fmt.Errorf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	return err
}

// Load reads path (skipped when empty), applies ALGOBATTLE_ env overrides and validates.
func Load(path string) (Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("ALGOBATTLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("battle.turn_timer", "30s")
	v.SetDefault("battle.draft_pick_delay", "800ms")
	v.SetDefault("battle.battle_start_delay", "1s")
	v.SetDefault("battle.resolve_delay", "1500ms")
	v.SetDefault("battle.tick_interval", "1s")
	v.SetDefault("battle.seed", 0)

	v.SetDefault("catalog.source", "file")
	v.SetDefault("catalog.path", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "algobattle")
	v.SetDefault("database.password", "algobattle")
	v.SetDefault("database.name", "algobattle")
	v.SetDefault("database.sslmode", "disable")
}
