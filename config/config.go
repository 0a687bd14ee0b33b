// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/milk9111/statemachine/fsm"
	"github.com/milk9111/statemachine/logging"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed.
	ErrParsingConfig = errors.New("config: failed to parse environment")

	// ErrInvalidConfig is returned when a parsed value is out of range.
	ErrInvalidConfig = errors.New("config: invalid value")
)

// Config holds every setting the tools read from the environment.
type Config struct {
	LogLevel      string `env:"FSM_LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"FSM_LOG_FORMAT" envDefault:"console"`
	TickRate      int    `env:"FSM_TICK_RATE" envDefault:"60"`
	EventDelivery string `env:"FSM_EVENT_DELIVERY" envDefault:"broadcast"`
	MachineDir    string `env:"FSM_MACHINE_DIR" envDefault:"prefabs/machines"`
	Watch         bool   `env:"FSM_WATCH" envDefault:"false"`
}

var defaultEnvLoaded sync.Once

// LoadEnv loads variables from the given .env files. Variables already set
// in the process environment win.
func LoadEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("config: load env: %w", err)
	}
	return nil
}

// Load parses the environment into a Config. A .env file in the working
// directory is read once if present.
func Load() (Config, error) {
	defaultEnvLoaded.Do(func() {
		// a missing .env is fine
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad works like Load but panics on error.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: FSM_TICK_RATE must be positive, got %d", ErrInvalidConfig, c.TickRate)
	}
	if _, err := fsm.ParseEventDelivery(c.EventDelivery); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("%w: FSM_LOG_FORMAT must be json or console, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// Delivery returns the configured event policy, Broadcast if unset.
func (c Config) Delivery() fsm.EventDelivery {
	d, _ := fsm.ParseEventDelivery(c.EventDelivery)
	return d
}

// Logging returns the logger settings.
func (c Config) Logging() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.LogLevel
	lc.Format = c.LogFormat
	return lc
}

// EngineOptions maps the config to engine options. extra is appended so
// callers can add an input source or error handler.
func (c Config) EngineOptions(extra ...fsm.Option) []fsm.Option {
	opts := []fsm.Option{
		fsm.WithEventDelivery(c.Delivery()),
		fsm.WithTickRate(c.TickRate),
	}
	return append(opts, extra...)
}
