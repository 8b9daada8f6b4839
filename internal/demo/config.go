package demo

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes the bouncing dots simulation.
type Config struct {
	Seed uint64 `yaml:"seed"`

	// size of the simulated area in world units
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	FixedStep     time.Duration `yaml:"fixedStep"`
	MaintainEvery int           `yaml:"maintainEvery"`

	// SpawnCount dots are spawned every SpawnInterval
	SpawnInterval time.Duration `yaml:"spawnInterval"`
	SpawnCount    int           `yaml:"spawnCount"`

	// every n-th spawned dot is marked special, zero disables special dots
	SpecialEvery int `yaml:"specialEvery"`

	Lifetime time.Duration `yaml:"lifetime"`
	MaxSpeed float64       `yaml:"maxSpeed"`

	// the simulation aborts after this time, zero runs forever
	Duration time.Duration `yaml:"duration"`
}

func DefaultConfig() Config {
	return Config{
		Seed:          1,
		Width:         800,
		Height:        600,
		FixedStep:     time.Second / 64,
		MaintainEvery: 1,
		SpawnInterval: 100 * time.Millisecond,
		SpawnCount:    4,
		SpecialEvery:  10,
		Lifetime:      5 * time.Second,
		MaxSpeed:      200,
	}
}

// LoadConfig reads a yaml file on top of the DefaultConfig.
// An empty path returns the default configuration.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	if path == "" {
		return config, nil
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(buf, &config); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %q: %w", path, err)
	}

	return config, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("size must be positive, got %gx%g", c.Width, c.Height))
	}

	if c.FixedStep <= 0 {
		errs = append(errs, fmt.Errorf("fixedStep must be positive, got %s", c.FixedStep))
	}

	if c.SpawnCount < 0 {
		errs = append(errs, fmt.Errorf("spawnCount must not be negative, got %d", c.SpawnCount))
	}

	if c.SpawnCount > 0 && c.SpawnInterval <= 0 {
		errs = append(errs, fmt.Errorf("spawnInterval must be positive, got %s", c.SpawnInterval))
	}

	if c.Lifetime <= 0 {
		errs = append(errs, fmt.Errorf("lifetime must be positive, got %s", c.Lifetime))
	}

	if c.MaxSpeed < 0 {
		errs = append(errs, fmt.Errorf("maxSpeed must not be negative, got %g", c.MaxSpeed))
	}

	return errors.Join(errs...)
}

// Marshal encodes the configuration as yaml.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
