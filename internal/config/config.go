// Package config handles loading, defaulting, and validation of the Drink Now
// daemon TOML configuration. Every section maps to a typed struct so the rest
// of the codebase gets strong typing without manual key lookups.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the top-level configuration, mirroring the TOML sections.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Timer    TimerConfig    `toml:"timer"`
	Idle     IdleConfig     `toml:"idle"`
	License  LicenseConfig  `toml:"license"`
	Tracking TrackingConfig `toml:"tracking"`
	Updater  UpdaterConfig  `toml:"updater"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
}

type TimerConfig struct {
	TickIntervalSeconds int `toml:"tick_interval_seconds"`
}

type IdleConfig struct {
	ThresholdSeconds int `toml:"threshold_seconds"`
	SampleSeconds    int `toml:"sample_seconds"`
}

type LicenseConfig struct {
	Endpoint       string `toml:"endpoint"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type TrackingConfig struct {
	Endpoint string `toml:"endpoint"`
	Enabled  bool   `toml:"enabled"`
}

type UpdaterConfig struct {
	ManifestURL string `toml:"manifest_url"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns a Config populated with sane defaults. Values here are
// used whenever the TOML file omits a field.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1:48613",
		},
		Timer: TimerConfig{
			TickIntervalSeconds: 1,
		},
		Idle: IdleConfig{
			ThresholdSeconds: 300,
			SampleSeconds:    5,
		},
		License: LicenseConfig{
			Endpoint:       "https://license.rocketsolutions.app/v1",
			TimeoutSeconds: 10,
		},
		Tracking: TrackingConfig{
			Endpoint: "https://events.rocketsolutions.app/v1/track",
			Enabled:  true,
		},
		Updater: UpdaterConfig{
			ManifestURL: "https://releases.rocketsolutions.app/drinknow/latest.json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the TOML file at path, layers it on top of the defaults, and
// validates the result. A missing file is not an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config toml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Server.Bind == "" {
		return errors.New("config: server.bind must not be empty")
	}
	if cfg.Timer.TickIntervalSeconds <= 0 {
		return errors.New("config: timer.tick_interval_seconds must be positive")
	}
	if cfg.Idle.ThresholdSeconds <= 0 || cfg.Idle.SampleSeconds <= 0 {
		return errors.New("config: idle thresholds must be positive")
	}
	if cfg.License.TimeoutSeconds <= 0 {
		return errors.New("config: license.timeout_seconds must be positive")
	}
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown logging.level %q", cfg.Logging.Level)
	}
	return nil
}

// TickInterval returns the timer cadence as a duration.
func (cfg Config) TickInterval() time.Duration {
	return time.Duration(cfg.Timer.TickIntervalSeconds) * time.Second
}

// IdleThreshold returns how long the user must be inactive before the timer
// pauses.
func (cfg Config) IdleThreshold() time.Duration {
	return time.Duration(cfg.Idle.ThresholdSeconds) * time.Second
}

// IdleSampleInterval returns the idle probe cadence.
func (cfg Config) IdleSampleInterval() time.Duration {
	return time.Duration(cfg.Idle.SampleSeconds) * time.Second
}

// LicenseTimeout bounds the entitlement query.
func (cfg Config) LicenseTimeout() time.Duration {
	return time.Duration(cfg.License.TimeoutSeconds) * time.Second
}

// LogLevel maps the configured level string to a slog level.
func (cfg Config) LogLevel() slog.Level {
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
