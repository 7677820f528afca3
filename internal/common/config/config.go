// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main client configuration struct.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Timeouts      TimeoutConfig       `mapstructure:"timeouts"`
	Inject        InjectConfig        `mapstructure:"inject"`
	Media         MediaConfig         `mapstructure:"media"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ServerConfig addresses the remote execution server.
type ServerConfig struct {
	Address string `mapstructure:"address"` // host:port
	HideIP  bool   `mapstructure:"hide_ip"` // mask address in log output
}

// TimeoutConfig carries the per-call deadlines. Every blocking
// operation is bounded by one of these.
type TimeoutConfig struct {
	Probe     time.Duration `mapstructure:"probe"`
	Submit    time.Duration `mapstructure:"submit"`
	Transfer  time.Duration `mapstructure:"transfer"` // uploads and downloads
	Job       time.Duration `mapstructure:"job"`      // overall completion wait
	Transcode time.Duration `mapstructure:"transcode"`
}

// InjectConfig tunes input injection. TextFields is the ordered list of
// candidate input field names probed when injecting text; the first
// field already present on the node wins.
type InjectConfig struct {
	TextFields []string `mapstructure:"text_fields"`
}

// MediaConfig locates the external transcoder.
type MediaConfig struct {
	FFmpegPath string `mapstructure:"ffmpeg_path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ObservabilityConfig controls the optional metrics endpoint of the
// runner binary. Empty address disables it.
type ObservabilityConfig struct {
	MetricsAddress string `mapstructure:"metrics_address"`
}

// DefaultTextFields is the fixed-priority field search order used when
// no override is configured.
var DefaultTextFields = []string{"prompt", "text", "string", "value"}

func applyDefaults(cfg *Config) {
	if cfg.Timeouts.Probe == 0 {
		cfg.Timeouts.Probe = 5 * time.Second
	}
	if cfg.Timeouts.Submit == 0 {
		cfg.Timeouts.Submit = 10 * time.Second
	}
	if cfg.Timeouts.Transfer == 0 {
		cfg.Timeouts.Transfer = 30 * time.Second
	}
	if cfg.Timeouts.Job == 0 {
		cfg.Timeouts.Job = 600 * time.Second
	}
	if cfg.Timeouts.Transcode == 0 {
		cfg.Timeouts.Transcode = 60 * time.Second
	}
	if len(cfg.Inject.TextFields) == 0 {
		cfg.Inject.TextFields = append([]string(nil), DefaultTextFields...)
	}
	if cfg.Media.FFmpegPath == "" {
		cfg.Media.FFmpegPath = "ffmpeg"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	for _, d := range []time.Duration{
		cfg.Timeouts.Probe, cfg.Timeouts.Submit, cfg.Timeouts.Transfer,
		cfg.Timeouts.Job, cfg.Timeouts.Transcode,
	} {
		if d < 0 {
			return fmt.Errorf("timeouts must be non-negative")
		}
	}
	return nil
}

// Default returns a configuration with all defaults applied and no
// server address set. Library callers fill in the address themselves.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
