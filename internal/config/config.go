// Package config provides YAML configuration loading and validation for the
// tracer collector.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure for the tracer collector.
type Config struct {
	// LogLevel sets the minimum log severity: "debug", "info", "warn", or
	// "error". Defaults to "info" when omitted.
	LogLevel string `yaml:"log_level"`

	// RingBufferEntries is a ring buffer size setting. Defaults to
	// 256*1024 when omitted or zero. It is loaded and validated only: the
	// probe does not apply it, and the ring size is the max_entries
	// compiled into the BPF object's headers map.
	RingBufferEntries int `yaml:"ring_buffer_entries"`

	// ArenaFlushTimeoutMS is an arena page flush timeout setting. Defaults
	// to 750 when omitted or zero. It is loaded and validated only: it is
	// not written to the kernel, and the reference BPF program's arena
	// allocator does not roll pages over on a timeout.
	ArenaFlushTimeoutMS int `yaml:"arena_flush_timeout_ms"`

	// PollTimeoutMS is a ring poll timeout setting. Defaults to 150 when
	// omitted or zero. It is loaded and validated only: the drain loop's
	// ring read blocks until a record arrives or the ring is closed, with
	// no timeout.
	PollTimeoutMS int `yaml:"poll_timeout_ms"`

	// CaptureEnvKeys is a list of environment-variable keys for the
	// process_exec environment scan. It is loaded only: it is not passed
	// to the collector or the kernel, and the reassembler decodes
	// whatever env block an exec event's env descriptor references.
	CaptureEnvKeys []string `yaml:"capture_env_keys"`

	// BlacklistPatterns is the configurable name/cmdline substring list
	// the PID filter's predicate matches against, case-insensitively.
	// Defaults to a small built-in list when omitted.
	BlacklistPatterns []string `yaml:"blacklist_patterns"`

	// MirrorBlacklistToKernel enables publishing the first 32 blacklist
	// pids into the kernel config map so tracepoint handlers can discard
	// those pids' events before submitting them. Defaults to false.
	MirrorBlacklistToKernel bool `yaml:"mirror_blacklist_to_kernel"`
}

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// LoadConfig reads the YAML file at path, unmarshals it into Config, applies
// defaults, and validates all required fields. On validation failure it
// returns one error that joins every failure found (errors.Join), wrapped
// with the file path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: cannot parse %q: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed for %q: %w", path, err)
	}

	return &cfg, nil
}

// applyDefaults fills in zero-value optional fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RingBufferEntries == 0 {
		cfg.RingBufferEntries = 256 * 1024
	}
	if cfg.ArenaFlushTimeoutMS == 0 {
		cfg.ArenaFlushTimeoutMS = 750
	}
	if cfg.PollTimeoutMS == 0 {
		cfg.PollTimeoutMS = 150
	}
	if cfg.BlacklistPatterns == nil {
		cfg.BlacklistPatterns = []string{"tracer", "containerd-shim"}
	}
}

// validate checks that all required fields are populated and that enumerated
// fields contain only valid values.
func validate(cfg *Config) error {
	var errs []error

	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level %q must be one of: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.RingBufferEntries <= 0 {
		errs = append(errs, errors.New("ring_buffer_entries must be positive"))
	}
	if cfg.ArenaFlushTimeoutMS <= 0 {
		errs = append(errs, errors.New("arena_flush_timeout_ms must be positive"))
	}
	if cfg.PollTimeoutMS <= 0 {
		errs = append(errs, errors.New("poll_timeout_ms must be positive"))
	}

	return errors.Join(errs...)
}
