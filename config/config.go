// Package config holds the settings of the translator and its verifier.
// Values come from the defaults, then a YAML file, then VMTRANS_*
// environment variables. Command line flags override the result.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/vmtrans/codegen"
	"github.com/sarchlab/vmtrans/verify"
)

// ErrInvalid is returned for settings that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Environment variables read by ApplyEnv.
const (
	EnvEntry     = "VMTRANS_ENTRY"
	EnvModule    = "VMTRANS_MODULE"
	EnvComments  = "VMTRANS_COMMENTS"
	EnvLogLevel  = "VMTRANS_LOG_LEVEL"
	EnvLogFormat = "VMTRANS_LOG_FORMAT"
	EnvMaxSteps  = "VMTRANS_MAX_STEPS"
)

// Config is the complete configuration.
type Config struct {
	Entry     string `yaml:"entry"`
	Module    string `yaml:"module"`
	Comments  bool   `yaml:"comments"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Verify Verify `yaml:"verify"`
}

// Verify configures the emulator run by -verify.
type Verify struct {
	MaxSteps  int `yaml:"max_steps"`
	StackBase int `yaml:"stack_base"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Entry:     "Sys.init",
		Comments:  true,
		LogLevel:  "info",
		LogFormat: "text",
		Verify: Verify{
			MaxSteps:  verify.DefaultMaxSteps,
			StackBase: verify.DefaultStackBase,
		},
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the
// file keep their default value.
func Load(path string) (Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}

	return c, c.Validate()
}

// ApplyEnv overrides the configuration with the VMTRANS_* variables that
// are set.
func (c *Config) ApplyEnv() error {
	if env.Has(EnvEntry) {
		c.Entry = env.Str(EnvEntry)
	}
	if env.Has(EnvModule) {
		c.Module = env.Str(EnvModule)
	}
	if env.Has(EnvComments) {
		c.Comments = env.Bool(EnvComments)
	}
	if env.Has(EnvLogLevel) {
		c.LogLevel = env.Str(EnvLogLevel)
	}
	if env.Has(EnvLogFormat) {
		c.LogFormat = env.Str(EnvLogFormat)
	}
	c.Verify.MaxSteps = env.Int(EnvMaxSteps, c.Verify.MaxSteps)

	return c.Validate()
}

// Validate checks that every value is usable.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.LogFormat)
	}

	if c.Verify.MaxSteps <= 0 {
		return fmt.Errorf("%w: max steps %d", ErrInvalid, c.Verify.MaxSteps)
	}

	if c.Verify.StackBase <= 15 || c.Verify.StackBase >= verify.RAMSize {
		return fmt.Errorf("%w: stack base %d", ErrInvalid, c.Verify.StackBase)
	}

	return nil
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "trace":
		return codegen.LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}

	return 0, fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
}

// Handler creates the slog handler described by the configuration.
func (c Config) Handler(w io.Writer) slog.Handler {
	level, _ := c.Level()
	opts := &slog.HandlerOptions{Level: level}

	if c.LogFormat == "json" {
		return slog.NewJSONHandler(w, opts)
	}

	return slog.NewTextHandler(w, opts)
}
