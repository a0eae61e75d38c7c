package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted when no config path is
// given explicitly.
const EnvVar = "SIMP_CONFIG"

// Config holds the complete interpreter configuration
type Config struct {
	Limits LimitsConfig `toml:"limits" yaml:"limits"`
	Log    LogConfig    `toml:"log" yaml:"log"`
	Output OutputConfig `toml:"output" yaml:"output"`
}

// LimitsConfig bounds parser and evaluator recursion
type LimitsConfig struct {
	// MaxDepth is the nesting limit; 0 disables it.
	MaxDepth int `toml:"max_depth" yaml:"max_depth"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// OutputConfig holds terminal output settings
type OutputConfig struct {
	// Color is one of "auto", "always" or "never".
	Color string `toml:"color" yaml:"color"`
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"console", "json"}
	validColors  = []string{"auto", "always", "never"}
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Limits: LimitsConfig{MaxDepth: 1000},
		Log:    LogConfig{Level: "warn", Format: "console"},
		Output: OutputConfig{Color: "auto"},
	}
}

// Load reads a TOML or YAML file, chosen by extension, on top of Default.
// Unknown keys are an error.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = decodeTOML(data, cfg)
	case ".yaml", ".yml":
		err = decodeYAML(data, cfg)
	default:
		return nil, errors.Errorf("config %s: unsupported format %q (want .toml, .yaml or .yml)", path, ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Resolve loads path, or the file named by $SIMP_CONFIG when path is empty.
// With neither, it returns Default.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// An empty document leaves the defaults in place.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Limits.MaxDepth < 0 {
		result = multierror.Append(result, fmt.Errorf("limits.max_depth must be >= 0, got %d", c.Limits.MaxDepth))
	}
	if !slices.Contains(validLevels, c.Log.Level) {
		result = multierror.Append(result, fmt.Errorf("log.level must be one of %s, got %q", strings.Join(validLevels, ", "), c.Log.Level))
	}
	if !slices.Contains(validFormats, c.Log.Format) {
		result = multierror.Append(result, fmt.Errorf("log.format must be one of %s, got %q", strings.Join(validFormats, ", "), c.Log.Format))
	}
	if !slices.Contains(validColors, c.Output.Color) {
		result = multierror.Append(result, fmt.Errorf("output.color must be one of %s, got %q", strings.Join(validColors, ", "), c.Output.Color))
	}

	return result.ErrorOrNil()
}

// ColorEnabled resolves the color setting for an output that is or is not a
// terminal.
func (c *Config) ColorEnabled(terminal bool) bool {
	switch c.Output.Color {
	case "always":
		return true
	case "never":
		return false
	default:
		return terminal
	}
}
