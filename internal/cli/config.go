package cli

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sable-lang/sable/internal/diagnostics"
)

// ManifestName is the file name of a crate manifest
const ManifestName = "sable.yaml"

// Config is the crate manifest merged with command line overrides
type Config struct {
	Name      string   `yaml:"name"`
	Version   string   `yaml:"version,omitempty"`
	Compiler  string   `yaml:"compiler,omitempty"` // semver constraint on the compiler version
	Sources   []string `yaml:"sources"`
	Workers   int      `yaml:"workers,omitempty"`
	MaxErrors int      `yaml:"max_errors,omitempty"`
	Color     string   `yaml:"color,omitempty"`
	Verbose   bool     `yaml:"verbose,omitempty"`
	Debug     bool     `yaml:"debug,omitempty"`

	// Dir is the directory relative source paths are resolved against
	Dir string `yaml:"-"`
}

// DefaultConfig returns the configuration used when no manifest exists
func DefaultConfig() *Config {
	return &Config{
		Sources:   []string{"."},
		MaxErrors: 100,
		Color:     diagnostics.ColorAuto,
		Dir:       ".",
	}
}

// LoadConfig loads a manifest. A missing file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		return config, nil
	}

	config.Dir = filepath.Dir(configPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}

		return nil, errors.Wrap(err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", configPath)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", configPath)
	}

	return config, nil
}

// SaveConfig writes the manifest to configPath
func (c *Config) SaveConfig(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// Validate checks field values and the compiler version constraint
func (c *Config) Validate() error {
	if c.Version != "" {
		if _, err := semver.NewVersion(c.Version); err != nil {
			return errors.Wrapf(err, "version %q", c.Version)
		}
	}

	if c.Compiler != "" {
		constraint, err := semver.NewConstraint(c.Compiler)
		if err != nil {
			return errors.Wrapf(err, "compiler constraint %q", c.Compiler)
		}

		if !constraint.Check(semver.MustParse(Version)) {
			return errors.Errorf("compiler %s does not satisfy %q", Version, c.Compiler)
		}
	}

	switch c.Color {
	case "", diagnostics.ColorAuto, diagnostics.ColorAlways, diagnostics.ColorNever:
	default:
		return errors.Errorf("color must be auto, always or never, got %q", c.Color)
	}

	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}

	if c.MaxErrors < 0 {
		return errors.Errorf("max_errors must not be negative, got %d", c.MaxErrors)
	}

	return nil
}

// WorkerCount returns the configured parallelism, defaulting to the CPU count
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}

	return runtime.NumCPU()
}

// SourcePaths returns the source entries resolved against Dir
func (c *Config) SourcePaths() []string {
	paths := make([]string, len(c.Sources))

	for i, s := range c.Sources {
		if filepath.IsAbs(s) {
			paths[i] = s
		} else {
			paths[i] = filepath.Join(c.Dir, s)
		}
	}

	return paths
}
