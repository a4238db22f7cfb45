// Package config provides the lambdapack project configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the project config file looked up in the project
// directory.
const DefaultFileName = "lambdapack.yaml"

// Project is the on-disk project configuration. Relative paths are resolved
// against the project directory by the CLI.
type Project struct {
	// Entry is the list of Lambda handler entry points to bundle.
	Entry []string `yaml:"entry"`

	// Formats lists the output module formats ("es", "cjs", ...).
	// Empty means the Lambda default of ["es"].
	Formats []string `yaml:"formats,omitempty"`

	// OutDir is the build output directory. Defaults to "dist".
	OutDir string `yaml:"out_dir,omitempty"`

	// External lists module specifiers to force-externalize in addition to
	// the Node built-in registry.
	External []string `yaml:"external,omitempty"`

	// Minify enables output minification.
	Minify bool `yaml:"minify,omitempty"`

	// Sourcemap emits source maps next to the bundles.
	Sourcemap bool `yaml:"sourcemap,omitempty"`

	// Zip configures the deployable archive step.
	Zip ZipConfig `yaml:"zip,omitempty"`
}

// ZipConfig configures archive packaging of the build output.
type ZipConfig struct {
	// Disabled skips the archive step entirely.
	Disabled bool `yaml:"disabled,omitempty"`

	// Out is the archive destination path. Defaults to "<out_dir>.zip".
	Out string `yaml:"out,omitempty"`
}

// DefaultPath returns the default config file path inside dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, DefaultFileName)
}

// New returns a project configuration with sensible starter values.
func New() *Project {
	return &Project{
		Entry:  []string{"src/index.ts"},
		OutDir: "dist",
	}
}

// Load reads a project configuration from path.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &p, nil
}

// LoadOrDefault reads a project configuration, returning an empty one when
// the file does not exist so flag-only usage works without a config file.
func LoadOrDefault(path string) (*Project, error) {
	p, err := Load(path)
	if err != nil {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return &Project{}, nil
		}
		return nil, err
	}
	return p, nil
}

// Save writes the configuration to path, creating parent directories as
// needed.
func (p *Project) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
