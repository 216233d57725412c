// Package config provides run configuration for the test generator and the
// name-to-directory table used to place generated artifacts.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/webgfx/gentest/types"
)

// TargetConfig holds output locations for one target family.
type TargetConfig struct {
	OutDir      string `yaml:"out_dir"`
	ImageOutDir string `yaml:"image_out_dir"`
}

// Config controls a generation run.
type Config struct {
	// DefinitionDir holds the YAML test-definition corpus.
	DefinitionDir string `yaml:"definition_dir"`
	// NameMapFile is the YAML name-prefix to subdirectory table.
	NameMapFile string `yaml:"name_map_file"`
	// Element receives artifacts for inline canvas tests.
	Element TargetConfig `yaml:"element"`
	// Offscreen receives artifacts for offscreen and worker tests.
	Offscreen TargetConfig `yaml:"offscreen"`
}

// Default returns the standard suite layout: definitions next to the tool,
// output split across the two target-family roots.
func Default() Config {
	return Config{
		DefinitionDir: "yaml",
		NameMapFile:   "name2dir.yaml",
		Element:       TargetConfig{OutDir: "../element", ImageOutDir: "../element"},
		Offscreen:     TargetConfig{OutDir: "../offscreen", ImageOutDir: "../offscreen"},
	}
}

// Validate checks that all required locations are set.
func (c Config) Validate() error {
	if c.DefinitionDir == "" {
		return &ConfigError{Type: "missing_definition_dir", Message: "definition directory is required"}
	}
	if c.NameMapFile == "" {
		return &ConfigError{Type: "missing_name_map", Message: "name map file is required"}
	}
	for _, tc := range []struct {
		name string
		cfg  TargetConfig
	}{{"element", c.Element}, {"offscreen", c.Offscreen}} {
		if tc.cfg.OutDir == "" || tc.cfg.ImageOutDir == "" {
			return &ConfigError{
				Type:    "missing_output_dir",
				Message: "output directories are required for target family: " + tc.name,
			}
		}
	}
	return nil
}

// ConfigError represents configuration validation errors.
type ConfigError struct {
	Type    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Type + ": " + e.Message
}

// DirTable maps hierarchical test-name prefixes to output subdirectories.
// Lookup uses longest-prefix match so more specific prefixes win.
type DirTable struct {
	dirs     map[string]string
	prefixes []string
}

// NewDirTable builds a table from a prefix-to-directory mapping.
func NewDirTable(dirs map[string]string) *DirTable {
	prefixes := make([]string, 0, len(dirs))
	for prefix := range dirs {
		prefixes = append(prefixes, prefix)
	}
	// Longest prefix first; ties broken lexicographically for determinism.
	sort.Slice(prefixes, func(i, j int) bool {
		if len(prefixes[i]) != len(prefixes[j]) {
			return len(prefixes[i]) > len(prefixes[j])
		}
		return prefixes[i] < prefixes[j]
	})
	return &DirTable{dirs: dirs, prefixes: prefixes}
}

// LoadDirTable reads a YAML prefix-to-directory mapping from disk.
func LoadDirTable(path string) (*DirTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read name map %s: %w", path, err)
	}
	var dirs map[string]string
	if err := yaml.Unmarshal(data, &dirs); err != nil {
		return nil, fmt.Errorf("failed to parse name map %s: %w", path, err)
	}
	return NewDirTable(dirs), nil
}

// Resolve returns the subdirectory for a test name via longest-prefix match.
func (t *DirTable) Resolve(name string) (string, error) {
	for _, prefix := range t.prefixes {
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			return t.dirs[prefix], nil
		}
	}
	return "", types.NewInvalidDefinition(name, "no defined target directory mapping")
}

// SubDirs returns the distinct output subdirectories, sorted.
func (t *DirTable) SubDirs() []string {
	seen := map[string]bool{}
	var dirs []string
	for _, dir := range t.dirs {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs
}
