// Package loader reads the declarative test-definition corpus from YAML
// files. Each file holds a sequence of records; a record is either a test
// entry or a generator record that expands into several entries.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/webgfx/gentest/types"
)

// Loader reads every *.yaml file in a corpus directory.
type Loader struct {
	Dir string
	log *zap.Logger
}

// New creates a corpus loader. A nil logger disables logging.
func New(dir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{Dir: dir, log: logger}
}

// Load reads all definition files in the corpus directory, in sorted file
// order so duplicate detection downstream is deterministic.
func (l *Loader) Load() ([]types.TestEntry, error) {
	files, err := filepath.Glob(filepath.Join(l.Dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find definition files: %w", err)
	}
	sort.Strings(files)

	var entries []types.TestEntry
	for _, file := range files {
		fileEntries, err := l.LoadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		entries = append(entries, fileEntries...)
	}
	l.log.Info("loaded test definitions",
		zap.Int("files", len(files)), zap.Int("entries", len(entries)))
	return entries, nil
}

// LoadFile reads a single definition file.
func (l *Loader) LoadFile(path string) ([]types.TestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var records []yaml.Node
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var entries []types.TestEntry
	for _, record := range records {
		if isGeneratorRecord(&record) {
			var gen generatorRecord
			if err := record.Decode(&gen); err != nil {
				return nil, fmt.Errorf("failed to parse generator record: %w", err)
			}
			generated, err := gen.expand()
			if err != nil {
				return nil, err
			}
			entries = append(entries, generated...)
			continue
		}

		var entry types.TestEntry
		if err := record.Decode(&entry); err != nil {
			return nil, fmt.Errorf("failed to parse test entry: %w", err)
		}
		if entry.Disabled {
			l.log.Debug("skipping disabled test", zap.String("name", entry.Name))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// isGeneratorRecord reports whether a record mapping has a "generator" key.
func isGeneratorRecord(node *yaml.Node) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "generator" {
			return true
		}
	}
	return false
}
