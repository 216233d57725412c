// Package gentest provides shared infrastructure for generating the canvas
// drawing-surface conformance test suite from declarative test definitions.
package gentest

import (
	"go.uber.org/zap"

	"github.com/webgfx/gentest/config"
	"github.com/webgfx/gentest/generator"
	"github.com/webgfx/gentest/loader"
)

// Version of the gentest package
const Version = "v0.1.0"

// Quick constructor functions for common use cases

// NewLoader creates a corpus loader with sensible defaults
func NewLoader(definitionDir string, logger *zap.Logger) *loader.Loader {
	return loader.New(definitionDir, logger)
}

// NewGenerator creates a generator using the embedded artifact templates
func NewGenerator(cfg config.Config, table *config.DirTable, logger *zap.Logger) *generator.Generator {
	return generator.New(cfg, table, generator.Options{Logger: logger})
}

// GenerateAll is a convenience function for the most common use case: load
// the whole corpus and generate every enabled artifact.
func GenerateAll(cfg config.Config, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	table, err := config.LoadDirTable(cfg.NameMapFile)
	if err != nil {
		return err
	}
	entries, err := NewLoader(cfg.DefinitionDir, logger).Load()
	if err != nil {
		return err
	}
	return NewGenerator(cfg, table, logger).Run(entries)
}
