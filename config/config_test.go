package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webgfx/gentest/types"
)

func TestDirTable_LongestPrefixWins(t *testing.T) {
	table := NewDirTable(map[string]string{
		"2d.":              "base",
		"2d.fillStyle":     "fill-and-stroke-styles",
		"2d.fillStyle.CSS": "css-colors",
	})

	tests := []struct {
		name string
		want string
	}{
		{"2d.strokeRect.basic", "base"},
		{"2d.fillStyle.default", "fill-and-stroke-styles"},
		{"2d.fillStyle.CSS.hsl", "css-colors"},
	}
	for _, tt := range tests {
		got, err := table.Resolve(tt.name)
		require.NoError(t, err, "name %q", tt.name)
		assert.Equal(t, tt.want, got, "name %q", tt.name)
	}
}

func TestDirTable_NoMatchFails(t *testing.T) {
	table := NewDirTable(map[string]string{"2d.": "base"})

	_, err := table.Resolve("webgl.clear")
	require.Error(t, err)

	var invalid *types.InvalidDefinitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "webgl.clear", invalid.Test)
}

func TestDirTable_SubDirs(t *testing.T) {
	table := NewDirTable(map[string]string{
		"2d.fill":   "styles",
		"2d.stroke": "styles",
		"2d.text":   "text",
	})
	assert.Equal(t, []string{"styles", "text"}, table.SubDirs())
}

func TestLoadDirTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "name2dir.yaml")
	content := "2d.fillStyle: fill-and-stroke-styles\n2d.text: text\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := LoadDirTable(path)
	require.NoError(t, err)

	got, err := table.Resolve("2d.text.align")
	require.NoError(t, err)
	assert.Equal(t, "text", got)
}

func TestLoadDirTable_MissingFile(t *testing.T) {
	_, err := LoadDirTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Element.OutDir = ""
	err := cfg.Validate()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "missing_output_dir", cfgErr.Type)
}
