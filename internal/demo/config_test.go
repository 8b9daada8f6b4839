package demo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")

	content := `
seed: 7
width: 320
fixedStep: 10ms
lifetime: 1.5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	expected := DefaultConfig()
	expected.Seed = 7
	expected.Width = 320
	expected.FixedStep = 10 * time.Millisecond
	expected.Lifetime = 1500 * time.Millisecond

	require.Equal(t, expected, config)
}

func TestLoadConfig_Default(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), config)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fixedStep: 0s\nheight: -1\n"), 0o644))

	_, err := LoadConfig(path)
	require.ErrorContains(t, err, "fixedStep must be positive")
	require.ErrorContains(t, err, "size must be positive")
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
