package syncconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesSpecValues(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1<<20, cfg.MaxPayloadBytes)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.ValidateProof)
}

func TestLoadReturnsDefaultWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := "maxPayloadBytes: 2048\ntimeouts:\n  validateProof: 1s\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.MaxPayloadBytes)
	assert.Equal(t, time.Second, cfg.Timeouts.ValidateProof)
	assert.Equal(t, Default().Timeouts.InstallPackage, cfg.Timeouts.InstallPackage)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
