package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rift/riftwm/layout"
)

func TestLoadFallsBackToDefaultsWithoutConfigFile(t *testing.T) {
	m := NewManager(t.TempDir(), nil)
	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "traditional", cfg.Layout.DefaultKind)
	assert.Equal(t, 1, cfg.Workspace.DefaultWorkspaceCount)
}

func TestLoadRejectsInconsistentWorkspaceNames(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, `
workspace:
  default_workspace_count: 2
  workspace_names: ["only-one"]
`)
	m := NewManager(dir, nil)
	_, err := m.Load()
	assert.Error(t, err)
}

func TestLoadAcceptsValidOverrides(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, `
layout:
  default_kind: bsp
animation:
  fps: 120
workspace:
  default_workspace_count: 3
  workspace_names: ["main", "web", "chat"]
`)
	m := NewManager(dir, nil)
	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, layout.BSP, ParseLayoutKind(cfg.Layout.DefaultKind))
	assert.Equal(t, 120.0, cfg.Animation.Fps)
	assert.Equal(t, 3, cfg.Workspace.DefaultWorkspaceCount)
}

func TestParseLayoutKindDefaultsToTraditional(t *testing.T) {
	assert.Equal(t, layout.Traditional, ParseLayoutKind("nonsense"))
}

func TestValidateRejectsOutOfRangeFps(t *testing.T) {
	cfg := defaults()
	cfg.Animation.Fps = 0
	assert.Error(t, cfg.Validate())
}

func writeYAML(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
}
