package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmaojo/hexalens/internal/hexalens/domain"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ".hexalens", cfg.PersistenceDir)
	assert.Equal(t, "default", cfg.Profile)
	assert.Contains(t, cfg.ExcludedDirs, "node_modules")
	assert.Contains(t, cfg.ExcludedDirs, "vendor")
}

func TestLoadConfigMergesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"context_root": "shop",
		"exclusions": ["shop.generated.{word}"],
		"overrides": {
			"shop.order.OrderId": {"target": "DOMAIN", "kind": "IDENTIFIER", "reason": "team convention"}
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hexalens.json"), []byte(content), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "shop", cfg.ContextRoot)
	assert.Equal(t, []string{"shop.generated.{word}"}, cfg.Exclusions)
	require.Contains(t, cfg.Overrides, domain.TypeID("shop.order.OrderId"))
	assert.Equal(t, "IDENTIFIER", cfg.Overrides["shop.order.OrderId"].Kind)

	// Unset fields fall back to the defaults.
	assert.Equal(t, ".hexalens", cfg.PersistenceDir)
	assert.Equal(t, "default", cfg.Profile)
	assert.Contains(t, cfg.ExcludedDirs, ".git")
}

func TestLoadConfigRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hexalens.json"), []byte("{nope"), 0644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestClassifyProfile(t *testing.T) {
	cfg := &Config{
		Profile:           "strict",
		Exclusions:        []string{"Stub$"},
		PriorityOverrides: map[string]int{"identity-field": 95},
	}
	p := cfg.ClassifyProfile()
	assert.Equal(t, "strict", p.Name)
	assert.True(t, p.Excluded("shop.order.OrderStub"))
	assert.Equal(t, map[string]int{"identity-field": 95}, p.PriorityOverrides)
}

func TestLoadConfigReadsPriorityOverrides(t *testing.T) {
	dir := t.TempDir()
	content := `{"priority_overrides": {"identity-field": 95}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hexalens.json"), []byte(content), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 95, cfg.PriorityOverrides["identity-field"])
	assert.Equal(t, 95, cfg.ClassifyProfile().PriorityOverrides["identity-field"])
}

func TestAnchorConfigFallsBackPerField(t *testing.T) {
	cfg := &Config{InfraSegments: []string{"db"}}
	anchors := cfg.AnchorConfig()

	assert.Equal(t, []string{"db"}, anchors.InfraSegments)
	assert.Contains(t, anchors.DrivingTags, "RestController")
	assert.Contains(t, anchors.InfraTypePrefixes, "database/sql.")
}
