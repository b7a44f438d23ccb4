package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pmaojo/hexalens/internal/hexalens/classify"
	"github.com/pmaojo/hexalens/internal/hexalens/domain"
)

type Config struct {
	PersistenceDir    string                                  `json:"persistence_dir"`
	ExcludedDirs      []string                                `json:"excluded_dirs"`
	ContextRoot       string                                  `json:"context_root,omitempty"`
	Profile           string                                  `json:"profile,omitempty"`
	DrivingTags       []string                                `json:"driving_tags,omitempty"`
	InfraTags         []string                                `json:"infra_tags,omitempty"`
	InfraSegments     []string                                `json:"infra_segments,omitempty"`
	InfraPrefixes     []string                                `json:"infra_prefixes,omitempty"`
	NamingRules       []classify.NamingRule                   `json:"naming_rules,omitempty"`
	PriorityOverrides map[string]int                          `json:"priority_overrides,omitempty"`
	Overrides         map[domain.TypeID]classify.OverrideSpec `json:"overrides,omitempty"`
	Exclusions        []string                                `json:"exclusions,omitempty"`
}

var DefaultConfig = Config{
	PersistenceDir: ".hexalens",
	ExcludedDirs:   []string{"node_modules", ".git", "vendor", "dist", "build", "testdata"},
	Profile:        "default",
}

func LoadConfig(rootDir string) (*Config, error) {
	configPath := filepath.Join(rootDir, "hexalens.json")
	content, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		// Return defaults if file not found
		cfg := DefaultConfig
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(content, &config); err != nil {
		return nil, err
	}

	if config.PersistenceDir == "" {
		config.PersistenceDir = DefaultConfig.PersistenceDir
	}
	if config.ExcludedDirs == nil {
		config.ExcludedDirs = DefaultConfig.ExcludedDirs
	}
	if config.Profile == "" {
		config.Profile = DefaultConfig.Profile
	}

	return &config, nil
}

// ClassifyProfile builds the classification profile the config describes.
func (c *Config) ClassifyProfile() *classify.Profile {
	return &classify.Profile{
		Name:              c.Profile,
		PriorityOverrides: c.PriorityOverrides,
		Overrides:         c.Overrides,
		Exclusions:        c.Exclusions,
		NamingRules:       c.NamingRules,
	}
}

// AnchorConfig builds the anchor configuration, falling back to the
// built-in sets for any field left empty.
func (c *Config) AnchorConfig() classify.AnchorConfig {
	anchors := classify.DefaultAnchorConfig()
	if len(c.DrivingTags) > 0 {
		anchors.DrivingTags = c.DrivingTags
	}
	if len(c.InfraTags) > 0 {
		anchors.InfraTags = c.InfraTags
	}
	if len(c.InfraSegments) > 0 {
		anchors.InfraSegments = c.InfraSegments
	}
	if len(c.InfraPrefixes) > 0 {
		anchors.InfraTypePrefixes = c.InfraPrefixes
	}
	return anchors
}
