package config

import (
	"os"
	"path/filepath"
	"testing"

	internal "github.com/ZanzyTHEbar/mod-overlay/modfs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	suite.tempDir = suite.T().TempDir()

	err = os.Chdir(suite.tempDir)
	require.NoError(suite.T(), err)
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), internal.DefaultModsDir, cfg.Mods.Root)
	assert.Equal(suite.T(), "config.yaml", cfg.Mods.ManifestName)
	assert.Equal(suite.T(), ".modignore", cfg.Mods.IgnoreFile)
	assert.Equal(suite.T(), 16, cfg.Mods.MaxComponents)
	assert.Equal(suite.T(), 64, cfg.Mods.BucketCount)
	assert.Equal(suite.T(), 0, cfg.Mods.Workers)
	assert.Equal(suite.T(), "info", cfg.Log.Level)
	assert.False(suite.T(), cfg.Log.Pretty)
}

func (suite *ConfigTestSuite) TestLoadConfigWithFile() {
	configContent := `
mods:
  root: "/srv/game/mods"
  maxComponents: 12
  bucketCount: 8
  workers: 2
log:
  level: debug
  pretty: true
`
	configFile := filepath.Join(suite.tempDir, "test-config.yaml")
	require.NoError(suite.T(), os.WriteFile(configFile, []byte(configContent), 0o644))

	cfg, err := LoadConfig(configFile)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "/srv/game/mods", cfg.Mods.Root)
	assert.Equal(suite.T(), 12, cfg.Mods.MaxComponents)
	assert.Equal(suite.T(), 8, cfg.Mods.BucketCount)
	assert.Equal(suite.T(), 2, cfg.Mods.Workers)
	assert.Equal(suite.T(), "debug", cfg.Log.Level)
	assert.True(suite.T(), cfg.Log.Pretty)

	// Unset keys keep their defaults
	assert.Equal(suite.T(), "config.yaml", cfg.Mods.ManifestName)

	// The global copy is updated too
	assert.Equal(suite.T(), "/srv/game/mods", AppConfig.Mods.Root)
}

func (suite *ConfigTestSuite) TestLoadConfigFromSearchPath() {
	configContent := "mods:\n  root: ./local-mods\n"
	require.NoError(suite.T(), os.WriteFile(filepath.Join(suite.tempDir, "config.yaml"), []byte(configContent), 0o644))

	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "./local-mods", cfg.Mods.Root)
}

func (suite *ConfigTestSuite) TestLoadConfigEnvironmentOverride() {
	suite.T().Setenv("MODS_ROOT", "/from/env")

	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "/from/env", cfg.Mods.Root)
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidYAML() {
	configFile := filepath.Join(suite.tempDir, "broken.yaml")
	require.NoError(suite.T(), os.WriteFile(configFile, []byte("mods: [unclosed"), 0o644))

	_, err := LoadConfig(configFile)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "failed to read config file")
}

func (suite *ConfigTestSuite) TestLoadConfigRejectsInvalidValues() {
	configFile := filepath.Join(suite.tempDir, "invalid.yaml")
	require.NoError(suite.T(), os.WriteFile(configFile, []byte("mods:\n  bucketCount: 0\n"), 0o644))

	_, err := LoadConfig(configFile)
	require.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "bucketCount")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty root", func(c *Config) { c.Mods.Root = "  " }, "mods.root"},
		{"zero components", func(c *Config) { c.Mods.MaxComponents = 0 }, "maxComponents"},
		{"negative workers", func(c *Config) { c.Mods.Workers = -1 }, "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Mods: ModsConfig{Root: "mods", MaxComponents: 16, BucketCount: 4}}
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
