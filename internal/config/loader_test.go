package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader("/path/to/config.json")
	assert.NotNil(t, loader)
	assert.Equal(t, "/path/to/config.json", loader.GetConfigPath())

	assert.Equal(t, DefaultFileName, NewLoader("").GetConfigPath())
}

func TestLoaderLoad(t *testing.T) {
	t.Run("load default config when file doesn't exist", func(t *testing.T) {
		cfg, err := NewLoader(filepath.Join(t.TempDir(), "nonexistent.json")).Load()

		require.NoError(t, err)
		assert.Equal(t, "default", cfg.Template)
		assert.Equal(t, SchemaVersion, cfg.SchemaVersion)
	})

	t.Run("load v1 config from file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "gh-profile.config.json")
		testConfig := `{
			"template": "minimal",
			"output": "./out/README.md",
			"github": {"excludeRepos": ["dotfiles"], "pinnedRepos": ["hello-world"]},
			"plugins": {"stats": false},
			"pluginConfig": {"projects": {"limit": 3}}
		}`
		require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0644))

		cfg, err := NewLoader(configPath).Load()

		require.NoError(t, err)
		assert.Equal(t, SchemaVersion, cfg.SchemaVersion)
		assert.Equal(t, "minimal", cfg.Template)
		assert.Equal(t, "./out/README.md", cfg.Output)
		assert.Equal(t, []string{"dotfiles"}, cfg.GitHub.ExcludeRepos)
		assert.Equal(t, []string{"hello-world"}, cfg.GitHub.PinnedRepos)
		assert.Equal(t, map[string]bool{"stats": false}, cfg.Plugins)
		assert.EqualValues(t, 3, cfg.PluginConfig["projects"]["limit"])
		assert.Equal(t, "info", cfg.Logging.Level, "defaults survive")
	})

	t.Run("keeps plugin ids and config keys as written", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "gh-profile.config.json")
		testConfig := `{
			"plugins": {"myFooter": true},
			"pluginConfig": {"projects": {"maxItems": 3, "showForks": true}}
		}`
		require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0644))

		cfg, err := NewLoader(configPath).Load()

		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"myFooter": true}, cfg.Plugins)
		require.Contains(t, cfg.PluginConfig, "projects")
		assert.Contains(t, cfg.PluginConfig["projects"], "maxItems")
		assert.Contains(t, cfg.PluginConfig["projects"], "showForks")
		assert.EqualValues(t, 3, cfg.PluginConfig["projects"]["maxItems"])
	})

	t.Run("keeps camelCase plugin config keys in yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "gh-profile.yaml")
		testConfig := "pluginConfig:\n  projects:\n    maxItems: 2\n"
		require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0644))

		cfg, err := NewLoader(configPath).Load()

		require.NoError(t, err)
		assert.EqualValues(t, 2, cfg.PluginConfig["projects"]["maxItems"])
	})

	t.Run("load yaml config", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "gh-profile.yaml")
		testConfig := "$schemaVersion: 2\ntemplate: showcase\nlogging:\n  level: debug\n"
		require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0644))

		cfg, err := NewLoader(configPath).Load()

		require.NoError(t, err)
		assert.Equal(t, "showcase", cfg.Template)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("GH_PROFILE_TOKEN", "ghp_fromenv")
		t.Setenv("GH_PROFILE_TEMPLATE", "stats-heavy")

		cfg, err := NewLoader(filepath.Join(t.TempDir(), "missing.json")).Load()

		require.NoError(t, err)
		assert.Equal(t, "ghp_fromenv", cfg.Token)
		assert.Equal(t, "stats-heavy", cfg.Template)
	})

	t.Run("unknown keys", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(configPath, []byte(`{"template": "default", "colour": "blue"}`), 0644))

		_, err := NewLoader(configPath).Load()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfig))
		assert.Contains(t, err.Error(), "colour")
	})

	t.Run("non-object config", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(configPath, []byte(`[1, 2]`), 0644))

		_, err := NewLoader(configPath).Load()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfig))
	})

	t.Run("unsupported schema version", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(configPath, []byte(`{"$schemaVersion": 9}`), 0644))

		_, err := NewLoader(configPath).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported $schemaVersion")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "invalid.json")
		require.NoError(t, os.WriteFile(configPath, []byte("invalid json"), 0644))

		_, err := NewLoader(configPath).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestLoaderSaveRaw(t *testing.T) {
	t.Run("json keeps key case", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "nested", "gh-profile.config.json")
		loader := NewLoader(configPath)

		require.NoError(t, loader.SaveRaw(Migrate(map[string]any{"template": "minimal"})))

		content, err := os.ReadFile(configPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"$schemaVersion": 2`)
		assert.Contains(t, string(content), `"templatesPath": ""`)

		raw, err := loader.LoadRaw()
		require.NoError(t, err)
		assert.Equal(t, 2, DetectVersion(raw))
	})

	t.Run("yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "gh-profile.yml")
		loader := NewLoader(configPath)

		require.NoError(t, loader.SaveRaw(map[string]any{"$schemaVersion": 2, "template": "minimal"}))

		cfg, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, "minimal", cfg.Template)
	})
}

func TestLoadRawMissingFile(t *testing.T) {
	raw, err := NewLoader(filepath.Join(t.TempDir(), "missing.json")).LoadRaw()
	assert.NoError(t, err)
	assert.Nil(t, raw)
}
