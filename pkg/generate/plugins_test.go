package generate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/ghprofile/pkg/plugin"
	"github.com/harun/ghprofile/pkg/plugin/builtin"
)

func writeScriptPlugin(t *testing.T, dir, id string) {
	t.Helper()
	pluginDir := filepath.Join(dir, id)
	require.NoError(t, os.MkdirAll(pluginDir, 0755))
	manifest := `{
		"id": "` + id + `",
		"name": "Script ` + id + `",
		"description": "script plugin",
		"version": "0.1.0",
		"author": "tester",
		"hooks": {"render": "cat; printf '\\n` + id + `'"}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(pluginDir, plugin.ManifestFile), []byte(manifest), 0644))
}

func TestPreparePlugins(t *testing.T) {
	t.Run("defaults enable every built-in", func(t *testing.T) {
		reg := plugin.NewRegistry(zerolog.Nop())

		prepared, err := PreparePlugins(context.Background(), reg, PluginSetup{Builtins: builtin.All()}, zerolog.Nop())
		require.NoError(t, err)

		assert.Equal(t, builtin.IDs(), prepared.Resolution.Enabled)
		assert.Empty(t, prepared.Resolution.Disabled)
		assert.Nil(t, prepared.Scripts)
		assert.Len(t, reg.EnabledPlugins(), 3)
	})

	t.Run("cli and config toggles", func(t *testing.T) {
		reg := plugin.NewRegistry(zerolog.Nop())

		prepared, err := PreparePlugins(context.Background(), reg, PluginSetup{
			Builtins:   builtin.All(),
			CLIEnable:  []string{"stats"},
			CLIDisable: []string{"socials,unknown"},
			Config:     map[string]bool{"stats": false, "projects": false},
		}, zerolog.Nop())
		require.NoError(t, err)

		assert.Equal(t, []string{"stats"}, prepared.Resolution.Enabled)
		assert.ElementsMatch(t, []string{"socials", "projects"}, prepared.Resolution.Disabled)
		assert.True(t, reg.IsEnabled("stats"))
		assert.False(t, reg.IsEnabled("socials"))
		assert.False(t, reg.IsEnabled("projects"))
	})

	t.Run("loads script plugins after built-ins", func(t *testing.T) {
		dir := t.TempDir()
		writeScriptPlugin(t, dir, "footer")
		reg := plugin.NewRegistry(zerolog.Nop())

		prepared, err := PreparePlugins(context.Background(), reg, PluginSetup{
			Builtins:      builtin.All(),
			Dir:           dir,
			EngineVersion: "0.2.0",
		}, zerolog.Nop())
		require.NoError(t, err)

		require.NotNil(t, prepared.Scripts)
		assert.Equal(t, []string{"footer"}, prepared.Scripts.Loaded)
		assert.Equal(t, append(builtin.IDs(), "footer"), prepared.Resolution.Enabled)
	})

	t.Run("missing plugins directory", func(t *testing.T) {
		reg := plugin.NewRegistry(zerolog.Nop())

		prepared, err := PreparePlugins(context.Background(), reg, PluginSetup{Dir: filepath.Join(t.TempDir(), "none")}, zerolog.Nop())
		require.NoError(t, err)
		assert.Empty(t, prepared.Scripts.Loaded)
		assert.Empty(t, prepared.Resolution.Enabled)
	})

	t.Run("rejects an initialized registry", func(t *testing.T) {
		reg := plugin.NewRegistry(zerolog.Nop())
		reg.Initialize(context.Background(), nil, nil)

		_, err := PreparePlugins(context.Background(), reg, PluginSetup{}, zerolog.Nop())
		assert.ErrorIs(t, err, plugin.ErrAlreadyInitialized)
	})
}
