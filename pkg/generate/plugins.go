package generate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/harun/ghprofile/pkg/plugin"
)

// PluginSetup describes where plugins come from and how they are toggled
type PluginSetup struct {
	// Builtins are registered first, in order
	Builtins []*plugin.Plugin
	// Dir holds local script plugins; empty skips discovery
	Dir string
	// EngineVersion gates script plugin engine constraints
	EngineVersion string

	CLIEnable  []string
	CLIDisable []string
	// Config holds the persisted enable/disable overrides
	Config map[string]bool
}

// Prepared is the outcome of PreparePlugins
type Prepared struct {
	Registry   *plugin.Registry
	Resolution plugin.Resolution
	Scripts    *plugin.LoadResult
}

// PreparePlugins registers built-ins and local script plugins with reg,
// resolves enablement from CLI flags and config, and applies it. reg must
// not be initialized yet.
func PreparePlugins(ctx context.Context, reg *plugin.Registry, setup PluginSetup, logger zerolog.Logger) (*Prepared, error) {
	if reg.IsInitialized() {
		return nil, plugin.ErrAlreadyInitialized
	}

	for _, p := range setup.Builtins {
		reg.Register(p)
	}

	prepared := &Prepared{Registry: reg}
	if setup.Dir != "" {
		loaded, err := plugin.NewLoader(logger, setup.EngineVersion).LoadDir(ctx, setup.Dir, reg)
		if err != nil {
			return nil, fmt.Errorf("failed to load script plugins: %w", err)
		}
		prepared.Scripts = loaded
	}

	ids := make([]string, 0, len(reg.Plugins()))
	for _, p := range reg.Plugins() {
		ids = append(ids, p.ID())
	}

	enable, disable := plugin.ParseFlags(setup.CLIEnable, setup.CLIDisable)
	resolution := plugin.Resolve(plugin.ResolutionInput{
		AllPluginIDs: ids,
		CLIEnable:    enable,
		CLIDisable:   disable,
		Config:       setup.Config,
	})

	for _, id := range resolution.Enabled {
		reg.EnablePlugin(id)
	}
	for _, id := range resolution.Disabled {
		reg.DisablePlugin(id)
	}
	prepared.Resolution = resolution

	logger.Debug().
		Strs("enabled", resolution.Enabled).
		Strs("disabled", resolution.Disabled).
		Msg("Resolved plugins")
	return prepared, nil
}
