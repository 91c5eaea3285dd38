package plugin

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Registry tracks registered plugins, their enablement and configuration.
// Registration order is preserved and is the only ordering guarantee.
type Registry struct {
	logger   zerolog.Logger
	observer HookObserver

	// initMu serializes Initialize so init hooks run exactly once
	initMu sync.Mutex

	mu          sync.RWMutex
	order       []string
	plugins     map[string]*Registration
	initialized bool
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithRegistryObserver reports init hook outcomes to observer
func WithRegistryObserver(observer HookObserver) RegistryOption {
	return func(r *Registry) {
		if observer != nil {
			r.observer = observer
		}
	}
}

// NewRegistry creates an empty registry
func NewRegistry(logger zerolog.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		logger:   logger.With().Str("component", "plugin-registry").Logger(),
		observer: nopObserver{},
		plugins:  make(map[string]*Registration),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a plugin. Invalid plugins and duplicate ids are logged and
// dropped; the return value reports whether the plugin was stored. Plugins
// are enabled unless opts sets Enabled to false.
func (r *Registry) Register(p *Plugin, opts ...Options) bool {
	if err := AssertValid(p); err != nil {
		r.logger.Warn().Err(err).Msg("Rejected plugin")
		return false
	}

	var options Options
	if len(opts) > 0 {
		options = opts[0]
	}

	enabled := true
	if options.Enabled != nil {
		enabled = *options.Enabled
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := p.Metadata.ID
	if _, exists := r.plugins[id]; exists {
		r.logger.Warn().Str("plugin_id", id).Msg("Plugin with this ID is already registered, skipping")
		return false
	}

	r.plugins[id] = &Registration{
		Plugin: p,
		Options: Options{
			Enabled: Bool(enabled),
			Config:  cloneConfig(options.Config),
		},
		Enabled: enabled,
	}
	r.order = append(r.order, id)

	r.logger.Debug().
		Str("plugin_id", id).
		Str("version", p.Metadata.Version).
		Bool("enabled", enabled).
		Msg("Registered plugin")
	return true
}

// Initialize applies configuration overrides and runtime options, then runs
// the init hook of every enabled plugin in registration order. A failing init
// disables its plugin. Later calls, concurrent ones included, are no-ops.
//
// overrides is the plugin section of the config file: a bool value toggles
// enablement, a map value is shallow-merged into the plugin config.
func (r *Registry) Initialize(ctx context.Context, pluginOptions map[string]Options, overrides map[string]any) {
	r.initMu.Lock()
	defer r.initMu.Unlock()

	r.mu.Lock()
	if r.initialized {
		r.mu.Unlock()
		return
	}
	r.applyOverrides(overrides)
	r.applyOptions(pluginOptions)

	type pending struct {
		plugin  *Plugin
		options Options
	}
	var inits []pending
	for _, id := range r.order {
		reg := r.plugins[id]
		if reg.Enabled && reg.Plugin.Init != nil {
			inits = append(inits, pending{plugin: reg.Plugin, options: cloneOptions(reg.Options)})
		}
	}
	r.mu.Unlock()

	// Hooks run without the lock so they may read the registry.
	var failed []string
	for _, item := range inits {
		id := item.plugin.Metadata.ID
		start := time.Now()
		err := call(func() error {
			return item.plugin.Init(ctx, item.options)
		})
		r.observer.ObserveHook(id, HookInit, outcomeOf(err), time.Since(start))
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("plugin_id", id).
				Str("phase", string(HookInit)).
				Msg("Failed to initialize plugin, disabling it")
			failed = append(failed, id)
		}
	}

	r.mu.Lock()
	for _, id := range failed {
		r.setEnabledLocked(id, false)
	}
	r.initialized = true
	r.mu.Unlock()

	r.logger.Debug().Int("initialized", len(inits)-len(failed)).Int("failed", len(failed)).Msg("Plugin registry initialized")
}

func (r *Registry) applyOverrides(overrides map[string]any) {
	for _, id := range sortedKeys(overrides) {
		reg, ok := r.plugins[id]
		if !ok {
			r.logger.Warn().Str("plugin_id", id).Msg("Config references unknown plugin, ignoring")
			continue
		}

		switch value := overrides[id].(type) {
		case bool:
			r.setEnabledLocked(id, value)
		case map[string]any:
			if reg.Options.Config == nil {
				reg.Options.Config = make(map[string]any, len(value))
			}
			maps.Copy(reg.Options.Config, value)
		default:
			r.logger.Warn().
				Str("plugin_id", id).
				Interface("value", value).
				Msg("Unsupported plugin override, expected boolean or object")
		}
	}
}

func (r *Registry) applyOptions(pluginOptions map[string]Options) {
	for _, id := range sortedKeys(pluginOptions) {
		reg, ok := r.plugins[id]
		if !ok {
			r.logger.Warn().Str("plugin_id", id).Msg("Options reference unknown plugin, ignoring")
			continue
		}

		opts := pluginOptions[id]
		if len(opts.Config) > 0 {
			if reg.Options.Config == nil {
				reg.Options.Config = make(map[string]any, len(opts.Config))
			}
			maps.Copy(reg.Options.Config, opts.Config)
		}
		if opts.Enabled != nil {
			r.setEnabledLocked(id, *opts.Enabled)
		}
	}
}

// Plugin returns the plugin registered under id
func (r *Registry) Plugin(id string) (*Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.plugins[id]
	if !ok {
		return nil, false
	}
	return reg.Plugin, true
}

// Plugins returns every registered plugin in registration order
func (r *Registry) Plugins() []*Plugin {
	return r.collect(func(*Registration) bool { return true })
}

// EnabledPlugins returns enabled plugins in registration order
func (r *Registry) EnabledPlugins() []*Plugin {
	return r.collect(func(reg *Registration) bool { return reg.Enabled })
}

// PluginsWithHook returns enabled plugins implementing hook, in registration order
func (r *Registry) PluginsWithHook(hook Hook) []*Plugin {
	return r.collect(func(reg *Registration) bool {
		return reg.Enabled && reg.Plugin.Has(hook)
	})
}

// Registrations returns a snapshot of every registration in registration order
func (r *Registry) Registrations() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Registration, 0, len(r.order))
	for _, id := range r.order {
		reg := r.plugins[id]
		out = append(out, Registration{
			Plugin:  reg.Plugin,
			Options: cloneOptions(reg.Options),
			Enabled: reg.Enabled,
		})
	}
	return out
}

// Options returns a copy of the runtime options stored for id
func (r *Registry) Options(id string) (Options, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.plugins[id]
	if !ok {
		return Options{}, false
	}
	return cloneOptions(reg.Options), true
}

// EnablePlugin enables id. Unknown ids are ignored.
func (r *Registry) EnablePlugin(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setEnabledLocked(id, true)
}

// DisablePlugin disables id. Unknown ids are ignored.
func (r *Registry) DisablePlugin(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setEnabledLocked(id, false)
}

// IsEnabled reports whether id is registered and enabled
func (r *Registry) IsEnabled(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.plugins[id]
	return ok && reg.Enabled
}

// IsInitialized reports whether Initialize has completed
func (r *Registry) IsInitialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}

// Reset drops every registration and the initialized flag
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.order = nil
	r.plugins = make(map[string]*Registration)
	r.initialized = false
}

func (r *Registry) setEnabledLocked(id string, enabled bool) {
	reg, ok := r.plugins[id]
	if !ok {
		return
	}
	reg.Enabled = enabled
	reg.Options.Enabled = Bool(enabled)
}

func (r *Registry) collect(keep func(*Registration) bool) []*Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Plugin, 0, len(r.order))
	for _, id := range r.order {
		if reg := r.plugins[id]; keep(reg) {
			out = append(out, reg.Plugin)
		}
	}
	return out
}

func cloneOptions(opts Options) Options {
	out := Options{Config: cloneConfig(opts.Config)}
	if opts.Enabled != nil {
		out.Enabled = Bool(*opts.Enabled)
	}
	return out
}

func cloneConfig(config map[string]any) map[string]any {
	if config == nil {
		return map[string]any{}
	}
	return maps.Clone(config)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
