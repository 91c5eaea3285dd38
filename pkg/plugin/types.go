package plugin

import (
	"context"

	"github.com/harun/ghprofile/pkg/profile"
)

// Hook names a lifecycle hook a plugin may implement
type Hook string

const (
	HookInit         Hook = "init"
	HookBeforeRender Hook = "beforeRender"
	HookRender       Hook = "render"
	HookAfterRender  Hook = "afterRender"
)

// Hooks lists every recognized hook in invocation order
var Hooks = []Hook{HookInit, HookBeforeRender, HookRender, HookAfterRender}

// Phases are the hooks the Runner drives; init belongs to the Registry
var Phases = []Hook{HookBeforeRender, HookRender, HookAfterRender}

// ValidHook reports whether name is a recognized hook
func ValidHook(name string) bool {
	for _, hook := range Hooks {
		if string(hook) == name {
			return true
		}
	}
	return false
}

// Metadata identifies a plugin
type Metadata struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	// Version is kept verbatim, never parsed
	Version  string `json:"version" yaml:"version"`
	Author   string `json:"author" yaml:"author"`
	Homepage string `json:"homepage,omitempty" yaml:"homepage,omitempty"`
}

// Options are the runtime options the Registry owns for a plugin
type Options struct {
	// Enabled overrides the enablement when non-nil
	Enabled *bool          `json:"enabled,omitempty"`
	Config  map[string]any `json:"config,omitempty"`
}

// Context is handed to BeforeRender. The plugin may replace or mutate Data;
// on success the Runner adopts Data as the next working copy.
type Context struct {
	Data    *profile.Data
	Content string
	Config  map[string]any
}

type (
	InitFunc         func(ctx context.Context, opts Options) error
	BeforeRenderFunc func(ctx context.Context, pc *Context) error
	// RenderFunc returns the new content, or ErrUnchanged to keep the input
	RenderFunc func(ctx context.Context, content string, data *profile.Data) (string, error)
)

// Plugin is a capability bundle: metadata plus optional hooks. A nil field
// means the hook is not implemented.
type Plugin struct {
	Metadata Metadata

	Init         InitFunc
	BeforeRender BeforeRenderFunc
	Render       RenderFunc
	AfterRender  RenderFunc
}

// ID is shorthand for Metadata.ID
func (p *Plugin) ID() string {
	if p == nil {
		return ""
	}
	return p.Metadata.ID
}

// Has reports whether the plugin implements hook
func (p *Plugin) Has(hook Hook) bool {
	if p == nil {
		return false
	}
	switch hook {
	case HookInit:
		return p.Init != nil
	case HookBeforeRender:
		return p.BeforeRender != nil
	case HookRender:
		return p.Render != nil
	case HookAfterRender:
		return p.AfterRender != nil
	default:
		return false
	}
}

// ImplementedHooks lists the hooks the plugin implements, in invocation order
func (p *Plugin) ImplementedHooks() []Hook {
	var hooks []Hook
	for _, hook := range Hooks {
		if p.Has(hook) {
			hooks = append(hooks, hook)
		}
	}
	return hooks
}

// Registration pairs a plugin with its runtime options
type Registration struct {
	Plugin  *Plugin
	Options Options
	Enabled bool
}

// Bool returns a pointer to b, for Options.Enabled
func Bool(b bool) *bool {
	return &b
}
