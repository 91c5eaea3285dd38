package plugin

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/harun/ghprofile/pkg/profile"
)

// Runner drives the beforeRender, render and afterRender phases over the
// plugins the Registry reports as enabled at call time. Plugins run one at a
// time in registration order. Every hook receives its own deep copy of the
// data; only values a hook returns travel down the chain.
type Runner struct {
	registry *Registry
	logger   zerolog.Logger
	observer HookObserver
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithObserver reports every hook outcome to observer
func WithObserver(observer HookObserver) RunnerOption {
	return func(r *Runner) {
		if observer != nil {
			r.observer = observer
		}
	}
}

// NewRunner creates a runner bound to reg
func NewRunner(reg *Registry, logger zerolog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: reg,
		logger:   logger.With().Str("component", "plugin-runner").Logger(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunBeforeRender threads data through every beforeRender hook and returns
// the final working copy. The input is never modified.
func (r *Runner) RunBeforeRender(ctx context.Context, data *profile.Data) (*profile.Data, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	current := data.Clone()
	for _, p := range r.registry.PluginsWithHook(HookBeforeRender) {
		pc := &Context{
			Data:   current.Clone(),
			Config: r.config(p.Metadata.ID),
		}

		err := r.invoke(p, HookBeforeRender, func() error {
			return p.BeforeRender(ctx, pc)
		})
		if err != nil {
			continue
		}
		if pc.Data != nil {
			current = pc.Data
		}
	}
	return current, nil
}

// RunRender threads content through every render hook
func (r *Runner) RunRender(ctx context.Context, data *profile.Data, content string) (string, error) {
	return r.runContent(ctx, HookRender, data, content)
}

// RunAfterRender threads content through every afterRender hook
func (r *Runner) RunAfterRender(ctx context.Context, data *profile.Data, content string) (string, error) {
	return r.runContent(ctx, HookAfterRender, data, content)
}

func (r *Runner) runContent(ctx context.Context, hook Hook, data *profile.Data, content string) (string, error) {
	if err := r.ready(); err != nil {
		return "", err
	}

	current := content
	for _, p := range r.registry.PluginsWithHook(hook) {
		fn := p.Render
		if hook == HookAfterRender {
			fn = p.AfterRender
		}

		view := data.Clone()
		var next string
		err := r.invoke(p, hook, func() error {
			var err error
			next, err = fn(ctx, current, view)
			return err
		})
		if err == nil {
			current = next
		}
	}
	return current, nil
}

// invoke runs a single hook and logs its failure. The returned error only
// tells the caller to discard the hook's result.
func (r *Runner) invoke(p *Plugin, hook Hook, fn func() error) error {
	id := p.Metadata.ID
	start := time.Now()
	err := call(fn)
	r.observer.ObserveHook(id, hook, outcomeOf(err), time.Since(start))

	switch {
	case err == nil:
	case errors.Is(err, ErrUnchanged):
		r.logger.Warn().
			Str("plugin_id", id).
			Str("phase", string(hook)).
			Msg("Plugin returned no content, keeping previous value")
	default:
		err = &HookError{PluginID: id, Phase: hook, Err: err}
		event := r.logger.Error().Err(err).Str("plugin_id", id).Str("phase", string(hook))
		var panicErr *PanicError
		if errors.As(err, &panicErr) {
			event = event.Bytes("stack", panicErr.Stack)
		}
		event.Msg("Plugin hook failed")
	}
	return err
}

func (r *Runner) ready() error {
	if r.registry == nil || !r.registry.IsInitialized() {
		return ErrNotInitialized
	}
	return nil
}

func (r *Runner) config(id string) map[string]any {
	opts, ok := r.registry.Options(id)
	if !ok {
		return map[string]any{}
	}
	return opts.Config
}
