// Package generate drives a README generation run: fetch, normalize, plugin
// phases, template render and output.
package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harun/ghprofile/pkg/github"
	"github.com/harun/ghprofile/pkg/output"
	"github.com/harun/ghprofile/pkg/plugin"
	"github.com/harun/ghprofile/pkg/profile"
	"github.com/harun/ghprofile/pkg/templates"
)

// Fetcher loads the raw GitHub data for a user
type Fetcher interface {
	FetchAll(ctx context.Context, login string) (*github.Data, error)
}

// Recorder receives run level measurements
type Recorder interface {
	ObserveGeneration(templateID string, err error, duration time.Duration, at time.Time)
	ObserveAssets(n int)
	SetPluginsEnabled(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveGeneration(string, error, time.Duration, time.Time) {}
func (nopRecorder) ObserveAssets(int)                                        {}
func (nopRecorder) SetPluginsEnabled(int)                                    {}

// Request describes one generation
type Request struct {
	Username   string
	TemplateID string
	Filter     profile.Options

	// Plugins is the prepared registry for this run. A nil registry runs
	// without plugins.
	Plugins       *plugin.Registry
	PluginOptions map[string]plugin.Options
	// PluginConfig is merged into each plugin's config before init
	PluginConfig map[string]map[string]any
}

// RunRequest is a Request whose result is written to disk
type RunRequest struct {
	Request
	Output      string
	Overwrite   bool
	LocalAssets bool
}

// RunResult describes a completed Run
type RunResult struct {
	output.Result
	RunID    string
	Assets   int
	Duration time.Duration
}

// Generator renders READMEs
type Generator struct {
	client    Fetcher
	templates *templates.Registry
	logger    zerolog.Logger
	observer  plugin.HookObserver
	recorder  Recorder
	assets    output.Fetcher
	now       func() time.Time
}

// Option configures a Generator
type Option func(*Generator)

// WithHookObserver is attached to the runner of every run
func WithHookObserver(observer plugin.HookObserver) Option {
	return func(g *Generator) {
		if observer != nil {
			g.observer = observer
		}
	}
}

// WithRecorder records run metrics
func WithRecorder(recorder Recorder) Option {
	return func(g *Generator) {
		if recorder != nil {
			g.recorder = recorder
		}
	}
}

// WithAssetFetcher replaces the HTTP fetcher used for local assets
func WithAssetFetcher(fetcher output.Fetcher) Option {
	return func(g *Generator) {
		if fetcher != nil {
			g.assets = fetcher
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGenerator creates a generator
func NewGenerator(client Fetcher, tmpl *templates.Registry, logger zerolog.Logger, opts ...Option) *Generator {
	g := &Generator{
		client:    client,
		templates: tmpl,
		logger:    logger.With().Str("component", "generator").Logger(),
		recorder:  nopRecorder{},
		assets:    output.NewHTTPFetcher(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate renders the README for req.Username and returns the markdown
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	content, _, err := g.generate(ctx, req)
	return content, err
}

// Run generates the README and writes it to req.Output
func (g *Generator) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	start := g.now()
	content, runID, err := g.generate(ctx, req.Request)
	if err != nil {
		return nil, err
	}
	log := g.logger.With().Str("run_id", runID).Logger()

	result := &RunResult{RunID: runID}
	if req.LocalAssets {
		localized, n, err := output.LocalizeAssets(ctx, content, req.Output, g.assets, log)
		if err != nil {
			return nil, fmt.Errorf("failed to localize assets: %w", err)
		}
		content = localized
		result.Assets = n
		g.recorder.ObserveAssets(n)
	}

	written, err := output.Write(content, req.Output, output.WriteOptions{Overwrite: req.Overwrite})
	if err != nil {
		return nil, err
	}
	result.Result = written
	result.Duration = g.now().Sub(start)

	log.Info().
		Str("path", written.Path).
		Bool("overwritten", written.Overwritten).
		Int("assets", result.Assets).
		Msg("README written")
	return result, nil
}

func (g *Generator) generate(ctx context.Context, req Request) (content, runID string, err error) {
	runID = uuid.New().String()
	log := g.logger.With().
		Str("run_id", runID).
		Str("user", req.Username).
		Str("template", req.TemplateID).
		Logger()

	start := g.now()
	defer func() {
		end := g.now()
		g.recorder.ObserveGeneration(req.TemplateID, err, end.Sub(start), end)
		if err != nil {
			log.Error().Err(err).Msg("Failed to generate content")
		}
	}()

	tmpl, err := g.templates.Get(req.TemplateID)
	if err != nil {
		return "", runID, err
	}

	raw, err := g.client.FetchAll(ctx, req.Username)
	if err != nil {
		return "", runID, fmt.Errorf("failed to fetch GitHub data: %w", err)
	}
	data := profile.Normalize(raw, req.Filter)
	log.Debug().Int("repos", len(data.Repos)).Msg("Normalized profile data")

	reg := req.Plugins
	if reg == nil {
		reg = plugin.NewRegistry(log)
	}
	reg.Initialize(ctx, req.PluginOptions, overrides(req.PluginConfig))
	g.recorder.SetPluginsEnabled(len(reg.EnabledPlugins()))

	runner := plugin.NewRunner(reg, log, plugin.WithObserver(g.observer))

	data, err = runner.RunBeforeRender(ctx, data)
	if err != nil {
		return "", runID, err
	}

	content, err = tmpl.Render(data)
	if err != nil {
		return "", runID, err
	}

	if content, err = runner.RunRender(ctx, data, content); err != nil {
		return "", runID, err
	}
	if content, err = runner.RunAfterRender(ctx, data, content); err != nil {
		return "", runID, err
	}

	log.Debug().Int("bytes", len(content)).Msg("Generated content")
	return content, runID, nil
}

func overrides(pluginConfig map[string]map[string]any) map[string]any {
	if len(pluginConfig) == 0 {
		return nil
	}
	out := make(map[string]any, len(pluginConfig))
	for id, cfg := range pluginConfig {
		out[id] = cfg
	}
	return out
}
