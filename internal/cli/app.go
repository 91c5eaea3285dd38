package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/harun/ghprofile/internal/config"
	"github.com/harun/ghprofile/internal/logger"
	"github.com/harun/ghprofile/internal/metrics"
	"github.com/harun/ghprofile/pkg/generate"
	"github.com/harun/ghprofile/pkg/github"
	"github.com/harun/ghprofile/pkg/plugin"
	"github.com/harun/ghprofile/pkg/plugin/builtin"
	"github.com/harun/ghprofile/pkg/profile"
	"github.com/harun/ghprofile/pkg/templates"
)

// engineVersion is matched against script plugin engine constraints
const engineVersion = version

// app holds what every command needs after config and logging are set up
type app struct {
	cfg        *config.Config
	configPath string
	logs       *logger.Logger
	log        zerolog.Logger
	metrics    *metrics.Metrics
}

// newApp loads the config and builds the logger. stderr receives console logs.
func newApp(opts *globalOptions, stderr io.Writer) (*app, error) {
	loader := config.NewLoader(opts.configPath)
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if opts.logLevel != "" {
		if _, err := zerolog.ParseLevel(opts.logLevel); err != nil {
			return nil, usageErrorf("invalid log level: %q", opts.logLevel)
		}
		level = opts.logLevel
	}

	logs, err := logger.New(logger.Config{
		Level:     level,
		File:      cfg.Logging.File,
		Console:   true,
		Pretty:    true,
		Redaction: cfg.Logging.Redaction,
		MaxSize:   cfg.Logging.MaxSize,
		MaxAge:    cfg.Logging.MaxAge,
		Compress:  cfg.Logging.Compress,
		Output:    stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &app{
		cfg:        cfg,
		configPath: loader.GetConfigPath(),
		logs:       logs,
		log:        logs.Zerolog(),
		metrics:    metrics.NewMetrics(),
	}, nil
}

func (a *app) Close() {
	_ = a.logs.Close()
}

// githubClient builds a client authenticated with the resolved token
func (a *app) githubClient(tokenFlag string) *github.Client {
	token := config.ResolveToken(tokenFlag, a.cfg, os.Getenv)
	if token == "" {
		a.log.Debug().Msg("No GitHub token provided, using unauthenticated requests")
	}
	opts := []github.Option{
		github.WithToken(token),
		github.WithLogger(a.log),
	}
	if a.cfg.GitHub.APIURL != "" {
		opts = append(opts, github.WithBaseURL(a.cfg.GitHub.APIURL))
	}
	return github.NewClient(opts...)
}

// templates returns the built-in templates plus any local ones in dir
func (a *app) templates(dirFlag string) *templates.Registry {
	reg := templates.NewRegistry()
	dir := firstNonEmpty(dirFlag, a.cfg.TemplatesPath)
	if dir == "" {
		return reg
	}
	n := reg.RegisterLocal(dir, a.log)
	a.log.Debug().Str("dir", dir).Int("count", n).Msg("Loaded local templates")
	return reg
}

// pluginFlags are the plugin related flags shared by commands
type pluginFlags struct {
	enable  []string
	disable []string
	dir     string
}

// preparePlugins builds a fresh registry for one run
func (a *app) preparePlugins(ctx context.Context, flags pluginFlags) (*generate.Prepared, error) {
	reg := plugin.NewRegistry(a.log, plugin.WithRegistryObserver(a.metrics))
	return generate.PreparePlugins(ctx, reg, generate.PluginSetup{
		Builtins:      builtin.All(),
		Dir:           firstNonEmpty(flags.dir, a.cfg.PluginsPath),
		EngineVersion: engineVersion,
		CLIEnable:     flags.enable,
		CLIDisable:    flags.disable,
		Config:        pluginToggles(a.cfg),
	}, a.log)
}

// profileOptions maps the config github and customize sections onto
// normalization filters
func profileOptions(cfg *config.Config) profile.Options {
	return profile.Options{
		IncludePrivate: cfg.GitHub.IncludePrivate,
		ExcludeRepos:   cfg.GitHub.ExcludeRepos,
		PinnedRepos:    cfg.GitHub.PinnedRepos,
		Tools:          cfg.Customize.Tools,
	}
}

// pluginToggles returns the config tier of plugin resolution. Explicit
// plugins entries win over the customize switches.
func pluginToggles(cfg *config.Config) map[string]bool {
	toggles := make(map[string]bool, len(cfg.Plugins)+2)
	if !cfg.Customize.ShowSocial {
		toggles["socials"] = false
	}
	if !cfg.Customize.ShowStats {
		toggles["stats"] = false
	}
	for id, enabled := range cfg.Plugins {
		toggles[id] = enabled
	}
	return toggles
}

// writeMetrics exports the textfile when configured
func (a *app) writeMetrics() {
	path := a.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	if err := a.metrics.WriteTextfile(path); err != nil {
		a.log.Warn().Err(err).Str("path", path).Msg("Failed to write metrics textfile")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
