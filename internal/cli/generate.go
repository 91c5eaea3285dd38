package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/harun/ghprofile/internal/config"
	"github.com/harun/ghprofile/pkg/generate"
	"github.com/harun/ghprofile/pkg/schedule"
	"github.com/harun/ghprofile/pkg/watch"
)

type generateFlags struct {
	template     string
	output       string
	token        string
	force        bool
	templatesDir string
	localAssets  bool
	plugins      pluginFlags

	watch       bool
	schedule    string
	metricsAddr string
}

func newGenerateCmd(opts *globalOptions) *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate <username>",
		Short: "Generate a GitHub profile README",
		Long: `Generate a GitHub profile README for a user and write it to disk.
With --watch the README is regenerated whenever the config, templates or
plugins change. With --schedule it is regenerated on a cron schedule.`,
		Args: exactlyOneUsername,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, flags, args[0])
		},
	}

	cmd.Flags().StringVarP(&flags.template, "template", "t", "", "template to use (default from config, then \"default\")")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file path (default from config, then ./README.md)")
	cmd.Flags().StringVar(&flags.token, "token", "", "GitHub personal access token")
	cmd.Flags().BoolVar(&flags.force, "force", false, "overwrite an existing output file")
	cmd.Flags().StringVar(&flags.templatesDir, "templates-dir", "", "directory with local templates")
	cmd.Flags().BoolVar(&flags.localAssets, "local-assets", false, "download images into an assets directory next to the output")
	addPluginFlags(cmd, &flags.plugins)

	cmd.Flags().BoolVar(&flags.watch, "watch", false, "regenerate when the config, templates or plugins change")
	cmd.Flags().StringVar(&flags.schedule, "schedule", "", "regenerate on a cron schedule, e.g. \"0 6 * * *\" or \"@every 6h\"")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while watching or scheduled")

	return cmd
}

func addPluginFlags(cmd *cobra.Command, flags *pluginFlags) {
	cmd.Flags().StringSliceVar(&flags.enable, "enable-plugin", nil, "enable plugins by id (comma separated, repeatable)")
	cmd.Flags().StringSliceVar(&flags.disable, "disable-plugin", nil, "disable plugins by id (comma separated, repeatable)")
	cmd.Flags().StringVar(&flags.dir, "plugins-dir", "", "directory with local script plugins")
}

func exactlyOneUsername(_ *cobra.Command, args []string) error {
	if len(args) != 1 || args[0] == "" {
		return usageErrorf("expected exactly one <username> argument, got %d", len(args))
	}
	return nil
}

func runGenerate(cmd *cobra.Command, opts *globalOptions, flags *generateFlags, username string) error {
	if flags.schedule != "" {
		if _, err := schedule.Parse(flags.schedule); err != nil {
			return usageErrorf("%v", err)
		}
	}

	a, err := newApp(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	g := &generation{
		app:       a,
		out:       cmd.OutOrStdout(),
		username:  username,
		flags:     flags,
		overwrite: flags.force || a.cfg.Force,
	}

	if !flags.watch && flags.schedule == "" {
		_, err := g.run(ctx)
		return err
	}
	return g.serve(ctx)
}

// generation runs the pipeline once or repeatedly for one user
type generation struct {
	app      *app
	out      io.Writer
	username string
	flags    *generateFlags

	mu        sync.Mutex
	overwrite bool
}

// run performs one generation. Runs are serialized.
func (g *generation) run(ctx context.Context) (*generate.RunResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	a := g.app
	prepared, err := a.preparePlugins(ctx, g.flags.plugins)
	if err != nil {
		return nil, err
	}

	gen := generate.NewGenerator(
		a.githubClient(g.flags.token),
		a.templates(g.flags.templatesDir),
		a.log,
		generate.WithHookObserver(a.metrics),
		generate.WithRecorder(a.metrics),
	)

	result, err := gen.Run(ctx, generate.RunRequest{
		Request: generate.Request{
			Username:     g.username,
			TemplateID:   firstNonEmpty(g.flags.template, a.cfg.Template),
			Filter:       profileOptions(a.cfg),
			Plugins:      prepared.Registry,
			PluginConfig: a.cfg.PluginConfig,
		},
		Output:      firstNonEmpty(g.flags.output, a.cfg.Output),
		Overwrite:   g.overwrite,
		LocalAssets: g.flags.localAssets || a.cfg.LocalAssets,
	})
	a.writeMetrics()
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(g.out, "README generated: %s (%s)\n", result.Path, result.Duration.Round(time.Millisecond))
	return result, nil
}

// serve keeps regenerating until ctx is done. Failed runs are logged and
// do not stop the loop.
func (g *generation) serve(ctx context.Context) error {
	a := g.app
	log := a.log.With().Str("component", "generate").Logger()

	runOnce := func(ctx context.Context) error {
		if _, err := g.run(ctx); err != nil {
			return err
		}
		// Later runs replace the file this process wrote.
		g.mu.Lock()
		g.overwrite = true
		g.mu.Unlock()
		return nil
	}

	if err := runOnce(ctx); err != nil {
		log.Error().Err(err).Msg("Initial generation failed")
	}

	eg, ctx := errgroup.WithContext(ctx)

	if g.flags.watch {
		w, err := watch.New(watch.Config{
			Paths: []string{
				a.configPath,
				firstNonEmpty(g.flags.templatesDir, a.cfg.TemplatesPath),
				firstNonEmpty(g.flags.plugins.dir, a.cfg.PluginsPath),
			},
			OnChange: func(paths []string) {
				log.Info().Strs("paths", paths).Msg("Regenerating after change")
				if err := g.reload(); err != nil {
					log.Error().Err(err).Msg("Keeping previous config")
				}
				if err := runOnce(ctx); err != nil {
					log.Error().Err(err).Msg("Regeneration failed")
				}
			},
		}, a.log)
		if err != nil {
			return err
		}
		eg.Go(func() error { return w.Run(ctx) })
	}

	if g.flags.schedule != "" {
		s, err := schedule.New(g.flags.schedule, runOnce, a.log)
		if err != nil {
			return usageErrorf("%v", err)
		}
		eg.Go(func() error { return s.Run(ctx) })
	}

	if g.flags.metricsAddr != "" {
		eg.Go(func() error { return serveMetrics(ctx, g.flags.metricsAddr, a) })
	}

	return eg.Wait()
}

// reload re-reads the config file for the next run
func (g *generation) reload() error {
	cfg, err := config.NewLoader(g.app.configPath).Load()
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.app.cfg = cfg
	g.mu.Unlock()
	return nil
}

func serveMetrics(ctx context.Context, addr string, a *app) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", addr).Msg("Serving metrics")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
