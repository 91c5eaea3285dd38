package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const version = "0.2.0"

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "gh-profile",
		Short: "gh-profile - GitHub profile README generator",
		Long: `gh-profile generates GitHub profile READMEs from your public activity.
Templates shape the page, plugins add sections such as socials, featured
projects and stats, and local script plugins extend it further.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is ./gh-profile.config.json)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})

	// Version template
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)

	rootCmd.AddCommand(
		newGenerateCmd(opts),
		newPreviewCmd(opts),
		newTemplatesCmd(opts),
		newPluginsCmd(opts),
		newConfigCmd(opts),
	)
	return rootCmd
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(ctx context.Context, cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return ExitSuccess
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitCode(err)
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}
