package cli

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harun/ghprofile/internal/config"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and migrate the config file",
	}
	cmd.AddCommand(newConfigShowCmd(opts), newConfigMigrateCmd(opts))
	return cmd
}

func newConfigShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with the token masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintln(cmd.OutOrStdout(), a.cfg.String())
			return nil
		},
	}
}

func newConfigMigrateCmd(opts *globalOptions) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade the config file to the current schema",
		Long: `Upgrade the config file to the current schema version. The migrated
config is printed unless --write is given, in which case the file is
rewritten in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader(opts.configPath)
			path := loader.GetConfigPath()

			raw, err := loader.LoadRaw()
			if err != nil {
				return err
			}
			if raw == nil {
				return fmt.Errorf("config file not found: %w", &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist})
			}

			from := config.DetectVersion(raw)
			if version, stamped := raw["$schemaVersion"]; stamped && from != config.SchemaVersion {
				return fmt.Errorf("%w: unsupported $schemaVersion %v", config.ErrInvalidConfig, version)
			}
			migrated := config.Migrate(raw)
			if err := config.NewValidator().ValidateRaw(migrated); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !write {
				data, err := config.Marshal(migrated, isYAMLPath(path))
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			if from == config.SchemaVersion {
				fmt.Fprintf(out, "%s is already at schema version %d\n", path, config.SchemaVersion)
				return nil
			}
			if err := loader.SaveRaw(migrated); err != nil {
				return err
			}
			fmt.Fprintf(out, "Migrated %s from schema version %d to %d\n", path, from, config.SchemaVersion)
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "rewrite the config file in place")
	return cmd
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
