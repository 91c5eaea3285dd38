package cli

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harun/ghprofile/pkg/generate"
)

const (
	sourceBuiltIn = "built-in"
	sourceScript  = "script"
)

// pluginInfo is one row of the plugins listing
type pluginInfo struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Version     string   `json:"version" yaml:"version"`
	Author      string   `json:"author" yaml:"author"`
	Description string   `json:"description" yaml:"description"`
	Hooks       []string `json:"hooks" yaml:"hooks"`
	Enabled     bool     `json:"enabled" yaml:"enabled"`
	Source      string   `json:"source" yaml:"source"`
}

// pluginListing is the machine readable plugins output
type pluginListing struct {
	Plugins []pluginInfo      `json:"plugins" yaml:"plugins"`
	Failed  map[string]string `json:"failed,omitempty" yaml:"failed,omitempty"`
}

func newPluginsCmd(opts *globalOptions) *cobra.Command {
	var (
		format string
		flags  pluginFlags
	)

	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List plugins and whether they are enabled",
		Long: `List built-in and local script plugins with the enablement that
generate would use, given the config file and the enable/disable flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			a, err := newApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			prepared, err := a.preparePlugins(cmd.Context(), flags)
			if err != nil {
				return err
			}
			listing := describePlugins(prepared)

			out := cmd.OutOrStdout()
			if format != formatTable {
				return encode(out, format, listing)
			}

			rows := make([][]string, 0, len(listing.Plugins))
			for _, p := range listing.Plugins {
				state := "disabled"
				if p.Enabled {
					state = "enabled"
				}
				rows = append(rows, []string{p.ID, p.Version, state, p.Source, strings.Join(p.Hooks, ",")})
			}
			if err := table(out, []string{"ID", "VERSION", "STATE", "SOURCE", "HOOKS"}, rows); err != nil {
				return err
			}

			if len(listing.Failed) > 0 {
				ids := make([]string, 0, len(listing.Failed))
				for id := range listing.Failed {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				fmt.Fprintln(out, "\nFailed to load:")
				for _, id := range ids {
					fmt.Fprintf(out, "  %s: %s\n", id, listing.Failed[id])
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "output format (table, json, yaml)")
	addPluginFlags(cmd, &flags)
	return cmd
}

func describePlugins(prepared *generate.Prepared) pluginListing {
	var scripts []string
	listing := pluginListing{}
	if prepared.Scripts != nil {
		scripts = prepared.Scripts.Loaded
		if len(prepared.Scripts.Errors) > 0 {
			listing.Failed = make(map[string]string, len(prepared.Scripts.Errors))
			for id, err := range prepared.Scripts.Errors {
				listing.Failed[id] = err.Error()
			}
		}
	}

	for _, reg := range prepared.Registry.Registrations() {
		meta := reg.Plugin.Metadata
		hooks := make([]string, 0, 4)
		for _, hook := range reg.Plugin.ImplementedHooks() {
			hooks = append(hooks, string(hook))
		}

		source := sourceBuiltIn
		if slices.Contains(scripts, meta.ID) {
			source = sourceScript
		}

		listing.Plugins = append(listing.Plugins, pluginInfo{
			ID:          meta.ID,
			Name:        meta.Name,
			Version:     meta.Version,
			Author:      meta.Author,
			Description: meta.Description,
			Hooks:       hooks,
			Enabled:     reg.Enabled,
			Source:      source,
		})
	}
	return listing
}
