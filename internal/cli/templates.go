package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harun/ghprofile/pkg/templates"
)

const descriptionWidth = 45

func newTemplatesCmd(opts *globalOptions) *cobra.Command {
	var (
		format       string
		category     string
		templatesDir string
	)

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List all available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			if category != "" && !templates.ValidCategory(templates.Category(category)) {
				return usageErrorf("unknown category %q", category)
			}

			a, err := newApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			reg := a.templates(templatesDir)
			list := reg.All()
			if category != "" {
				list = reg.ByCategory(templates.Category(category))
			}

			metas := make([]templates.Metadata, 0, len(list))
			for _, t := range list {
				metas = append(metas, t.Metadata)
			}

			out := cmd.OutOrStdout()
			if format != formatTable {
				return encode(out, format, metas)
			}
			if len(metas) == 0 {
				fmt.Fprintln(out, "No templates found.")
				return nil
			}

			rows := make([][]string, 0, len(metas))
			for _, m := range metas {
				rows = append(rows, []string{
					m.ID,
					m.Name,
					string(m.Category),
					truncate(m.Description, descriptionWidth),
					string(m.Source),
				})
			}
			if err := table(out, []string{"ID", "NAME", "CATEGORY", "DESCRIPTION", "SOURCE"}, rows); err != nil {
				return err
			}
			fmt.Fprintln(out, "\nUse --template <id> to select one.")
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "output format (table, json, yaml)")
	cmd.Flags().StringVar(&category, "category", "", "only list templates in this category")
	cmd.Flags().StringVar(&templatesDir, "templates-dir", "", "directory with local templates")
	return cmd
}
