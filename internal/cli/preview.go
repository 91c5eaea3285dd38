package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harun/ghprofile/pkg/profile"
	"github.com/harun/ghprofile/pkg/templates"
)

type previewFlags struct {
	template     string
	token        string
	templatesDir string
}

func newPreviewCmd(opts *globalOptions) *cobra.Command {
	flags := &previewFlags{}

	cmd := &cobra.Command{
		Use:   "preview <username>",
		Short: "Preview a template without generating a file",
		Long: `Render a template for a user and print it to stdout. Plugins are not
run, and email addresses and sensitive fields are redacted.`,
		Args: exactlyOneUsername,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			tmpl, err := a.templates(flags.templatesDir).Get(flags.template)
			if err != nil {
				return err
			}

			raw, err := a.githubClient(flags.token).FetchAll(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch GitHub data: %w", err)
			}

			out, err := templates.Preview(tmpl, profile.Normalize(raw, profileOptions(a.cfg)))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.template, "template", "t", "minimal", "template to use")
	cmd.Flags().StringVar(&flags.token, "token", "", "GitHub personal access token")
	cmd.Flags().StringVar(&flags.templatesDir, "templates-dir", "", "directory with local templates")
	return cmd
}
