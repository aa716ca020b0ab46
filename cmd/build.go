package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkmfujise/redscribe-docs/internal/site"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the static site into the output directory",
	Long: `The build command renders the homepage, the Markdown docs from
'content/docs/', the pages from 'content/pages/' and a 404 page for every
locale, using translations from 'i18n/<locale>/', layouts from 'layouts/'
and static assets from 'static/'. The result is written to the configured
output directory (default './build/').`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := site.Build(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated %d pages in %d locales into %s\n", res.Count(), len(res.Pages), appConfig.OutputDir)
		if n := len(res.BrokenLinks); n > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%d broken links found\n", n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
