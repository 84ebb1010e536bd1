package main

import (
	"fmt"

	service "github.com/okian/labsite/internal/app"
	"github.com/okian/labsite/pkg/logger"
	"github.com/spf13/cobra"
)

func newBuildCmd(g *globals) *cobra.Command {
	var (
		output string
		check  bool
		roster bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the site into the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != "" {
				g.cfg.OutputDir = output
			}
			opts := []service.Option{service.WithConfig(g.cfg), service.WithLogger(g.log)}
			if cmd.Flags().Changed("check") {
				opts = append(opts, service.WithLinkCheck(check))
			}
			if cmd.Flags().Changed("roster") {
				opts = append(opts, service.WithRoster(roster))
			}

			report, err := service.New(opts...).Run(cmd.Context())
			if err != nil {
				return withCode(exitBuild, err)
			}
			for _, b := range report.Broken {
				g.log.Warn(cmd.Context(), "broken link", logger.String("page", b.Page), logger.String("ref", b.Ref))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "built %s: %d current, %d alumni, %d articles (run %s)\n",
				g.cfg.OutputDir, report.Current, report.Alumni, report.Articles, report.RunID)
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "Output directory (overrides output_dir)")
	cmd.Flags().BoolVar(&check, "check", false, "Check links after building (overrides check_links)")
	cmd.Flags().BoolVar(&roster, "roster", false, "Export the member roster (overrides roster_enabled)")
	return cmd
}
