package main

import (
	"fmt"

	"github.com/okian/labsite/internal/adapters/sitecheck"
	"github.com/spf13/cobra"
)

func newCheckCmd(g *globals) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report relative links in the built site whose target is missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				dir = g.cfg.OutputDir
			}
			broken, err := sitecheck.New(dir, sitecheck.WithLogger(g.log)).Check(cmd.Context())
			if err != nil {
				return withCode(exitBuild, err)
			}
			out := cmd.OutOrStdout()
			for _, b := range broken {
				fmt.Fprintln(out, b.String())
			}
			if len(broken) > 0 {
				return withCode(exitBrokenLinks, fmt.Errorf("%d broken links in %s", len(broken), dir))
			}
			fmt.Fprintf(out, "no broken links in %s\n", dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Site directory (default output_dir)")
	return cmd
}
