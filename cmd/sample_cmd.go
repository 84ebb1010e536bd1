package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/okian/labsite/internal/sampledata"
	"github.com/spf13/cobra"
)

// sampleConfigFile is written next to the sample tree so that
// "labsite build --config <dir>/labsite.yaml" works out of the box.
const sampleConfigFile = "labsite.yaml"

func newSampleCmd(g *globals) *cobra.Command {
	var opts sampledata.Options
	cmd := &cobra.Command{
		Use:   "sample <dir>",
		Short: "Write a synthetic data tree and a config file pointing at it",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return withCode(exitUsage, fmt.Errorf("sample takes exactly one directory, got %d args", len(args)))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return withCode(exitUsage, err)
			}
			opts.Log = g.log
			l, err := sampledata.Generate(cmd.Context(), dir, opts)
			if err != nil {
				return withCode(exitBuild, err)
			}

			b, err := yaml.Parser().Marshal(map[string]any{
				"data_dir":     l.DataDir,
				"articles_dir": l.ArticlesDir,
				"assets_dir":   l.AssetsDir,
				"output_dir":   filepath.Join(dir, "site"),
			})
			if err != nil {
				return withCode(exitBuild, err)
			}
			path := filepath.Join(dir, sampleConfigFile)
			if err := os.WriteFile(path, b, 0o644); err != nil {
				return withCode(exitBuild, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d members and %d articles; build with: labsite build --config %s\n",
				len(l.Members), len(l.Articles), path)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Members, "members", 0, "Random members to add to the fixed set")
	cmd.Flags().IntVar(&opts.Articles, "articles", 0, "Random research articles to add")
	return cmd
}
