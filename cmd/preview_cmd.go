package main

import (
	"context"

	"github.com/okian/labsite/internal/adapters/http/preview"
	service "github.com/okian/labsite/internal/app"
	"github.com/spf13/cobra"
)

func newPreviewCmd(g *globals) *cobra.Command {
	var (
		addr    string
		watch   bool
		noBuild bool
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Serve the site locally, optionally rebuilding on changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = g.cfg.PreviewAddr
			}
			gen := service.New(service.WithConfig(g.cfg), service.WithLogger(g.log))
			if !noBuild {
				if _, err := gen.Run(ctx); err != nil {
					return withCode(exitBuild, err)
				}
			}

			if watch {
				dirs := []string{g.cfg.DataDir, g.cfg.ArticlesDir, g.cfg.TemplateDir, g.cfg.AssetsDir}
				w, err := preview.NewWatcher(dirs, func(ctx context.Context) error {
					_, err := gen.Run(ctx)
					return err
				}, preview.WithWatcherLogger(g.log.Named("watcher")))
				if err != nil {
					return withCode(exitBuild, err)
				}
				if err := w.Start(ctx); err != nil {
					return withCode(exitBuild, err)
				}
				defer w.Stop()
			}

			srv := preview.NewServer(g.cfg.OutputDir, preview.WithAddr(addr), preview.WithLogger(g.log.Named("preview")))
			if err := srv.Run(ctx); err != nil {
				return withCode(exitBuild, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides preview_addr)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Rebuild when sources change")
	cmd.Flags().BoolVar(&noBuild, "no-build", false, "Serve the existing output without building first")
	return cmd
}
