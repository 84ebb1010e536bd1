package main

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/labsite/internal/config"
	"github.com/okian/labsite/pkg/logger"
	"github.com/okian/labsite/pkg/metrics"
	"github.com/spf13/cobra"
)

// globals is shared by every subcommand once the root pre-run has loaded
// the configuration and the logger.
type globals struct {
	configPath string
	logLevel   string

	cfg     *config.Config
	log     logger.Logger
	logFile *os.File
}

func newRootCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "labsite",
		Short:         "Static website generator for a research group",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withCode(exitUsage, err)
	})

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file (default $"+config.EnvConfigFile+")")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error (overrides log_level)")

	cmd.AddCommand(newBuildCmd(g))
	cmd.AddCommand(newCheckCmd(g))
	cmd.AddCommand(newPreviewCmd(g))
	cmd.AddCommand(newSampleCmd(g))
	return cmd
}

// close releases the log file. cobra skips post-run hooks when a command
// fails, so the caller closes after Execute returns.
func (g *globals) close() error {
	if g.logFile == nil {
		return nil
	}
	err := g.logFile.Close()
	g.logFile = nil
	return err
}

// setup loads the configuration and initializes logging to stderr plus
// the optional log file.
func (g *globals) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context(), g.configPath)
	if err != nil {
		return withCode(exitUsage, err)
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}

	var out io.Writer = cmd.ErrOrStderr()
	if cfg.LogFile != "" {
		f, err := logger.OpenFile(cfg.LogFile)
		if err != nil {
			return withCode(exitUsage, err)
		}
		g.logFile = f
		out = io.MultiWriter(out, f)
	}
	if err := logger.Init(logger.WithOutput(out), logger.WithFormat(cfg.LogFormat)); err != nil {
		return withCode(exitUsage, fmt.Errorf("failed to initialize logging: %w", err))
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return withCode(exitUsage, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err))
	}

	metrics.Configure(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithHistogramBuckets(cfg.MetricsBuckets),
		metrics.WithConstLabels(cfg.MetricsLabels),
	)

	g.cfg = cfg
	g.log = logger.Get()
	return nil
}
