package service

import (
	"time"

	"github.com/okian/labsite/internal/config"
	"github.com/okian/labsite/pkg/logger"
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithLogger sets a custom logger for the generator.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(g *Generator) {
		if cfg != nil {
			g.cfg = *cfg
		}
	}
}

// WithNow sets the clock used for publication and membership dates.
func WithNow(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithRoster overrides roster_enabled.
func WithRoster(enabled bool) Option {
	return func(g *Generator) {
		g.cfg.RosterEnabled = enabled
	}
}

// WithLinkCheck overrides check_links.
func WithLinkCheck(enabled bool) Option {
	return func(g *Generator) {
		g.cfg.CheckLinks = enabled
	}
}
