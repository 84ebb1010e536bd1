package recordsource

import (
	"time"

	"github.com/okian/labsite/pkg/logger"
)

// Option applies a configuration option to the Source.
type Option func(*Source)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDataDir sets the group data root holding members/ and website_data/.
func WithDataDir(dir string) Option {
	return func(s *Source) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithArticlesDir sets the root scanned for article info.json files.
func WithArticlesDir(dir string) Option {
	return func(s *Source) {
		if dir != "" {
			s.articlesDir = dir
		}
	}
}

// WithOutputDir sets the site output root. Article images are copied below it.
func WithOutputDir(dir string) Option {
	return func(s *Source) {
		if dir != "" {
			s.outputDir = dir
		}
	}
}

// WithPlatform sets the platform an article must list to be published.
func WithPlatform(p string) Option {
	return func(s *Source) {
		if p != "" {
			s.platform = p
		}
	}
}

// WithNow overrides the clock used to skip future articles.
func WithNow(now func() time.Time) Option {
	return func(s *Source) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCategoryMap renames article categories while loading.
func WithCategoryMap(m map[string]string) Option {
	return func(s *Source) {
		s.categoryMap = make(map[string]string, len(m))
		for k, v := range m {
			s.categoryMap[k] = v
		}
	}
}
