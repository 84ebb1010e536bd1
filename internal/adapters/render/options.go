package render

import (
	"github.com/okian/labsite/internal/domain/articles"
	"github.com/okian/labsite/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithOutputDir sets the root the site is written to.
func WithOutputDir(dir string) Option {
	return func(e *Engine) {
		if dir != "" {
			e.outputDir = dir
		}
	}
}

// WithTemplateDir adds a directory of *.tmpl files that override the
// built-in templates by name.
func WithTemplateDir(dir string) Option {
	return func(e *Engine) {
		e.templateDir = dir
	}
}

// WithTagColors sets the palette behind the tagColor template function.
func WithTagColors(p articles.TagPalette) Option {
	return func(e *Engine) {
		if len(p) > 0 {
			e.tagColors = p
		}
	}
}

// WithSectionHeadings sets the member page section titles.
func WithSectionHeadings(h map[string]string) Option {
	return func(e *Engine) {
		if len(h) > 0 {
			e.sections = h
		}
	}
}
