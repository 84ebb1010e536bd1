package roster

import "github.com/okian/labsite/pkg/logger"

// Option applies a configuration option to the Exporter.
type Option func(*Exporter)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.log = l
		}
	}
}

// WithDir sets the directory the roster files are written to.
func WithDir(dir string) Option {
	return func(e *Exporter) {
		if dir != "" {
			e.dir = dir
		}
	}
}

// WithoutWorkbook skips roster.xlsx.
func WithoutWorkbook() Option {
	return func(e *Exporter) {
		e.workbook = false
	}
}
