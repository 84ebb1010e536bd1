package preview

import "errors"

var (
	// ErrServe is returned when the preview server fails.
	ErrServe = errors.New("preview server failed")
	// ErrWatch is returned when the file watcher cannot be set up.
	ErrWatch = errors.New("watcher failed")
)
