package roster

import "errors"

var (
	// ErrExport is returned when a roster file cannot be written.
	ErrExport = errors.New("roster export failed")
)
