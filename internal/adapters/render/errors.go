package render

import "errors"

// Sentinel kinds for rendering errors. Any of them aborts the build.
var (
	ErrRender   = errors.New("render failed")
	ErrTemplate = errors.New("template failed")
	ErrAssets   = errors.New("asset copy failed")
)

// ErrNotImage marks a gallery entry whose file is not an image. The entry is
// skipped rather than failing the build.
var ErrNotImage = errors.New("not an image")
