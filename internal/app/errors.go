package service

import "errors"

// ErrStage marks a pipeline stage that aborted the run.
var ErrStage = errors.New("generation stage failed")
