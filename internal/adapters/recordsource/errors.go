package recordsource

import "errors"

// Sentinel kinds for record loading errors. Structural failures wrap ErrLoad.
var (
	ErrLoad          = errors.New("load records failed")
	ErrNoMembers     = errors.New("no members loaded")
	ErrNoArticles    = errors.New("no articles loaded")
	ErrMissingFile   = errors.New("required file not found")
	ErrMissingField  = errors.New("required field missing")
	ErrInvalidRecord = errors.New("invalid record")
)
