package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrOutsideRoots = errors.New("path is outside configured cheatsheet roots")
	ErrNoEditor     = errors.New("no editor configured")
)
