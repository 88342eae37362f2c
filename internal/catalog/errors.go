package catalog

import "errors"

var (
	ErrNotFound = errors.New("mix not found")
	ErrReadOnly = errors.New("catalog is read-only")
)
