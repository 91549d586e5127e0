package lbvh

import "errors"

var (
	ErrNotInitialized       = errors.New("lbvh: builder not initialized")
	ErrNoElements           = errors.New("lbvh: element count must be at least 1")
	ErrInvalidLocalWorkSize = errors.New("lbvh: local work size must be a power of two >= 2")
	ErrElementCountMismatch = errors.New("lbvh: element count mismatch")
)
