package compute

import "errors"

var (
	ErrBufferTooSmall   = errors.New("compute: insufficient buffer space")
	ErrUnknownKernel    = errors.New("compute: unknown kernel")
	ErrNotInitialized   = errors.New("compute: device not initialized")
	ErrNotSlice         = errors.New("compute: host data must be a non-empty slice")
	ErrUnsupportedArg   = errors.New("compute: unsupported kernel argument")
	ErrForeignBuffer    = errors.New("compute: buffer belongs to a different device")
	ErrInvalidWorkGroup = errors.New("compute: invalid work group size")
)
