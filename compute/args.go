package compute

// A positional kernel argument. Supported values are device buffers,
// int32, uint32, float32, types.Vec4 and LocalMem.
type Arg interface{}

// Request a per work-group scratch allocation of the given size in bytes.
type LocalMem int

// Round n up to the next multiple of localWorkSize.
func GlobalWorkSize(n, localWorkSize int) int {
	if localWorkSize <= 0 {
		return n
	}
	return (n + localWorkSize - 1) / localWorkSize * localWorkSize
}
