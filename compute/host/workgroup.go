package host

import (
	"fmt"

	"github.com/achilleasa/lbvh/types"
)

// A work-group being executed by a host kernel.
type workGroup struct {
	id        int
	numGroups int
	local     int
	global    int

	args   []boundArg
	locals [][]uint32
}

func (wg *workGroup) GroupID() int    { return wg.id }
func (wg *workGroup) NumGroups() int  { return wg.numGroups }
func (wg *workGroup) LocalSize() int  { return wg.local }
func (wg *workGroup) GlobalSize() int { return wg.global }

// Run fn for every item of the group. Returning from Items acts as a
// work-group barrier.
func (wg *workGroup) Items(fn func(localID, globalID int)) {
	base := wg.id * wg.local
	for localID := 0; localID < wg.local; localID++ {
		fn(localID, base+localID)
	}
}

func (wg *workGroup) Uint32s(arg int) []uint32 {
	return wg.buffer(arg).uint32s()
}

func (wg *workGroup) Float4s(arg int) []types.Vec4 {
	return wg.buffer(arg).float4s()
}

func (wg *workGroup) Uint32(arg int) uint32 {
	v, ok := wg.scalar(arg).(uint32)
	if !ok {
		panic(fmt.Sprintf("arg %d is not a uint32", arg))
	}
	return v
}

func (wg *workGroup) Int32(arg int) int32 {
	v, ok := wg.scalar(arg).(int32)
	if !ok {
		panic(fmt.Sprintf("arg %d is not an int32", arg))
	}
	return v
}

func (wg *workGroup) Float32(arg int) float32 {
	v, ok := wg.scalar(arg).(float32)
	if !ok {
		panic(fmt.Sprintf("arg %d is not a float32", arg))
	}
	return v
}

func (wg *workGroup) Vec4(arg int) types.Vec4 {
	v, ok := wg.scalar(arg).(types.Vec4)
	if !ok {
		panic(fmt.Sprintf("arg %d is not a float4", arg))
	}
	return v
}

// Get the group's private copy of a local memory argument.
func (wg *workGroup) Local(arg int) []uint32 {
	wg.check(arg, localArg)
	return wg.locals[arg]
}

func (wg *workGroup) buffer(arg int) *Buffer {
	wg.check(arg, bufferArg)
	return wg.args[arg].buf
}

func (wg *workGroup) scalar(arg int) interface{} {
	wg.check(arg, scalarArg)
	return wg.args[arg].value
}

func (wg *workGroup) check(arg int, kind argKind) {
	if arg < 0 || arg >= len(wg.args) {
		panic(fmt.Sprintf("arg %d out of range; kernel was launched with %d args", arg, len(wg.args)))
	}
	if wg.args[arg].kind != kind {
		panic(fmt.Sprintf("arg %d has unexpected kind %d", arg, wg.args[arg].kind))
	}
}

// Allocate local memory for every LocalMem argument.
func (wg *workGroup) allocLocals() {
	wg.locals = make([][]uint32, len(wg.args))
	for argIndex, arg := range wg.args {
		if arg.kind == localArg {
			wg.locals[argIndex] = make([]uint32, (arg.size+3)/4)
		}
	}
}
