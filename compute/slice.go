package compute

import (
	"reflect"
	"unsafe"
)

// Given an interface{} containing a slice return a pointer to its data and
// its length in bytes.
func SliceData(data interface{}) (unsafe.Pointer, int, error) {
	reflVal := reflect.ValueOf(data)

	if reflVal.Kind() != reflect.Slice || reflVal.Len() == 0 {
		return nil, 0, ErrNotSlice
	}

	return unsafe.Pointer(reflVal.Index(0).Addr().Pointer()),
		reflVal.Len() * int(reflVal.Type().Elem().Size()),
		nil
}

// Get a byte view of a slice's backing memory.
func SliceBytes(data interface{}) ([]byte, error) {
	ptr, size, err := SliceData(data)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(ptr), size), nil
}
