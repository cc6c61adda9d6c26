package module

import (
	"fmt"
	"reflect"
	"strings"
)

// DataType tags the element type carried by a Socket.
type DataType uint8

const (
	Int8 DataType = iota + 1
	Int16
	Int32
	Int64
	Float32
	Float64
)

// Element is the set of Go types a socket buffer may hold.
type Element interface {
	int8 | int16 | int32 | int64 | float32 | float64
}

var dataTypeNames = map[DataType]string{
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Float32: "float32",
	Float64: "float64",
}

func (d DataType) String() string {
	if name, ok := dataTypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", uint8(d))
}

// Width is the size of one element in bytes.
func (d DataType) Width() int {
	switch d {
	case Int8:
		return 1
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	}
	return 0
}

// ParseDataType maps a type name such as "float32" to its DataType.
func ParseDataType(s string) (DataType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, name := range dataTypeNames {
		if name == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown data type %q", s)
}

// alloc returns a zeroed slice of n elements of the tagged type.
func (d DataType) alloc(n int) any {
	switch d {
	case Int8:
		return make([]int8, n)
	case Int16:
		return make([]int16, n)
	case Int32:
		return make([]int32, n)
	case Int64:
		return make([]int64, n)
	case Float32:
		return make([]float32, n)
	case Float64:
		return make([]float64, n)
	}
	return nil
}

// matches reports whether buf is a slice of this type with n elements.
func (d DataType) matches(buf any, n int) bool {
	var ok bool
	switch d {
	case Int8:
		_, ok = buf.([]int8)
	case Int16:
		_, ok = buf.([]int16)
	case Int32:
		_, ok = buf.([]int32)
	case Int64:
		_, ok = buf.([]int64)
	case Float32:
		_, ok = buf.([]float32)
	case Float64:
		_, ok = buf.([]float64)
	}
	return ok && reflect.ValueOf(buf).Len() == n
}

// Data returns the socket's buffer as a typed slice. It returns nil when the
// socket has no buffer or T does not match the socket's DataType.
func Data[T Element](s *Socket) []T {
	v, _ := s.Buffer().([]T)
	return v
}

// copyBuffer copies src into dst; both must be slices of the same type.
func copyBuffer(dst, src any) int {
	return reflect.Copy(reflect.ValueOf(dst), reflect.ValueOf(src))
}

// Float64s returns a float64 copy of the socket's buffer whatever its
// DataType, for units that only display or forward values.
func Float64s(s *Socket) []float64 {
	switch buf := s.Buffer().(type) {
	case []int8:
		return widen(buf)
	case []int16:
		return widen(buf)
	case []int32:
		return widen(buf)
	case []int64:
		return widen(buf)
	case []float32:
		return widen(buf)
	case []float64:
		return append([]float64(nil), buf...)
	}
	return nil
}

func widen[T Element](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
