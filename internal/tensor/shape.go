package tensor

import (
	"fmt"
	"strings"
)

// Shape represents the dimensions of a tensor.
//
// Spatial tensors use NHWC order: [batch, height, width, channels].
// Dense features are either a flat size {n} or {batch, n}.
type Shape []int

// Axis positions for NHWC shapes.
const (
	AxisBatch = iota
	AxisHeight
	AxisWidth
	AxisChannels
)

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// IsSpatial reports whether the shape is a rank-4 NHWC shape.
func (s Shape) IsSpatial() bool {
	return len(s) == 4
}

// FeatureSize returns the number of elements per batch entry.
// For a rank-1 shape the whole shape is one feature vector.
func (s Shape) FeatureSize() int {
	if len(s) <= 1 {
		return s.NumElements()
	}
	return s[1:].NumElements()
}

// ComputeStrides calculates row-major strides for the shape.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// String formats the shape as (d0, d1, ...).
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = fmt.Sprint(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
