// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand/v2"

	"github.com/born-ml/convnet/internal/tensor"
)

// DType is a constraint for tensor element types (float32, float64).
type DType = tensor.DType

// DataType is the runtime element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Device is where tensor data resides.
type Device = tensor.Device

// CPU is the host device.
const CPU Device = tensor.CPU

// Shape represents the dimensions of a tensor.
// Example: Shape{8, 32, 32, 3} is a batch of eight 32x32 RGB images.
type Shape = tensor.Shape

// Axis positions of an NHWC shape.
const (
	AxisBatch    = tensor.AxisBatch
	AxisHeight   = tensor.AxisHeight
	AxisWidth    = tensor.AxisWidth
	AxisChannels = tensor.AxisChannels
)

// RawTensor is the untyped storage backends operate on.
type RawTensor = tensor.RawTensor

// Backend is the set of numeric kernels layers delegate to.
type Backend = tensor.Backend

// LRNParams configures local response normalization.
type LRNParams = tensor.LRNParams

// Tensor is a generic type-safe tensor.
//
// T is the element type and B the backend that computes on it.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	y := x.MulScalar(0.5)
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T, B](shape, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	bias := tensor.Full[float32](tensor.Shape{64}, 0.1, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// Randn creates a tensor drawn from N(0, 1). A nil rng uses the
// process-wide source.
//
// Example:
//
//	rng := rand.New(rand.NewPCG(1, 2))
//	x := tensor.Randn[float32](tensor.Shape{8, 24, 24, 3}, rng, backend)
func Randn[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	return tensor.Randn[T, B](shape, rng, b)
}

// FromSlice creates a tensor from a Go slice. The slice is copied.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice[T, B](data, shape, b)
}

// New wraps a raw tensor.
//
// This is a low-level function. Most users should use Zeros, Ones or
// FromSlice instead.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T, B](raw, b)
}

// NewRaw creates a zero-filled raw tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}
