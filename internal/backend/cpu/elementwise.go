package cpu

import (
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
)

type float interface {
	~float32 | ~float64
}

// Add performs element-wise addition. b must have a's shape or a trailing
// suffix of it, in which case b is repeated across the leading axes.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Mul performs element-wise multiplication with the same broadcasting as Add.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// MulScalar multiplies every element of x by s.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	out := cpu.newLike("mul_scalar", x, x.Shape())
	switch x.DType() {
	case tensor.Float32:
		scale(out.AsFloat32(), x.AsFloat32(), float32(s))
	case tensor.Float64:
		scale(out.AsFloat64(), x.AsFloat64(), s)
	default:
		panic(fmt.Sprintf("mul_scalar: unsupported dtype %s", x.DType()))
	}
	return out
}

// ReLU computes max(x, 0) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	out := cpu.newLike("relu", x, x.Shape())
	switch x.DType() {
	case tensor.Float32:
		relu(out.AsFloat32(), x.AsFloat32())
	case tensor.Float64:
		relu(out.AsFloat64(), x.AsFloat64())
	default:
		panic(fmt.Sprintf("relu: unsupported dtype %s", x.DType()))
	}
	return out
}

func (cpu *CPUBackend) binary(
	op string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, a.DType(), b.DType()))
	}
	if !isSuffix(a.Shape(), b.Shape()) {
		panic(fmt.Sprintf("%s: shape %v cannot be broadcast to %v", op, b.Shape(), a.Shape()))
	}

	out := cpu.newLike(op, a, a.Shape())
	switch a.DType() {
	case tensor.Float32:
		broadcast(out.AsFloat32(), a.AsFloat32(), b.AsFloat32(), f32)
	case tensor.Float64:
		broadcast(out.AsFloat64(), a.AsFloat64(), b.AsFloat64(), f64)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, a.DType()))
	}
	return out
}

// isSuffix reports whether b equals the trailing len(b) dimensions of a.
func isSuffix(a, b tensor.Shape) bool {
	if len(b) > len(a) {
		return false
	}
	return a[len(a)-len(b):].Equal(b)
}

func broadcast[T float](dst, a, b []T, f func(x, y T) T) {
	n := len(b)
	for i := range dst {
		dst[i] = f(a[i], b[i%n])
	}
}

func scale[T float](dst, src []T, s T) {
	for i, v := range src {
		dst[i] = v * s
	}
}

func relu[T float](dst, src []T) {
	for i, v := range src {
		if v > 0 {
			dst[i] = v
		}
	}
}
