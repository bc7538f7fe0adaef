package tensor

import "math/rand/v2"

// Add performs element-wise addition. other may be a trailing-suffix
// broadcast of t (e.g. a per-channel bias).
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Add(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with the same broadcasting as Add.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Mul(t.raw, other.raw), t.backend)
}

// MulScalar multiplies every element by s.
func (t *Tensor[T, B]) MulScalar(s float64) *Tensor[T, B] {
	return New[T, B](t.backend.MulScalar(t.raw, s), t.backend)
}

// MatMul performs matrix multiplication (M, K) @ (K, N) -> (M, N).
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.MatMul(t.raw, other.raw), t.backend)
}

// Reshape returns a tensor with the same data but different shape.
// A single dimension may be -1 and is inferred from the element count.
//
// Example:
//
//	x := tensor.Zeros[float32](Shape{8, 7, 7, 16}, backend)
//	flat := x.Reshape(8, -1) // Shape: [8, 784]
func (t *Tensor[T, B]) Reshape(newShape ...int) *Tensor[T, B] {
	shape := Shape(newShape).Clone()
	infer := -1
	known := 1
	for i, d := range shape {
		if d == -1 {
			if infer >= 0 {
				panic("reshape: only one dimension may be -1")
			}
			infer = i
			continue
		}
		known *= d
	}
	if infer >= 0 && known > 0 {
		shape[infer] = t.NumElements() / known
	}
	return New[T, B](t.backend.Reshape(t.raw, shape), t.backend)
}

// ReLU applies max(x, 0) element-wise.
func (t *Tensor[T, B]) ReLU() *Tensor[T, B] {
	return New[T, B](t.backend.ReLU(t.raw), t.backend)
}

// Conv2D convolves t (NHWC) with kernel (HWIO) using symmetric padding.
func (t *Tensor[T, B]) Conv2D(kernel *Tensor[T, B], stride, padH, padW int) *Tensor[T, B] {
	return New[T, B](t.backend.Conv2D(t.raw, kernel.raw, stride, padH, padW), t.backend)
}

// MaxPool2D applies same-padded max pooling over each channel.
func (t *Tensor[T, B]) MaxPool2D(kernelSize, stride int) *Tensor[T, B] {
	return New[T, B](t.backend.MaxPool2D(t.raw, kernelSize, stride), t.backend)
}

// LocalResponseNorm normalizes across channels.
func (t *Tensor[T, B]) LocalResponseNorm(params LRNParams) *Tensor[T, B] {
	return New[T, B](t.backend.LocalResponseNorm(t.raw, params), t.backend)
}

// Dropout applies inverted dropout with keep probability keep.
func (t *Tensor[T, B]) Dropout(keep float64, rng *rand.Rand) *Tensor[T, B] {
	return New[T, B](t.backend.Dropout(t.raw, keep, rng), t.backend)
}
