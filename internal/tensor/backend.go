package tensor

import "math/rand/v2"

// LRNParams configures local response normalization across channels:
//
//	sqr_sum[n,h,w,c] = sum(x[n,h,w,c-Radius : c+Radius+1]^2)
//	out = x / (Bias + Alpha*sqr_sum)^Beta
type LRNParams struct {
	Radius int
	Bias   float64
	Alpha  float64
	Beta   float64
}

// Backend defines the numeric operations the layers delegate to.
// Backends own the kernels; tensors and layers only describe shapes.
//
// Spatial operations use NHWC layout. Convolution kernels use
// [kernel_h, kernel_w, in_channels, out_channels] layout.
//
// Backends panic on shape misuse; callers validate shapes at layer
// construction so a panic during a forward pass means a broken contract.
type Backend interface {
	// Element-wise binary operations. b must equal a's shape or match a
	// trailing suffix of it (e.g. a bias vector against [N, H, W, C]).
	Add(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// MulScalar multiplies every element by s.
	MulScalar(x *RawTensor, s float64) *RawTensor

	// MatMul performs (M, K) @ (K, N) -> (M, N).
	MatMul(a, b *RawTensor) *RawTensor

	// Reshape returns a tensor with the same data and a new shape.
	Reshape(t *RawTensor, newShape Shape) *RawTensor

	// Conv2D performs a strided convolution with symmetric zero padding
	// padH rows on top and bottom and padW columns on each side.
	Conv2D(input, kernel *RawTensor, stride, padH, padW int) *RawTensor

	// MaxPool2D performs max pooling with same padding: the output has
	// ceil(in/stride) positions per spatial axis.
	MaxPool2D(input *RawTensor, kernelSize, stride int) *RawTensor

	// ReLU computes max(x, 0).
	ReLU(x *RawTensor) *RawTensor

	// LocalResponseNorm normalizes across the channel axis of an NHWC tensor.
	LocalResponseNorm(x *RawTensor, params LRNParams) *RawTensor

	// Dropout keeps each element with probability keep and scales the
	// survivors by 1/keep.
	Dropout(x *RawTensor, keep float64, rng *rand.Rand) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
