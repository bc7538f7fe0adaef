package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/convnet/internal/tensor"
)

// ConvOutputShape computes the output of a convolution over an NHWC input
// with filter (kh, kw, cin, cout) and the given stride:
//
//	out = floor((in - k + 2*floor(k/2)) / stride) + 1
//
// per spatial axis, with cout output channels.
func ConvOutputShape(in tensor.Shape, filter [4]int, stride int) (tensor.Shape, error) {
	if err := requireSpatial(in); err != nil {
		return nil, err
	}
	for i, d := range filter {
		if d <= 0 {
			return nil, &ConfigError{Field: "filter", Details: fmt.Sprintf("dimension %d is %d (must be > 0)", i, d)}
		}
	}
	if stride <= 0 {
		return nil, &ConfigError{Field: "stride", Details: fmt.Sprintf("%d (must be > 0)", stride)}
	}
	if in[tensor.AxisChannels] != filter[2] {
		return nil, &ShapeError{Shape: in.Clone(), Details: fmt.Sprintf("input has %d channels, filter expects %d", in[tensor.AxisChannels], filter[2])}
	}

	out := tensor.Shape{
		in[tensor.AxisBatch],
		convDim(in[tensor.AxisHeight], filter[0], stride),
		convDim(in[tensor.AxisWidth], filter[1], stride),
		filter[3],
	}
	return out, positive(in, out)
}

func convDim(in, k, stride int) int {
	pad := 2 * (k / 2)
	return floorDiv(in-k+pad, stride) + 1
}

// PoolOutputShape computes the declared output of a pooling layer:
//
//	out = floor((in - k)/stride + 1) + 1
//
// with real division. This is one more than the usual pooling size for
// most inputs; it is kept as the declared shape layers downstream are
// sized from. Channels are unchanged.
func PoolOutputShape(in tensor.Shape, kernel, stride int) (tensor.Shape, error) {
	if err := requireSpatial(in); err != nil {
		return nil, err
	}
	if kernel <= 0 {
		return nil, &ConfigError{Field: "kernel", Details: fmt.Sprintf("%d (must be > 0)", kernel)}
	}
	if stride <= 0 {
		return nil, &ConfigError{Field: "stride", Details: fmt.Sprintf("%d (must be > 0)", stride)}
	}

	out := tensor.Shape{
		in[tensor.AxisBatch],
		poolDim(in[tensor.AxisHeight], kernel, stride),
		poolDim(in[tensor.AxisWidth], kernel, stride),
		in[tensor.AxisChannels],
	}
	return out, positive(in, out)
}

func poolDim(in, k, stride int) int {
	return int(math.Floor(float64(in-k)/float64(stride)+1)) + 1
}

// DenseInputSize returns the flattened feature count a dense layer
// multiplies against. With reshape set, every non-batch axis of in is
// flattened (H*W*C for NHWC); otherwise in must already be a flat size
// {n} or {batch, n}.
func DenseInputSize(in tensor.Shape, reshape bool) (int, error) {
	if err := in.Validate(); err != nil {
		return 0, &ShapeError{Shape: in.Clone(), Details: err.Error()}
	}
	if reshape {
		if len(in) < 2 {
			return 0, &ShapeError{Shape: in.Clone(), Details: "reshape needs a batch axis and at least one feature axis"}
		}
		return in[1:].NumElements(), nil
	}
	switch len(in) {
	case 1, 2:
		return in[len(in)-1], nil
	default:
		return 0, &ShapeError{Shape: in.Clone(), Details: "multi-dimensional input needs reshape"}
	}
}

func requireSpatial(in tensor.Shape) error {
	if !in.IsSpatial() {
		return &ShapeError{Shape: in.Clone(), Details: "expected 4D [batch, height, width, channels]"}
	}
	if err := in.Validate(); err != nil {
		return &ShapeError{Shape: in.Clone(), Details: err.Error()}
	}
	return nil
}

func positive(in, out tensor.Shape) error {
	if err := out.Validate(); err != nil {
		return &ShapeError{Shape: in.Clone(), Details: fmt.Sprintf("output %v: %v", out, err)}
	}
	return nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
