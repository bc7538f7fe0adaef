package cpu

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/convnet/internal/parallel"
	"github.com/born-ml/convnet/internal/tensor"
)

func raw32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), data)
	return r
}

func seq(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i + 1)
	}
	return out
}

func TestAdd_BiasBroadcast(t *testing.T) {
	backend := New()

	x := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{1, 1, 2, 3})
	bias := raw32(t, []float32{10, 20, 30}, tensor.Shape{3})

	out := backend.Add(x, bias)
	assert.Equal(t, tensor.Shape{1, 1, 2, 3}, out.Shape())
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, out.AsFloat32())
}

func TestAdd_IncompatibleShapesPanics(t *testing.T) {
	backend := New()
	x := raw32(t, seq(6), tensor.Shape{2, 3})
	b := raw32(t, seq(2), tensor.Shape{2})

	assert.Panics(t, func() { backend.Add(x, b) })
}

func TestMul_SameShape(t *testing.T) {
	backend := New()
	a := raw32(t, []float32{1, 2, 3}, tensor.Shape{3})
	b := raw32(t, []float32{2, 0, -1}, tensor.Shape{3})

	assert.Equal(t, []float32{2, 0, -3}, backend.Mul(a, b).AsFloat32())
}

func TestMulScalar(t *testing.T) {
	backend := New()
	x := raw32(t, []float32{1, 1, 1, 1}, tensor.Shape{2, 2})

	out := backend.MulScalar(x, 0.5)
	assert.Equal(t, []float32{0.5, 0.5, 0.5, 0.5}, out.AsFloat32())
	assert.Equal(t, []float32{1, 1, 1, 1}, x.AsFloat32(), "input must not change")
}

func TestReLU(t *testing.T) {
	backend := New()
	x := raw32(t, []float32{-2, -0.5, 0, 0.5, 2}, tensor.Shape{5})

	assert.Equal(t, []float32{0, 0, 0, 0.5, 2}, backend.ReLU(x).AsFloat32())
}

func TestReshape_SharesData(t *testing.T) {
	backend := New()
	x := raw32(t, seq(12), tensor.Shape{1, 2, 2, 3})

	flat := backend.Reshape(x, tensor.Shape{1, 12})
	assert.Equal(t, tensor.Shape{1, 12}, flat.Shape())
	assert.Equal(t, seq(12), flat.AsFloat32())

	assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{5}) })
}

func TestMatMul(t *testing.T) {
	backend := New()
	a := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := raw32(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	out := backend.MatMul(a, b)
	require.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, out.AsFloat32())
}

func TestMatMul_Float64(t *testing.T) {
	backend := New()
	a, err := tensor.NewRaw(tensor.Shape{1, 2}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	b, err := tensor.NewRaw(tensor.Shape{2, 1}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(a.AsFloat64(), []float64{1.5, 2})
	copy(b.AsFloat64(), []float64{2, 4})

	assert.Equal(t, []float64{11}, backend.MatMul(a, b).AsFloat64())
}

func TestMatMul_ShapeMismatchPanics(t *testing.T) {
	backend := New()
	a := raw32(t, seq(6), tensor.Shape{2, 3})
	b := raw32(t, seq(4), tensor.Shape{2, 2})

	assert.Panics(t, func() { backend.MatMul(a, b) })
}

func TestConv2D_SamePaddingValues(t *testing.T) {
	backend := New()

	// 3x3 single-channel image, 3x3 box filter, padding 1.
	input := raw32(t, seq(9), tensor.Shape{1, 3, 3, 1})
	kernel := raw32(t, []float32{1, 1, 1, 1, 1, 1, 1, 1, 1}, tensor.Shape{3, 3, 1, 1})

	out := backend.Conv2D(input, kernel, 1, 1, 1)
	require.Equal(t, tensor.Shape{1, 3, 3, 1}, out.Shape())
	assert.Equal(t, []float32{12, 21, 16, 27, 45, 33, 24, 39, 28}, out.AsFloat32())
}

func TestConv2D_Strided(t *testing.T) {
	backend := New()

	input := raw32(t, seq(9), tensor.Shape{1, 3, 3, 1})
	kernel := raw32(t, []float32{1, 1, 1, 1, 1, 1, 1, 1, 1}, tensor.Shape{3, 3, 1, 1})

	out := backend.Conv2D(input, kernel, 2, 1, 1)
	require.Equal(t, tensor.Shape{1, 2, 2, 1}, out.Shape())
	assert.Equal(t, []float32{12, 16, 24, 28}, out.AsFloat32())
}

func TestConv2D_ChannelMixing(t *testing.T) {
	backend := New()

	input := raw32(t, []float32{1, 2}, tensor.Shape{1, 1, 1, 2})
	kernel := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{1, 1, 2, 3})

	out := backend.Conv2D(input, kernel, 1, 0, 0)
	require.Equal(t, tensor.Shape{1, 1, 1, 3}, out.Shape())
	assert.Equal(t, []float32{9, 12, 15}, out.AsFloat32())
}

func TestConv2D_ParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	data := make([]float32, 4*9*9*3)
	for i := range data {
		data[i] = float32(rng.NormFloat64())
	}
	weights := make([]float32, 5*5*3*4)
	for i := range weights {
		weights[i] = float32(rng.NormFloat64())
	}
	input := raw32(t, data, tensor.Shape{4, 9, 9, 3})
	kernel := raw32(t, weights, tensor.Shape{5, 5, 3, 4})

	par := NewWithConfig(parallel.Config{Workers: 4, MinChunk: 1}).Conv2D(input, kernel, 2, 2, 2)
	seqOut := NewWithConfig(parallel.Sequential()).Conv2D(input, kernel, 2, 2, 2)

	assert.Equal(t, tensor.Shape{4, 5, 5, 4}, par.Shape())
	assert.Equal(t, seqOut.AsFloat32(), par.AsFloat32())
}

func TestConv2D_ChannelMismatchPanics(t *testing.T) {
	backend := New()
	input := raw32(t, seq(8), tensor.Shape{1, 2, 2, 2})
	kernel := raw32(t, seq(3), tensor.Shape{1, 1, 3, 1})

	assert.Panics(t, func() { backend.Conv2D(input, kernel, 1, 0, 0) })
}

func TestMaxPool2D_SamePadding(t *testing.T) {
	backend := New()

	input := raw32(t, seq(9), tensor.Shape{1, 3, 3, 1})
	out := backend.MaxPool2D(input, 2, 2)

	require.Equal(t, tensor.Shape{1, 2, 2, 1}, out.Shape())
	assert.Equal(t, []float32{5, 6, 8, 9}, out.AsFloat32())
}

func TestMaxPool2D_PerChannel(t *testing.T) {
	backend := New()

	// 2x2 image with two channels; channel 1 is the negation of channel 0.
	input := raw32(t, []float32{1, -1, 2, -2, 3, -3, 4, -4}, tensor.Shape{1, 2, 2, 2})
	out := backend.MaxPool2D(input, 2, 2)

	require.Equal(t, tensor.Shape{1, 1, 1, 2}, out.Shape())
	assert.Equal(t, []float32{4, -1}, out.AsFloat32())
}

func TestMaxPool2D_OutputSize(t *testing.T) {
	backend := New()

	tests := []struct {
		in, k, s, want int
	}{
		{32, 2, 2, 16},
		{32, 3, 2, 16},
		{28, 3, 2, 14},
		{7, 3, 1, 7},
		{5, 2, 3, 2},
	}
	for _, tt := range tests {
		input := raw32(t, make([]float32, tt.in*tt.in), tensor.Shape{1, tt.in, tt.in, 1})
		out := backend.MaxPool2D(input, tt.k, tt.s)
		assert.Equal(t, tensor.Shape{1, tt.want, tt.want, 1}, out.Shape(), "in=%d k=%d s=%d", tt.in, tt.k, tt.s)
	}
}

func TestLocalResponseNorm(t *testing.T) {
	backend := New()
	x := raw32(t, []float32{1, 2}, tensor.Shape{1, 1, 1, 2})

	isolated := backend.LocalResponseNorm(x, tensor.LRNParams{Radius: 0, Bias: 1, Alpha: 1, Beta: 1})
	assert.InDeltaSlice(t, []float32{0.5, 0.4}, isolated.AsFloat32(), 1e-6)

	shared := backend.LocalResponseNorm(x, tensor.LRNParams{Radius: 1, Bias: 1, Alpha: 1, Beta: 1})
	assert.InDeltaSlice(t, []float32{1.0 / 6, 2.0 / 6}, shared.AsFloat32(), 1e-6)
}

func TestDropout_KeepAllIsIdentity(t *testing.T) {
	backend := New()
	x := raw32(t, seq(16), tensor.Shape{4, 4})

	out := backend.Dropout(x, 1.0, rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, x.AsFloat32(), out.AsFloat32())
}

func TestDropout_InvertedScaling(t *testing.T) {
	backend := New()

	n := 10000
	ones := make([]float32, n)
	for i := range ones {
		ones[i] = 1
	}
	x := raw32(t, ones, tensor.Shape{n})

	out := backend.Dropout(x, 0.5, rand.New(rand.NewPCG(3, 4)))

	kept := 0
	for _, v := range out.AsFloat32() {
		switch v {
		case 0:
		case 2:
			kept++
		default:
			t.Fatalf("unexpected dropout value %v", v)
		}
	}
	assert.InDelta(t, 0.5, float64(kept)/float64(n), 0.03)
}

func TestDropout_InvalidKeepPanics(t *testing.T) {
	backend := New()
	x := raw32(t, seq(4), tensor.Shape{4})

	assert.Panics(t, func() { backend.Dropout(x, 0, nil) })
	assert.Panics(t, func() { backend.Dropout(x, 1.5, nil) })
}
