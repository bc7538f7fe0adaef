package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/convnet/internal/tensor"
)

// MaxPool2D performs 2D max pooling with same padding.
//
// Input shape:  [batch, height, width, channels]
// Output shape: [batch, ceil(height/stride), ceil(width/stride), channels]
//
// The padding needed to cover the input, max((out-1)*stride + k - in, 0),
// is split with the smaller half before the input. Padded cells never win
// the max.
//
// Example (2x2 pool, stride=2, one channel):
//
//	Input: [[1,2,3],    Output: [[5,6],
//	        [4,5,6],             [8,9]]
//	        [7,8,9]]
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,H,W,C], got %dD", len(inputShape)))
	}
	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}

	g := poolGeometry{
		N: inputShape[0], H: inputShape[1], W: inputShape[2], C: inputShape[3],
		K: kernelSize, stride: stride,
	}
	g.HOut, g.padTop = samePadding(g.H, kernelSize, stride)
	g.WOut, g.padLeft = samePadding(g.W, kernelSize, stride)

	output := cpu.newLike("maxpool2d", input, tensor.Shape{g.N, g.HOut, g.WOut, g.C})

	switch input.DType() {
	case tensor.Float32:
		src, dst := input.AsFloat32(), output.AsFloat32()
		cpu.par.Range(g.N*g.HOut, func(lo, hi int) {
			maxpool(dst, src, &g, lo, hi, float32(math.Inf(-1)))
		})
	case tensor.Float64:
		src, dst := input.AsFloat64(), output.AsFloat64()
		cpu.par.Range(g.N*g.HOut, func(lo, hi int) {
			maxpool(dst, src, &g, lo, hi, math.Inf(-1))
		})
	default:
		panic(fmt.Sprintf("maxpool2d: unsupported dtype %v", input.DType()))
	}

	return output
}

type poolGeometry struct {
	N, H, W, C      int
	K, stride       int
	HOut, WOut      int
	padTop, padLeft int
}

// samePadding returns the same-padded output size and the leading pad.
func samePadding(in, k, stride int) (out, before int) {
	out = (in + stride - 1) / stride
	total := max((out-1)*stride+k-in, 0)
	return out, total / 2
}

// maxpool computes output rows [lo, hi) where a row is one (n, oh) pair.
func maxpool[T float](dst, src []T, g *poolGeometry, lo, hi int, negInf T) {
	for r := lo; r < hi; r++ {
		n, oh := r/g.HOut, r%g.HOut
		hStart := oh*g.stride - g.padTop
		hEnd := min(hStart+g.K, g.H)
		hStart = max(hStart, 0)

		for ow := 0; ow < g.WOut; ow++ {
			wStart := ow*g.stride - g.padLeft
			wEnd := min(wStart+g.K, g.W)
			wStart = max(wStart, 0)

			out := dst[((n*g.HOut+oh)*g.WOut+ow)*g.C:][:g.C]
			for c := range out {
				out[c] = negInf
			}
			for ih := hStart; ih < hEnd; ih++ {
				for iw := wStart; iw < wEnd; iw++ {
					in := src[((n*g.H+ih)*g.W+iw)*g.C:][:g.C]
					for c, v := range in {
						if v > out[c] {
							out[c] = v
						}
					}
				}
			}
		}
	}
}
