package cpu

import (
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
)

// Conv2D performs a strided 2D convolution using im2col + GEMM.
//
// Input shape:  [batch, height, width, in_channels]
// Kernel shape: [kernel_h, kernel_w, in_channels, out_channels]
// Output shape: [batch, out_h, out_w, out_channels]
//
// Where:
//
//	out_h = (height + 2*padH - kernel_h) / stride + 1
//	out_w = (width + 2*padW - kernel_w) / stride + 1
//
// Algorithm:
//  1. Im2col: gather every receptive field into a row of
//     [N*out_h*out_w, kernel_h*kernel_w*in_channels], zero outside the input
//  2. The HWIO kernel is already a row-major [kernel_h*kernel_w*in_channels, out_channels] matrix
//  3. GEMM: rows @ kernel -> [N*out_h*out_w, out_channels], which is the NHWC output
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padH, padW int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,H,W,C], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [K_h,K_w,C_in,C_out], got %dD", len(kernelShape)))
	}
	if input.DType() != kernel.DType() {
		panic(fmt.Sprintf("conv2d: dtype mismatch %s vs %s", input.DType(), kernel.DType()))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padH < 0 || padW < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d,%d", padH, padW))
	}

	g := convGeometry{
		N: inputShape[0], H: inputShape[1], W: inputShape[2], C: inputShape[3],
		KH: kernelShape[0], KW: kernelShape[1], COut: kernelShape[3],
		stride: stride, padH: padH, padW: padW,
	}
	if kernelShape[2] != g.C {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", g.C, kernelShape[2]))
	}

	g.HOut = (g.H+2*padH-g.KH)/stride + 1
	g.WOut = (g.W+2*padW-g.KW)/stride + 1
	if g.HOut <= 0 || g.WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", g.HOut, g.WOut))
	}

	output := cpu.newLike("conv2d", input, tensor.Shape{g.N, g.HOut, g.WOut, g.COut})

	rows := g.N * g.HOut * g.WOut
	cols := g.KH * g.KW * g.C

	switch input.DType() {
	case tensor.Float32:
		colBuf := make([]float32, rows*cols)
		cpu.par.Range(rows, func(lo, hi int) {
			im2col(colBuf, input.AsFloat32(), &g, lo, hi)
		})
		gemm32(output.AsFloat32(), colBuf, kernel.AsFloat32(), rows, cols, g.COut)
	case tensor.Float64:
		colBuf := make([]float64, rows*cols)
		cpu.par.Range(rows, func(lo, hi int) {
			im2col(colBuf, input.AsFloat64(), &g, lo, hi)
		})
		gemm64(output.AsFloat64(), colBuf, kernel.AsFloat64(), rows, cols, g.COut)
	default:
		panic(fmt.Sprintf("conv2d: unsupported dtype %s", input.DType()))
	}

	return output
}

type convGeometry struct {
	N, H, W, C   int
	KH, KW, COut int
	HOut, WOut   int
	stride       int
	padH, padW   int
}

// im2col fills rows [lo, hi) of col. Row r corresponds to output position
// (n, oh, ow); its columns are ordered (kh, kw, c) to match the HWIO kernel.
func im2col[T float](col, src []T, g *convGeometry, lo, hi int) {
	cols := g.KH * g.KW * g.C
	for r := lo; r < hi; r++ {
		n := r / (g.HOut * g.WOut)
		rem := r % (g.HOut * g.WOut)
		oh, ow := rem/g.WOut, rem%g.WOut

		dst := col[r*cols : (r+1)*cols]
		idx := 0
		for kh := 0; kh < g.KH; kh++ {
			ih := oh*g.stride - g.padH + kh
			for kw := 0; kw < g.KW; kw++ {
				iw := ow*g.stride - g.padW + kw
				if ih < 0 || ih >= g.H || iw < 0 || iw >= g.W {
					// Zero padding: colBuf is freshly allocated.
					idx += g.C
					continue
				}
				base := ((n*g.H+ih)*g.W + iw) * g.C
				copy(dst[idx:idx+g.C], src[base:base+g.C])
				idx += g.C
			}
		}
	}
}
