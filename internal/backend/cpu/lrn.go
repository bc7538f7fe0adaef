package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/convnet/internal/tensor"
)

// LocalResponseNorm normalizes each element by the energy of its channel
// neighbourhood at the same spatial position:
//
//	sqr_sum = sum(x[n,h,w,c-r .. c+r]^2)
//	out = x / (bias + alpha*sqr_sum)^beta
//
// The last axis of x is treated as channels.
func (cpu *CPUBackend) LocalResponseNorm(x *tensor.RawTensor, p tensor.LRNParams) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) == 0 {
		panic("lrn: scalar input")
	}
	if p.Radius < 0 {
		panic(fmt.Sprintf("lrn: invalid radius %d", p.Radius))
	}

	channels := shape[len(shape)-1]
	positions := x.NumElements() / channels
	output := cpu.newLike("lrn", x, shape)

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), output.AsFloat32()
		cpu.par.Range(positions, func(lo, hi int) {
			lrn(dst, src, channels, p, lo, hi)
		})
	case tensor.Float64:
		src, dst := x.AsFloat64(), output.AsFloat64()
		cpu.par.Range(positions, func(lo, hi int) {
			lrn(dst, src, channels, p, lo, hi)
		})
	default:
		panic(fmt.Sprintf("lrn: unsupported dtype %s", x.DType()))
	}
	return output
}

func lrn[T float](dst, src []T, channels int, p tensor.LRNParams, lo, hi int) {
	for pos := lo; pos < hi; pos++ {
		in := src[pos*channels : (pos+1)*channels]
		out := dst[pos*channels : (pos+1)*channels]
		for c := range in {
			var sqrSum float64
			for j := max(c-p.Radius, 0); j <= min(c+p.Radius, channels-1); j++ {
				v := float64(in[j])
				sqrSum += v * v
			}
			out[c] = T(float64(in[c]) / math.Pow(p.Bias+p.Alpha*sqrSum, p.Beta))
		}
	}
}
