package cpu

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/convnet/internal/tensor"
)

// Dropout applies inverted dropout: each element is kept with probability
// keep and scaled by 1/keep, or zeroed otherwise. A nil rng draws from the
// process-wide source.
//
// Sampling is sequential; rng is not safe for concurrent use.
func (cpu *CPUBackend) Dropout(x *tensor.RawTensor, keep float64, rng *rand.Rand) *tensor.RawTensor {
	if keep <= 0 || keep > 1 {
		panic(fmt.Sprintf("dropout: keep probability %v out of range (0, 1]", keep))
	}

	uniform := rand.Float64 //nolint:gosec // statistical sampling
	if rng != nil {
		uniform = rng.Float64
	}

	output := cpu.newLike("dropout", x, x.Shape())
	switch x.DType() {
	case tensor.Float32:
		dropout(output.AsFloat32(), x.AsFloat32(), keep, uniform)
	case tensor.Float64:
		dropout(output.AsFloat64(), x.AsFloat64(), keep, uniform)
	default:
		panic(fmt.Sprintf("dropout: unsupported dtype %s", x.DType()))
	}
	return output
}

func dropout[T float](dst, src []T, keep float64, uniform func() float64) {
	if keep == 1 {
		copy(dst, src)
		return
	}
	s := T(1 / keep)
	for i, v := range src {
		if uniform() < keep {
			dst[i] = v * s
		}
	}
}
