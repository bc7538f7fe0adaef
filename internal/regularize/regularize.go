// Package regularize implements stochastic weight-perturbation transforms
// for dense layers. Each transform perturbs the weight matrix for a single
// training step and returns x @ w̃, shaped exactly like x @ w.
//
// Every probability here is a keep probability, the same convention the
// dropout layer uses.
package regularize

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/born-ml/convnet/internal/tensor"
)

// DropConnect zeroes each weight independently with probability 1-p and
// rescales the survivors by 1/p:
//
//	w̃ = w ⊙ m / p,  m ~ Bernoulli(p)
func DropConnect[B tensor.Backend](x, w *tensor.Tensor[float32, B], p float64, rng *rand.Rand) *tensor.Tensor[float32, B] {
	checkKeep("dropconnect", p)
	mask := sampleMask(w.Shape(), p, w.Backend(), uniform(rng), func(kept bool) float32 {
		if kept {
			return float32(1 / p)
		}
		return 0
	})
	return x.MatMul(w.Mul(mask))
}

// ShakeOut applies shakeout to the incoming weights of every input unit.
// For input row j, r_j ~ Bernoulli(p) and s_j = sign(w_j):
//
//	w̃_j = w_j/p + c·(1-p)/p·s_j   if r_j = 1
//	w̃_j = -c·s_j                  if r_j = 0
//
// With c = 0 this reduces to dropout on the input units.
func ShakeOut[B tensor.Backend](x, w *tensor.Tensor[float32, B], p, c float64, rng *rand.Rand) *tensor.Tensor[float32, B] {
	checkKeep("shakeout", p)
	shape := w.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("shakeout: weights must be 2D, got %v", shape))
	}
	rows, cols := shape[0], shape[1]

	draw := uniform(rng)
	src := w.Data()
	shaken := tensor.Zeros[float32](shape, w.Backend())
	dst := shaken.Data()

	for j := 0; j < rows; j++ {
		kept := draw() < p
		for k := 0; k < cols; k++ {
			v := float64(src[j*cols+k])
			s := sign(v)
			if kept {
				dst[j*cols+k] = float32(v/p + c*(1-p)/p*s)
			} else {
				dst[j*cols+k] = float32(-c * s)
			}
		}
	}
	return x.MatMul(shaken)
}

// ShakeWeight perturbs each weight with multiplicative Gaussian noise whose
// variance matches dropout with keep probability p:
//
//	w̃ = w ⊙ (1 + ε),  ε ~ N(0, (1-p)/p)
//
// The perturbed weights are unbiased, so no rescaling is needed.
func ShakeWeight[B tensor.Backend](x, w *tensor.Tensor[float32, B], p float64, rng *rand.Rand) *tensor.Tensor[float32, B] {
	checkKeep("shakeweight", p)
	sigma := math.Sqrt((1 - p) / p)

	normal := rand.NormFloat64 //nolint:gosec // statistical sampling
	if rng != nil {
		normal = rng.NormFloat64
	}

	noise := tensor.Zeros[float32](w.Shape(), w.Backend())
	data := noise.Data()
	for i := range data {
		data[i] = float32(1 + sigma*normal())
	}
	return x.MatMul(w.Mul(noise))
}

func sampleMask[B tensor.Backend](shape tensor.Shape, p float64, b B, draw func() float64, value func(kept bool) float32) *tensor.Tensor[float32, B] {
	mask := tensor.Zeros[float32](shape, b)
	data := mask.Data()
	for i := range data {
		data[i] = value(draw() < p)
	}
	return mask
}

func uniform(rng *rand.Rand) func() float64 {
	if rng != nil {
		return rng.Float64
	}
	return rand.Float64 //nolint:gosec // statistical sampling
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func checkKeep(op string, p float64) {
	if p <= 0 || p > 1 {
		panic(fmt.Sprintf("%s: keep probability %v out of range (0, 1]", op, p))
	}
}
