package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/convnet/internal/regularize"
	"github.com/born-ml/convnet/internal/tensor"
)

// WeightMode is the weight-noise strategy a dense layer applies during
// training. It is resolved once at construction; the concrete types are
// PlainMatMul, WeightShake, ShakeOut and DropConnect.
type WeightMode interface {
	fmt.Stringer
	weightMode()
}

// PlainMatMul multiplies by the weights unchanged.
type PlainMatMul struct{}

// WeightShake perturbs every weight with multiplicative Gaussian noise of
// variance (1-P)/P.
type WeightShake struct {
	P float64
}

// ShakeOut drops input rows of the weight matrix with probability 1-P and
// shifts the survivors by C*(1-P)/P*sign(w).
type ShakeOut struct {
	P float64
	C float64
}

// DropConnect keeps each weight with probability P and rescales by 1/P.
type DropConnect struct {
	P float64
}

func (PlainMatMul) weightMode() {}
func (WeightShake) weightMode() {}
func (ShakeOut) weightMode()    {}
func (DropConnect) weightMode() {}

func (PlainMatMul) String() string   { return "matmul" }
func (m WeightShake) String() string { return fmt.Sprintf("weight_shake(p=%g)", m.P) }
func (m ShakeOut) String() string    { return fmt.Sprintf("shake_out(p=%g, c=%g)", m.P, m.C) }
func (m DropConnect) String() string { return fmt.Sprintf("drop_connect(p=%g)", m.P) }

// resolveWeightMode picks the single stochastic mode a config asks for.
// Zero probabilities mean "not set".
func resolveWeightMode(cfg DenseConfig) (WeightMode, error) {
	var set []string
	if cfg.WeightShake != 0 {
		set = append(set, "weight_shake")
	}
	if cfg.ShakeOut != 0 {
		set = append(set, "shake_out")
	}
	if cfg.DropConnect != 0 {
		set = append(set, "drop_connect")
	}
	if len(set) > 1 {
		return nil, &ConfigError{Layer: cfg.Name, Field: set[1], Details: fmt.Sprintf("cannot combine %v", set)}
	}
	if cfg.ShakeOutScale != 0 && cfg.ShakeOut == 0 {
		return nil, &ConfigError{Layer: cfg.Name, Field: "shake_out_scale", Details: "set without shake_out"}
	}

	switch {
	case cfg.WeightShake != 0:
		if err := checkProbability(cfg.Name, "weight_shake", cfg.WeightShake); err != nil {
			return nil, err
		}
		return WeightShake{P: cfg.WeightShake}, nil
	case cfg.ShakeOut != 0:
		if err := checkProbability(cfg.Name, "shake_out", cfg.ShakeOut); err != nil {
			return nil, err
		}
		if cfg.ShakeOutScale < 0 {
			return nil, &ConfigError{Layer: cfg.Name, Field: "shake_out_scale", Details: fmt.Sprintf("%v (must be >= 0)", cfg.ShakeOutScale)}
		}
		return ShakeOut{P: cfg.ShakeOut, C: cfg.ShakeOutScale}, nil
	case cfg.DropConnect != 0:
		if err := checkProbability(cfg.Name, "drop_connect", cfg.DropConnect); err != nil {
			return nil, err
		}
		return DropConnect{P: cfg.DropConnect}, nil
	default:
		return PlainMatMul{}, nil
	}
}

// multiply computes x @ w under mode.
func multiply[B tensor.Backend](mode WeightMode, x, w *tensor.Tensor[float32, B], rng *rand.Rand) *tensor.Tensor[float32, B] {
	switch m := mode.(type) {
	case WeightShake:
		return regularize.ShakeWeight(x, w, m.P, rng)
	case ShakeOut:
		return regularize.ShakeOut(x, w, m.P, m.C, rng)
	case DropConnect:
		return regularize.DropConnect(x, w, m.P, rng)
	default:
		return x.MatMul(w)
	}
}
