package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/convnet/internal/tensor"
)

// DropoutConfig configures a dropout layer.
type DropoutConfig struct {
	Name string
	// KeepProb is the probability a unit survives, in (0, 1].
	KeepProb float64
}

// Dropout regularizes activations. Output shape equals input shape.
//
// Deterministic passes scale x by the keep probability. Training passes
// apply inverted dropout: each unit is kept with probability p and the
// survivors are scaled by 1/p.
type Dropout[B tensor.Backend] struct {
	shapes
	keep float64
	rng  *rand.Rand
}

// NewDropout creates a dropout layer drawing masks from store's source.
func NewDropout[B tensor.Backend](store *ParameterStore[B], in tensor.Shape, cfg DropoutConfig) (*Dropout[B], error) {
	if err := checkProbability(cfg.Name, "keep_prob", cfg.KeepProb); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil || len(in) == 0 {
		return nil, &ShapeError{Layer: cfg.Name, Shape: in.Clone(), Details: "input shape must be non-empty and positive"}
	}
	return &Dropout[B]{
		shapes: shapes{name: cfg.Name, in: in.Clone(), out: in.Clone()},
		keep:   cfg.KeepProb,
		rng:    store.Rand(),
	}, nil
}

// Kind returns "dropout".
func (d *Dropout[B]) Kind() string { return "dropout" }

// Parameters returns nil.
func (d *Dropout[B]) Parameters() []*Parameter[B] { return nil }

// KeepProb returns the keep probability.
func (d *Dropout[B]) KeepProb() float64 { return d.keep }

// Forward scales x by p in deterministic mode and applies inverted
// dropout in training mode.
func (d *Dropout[B]) Forward(x *tensor.Tensor[float32, B], mode Mode) *tensor.Tensor[float32, B] {
	if mode == Deterministic {
		return x.MulScalar(d.keep)
	}
	return x.Dropout(d.keep, d.rng)
}

// String returns a string representation of the layer.
func (d *Dropout[B]) String() string {
	return fmt.Sprintf("Dropout(keep_prob=%g)", d.keep)
}

func checkProbability(layer, field string, p float64) error {
	if p <= 0 || p > 1 {
		return &ConfigError{Layer: layer, Field: field, Details: fmt.Sprintf("%v out of range (0, 1]", p)}
	}
	return nil
}
