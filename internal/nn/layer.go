// Package nn implements the layers of a feed-forward convolutional network:
// input, convolution, max pooling, local response normalization, dropout
// and fully connected.
//
// Each layer computes its output shape once at construction, allocates its
// parameters through a shared ParameterStore, and exposes a Forward step
// that delegates the math to the tensor backend. Layers are immutable after
// construction.
package nn

import (
	"github.com/born-ml/convnet/internal/tensor"
)

// Mode selects how a forward pass treats stochastic layers.
type Mode int

const (
	// Deterministic is inference: dropout scales by its keep probability
	// and dense layers always use a plain matrix multiply.
	Deterministic Mode = iota
	// Training samples dropout masks and weight perturbations.
	Training
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Training {
		return "training"
	}
	return "deterministic"
}

// Layer is the contract every layer satisfies.
//
// InputShape and OutputShape return copies of shapes fixed at
// construction. Forward returns the layer's activations for x.
type Layer[B tensor.Backend] interface {
	Name() string
	Kind() string
	InputShape() tensor.Shape
	OutputShape() tensor.Shape
	Parameters() []*Parameter[B]
	Forward(x *tensor.Tensor[float32, B], mode Mode) *tensor.Tensor[float32, B]
}

// shapes holds the immutable shape metadata shared by every layer.
type shapes struct {
	name string
	in   tensor.Shape
	out  tensor.Shape
}

func (s shapes) Name() string              { return s.name }
func (s shapes) InputShape() tensor.Shape  { return s.in.Clone() }
func (s shapes) OutputShape() tensor.Shape { return s.out.Clone() }
