package nn

import (
	"github.com/born-ml/convnet/internal/tensor"
)

// Parameter is a named trainable tensor owned by exactly one layer.
//
// Layers never write to their parameters after creation; an external
// optimizer may update the data in place through Tensor().Data().
type Parameter[B tensor.Backend] struct {
	name   string
	owner  string
	tensor *tensor.Tensor[float32, B]
}

// Name returns the parameter's unique name, e.g. "conv1_weights".
func (p *Parameter[B]) Name() string {
	return p.name
}

// Owner returns the name of the layer that created the parameter.
func (p *Parameter[B]) Owner() string {
	return p.owner
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Shape returns the parameter shape.
func (p *Parameter[B]) Shape() tensor.Shape {
	return p.tensor.Shape()
}
