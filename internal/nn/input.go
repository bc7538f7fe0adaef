package nn

import (
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
)

// Input seeds shape propagation: its output shape is the network input
// shape and its forward step returns x unchanged.
type Input[B tensor.Backend] struct {
	shapes
}

// NewInput creates an input layer for the given shape.
func NewInput[B tensor.Backend](shape tensor.Shape) (*Input[B], error) {
	if len(shape) == 0 {
		return nil, &ShapeError{Layer: "input", Shape: shape, Details: "input shape is empty"}
	}
	if err := shape.Validate(); err != nil {
		return nil, &ShapeError{Layer: "input", Shape: shape.Clone(), Details: err.Error()}
	}
	return &Input[B]{shapes{name: "input", in: shape.Clone(), out: shape.Clone()}}, nil
}

// Kind returns "input".
func (l *Input[B]) Kind() string { return "input" }

// Parameters returns nil; the input layer has no parameters.
func (l *Input[B]) Parameters() []*Parameter[B] { return nil }

// Forward returns x.
func (l *Input[B]) Forward(x *tensor.Tensor[float32, B], _ Mode) *tensor.Tensor[float32, B] {
	return x
}

// String returns a string representation of the layer.
func (l *Input[B]) String() string {
	return fmt.Sprintf("Input(shape=%v)", l.out)
}
