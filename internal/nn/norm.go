package nn

import (
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
)

// LRN is the fixed local response normalization used by Norm.
var LRN = tensor.LRNParams{
	Radius: 5,
	Bias:   1.0,
	Alpha:  0.001 / 9.0,
	Beta:   0.75,
}

// NormConfig configures a normalization layer.
type NormConfig struct {
	Name string
}

// Norm applies local response normalization across channels.
// Output shape equals input shape.
type Norm[B tensor.Backend] struct {
	shapes
}

// NewNorm creates a normalization layer for NHWC input.
func NewNorm[B tensor.Backend](in tensor.Shape, cfg NormConfig) (*Norm[B], error) {
	if err := requireSpatial(in); err != nil {
		return nil, attribute(err, cfg.Name)
	}
	return &Norm[B]{shapes{name: cfg.Name, in: in.Clone(), out: in.Clone()}}, nil
}

// Kind returns "norm".
func (n *Norm[B]) Kind() string { return "norm" }

// Parameters returns nil.
func (n *Norm[B]) Parameters() []*Parameter[B] { return nil }

// Forward normalizes x.
func (n *Norm[B]) Forward(x *tensor.Tensor[float32, B], _ Mode) *tensor.Tensor[float32, B] {
	return x.LocalResponseNorm(LRN)
}

// String returns a string representation of the layer.
func (n *Norm[B]) String() string {
	return fmt.Sprintf("Norm(radius=%d, bias=%g, alpha=%g, beta=%g)", LRN.Radius, LRN.Bias, LRN.Alpha, LRN.Beta)
}
