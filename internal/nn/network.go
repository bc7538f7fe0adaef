package nn

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/born-ml/convnet/internal/tensor"
)

// Builder assembles a Network layer by layer. Each added layer is sized
// from the declared output shape of the previous one.
//
// The first failing layer stops assembly; later calls are no-ops and
// Build returns the error.
//
// Example:
//
//	store := nn.NewParameterStore(backend, 42)
//	net, err := nn.NewBuilder(store, tensor.Shape{8, 24, 24, 3}).
//	    Conv(nn.ConvConfig{Name: "conv1", Filter: [4]int{5, 5, 3, 64}, Stride: 1, Activation: nn.ReLU}).
//	    Pool(nn.PoolConfig{Name: "pool1", KernelSize: 3, Stride: 2}).
//	    Norm(nn.NormConfig{Name: "norm1"}).
//	    Dense(nn.DenseConfig{Name: "fc1", Units: 384, Reshape: true, BatchSize: 8, Activation: nn.ReLU}).
//	    Dropout(nn.DropoutConfig{Name: "drop1", KeepProb: 0.5}).
//	    Dense(nn.DenseConfig{Name: "logits", Units: 10}).
//	    Build()
type Builder[B tensor.Backend] struct {
	store  *ParameterStore[B]
	layers []Layer[B]
	err    error
}

// NewBuilder starts a network whose first layer is an Input of shape in.
func NewBuilder[B tensor.Backend](store *ParameterStore[B], in tensor.Shape) *Builder[B] {
	b := &Builder[B]{store: store}
	input, err := NewInput[B](in)
	if err != nil {
		b.err = fmt.Errorf("layer 0 (input): %w", err)
		return b
	}
	b.layers = append(b.layers, input)
	return b
}

// Conv appends a convolution layer.
func (b *Builder[B]) Conv(cfg ConvConfig) *Builder[B] {
	return b.add(cfg.Name, func(in tensor.Shape) (Layer[B], error) {
		return NewConv(b.store, in, cfg)
	})
}

// Pool appends a max pooling layer.
func (b *Builder[B]) Pool(cfg PoolConfig) *Builder[B] {
	return b.add(cfg.Name, func(in tensor.Shape) (Layer[B], error) {
		return NewPool[B](in, cfg)
	})
}

// Norm appends a local response normalization layer.
func (b *Builder[B]) Norm(cfg NormConfig) *Builder[B] {
	return b.add(cfg.Name, func(in tensor.Shape) (Layer[B], error) {
		return NewNorm[B](in, cfg)
	})
}

// Dropout appends a dropout layer.
func (b *Builder[B]) Dropout(cfg DropoutConfig) *Builder[B] {
	return b.add(cfg.Name, func(in tensor.Shape) (Layer[B], error) {
		return NewDropout(b.store, in, cfg)
	})
}

// Dense appends a fully connected layer.
func (b *Builder[B]) Dense(cfg DenseConfig) *Builder[B] {
	return b.add(cfg.Name, func(in tensor.Shape) (Layer[B], error) {
		return NewDense(b.store, in, cfg)
	})
}

func (b *Builder[B]) add(name string, build func(in tensor.Shape) (Layer[B], error)) *Builder[B] {
	if b.err != nil {
		return b
	}
	prev := b.layers[len(b.layers)-1]
	layer, err := build(prev.OutputShape())
	if err != nil {
		b.err = fmt.Errorf("layer %d (%s): %w", len(b.layers), name, err)
		return b
	}
	b.layers = append(b.layers, layer)
	return b
}

// Build returns the assembled network or the first construction error.
func (b *Builder[B]) Build() (*Network[B], error) {
	if b.err != nil {
		return nil, b.err
	}
	return &Network[B]{store: b.store, layers: append([]Layer[B](nil), b.layers...)}, nil
}

// Network is an ordered chain of layers starting with an Input.
type Network[B tensor.Backend] struct {
	store  *ParameterStore[B]
	layers []Layer[B]
}

// Forward threads x through every layer and returns the last activations.
func (n *Network[B]) Forward(x *tensor.Tensor[float32, B], mode Mode) *tensor.Tensor[float32, B] {
	for _, l := range n.layers {
		x = l.Forward(x, mode)
	}
	return x
}

// Trace is Forward returning every layer's activations, in layer order.
// Trace(x)[0] is x itself (the Input layer's output).
func (n *Network[B]) Trace(x *tensor.Tensor[float32, B], mode Mode) []*tensor.Tensor[float32, B] {
	acts := make([]*tensor.Tensor[float32, B], 0, len(n.layers))
	for _, l := range n.layers {
		x = l.Forward(x, mode)
		acts = append(acts, x)
	}
	return acts
}

// Layers returns the layers, Input first.
func (n *Network[B]) Layers() []Layer[B] {
	return append([]Layer[B](nil), n.layers...)
}

// Store returns the parameter store the network was built against.
func (n *Network[B]) Store() *ParameterStore[B] {
	return n.store
}

// InputShape returns the declared input shape.
func (n *Network[B]) InputShape() tensor.Shape {
	return n.layers[0].InputShape()
}

// OutputShape returns the declared output shape of the last layer.
func (n *Network[B]) OutputShape() tensor.Shape {
	return n.layers[len(n.layers)-1].OutputShape()
}

// Parameters returns every layer parameter in layer order.
func (n *Network[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, l := range n.layers {
		params = append(params, l.Parameters()...)
	}
	return params
}

// NumParameters returns the total number of scalar parameters.
func (n *Network[B]) NumParameters() int {
	total := 0
	for _, p := range n.Parameters() {
		total += p.Shape().NumElements()
	}
	return total
}

// RegularizationTerm pairs a weight parameter with its L2 coefficient.
type RegularizationTerm[B tensor.Backend] struct {
	Weights     *Parameter[B]
	Coefficient float64
}

// RegularizationTerms returns the weights of every layer with a non-zero
// regularization coefficient. The loss itself is left to the caller.
func (n *Network[B]) RegularizationTerms() []RegularizationTerm[B] {
	type regularized interface {
		Weights() *Parameter[B]
		RegularizationCoefficient() float64
	}
	var terms []RegularizationTerm[B]
	for _, l := range n.layers {
		r, ok := l.(regularized)
		if !ok || r.RegularizationCoefficient() == 0 {
			continue
		}
		terms = append(terms, RegularizationTerm[B]{Weights: r.Weights(), Coefficient: r.RegularizationCoefficient()})
	}
	return terms
}

// Summary renders one row per layer with its shapes and parameter count.
func (n *Network[B]) Summary() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tKIND\tINPUT\tOUTPUT\tPARAMS")
	for i, l := range n.layers {
		count := 0
		for _, p := range l.Parameters() {
			count += p.Shape().NumElements()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%v\t%v\t%d\n", i, l.Name(), l.Kind(), l.InputShape(), l.OutputShape(), count)
	}
	w.Flush()
	fmt.Fprintf(&sb, "Total parameters: %d\n", n.NumParameters())
	return sb.String()
}

// String returns a string representation of the network.
func (n *Network[B]) String() string {
	parts := make([]string, 0, len(n.layers))
	for _, l := range n.layers {
		if s, ok := l.(fmt.Stringer); ok {
			parts = append(parts, s.String())
		} else {
			parts = append(parts, l.Name())
		}
	}
	return "Network(\n  " + strings.Join(parts, ",\n  ") + "\n)"
}
