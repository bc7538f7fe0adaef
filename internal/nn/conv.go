package nn

import (
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
)

// ConvConfig configures a convolution layer.
type ConvConfig struct {
	Name string

	// Filter is (kernel_h, kernel_w, in_channels, out_channels).
	Filter [4]int
	Stride int

	Activation  Activation
	Initializer Initializer

	// RegularizationCoefficient weights this layer's L2 term in an
	// external loss. Zero means unregularized.
	RegularizationCoefficient float64
}

// Conv is a 2D convolution layer over NHWC input.
//
// Input shape:  [batch, height, width, in_channels]
// Weight shape: [kernel_h, kernel_w, in_channels, out_channels]
// Bias shape:   [out_channels]
// Output shape: [batch, out_h, out_w, out_channels]
//
// Where, per spatial axis,
//
//	out = floor((in - k + 2*floor(k/2)) / stride) + 1
//
// which is the size produced by zero-padding floor(k/2) on each side.
// With stride 1 and an odd kernel the spatial size is preserved.
//
// Example:
//
//	store := nn.NewParameterStore(backend, 1)
//	conv, err := nn.NewConv(store, tensor.Shape{8, 32, 32, 3}, nn.ConvConfig{
//	    Name:       "conv1",
//	    Filter:     [4]int{5, 5, 3, 64},
//	    Stride:     1,
//	    Activation: nn.ReLU,
//	})
//	// conv.OutputShape() == (8, 32, 32, 64)
type Conv[B tensor.Backend] struct {
	shapes
	filter      [4]int
	stride      int
	activation  Activation
	initializer Initializer
	regCoeff    float64

	weights *Parameter[B]
	biases  *Parameter[B]
}

// NewConv creates a convolution layer, registering <name>_weights and
// <name>_bias in store.
func NewConv[B tensor.Backend](store *ParameterStore[B], in tensor.Shape, cfg ConvConfig) (*Conv[B], error) {
	if cfg.Name == "" {
		return nil, &ConfigError{Field: "name", Details: "convolution layers need a name"}
	}
	if err := cfg.Activation.validate(); err != nil {
		return nil, attribute(err, cfg.Name)
	}
	if err := cfg.Initializer.validate(); err != nil {
		return nil, attribute(err, cfg.Name)
	}

	out, err := ConvOutputShape(in, cfg.Filter, cfg.Stride)
	if err != nil {
		return nil, attribute(err, cfg.Name)
	}

	kh, kw, cin, cout := cfg.Filter[0], cfg.Filter[1], cfg.Filter[2], cfg.Filter[3]
	params, err := store.Create(cfg.Name,
		ParamSpec{
			Name:  cfg.Name + "_weights",
			Shape: tensor.Shape{kh, kw, cin, cout},
			Init:  cfg.Initializer.weights(kh*kw*cin, kh*kw*cout, convTruncatedStddev),
		},
		ParamSpec{
			Name:  cfg.Name + "_bias",
			Shape: tensor.Shape{cout},
			Init:  ConstantInit(biasInit),
		},
	)
	if err != nil {
		return nil, err
	}

	return &Conv[B]{
		shapes:      shapes{name: cfg.Name, in: in.Clone(), out: out},
		filter:      cfg.Filter,
		stride:      cfg.Stride,
		activation:  cfg.Activation,
		initializer: cfg.Initializer,
		regCoeff:    cfg.RegularizationCoefficient,
		weights:     params[0],
		biases:      params[1],
	}, nil
}

// Kind returns "conv".
func (c *Conv[B]) Kind() string { return "conv" }

// Forward convolves x with the layer's filter, adds the per-channel bias
// and applies the activation.
func (c *Conv[B]) Forward(x *tensor.Tensor[float32, B], _ Mode) *tensor.Tensor[float32, B] {
	out := x.Conv2D(c.weights.Tensor(), c.stride, c.filter[0]/2, c.filter[1]/2)
	out = out.Add(c.biases.Tensor())
	return activate(c.activation, out)
}

// Parameters returns [weights, bias].
func (c *Conv[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{c.weights, c.biases}
}

// Weights returns the filter parameter.
func (c *Conv[B]) Weights() *Parameter[B] { return c.weights }

// Biases returns the bias parameter.
func (c *Conv[B]) Biases() *Parameter[B] { return c.biases }

// Filter returns (kernel_h, kernel_w, in_channels, out_channels).
func (c *Conv[B]) Filter() [4]int { return c.filter }

// Stride returns the stride.
func (c *Conv[B]) Stride() int { return c.stride }

// Activation returns the activation.
func (c *Conv[B]) Activation() Activation { return c.activation }

// RegularizationCoefficient returns the L2 coefficient for the weights.
func (c *Conv[B]) RegularizationCoefficient() float64 { return c.regCoeff }

// String returns a string representation of the layer.
func (c *Conv[B]) String() string {
	return fmt.Sprintf("Conv(name=%s, filter=%v, stride=%d, activation=%s, init=%s)",
		c.name, c.filter, c.stride, c.activation, c.initializer)
}
