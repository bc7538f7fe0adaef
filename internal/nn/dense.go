package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/convnet/internal/tensor"
)

// DenseConfig configures a fully connected layer.
//
// At most one of WeightShake, ShakeOut and DropConnect may be non-zero;
// each is a keep probability in (0, 1]. ShakeOutScale is the shake-out
// constant c and is only meaningful with ShakeOut.
type DenseConfig struct {
	Name  string
	Units int

	// Reshape flattens every non-batch axis before the multiply. The input
	// is reshaped to (BatchSize, -1), so BatchSize must be set.
	Reshape   bool
	BatchSize int

	Activation  Activation
	Initializer Initializer

	RegularizationCoefficient float64

	WeightShake   float64
	ShakeOut      float64
	ShakeOutScale float64
	DropConnect   float64
}

// Dense is a fully connected layer: y = act(x @ W + b).
//
// Weight shape: [flat, units], where flat is H*W*C of a reshaped NHWC
// input or the last axis of a {n} / {batch, n} input.
// Bias shape:   [units]
// Output shape: [units]
type Dense[B tensor.Backend] struct {
	shapes
	units       int
	flat        int
	reshape     bool
	batchSize   int
	activation  Activation
	initializer Initializer
	regCoeff    float64
	mode        WeightMode
	rng         *rand.Rand

	weights *Parameter[B]
	biases  *Parameter[B]
}

// NewDense creates a fully connected layer, registering <name>_weights and
// <name>_bias in store.
func NewDense[B tensor.Backend](store *ParameterStore[B], in tensor.Shape, cfg DenseConfig) (*Dense[B], error) {
	if cfg.Name == "" {
		return nil, &ConfigError{Field: "name", Details: "dense layers need a name"}
	}
	if cfg.Units <= 0 {
		return nil, &ConfigError{Layer: cfg.Name, Field: "units", Details: fmt.Sprintf("%d (must be > 0)", cfg.Units)}
	}
	if cfg.Reshape && cfg.BatchSize < 1 {
		return nil, &ConfigError{Layer: cfg.Name, Field: "batch_size", Details: "reshape needs batch_size >= 1"}
	}
	if err := cfg.Activation.validate(); err != nil {
		return nil, attribute(err, cfg.Name)
	}
	if err := cfg.Initializer.validate(); err != nil {
		return nil, attribute(err, cfg.Name)
	}
	mode, err := resolveWeightMode(cfg)
	if err != nil {
		return nil, err
	}

	flat, err := DenseInputSize(in, cfg.Reshape)
	if err != nil {
		return nil, attribute(err, cfg.Name)
	}

	params, err := store.Create(cfg.Name,
		ParamSpec{
			Name:  cfg.Name + "_weights",
			Shape: tensor.Shape{flat, cfg.Units},
			Init:  cfg.Initializer.weights(flat, cfg.Units, denseTruncatedStddev(cfg.Units)),
		},
		ParamSpec{
			Name:  cfg.Name + "_bias",
			Shape: tensor.Shape{cfg.Units},
			Init:  ConstantInit(biasInit),
		},
	)
	if err != nil {
		return nil, err
	}

	return &Dense[B]{
		shapes:      shapes{name: cfg.Name, in: in.Clone(), out: tensor.Shape{cfg.Units}},
		units:       cfg.Units,
		flat:        flat,
		reshape:     cfg.Reshape,
		batchSize:   cfg.BatchSize,
		activation:  cfg.Activation,
		initializer: cfg.Initializer,
		regCoeff:    cfg.RegularizationCoefficient,
		mode:        mode,
		rng:         store.Rand(),
		weights:     params[0],
		biases:      params[1],
	}, nil
}

// Kind returns "dense".
func (d *Dense[B]) Kind() string { return "dense" }

// Forward computes act(x @ W + b). The weight mode only applies in
// training; deterministic passes always use the plain product.
func (d *Dense[B]) Forward(x *tensor.Tensor[float32, B], mode Mode) *tensor.Tensor[float32, B] {
	switch {
	case d.reshape:
		x = x.Reshape(d.batchSize, -1)
	case len(x.Shape()) == 1:
		x = x.Reshape(1, -1)
	}

	var out *tensor.Tensor[float32, B]
	if mode == Training {
		out = multiply(d.mode, x, d.weights.Tensor(), d.rng)
	} else {
		out = x.MatMul(d.weights.Tensor())
	}
	out = out.Add(d.biases.Tensor())
	return activate(d.activation, out)
}

// Parameters returns [weights, bias].
func (d *Dense[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{d.weights, d.biases}
}

// Weights returns the weight parameter.
func (d *Dense[B]) Weights() *Parameter[B] { return d.weights }

// Biases returns the bias parameter.
func (d *Dense[B]) Biases() *Parameter[B] { return d.biases }

// Units returns the output width.
func (d *Dense[B]) Units() int { return d.units }

// FlatSize returns the number of input features per example.
func (d *Dense[B]) FlatSize() int { return d.flat }

// WeightMode returns the resolved training-time weight mode.
func (d *Dense[B]) WeightMode() WeightMode { return d.mode }

// Activation returns the activation.
func (d *Dense[B]) Activation() Activation { return d.activation }

// RegularizationCoefficient returns the L2 coefficient for the weights.
func (d *Dense[B]) RegularizationCoefficient() float64 { return d.regCoeff }

// String returns a string representation of the layer.
func (d *Dense[B]) String() string {
	return fmt.Sprintf("Dense(name=%s, in_features=%d, units=%d, activation=%s, mode=%s)",
		d.name, d.flat, d.units, d.activation, d.mode)
}
