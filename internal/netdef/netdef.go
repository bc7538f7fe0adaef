// Package netdef loads network definitions from YAML and assembles them
// into nn.Network values.
//
// A definition lists the input shape, a seed for the parameter store and
// the layers in order:
//
//	input: [128, 24, 24, 3]
//	seed: 42
//	layers:
//	  - {type: conv, name: conv1, filter: [5, 5, 3, 64], stride: 1, activation: relu}
//	  - {type: pool, name: pool1, kernel: 3, stride: 2}
//	  - {type: norm, name: norm1}
//	  - {type: dense, name: local3, units: 384, reshape: true, activation: relu}
//	  - {type: dropout, name: drop3, keep_prob: 0.5}
//	  - {type: dense, name: logits, units: 10}
package netdef

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/convnet/internal/nn"
	"github.com/born-ml/convnet/internal/tensor"
	"gopkg.in/yaml.v3"
)

// Layer kinds accepted in the type field.
const (
	KindConv    = "conv"
	KindPool    = "pool"
	KindNorm    = "norm"
	KindDropout = "dropout"
	KindDense   = "dense"
)

// Definition is the decoded form of a network definition file.
type Definition struct {
	Input  []int   `yaml:"input"`
	Seed   uint64  `yaml:"seed"`
	Layers []Layer `yaml:"layers"`
}

// Layer is one entry of the layers list. Fields that do not apply to the
// layer's type must be left unset.
type Layer struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`

	// conv
	Filter []int `yaml:"filter,omitempty"`
	// conv, pool
	Stride int `yaml:"stride,omitempty"`
	// pool
	Kernel int `yaml:"kernel,omitempty"`

	// conv, dense
	Activation     string  `yaml:"activation,omitempty"`
	Initializer    string  `yaml:"initializer,omitempty"`
	Regularization float64 `yaml:"regularization,omitempty"`

	// dense
	Units         int     `yaml:"units,omitempty"`
	Reshape       bool    `yaml:"reshape,omitempty"`
	BatchSize     int     `yaml:"batch_size,omitempty"`
	WeightShake   float64 `yaml:"weight_shake,omitempty"`
	ShakeOut      float64 `yaml:"shake_out,omitempty"`
	ShakeOutScale float64 `yaml:"shake_out_scale,omitempty"`
	DropConnect   float64 `yaml:"drop_connect,omitempty"`

	// dropout
	KeepProb float64 `yaml:"keep_prob,omitempty"`
}

// Load decodes a definition. Unknown keys are rejected.
func Load(r io.Reader) (*Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &nn.ConfigError{Field: "definition", Details: "empty document"}
		}
		return nil, &nn.ConfigError{Field: "definition", Details: err.Error()}
	}
	if len(def.Input) == 0 {
		return nil, &nn.ConfigError{Field: "input", Details: "missing input shape"}
	}
	return &def, nil
}

// LoadFile decodes the definition stored at path.
func LoadFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open definition: %w", err)
	}
	defer f.Close()

	def, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Marshal encodes a definition back to YAML.
func Marshal(def *Definition) ([]byte, error) {
	return yaml.Marshal(def)
}

// Build allocates a fresh parameter store seeded from the definition and
// assembles the network on backend.
func Build[B tensor.Backend](def *Definition, backend B) (*nn.Network[B], error) {
	store := nn.NewParameterStore(backend, def.Seed)
	in := tensor.Shape(def.Input).Clone()
	b := nn.NewBuilder(store, in)

	for i, l := range def.Layers {
		var err error
		switch l.Type {
		case KindConv:
			var cfg nn.ConvConfig
			if cfg, err = l.convConfig(); err == nil {
				b.Conv(cfg)
			}
		case KindPool:
			b.Pool(nn.PoolConfig{Name: l.Name, KernelSize: l.Kernel, Stride: l.Stride})
		case KindNorm:
			b.Norm(nn.NormConfig{Name: l.Name})
		case KindDropout:
			b.Dropout(nn.DropoutConfig{Name: l.Name, KeepProb: l.KeepProb})
		case KindDense:
			var cfg nn.DenseConfig
			if cfg, err = l.denseConfig(in); err == nil {
				b.Dense(cfg)
			}
		default:
			err = &nn.ConfigError{Layer: l.Name, Field: "type", Details: fmt.Sprintf("unknown layer type %q", l.Type)}
		}
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i+1, l.Name, err)
		}
	}
	return b.Build()
}

func (l Layer) convConfig() (nn.ConvConfig, error) {
	if len(l.Filter) != 4 {
		return nn.ConvConfig{}, &nn.ConfigError{Layer: l.Name, Field: "filter", Details: fmt.Sprintf("want [kh, kw, in, out], got %v", l.Filter)}
	}
	act, initializer, err := l.functions()
	if err != nil {
		return nn.ConvConfig{}, err
	}
	return nn.ConvConfig{
		Name:                      l.Name,
		Filter:                    [4]int(l.Filter),
		Stride:                    l.Stride,
		Activation:                act,
		Initializer:               initializer,
		RegularizationCoefficient: l.Regularization,
	}, nil
}

// denseConfig defaults the reshape batch size to the input batch axis.
func (l Layer) denseConfig(in tensor.Shape) (nn.DenseConfig, error) {
	act, initializer, err := l.functions()
	if err != nil {
		return nn.DenseConfig{}, err
	}
	batch := l.BatchSize
	if l.Reshape && batch == 0 && len(in) > 0 {
		batch = in[tensor.AxisBatch]
	}
	return nn.DenseConfig{
		Name:                      l.Name,
		Units:                     l.Units,
		Reshape:                   l.Reshape,
		BatchSize:                 batch,
		Activation:                act,
		Initializer:               initializer,
		RegularizationCoefficient: l.Regularization,
		WeightShake:               l.WeightShake,
		ShakeOut:                  l.ShakeOut,
		ShakeOutScale:             l.ShakeOutScale,
		DropConnect:               l.DropConnect,
	}, nil
}

// functions parses the activation and initializer keywords. Empty keywords
// select Identity and Xavier.
func (l Layer) functions() (nn.Activation, nn.Initializer, error) {
	act, initializer := nn.Identity, nn.Xavier
	var err error
	if l.Activation != "" {
		if act, err = nn.ParseActivation(l.Activation); err != nil {
			return act, initializer, withLayer(err, l.Name)
		}
	}
	if l.Initializer != "" {
		if initializer, err = nn.ParseInitializer(l.Initializer); err != nil {
			return act, initializer, withLayer(err, l.Name)
		}
	}
	return act, initializer, nil
}

func withLayer(err error, name string) error {
	var ce *nn.ConfigError
	if errors.As(err, &ce) && ce.Layer == "" {
		ce.Layer = name
	}
	return err
}
