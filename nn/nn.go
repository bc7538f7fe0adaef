// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/convnet/internal/nn"
	"github.com/born-ml/convnet/internal/tensor"
)

// Construction errors.
var (
	ErrShape         = nn.ErrShape
	ErrNameCollision = nn.ErrNameCollision
	ErrConfig        = nn.ErrConfig
)

// ShapeError reports an unusable input shape.
type ShapeError = nn.ShapeError

// NameCollisionError reports a parameter name already in use.
type NameCollisionError = nn.NameCollisionError

// ConfigError reports an invalid hyperparameter.
type ConfigError = nn.ConfigError

// Mode selects deterministic or training behaviour for a forward pass.
type Mode = nn.Mode

// Forward pass modes.
const (
	Deterministic = nn.Deterministic
	Training      = nn.Training
)

// Activation is the non-linearity applied after a layer.
type Activation = nn.Activation

// Activations.
const (
	Identity = nn.Identity
	ReLU     = nn.ReLU
)

// ParseActivation resolves "relu", "identity", "linear" or "none".
func ParseActivation(s string) (Activation, error) {
	return nn.ParseActivation(s)
}

// Initializer selects the weight initialization policy.
type Initializer = nn.Initializer

// Initializers.
const (
	Xavier          = nn.Xavier
	TruncatedNormal = nn.TruncatedNormal
)

// ParseInitializer resolves "xavier" or "truncated_normal".
func ParseInitializer(s string) (Initializer, error) {
	return nn.ParseInitializer(s)
}

// Parameter is a named tensor owned by one layer.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// ParameterStore allocates parameters under unique names.
type ParameterStore[B tensor.Backend] = nn.ParameterStore[B]

// ParamSpec describes a parameter to allocate.
type ParamSpec = nn.ParamSpec

// NewParameterStore creates a store seeded for reproducible draws.
//
// Example:
//
//	store := nn.NewParameterStore(cpu.New(), 42)
func NewParameterStore[B tensor.Backend](backend B, seed uint64) *ParameterStore[B] {
	return nn.NewParameterStore(backend, seed)
}

// Layer is implemented by every layer.
type Layer[B tensor.Backend] = nn.Layer[B]

// Layer configurations.
type (
	ConvConfig    = nn.ConvConfig
	PoolConfig    = nn.PoolConfig
	NormConfig    = nn.NormConfig
	DropoutConfig = nn.DropoutConfig
	DenseConfig   = nn.DenseConfig
)

// Input is the identity layer that seeds shape inference.
type Input[B tensor.Backend] = nn.Input[B]

// NewInput creates an input layer.
func NewInput[B tensor.Backend](shape tensor.Shape) (*Input[B], error) {
	return nn.NewInput[B](shape)
}

// Conv is a 2D convolution over NHWC input.
type Conv[B tensor.Backend] = nn.Conv[B]

// NewConv creates a convolution layer.
//
// Example:
//
//	conv, err := nn.NewConv(store, tensor.Shape{8, 32, 32, 3}, nn.ConvConfig{
//	    Name: "conv1", Filter: [4]int{5, 5, 3, 64}, Stride: 1, Activation: nn.ReLU,
//	})
func NewConv[B tensor.Backend](store *ParameterStore[B], in tensor.Shape, cfg ConvConfig) (*Conv[B], error) {
	return nn.NewConv(store, in, cfg)
}

// Pool is a max pooling layer.
type Pool[B tensor.Backend] = nn.Pool[B]

// NewPool creates a max pooling layer.
func NewPool[B tensor.Backend](in tensor.Shape, cfg PoolConfig) (*Pool[B], error) {
	return nn.NewPool[B](in, cfg)
}

// Norm is a local response normalization layer.
type Norm[B tensor.Backend] = nn.Norm[B]

// NewNorm creates a normalization layer.
func NewNorm[B tensor.Backend](in tensor.Shape, cfg NormConfig) (*Norm[B], error) {
	return nn.NewNorm[B](in, cfg)
}

// Dropout is a dropout layer.
type Dropout[B tensor.Backend] = nn.Dropout[B]

// NewDropout creates a dropout layer.
func NewDropout[B tensor.Backend](store *ParameterStore[B], in tensor.Shape, cfg DropoutConfig) (*Dropout[B], error) {
	return nn.NewDropout(store, in, cfg)
}

// Dense is a fully connected layer.
type Dense[B tensor.Backend] = nn.Dense[B]

// NewDense creates a fully connected layer.
//
// Example:
//
//	fc, err := nn.NewDense(store, tensor.Shape{8, 6, 6, 64}, nn.DenseConfig{
//	    Name: "local3", Units: 384, Reshape: true, BatchSize: 8, Activation: nn.ReLU,
//	})
func NewDense[B tensor.Backend](store *ParameterStore[B], in tensor.Shape, cfg DenseConfig) (*Dense[B], error) {
	return nn.NewDense(store, in, cfg)
}

// WeightMode is the training-time weight strategy of a dense layer.
type WeightMode = nn.WeightMode

// Weight modes.
type (
	PlainMatMul = nn.PlainMatMul
	WeightShake = nn.WeightShake
	ShakeOut    = nn.ShakeOut
	DropConnect = nn.DropConnect
)

// Builder assembles a Network.
type Builder[B tensor.Backend] = nn.Builder[B]

// Network is an ordered chain of layers.
type Network[B tensor.Backend] = nn.Network[B]

// RegularizationTerm pairs weights with an L2 coefficient.
type RegularizationTerm[B tensor.Backend] = nn.RegularizationTerm[B]

// NewBuilder starts a network with the given input shape.
func NewBuilder[B tensor.Backend](store *ParameterStore[B], in tensor.Shape) *Builder[B] {
	return nn.NewBuilder(store, in)
}

// ConvOutputShape computes a convolution's output shape.
func ConvOutputShape(in tensor.Shape, filter [4]int, stride int) (tensor.Shape, error) {
	return nn.ConvOutputShape(in, filter, stride)
}

// PoolOutputShape computes a pooling layer's declared output shape.
func PoolOutputShape(in tensor.Shape, kernel, stride int) (tensor.Shape, error) {
	return nn.PoolOutputShape(in, kernel, stride)
}

// DenseInputSize computes a dense layer's flattened input size.
func DenseInputSize(in tensor.Shape, reshape bool) (int, error) {
	return nn.DenseInputSize(in, reshape)
}
