package nn

import (
	"testing"

	"github.com/born-ml/convnet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDense_ReshapeCreation(t *testing.T) {
	store := newStore(1)
	dense, err := NewDense(store, tensor.Shape{4, 7, 7, 16}, DenseConfig{
		Name:      "fc1",
		Units:     10,
		Reshape:   true,
		BatchSize: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, 784, dense.FlatSize())
	assert.Equal(t, tensor.Shape{784, 10}, dense.Weights().Shape())
	assert.Equal(t, tensor.Shape{10}, dense.Biases().Shape())
	assert.Equal(t, tensor.Shape{10}, dense.OutputShape())
	assert.Equal(t, "fc1_weights", dense.Weights().Name())
	assert.Equal(t, "fc1_bias", dense.Biases().Name())
	assert.Equal(t, PlainMatMul{}, dense.WeightMode())

	x := tensor.Randn[float32](tensor.Shape{4, 7, 7, 16}, store.Rand(), store.Backend())
	assert.Equal(t, tensor.Shape{4, 10}, dense.Forward(x, Deterministic).Shape())
}

func TestDense_Forward(t *testing.T) {
	store := newStore(1)
	dense, err := NewDense(store, tensor.Shape{1, 2}, DenseConfig{Name: "fc", Units: 3})
	require.NoError(t, err)
	ConstantInit(1)(dense.Weights().Tensor().Data(), nil)

	x, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{1, 2}, store.Backend())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{3.1, 3.1, 3.1}, dense.Forward(x, Deterministic).Data(), 1e-6)
}

func TestDense_ForwardFlatInput(t *testing.T) {
	store := newStore(1)
	dense, err := NewDense(store, tensor.Shape{3}, DenseConfig{Name: "fc", Units: 2, Activation: ReLU})
	require.NoError(t, err)

	x := tensor.Ones[float32](tensor.Shape{3}, store.Backend())
	out := dense.Forward(x, Deterministic)
	assert.Equal(t, tensor.Shape{1, 2}, out.Shape())
	for _, v := range out.Data() {
		assert.GreaterOrEqual(t, v, float32(0))
	}
}

func TestDense_TruncatedNormal(t *testing.T) {
	dense, err := NewDense(newStore(1), tensor.Shape{64}, DenseConfig{Name: "fc", Units: 8, Initializer: TruncatedNormal})
	require.NoError(t, err)
	limit := float32(2*denseTruncatedStddev(8) + 1e-6)
	for _, v := range dense.Weights().Tensor().Data() {
		require.LessOrEqual(t, v, limit)
		require.GreaterOrEqual(t, v, -limit)
	}
}

// TestDense_TrainingKeepAll tests that every weight mode reduces to the
// plain product when nothing is dropped.
func TestDense_TrainingKeepAll(t *testing.T) {
	configs := []DenseConfig{
		{Name: "fc", Units: 4, WeightShake: 1},
		{Name: "fc", Units: 4, ShakeOut: 1, ShakeOutScale: 0.5},
		{Name: "fc", Units: 4, DropConnect: 1},
	}
	for _, cfg := range configs {
		store := newStore(9)
		dense, err := NewDense(store, tensor.Shape{2, 6}, cfg)
		require.NoError(t, err)

		x := tensor.Randn[float32](tensor.Shape{2, 6}, store.Rand(), store.Backend())
		want := dense.Forward(x, Deterministic).Data()
		assert.InDeltaSlice(t, want, dense.Forward(x, Training).Data(), 1e-5, "mode %s", dense.WeightMode())
	}
}

// TestDense_DeterministicIgnoresWeightMode tests that inference never
// perturbs the weights.
func TestDense_DeterministicIgnoresWeightMode(t *testing.T) {
	store := newStore(4)
	noisy, err := NewDense(store, tensor.Shape{2, 6}, DenseConfig{Name: "a", Units: 4, DropConnect: 0.5})
	require.NoError(t, err)
	plain, err := NewDense(store, tensor.Shape{2, 6}, DenseConfig{Name: "b", Units: 4})
	require.NoError(t, err)
	copy(plain.Weights().Tensor().Data(), noisy.Weights().Tensor().Data())

	x := tensor.Randn[float32](tensor.Shape{2, 6}, store.Rand(), store.Backend())
	assert.Equal(t, plain.Forward(x, Deterministic).Data(), noisy.Forward(x, Deterministic).Data())

	before := append([]float32(nil), noisy.Weights().Tensor().Data()...)
	noisy.Forward(x, Training)
	assert.Equal(t, before, noisy.Weights().Tensor().Data(), "training must not mutate weights")
}

func TestDense_WeightModes(t *testing.T) {
	tests := []struct {
		cfg  DenseConfig
		want WeightMode
	}{
		{DenseConfig{Name: "fc", Units: 2}, PlainMatMul{}},
		{DenseConfig{Name: "fc", Units: 2, WeightShake: 0.9}, WeightShake{P: 0.9}},
		{DenseConfig{Name: "fc", Units: 2, ShakeOut: 0.5, ShakeOutScale: 0.1}, ShakeOut{P: 0.5, C: 0.1}},
		{DenseConfig{Name: "fc", Units: 2, DropConnect: 0.8}, DropConnect{P: 0.8}},
	}
	for _, tt := range tests {
		dense, err := NewDense(newStore(1), tensor.Shape{3}, tt.cfg)
		require.NoError(t, err)
		assert.Equal(t, tt.want, dense.WeightMode())
	}
}

func TestDense_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  DenseConfig
	}{
		{"shake-out and drop-connect", DenseConfig{Name: "fc", Units: 2, ShakeOut: 0.5, DropConnect: 0.5}},
		{"weight-shake and shake-out", DenseConfig{Name: "fc", Units: 2, WeightShake: 0.5, ShakeOut: 0.5}},
		{"scale without shake-out", DenseConfig{Name: "fc", Units: 2, ShakeOutScale: 0.5}},
		{"probability above one", DenseConfig{Name: "fc", Units: 2, DropConnect: 1.5}},
		{"negative probability", DenseConfig{Name: "fc", Units: 2, WeightShake: -0.1}},
		{"negative scale", DenseConfig{Name: "fc", Units: 2, ShakeOut: 0.5, ShakeOutScale: -1}},
		{"zero units", DenseConfig{Name: "fc"}},
		{"reshape without batch", DenseConfig{Name: "fc", Units: 2, Reshape: true}},
		{"no name", DenseConfig{Units: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(1)
			_, err := NewDense(store, tensor.Shape{3}, tt.cfg)
			assert.ErrorIs(t, err, ErrConfig)
			assert.Zero(t, store.Len())
		})
	}
}

func TestDense_ShapeErrors(t *testing.T) {
	_, err := NewDense(newStore(1), tensor.Shape{4, 7, 7, 16}, DenseConfig{Name: "fc", Units: 2})
	assert.ErrorIs(t, err, ErrShape)
}
