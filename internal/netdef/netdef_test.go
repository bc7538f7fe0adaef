package netdef

import (
	"strings"
	"testing"

	"github.com/born-ml/convnet/internal/backend/cpu"
	"github.com/born-ml/convnet/internal/nn"
	"github.com/born-ml/convnet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_CIFAR(t *testing.T) {
	def, err := LoadFile("../../testdata/cifar10.yaml")
	require.NoError(t, err)
	assert.Equal(t, []int{128, 24, 24, 3}, def.Input)
	assert.Equal(t, uint64(42), def.Seed)
	require.Len(t, def.Layers, 10)
	assert.Equal(t, KindConv, def.Layers[0].Type)
	assert.Equal(t, 0.5, def.Layers[6].DropConnect)

	net, err := Build(def, cpu.New())
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{10}, net.OutputShape())

	w, ok := net.Store().Lookup("local3_weights")
	require.True(t, ok)
	assert.Equal(t, tensor.Shape{2304, 384}, w.Shape())

	dense, ok := net.Layers()[7].(*nn.Dense[*cpu.CPUBackend])
	require.True(t, ok)
	assert.Equal(t, nn.DropConnect{P: 0.5}, dense.WeightMode())

	assert.Len(t, net.RegularizationTerms(), 2)
}

func TestBuild_Forward(t *testing.T) {
	def, err := LoadFile("../../testdata/tiny.yaml")
	require.NoError(t, err)

	backend := cpu.New()
	net, err := Build(def, backend)
	require.NoError(t, err)

	x := tensor.Ones[float32](net.InputShape(), backend)
	assert.Equal(t, tensor.Shape{2, 3}, net.Forward(x, nn.Deterministic).Shape())
	assert.Equal(t, tensor.Shape{2, 3}, net.Forward(x, nn.Training).Shape())
}

func TestBuild_SeedReproducible(t *testing.T) {
	def, err := LoadFile("../../testdata/tiny.yaml")
	require.NoError(t, err)

	a, err := Build(def, cpu.New())
	require.NoError(t, err)
	b, err := Build(def, cpu.New())
	require.NoError(t, err)

	pa, pb := a.Parameters(), b.Parameters()
	require.Equal(t, len(pa), len(pb))
	for i := range pa {
		assert.Equal(t, pa[i].Tensor().Data(), pb[i].Tensor().Data(), pa[i].Name())
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"unknown field", "input: [1, 4, 4, 1]\nlayers:\n  - {type: norm, name: n, depth_radius: 3}\n"},
		{"missing input", "layers:\n  - {type: norm, name: n}\n"},
		{"bad yaml", "input: [1, 4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, nn.ErrConfig)
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"unknown type", "input: [1, 4, 4, 1]\nlayers:\n  - {type: lstm, name: l}\n", nn.ErrConfig},
		{"short filter", "input: [1, 4, 4, 1]\nlayers:\n  - {type: conv, name: c, filter: [3, 3, 1], stride: 1}\n", nn.ErrConfig},
		{"bad activation", "input: [1, 4, 4, 1]\nlayers:\n  - {type: conv, name: c, filter: [3, 3, 1, 2], stride: 1, activation: tanh}\n", nn.ErrConfig},
		{"bad initializer", "input: [4]\nlayers:\n  - {type: dense, name: d, units: 2, initializer: he}\n", nn.ErrConfig},
		{"two weight modes", "input: [4]\nlayers:\n  - {type: dense, name: d, units: 2, shake_out: 0.5, drop_connect: 0.5}\n", nn.ErrConfig},
		{"channel mismatch", "input: [1, 4, 4, 1]\nlayers:\n  - {type: conv, name: c, filter: [3, 3, 2, 2], stride: 1}\n", nn.ErrShape},
		{"duplicate names", "input: [4]\nlayers:\n  - {type: dense, name: d, units: 4}\n  - {type: dense, name: d, units: 2}\n", nn.ErrNameCollision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := Load(strings.NewReader(tt.doc))
			require.NoError(t, err)
			_, err = Build(def, cpu.New())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuild_DefaultBatchSize(t *testing.T) {
	def, err := Load(strings.NewReader("input: [3, 2, 2, 1]\nlayers:\n  - {type: dense, name: d, units: 2, reshape: true}\n"))
	require.NoError(t, err)

	backend := cpu.New()
	net, err := Build(def, backend)
	require.NoError(t, err)
	out := net.Forward(tensor.Ones[float32](tensor.Shape{3, 2, 2, 1}, backend), nn.Deterministic)
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
}

func TestMarshal_RoundTrip(t *testing.T) {
	def, err := LoadFile("../../testdata/tiny.yaml")
	require.NoError(t, err)

	data, err := Marshal(def)
	require.NoError(t, err)
	again, err := Load(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, def, again)
}
