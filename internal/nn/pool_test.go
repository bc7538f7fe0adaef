package nn

import (
	"testing"

	"github.com/born-ml/convnet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_DeclaredShape(t *testing.T) {
	pool, err := NewPool[Backend](tensor.Shape{8, 32, 32, 64}, PoolConfig{Name: "pool1", KernelSize: 2, Stride: 2})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{8, 17, 17, 64}, pool.OutputShape())
	assert.Empty(t, pool.Parameters())
	assert.Equal(t, "pool", pool.Kind())
}

func TestPool_Forward(t *testing.T) {
	backend := newStore(1).Backend()
	pool, err := NewPool[Backend](tensor.Shape{1, 4, 4, 1}, PoolConfig{Name: "p", KernelSize: 2, Stride: 2})
	require.NoError(t, err)

	data := make([]float32, 16)
	for i := range data {
		data[i] = float32(i + 1)
	}
	x, err := tensor.FromSlice(data, tensor.Shape{1, 4, 4, 1}, backend)
	require.NoError(t, err)

	out := pool.Forward(x, Deterministic)
	assert.Equal(t, tensor.Shape{1, 2, 2, 1}, out.Shape())
	assert.Equal(t, []float32{6, 8, 14, 16}, out.Data())
}

// TestPool_ForwardSameAsDeclared tests the odd-kernel stride-2 layouts
// where the declared and computed sizes agree.
func TestPool_ForwardSameAsDeclared(t *testing.T) {
	store := newStore(1)
	for _, in := range []tensor.Shape{{2, 24, 24, 3}, {1, 28, 28, 1}, {1, 12, 12, 2}} {
		pool, err := NewPool[Backend](in, PoolConfig{Name: "p", KernelSize: 3, Stride: 2})
		require.NoError(t, err)
		x := tensor.Randn[float32](in, store.Rand(), store.Backend())
		assert.Equal(t, pool.OutputShape(), pool.Forward(x, Deterministic).Shape(), "in=%v", in)
	}
}

func TestPool_Errors(t *testing.T) {
	_, err := NewPool[Backend](tensor.Shape{8, 32}, PoolConfig{Name: "p", KernelSize: 2, Stride: 2})
	assert.ErrorIs(t, err, ErrShape)

	_, err = NewPool[Backend](tensor.Shape{1, 8, 8, 1}, PoolConfig{Name: "p", KernelSize: 2})
	assert.ErrorIs(t, err, ErrConfig)
}
