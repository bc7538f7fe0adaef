package nn

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInitializer(t *testing.T) {
	for in, want := range map[string]Initializer{
		"xavier":           Xavier,
		"glorot":           Xavier,
		"truncated_normal": TruncatedNormal,
		"normal":           TruncatedNormal,
	} {
		got, err := ParseInitializer(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseInitializer("he")
	assert.ErrorIs(t, err, ErrConfig)
}

func TestXavierInit_Bounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	data := make([]float32, 4096)
	XavierInit(75, 1600)(data, rng)

	bound := float32(math.Sqrt(6.0 / (75 + 1600)))
	var nonZero int
	for _, v := range data {
		assert.LessOrEqual(t, v, bound)
		assert.GreaterOrEqual(t, v, -bound)
		if v != 0 {
			nonZero++
		}
	}
	assert.Greater(t, nonZero, 4000)
}

func TestTruncatedNormalInit_Bounds(t *testing.T) {
	const stddev = 0.05
	rng := rand.New(rand.NewPCG(3, 4))
	data := make([]float32, 10000)
	TruncatedNormalInit(stddev)(data, rng)

	var sum, sq float64
	for _, v := range data {
		require.LessOrEqual(t, math.Abs(float64(v)), 2*stddev+1e-6)
		sum += float64(v)
		sq += float64(v) * float64(v)
	}
	mean := sum / float64(len(data))
	std := math.Sqrt(sq/float64(len(data)) - mean*mean)

	assert.InDelta(t, 0, mean, 0.005)
	// Truncation at 2σ shrinks the standard deviation to about 0.88σ.
	assert.InDelta(t, 0.88*stddev, std, 0.005)
}

func TestConstantInit(t *testing.T) {
	data := make([]float32, 5)
	ConstantInit(biasInit)(data, nil)
	for _, v := range data {
		assert.Equal(t, float32(0.1), v)
	}
}

func TestDenseTruncatedStddev(t *testing.T) {
	assert.InDelta(t, math.Sqrt(2.0/384), denseTruncatedStddev(384), 1e-12)
}
