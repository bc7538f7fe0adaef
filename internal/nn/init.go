package nn

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Initializer selects how a layer's weights are drawn.
type Initializer int

// Supported weight initializers.
const (
	// Xavier draws from U(-sqrt(6/(fan_in+fan_out)), +sqrt(6/(fan_in+fan_out))).
	Xavier Initializer = iota
	// TruncatedNormal draws from N(0, σ²) restricted to [-2σ, 2σ]; σ is
	// fixed per layer kind.
	TruncatedNormal
)

// ParseInitializer resolves an initializer keyword.
func ParseInitializer(s string) (Initializer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xavier", "glorot":
		return Xavier, nil
	case "truncated_normal", "normal":
		return TruncatedNormal, nil
	default:
		return Xavier, &ConfigError{Field: "initializer", Details: fmt.Sprintf("unknown initializer %q", s)}
	}
}

// String returns the initializer keyword.
func (i Initializer) String() string {
	switch i {
	case Xavier:
		return "xavier"
	case TruncatedNormal:
		return "truncated_normal"
	default:
		return fmt.Sprintf("Initializer(%d)", int(i))
	}
}

func (i Initializer) validate() error {
	if i != Xavier && i != TruncatedNormal {
		return &ConfigError{Field: "initializer", Details: fmt.Sprintf("unknown initializer %d", int(i))}
	}
	return nil
}

// weights returns the fill function for this policy.
func (i Initializer) weights(fanIn, fanOut int, stddev float64) Init {
	if i == TruncatedNormal {
		return TruncatedNormalInit(stddev)
	}
	return XavierInit(fanIn, fanOut)
}

// Init fills a freshly allocated parameter.
type Init func(data []float32, rng *rand.Rand)

// XavierInit returns a Xavier/Glorot uniform fill.
func XavierInit(fanIn, fanOut int) Init {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return func(data []float32, rng *rand.Rand) {
		for i := range data {
			data[i] = float32((rng.Float64()*2 - 1) * bound)
		}
	}
}

// TruncatedNormalInit returns a fill from N(0, stddev²) truncated to two
// standard deviations, sampled exactly by inverting the normal CDF over the
// kept interval.
func TruncatedNormalInit(stddev float64) Init {
	dist := distuv.Normal{Mu: 0, Sigma: stddev}
	lo := dist.CDF(-2 * stddev)
	hi := dist.CDF(2 * stddev)
	return func(data []float32, rng *rand.Rand) {
		for i := range data {
			data[i] = float32(dist.Quantile(lo + (hi-lo)*rng.Float64()))
		}
	}
}

// ConstantInit fills every element with v.
func ConstantInit(v float32) Init {
	return func(data []float32, _ *rand.Rand) {
		for i := range data {
			data[i] = v
		}
	}
}

// Fixed initialization constants shared by the parameterized layers.
const (
	convTruncatedStddev = 0.05
	biasInit            = 0.1
)

// denseTruncatedStddev is sqrt(2/units).
func denseTruncatedStddev(units int) float64 {
	return math.Sqrt(2.0 / float64(units))
}
