package nn

import (
	"fmt"
	"strings"

	"github.com/born-ml/convnet/internal/tensor"
)

// Activation selects the non-linearity applied after a layer's affine step.
type Activation int

// Supported activations.
const (
	Identity Activation = iota
	ReLU
)

// ParseActivation resolves an activation keyword. Unknown keywords are a
// ConfigError rather than a silent fallback to Identity.
func ParseActivation(s string) (Activation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "relu":
		return ReLU, nil
	case "identity", "linear", "none":
		return Identity, nil
	default:
		return Identity, &ConfigError{Field: "activation", Details: fmt.Sprintf("unknown activation %q", s)}
	}
}

// String returns the activation keyword.
func (a Activation) String() string {
	switch a {
	case Identity:
		return "identity"
	case ReLU:
		return "relu"
	default:
		return fmt.Sprintf("Activation(%d)", int(a))
	}
}

func (a Activation) validate() error {
	if a != Identity && a != ReLU {
		return &ConfigError{Field: "activation", Details: fmt.Sprintf("unknown activation %d", int(a))}
	}
	return nil
}

func activate[B tensor.Backend](a Activation, x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if a == ReLU {
		return x.ReLU()
	}
	return x
}
