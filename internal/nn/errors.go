package nn

import (
	"errors"
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
)

// Construction errors. Every error returned while building a layer or a
// network matches exactly one of these with errors.Is.
var (
	ErrShape         = errors.New("invalid shape")
	ErrNameCollision = errors.New("parameter name collision")
	ErrConfig        = errors.New("invalid configuration")
)

// ShapeError reports an input shape a layer cannot accept or an output
// dimension that would not be a positive integer.
type ShapeError struct {
	Layer   string       // Layer name, empty for unnamed layers
	Shape   tensor.Shape // Offending input shape
	Details string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.Layer != "" {
		return fmt.Sprintf("%s: layer %q: input %v: %s", ErrShape, e.Layer, e.Shape, e.Details)
	}
	return fmt.Sprintf("%s: input %v: %s", ErrShape, e.Shape, e.Details)
}

// Unwrap returns ErrShape.
func (e *ShapeError) Unwrap() error { return ErrShape }

// NameCollisionError reports a parameter name that is already registered.
type NameCollisionError struct {
	Name  string // Parameter name
	Owner string // Layer that registered it first
	Layer string // Layer that asked for it again
}

// Error implements the error interface.
func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("%s: %q requested by layer %q is owned by layer %q", ErrNameCollision, e.Name, e.Layer, e.Owner)
}

// Unwrap returns ErrNameCollision.
func (e *NameCollisionError) Unwrap() error { return ErrNameCollision }

// ConfigError reports an invalid or contradictory hyperparameter.
type ConfigError struct {
	Layer   string
	Field   string
	Details string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Layer != "" {
		return fmt.Sprintf("%s: layer %q: %s: %s", ErrConfig, e.Layer, e.Field, e.Details)
	}
	return fmt.Sprintf("%s: %s: %s", ErrConfig, e.Field, e.Details)
}

// Unwrap returns ErrConfig.
func (e *ConfigError) Unwrap() error { return ErrConfig }

// attribute fills in the layer name on construction errors that were
// raised before the name was known.
func attribute(err error, layer string) error {
	var se *ShapeError
	if errors.As(err, &se) && se.Layer == "" {
		se.Layer = layer
	}
	var ce *ConfigError
	if errors.As(err, &ce) && ce.Layer == "" {
		ce.Layer = layer
	}
	return err
}
