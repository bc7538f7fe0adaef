package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/convnet/internal/tensor"
)

// ParamSpec describes one parameter a layer wants allocated.
type ParamSpec struct {
	Name  string
	Shape tensor.Shape
	Init  Init
}

// ParameterStore allocates parameters under unique names and owns the
// random source used for initialization and for stochastic forward passes.
//
// All layers of one network share a store; that sharing is what makes the
// parameter namespace collision-free. A store is not safe for concurrent
// use: build networks from one goroutine, and do not run training-mode
// forward passes of layers sharing a store concurrently.
type ParameterStore[B tensor.Backend] struct {
	backend B
	rng     *rand.Rand
	params  map[string]*Parameter[B]
	order   []*Parameter[B]
}

// NewParameterStore creates an empty store. The seed fixes every
// initializer draw and every dropout/regularization mask drawn through it.
func NewParameterStore[B tensor.Backend](backend B, seed uint64) *ParameterStore[B] {
	return &ParameterStore[B]{
		backend: backend,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		params:  make(map[string]*Parameter[B]),
	}
}

// Backend returns the backend parameters are allocated on.
func (s *ParameterStore[B]) Backend() B {
	return s.backend
}

// Rand returns the store's random source.
func (s *ParameterStore[B]) Rand() *rand.Rand {
	return s.rng
}

// Create allocates all specs for layer owner, or none of them.
//
// Every name is checked before anything is allocated, so a collision on
// the second parameter does not leave the first one registered.
func (s *ParameterStore[B]) Create(owner string, specs ...ParamSpec) ([]*Parameter[B], error) {
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, &ConfigError{Layer: owner, Field: "name", Details: "parameter name is empty"}
		}
		if p, ok := s.params[spec.Name]; ok {
			return nil, &NameCollisionError{Name: spec.Name, Owner: p.owner, Layer: owner}
		}
		if seen[spec.Name] {
			return nil, &NameCollisionError{Name: spec.Name, Owner: owner, Layer: owner}
		}
		seen[spec.Name] = true
		if err := spec.Shape.Validate(); err != nil {
			return nil, &ShapeError{Layer: owner, Shape: spec.Shape, Details: fmt.Sprintf("parameter %q: %v", spec.Name, err)}
		}
	}

	created := make([]*Parameter[B], 0, len(specs))
	for _, spec := range specs {
		t := tensor.Zeros[float32](spec.Shape, s.backend)
		if spec.Init != nil {
			spec.Init(t.Data(), s.rng)
		}
		p := &Parameter[B]{name: spec.Name, owner: owner, tensor: t}
		s.params[spec.Name] = p
		s.order = append(s.order, p)
		created = append(created, p)
	}
	return created, nil
}

// Lookup returns the parameter registered under name.
func (s *ParameterStore[B]) Lookup(name string) (*Parameter[B], bool) {
	p, ok := s.params[name]
	return p, ok
}

// Parameters returns every parameter in creation order.
func (s *ParameterStore[B]) Parameters() []*Parameter[B] {
	return append([]*Parameter[B](nil), s.order...)
}

// Len returns the number of registered parameters.
func (s *ParameterStore[B]) Len() int {
	return len(s.order)
}
