package nn

import (
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
)

// PoolConfig configures a max pooling layer.
type PoolConfig struct {
	Name       string
	KernelSize int
	Stride     int
}

// Pool is a max pooling layer with same padding. It has no parameters.
//
// The declared output shape follows
//
//	out = floor((in - k)/stride + 1) + 1
//
// while the forward step produces ceil(in/stride) positions per axis.
// The two agree for the common odd-kernel, stride-2 configurations on even
// inputs (e.g. k=3, s=2 on 24 or 28) but not in general; see DESIGN.md.
type Pool[B tensor.Backend] struct {
	shapes
	kernel int
	stride int
}

// NewPool creates a max pooling layer.
func NewPool[B tensor.Backend](in tensor.Shape, cfg PoolConfig) (*Pool[B], error) {
	out, err := PoolOutputShape(in, cfg.KernelSize, cfg.Stride)
	if err != nil {
		return nil, attribute(err, cfg.Name)
	}
	return &Pool[B]{
		shapes: shapes{name: cfg.Name, in: in.Clone(), out: out},
		kernel: cfg.KernelSize,
		stride: cfg.Stride,
	}, nil
}

// Kind returns "pool".
func (p *Pool[B]) Kind() string { return "pool" }

// Parameters returns nil.
func (p *Pool[B]) Parameters() []*Parameter[B] { return nil }

// Forward max-pools each channel of x.
func (p *Pool[B]) Forward(x *tensor.Tensor[float32, B], _ Mode) *tensor.Tensor[float32, B] {
	return x.MaxPool2D(p.kernel, p.stride)
}

// KernelSize returns the pooling window size.
func (p *Pool[B]) KernelSize() int { return p.kernel }

// Stride returns the stride.
func (p *Pool[B]) Stride() int { return p.stride }

// String returns a string representation of the layer.
func (p *Pool[B]) String() string {
	return fmt.Sprintf("Pool(kernel_size=%d, stride=%d)", p.kernel, p.stride)
}
