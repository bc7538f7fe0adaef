// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the tensor types and backend contract used by
// the convnet layers.
//
// # Overview
//
// Tensors are generic over their element type and the backend that
// computes on them:
//   - Tensor[T, B]: typed tensor dispatching ops to B
//   - RawTensor: untyped contiguous storage the backend works on
//   - Shape: dimensions; spatial tensors are NHWC
//   - Backend: the numeric kernels a layer needs
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/convnet/backend/cpu"
//	    "github.com/born-ml/convnet/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    images := tensor.Zeros[float32](tensor.Shape{8, 32, 32, 3}, backend)
//	    flat := images.Reshape(8, -1) // [8, 3072]
//	}
//
// # Layout
//
// Spatial tensors are [batch, height, width, channels]. Convolution
// kernels are [kernel_h, kernel_w, in_channels, out_channels].
package tensor
