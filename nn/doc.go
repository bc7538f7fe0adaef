// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers of a feed-forward convolutional network.
//
// # Overview
//
// This package contains:
//   - Layers: Input, Conv, Pool, Norm, Dropout, Dense
//   - ParameterStore: collision-checked parameter allocation
//   - Builder and Network: shape-chained assembly and forward passes
//   - Weight modes for dense layers: WeightShake, ShakeOut, DropConnect
//
// Every layer computes its output shape at construction, so a network
// that builds has consistent shapes end to end.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/convnet/backend/cpu"
//	    "github.com/born-ml/convnet/nn"
//	    "github.com/born-ml/convnet/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    store := nn.NewParameterStore(backend, 42)
//
//	    net, err := nn.NewBuilder(store, tensor.Shape{8, 24, 24, 3}).
//	        Conv(nn.ConvConfig{Name: "conv1", Filter: [4]int{5, 5, 3, 64}, Stride: 1, Activation: nn.ReLU}).
//	        Pool(nn.PoolConfig{Name: "pool1", KernelSize: 3, Stride: 2}).
//	        Norm(nn.NormConfig{Name: "norm1"}).
//	        Dense(nn.DenseConfig{Name: "fc", Units: 10, Reshape: true, BatchSize: 8}).
//	        Build()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    x := tensor.Randn[float32](net.InputShape(), store.Rand(), backend)
//	    logits := net.Forward(x, nn.Deterministic)
//	}
//
// # Modes
//
// Deterministic passes scale dropout by its keep probability and use the
// plain weight product in dense layers. Training passes sample masks from
// the store's random source, so training passes sharing a store must not
// run concurrently.
//
// # Errors
//
// Construction errors match ErrShape, ErrConfig or ErrNameCollision with
// errors.Is. Forward passes do not return errors.
package nn
