// Package main provides the convnet CLI.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/born-ml/convnet/internal/backend/cpu"
	"github.com/born-ml/convnet/internal/netdef"
	"github.com/born-ml/convnet/internal/nn"
	"github.com/born-ml/convnet/internal/parallel"
	"github.com/born-ml/convnet/internal/tensor"
)

const version = "v0.1.0-dev"

var errUsage = errors.New("usage")

func main() {
	log.SetFlags(0)
	log.SetPrefix("convnet: ")

	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			usage(os.Stderr)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "convnet %s - convolutional network layers for Go\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  summary <def.yaml>                 Print layers, shapes and parameter counts")
	fmt.Fprintln(w, "  forward [flags] <def.yaml>         Run one forward pass on random input")
	fmt.Fprintln(w, "  version                            Show version")
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "convnet %s\n", version)
		return nil
	case "summary":
		return summary(args[1:], stdout)
	case "forward":
		return forward(args[1:], stdout)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func summary(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errUsage
	}
	net, err := load(args[0], parallel.DefaultConfig())
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, net.Summary())
	return nil
}

func forward(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("forward", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	train := fs.Bool("train", false, "use training mode (dropout and weight noise)")
	seed := fs.Uint64("seed", 1, "seed for the random input")
	workers := fs.Int("workers", 0, "kernel goroutines (0 = one per CPU)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("forward: %v: %w", err, errUsage)
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	cfg := parallel.DefaultConfig()
	if *workers > 0 {
		cfg.Workers = *workers
	}
	net, err := load(fs.Arg(0), cfg)
	if err != nil {
		return err
	}

	mode := nn.Deterministic
	if *train {
		mode = nn.Training
	}

	backend := net.Store().Backend()
	rng := rand.New(rand.NewPCG(*seed, *seed+1))
	x := tensor.Randn[float32](net.InputShape(), rng, backend)

	start := time.Now()
	out := net.Forward(x, mode)
	elapsed := time.Since(start)

	var sum float64
	for _, v := range out.Data() {
		sum += float64(v)
	}
	fmt.Fprintf(stdout, "mode:     %s\n", mode)
	fmt.Fprintf(stdout, "input:    %v\n", x.Shape())
	fmt.Fprintf(stdout, "output:   %v\n", out.Shape())
	fmt.Fprintf(stdout, "checksum: %.6f\n", sum)
	log.Printf("forward pass took %s", elapsed)
	return nil
}

func load(path string, cfg parallel.Config) (*nn.Network[*cpu.CPUBackend], error) {
	def, err := netdef.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return netdef.Build(def, cpu.NewWithConfig(cfg))
}
