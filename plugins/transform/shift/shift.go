// Package shift implements a Transform plugin that circularly shifts a
// frame's pixel sequence by a configured amount. shift(+k) followed by
// shift(-k) is the identity (R2 in SPEC_FULL.md §8).
package shift

import (
	"encoding/json"
	"fmt"

	"github.com/Gamadril/lightoros/pipeline"
)

const Name = "ConvertShiftTransform"

func Descriptor() pipeline.Descriptor {
	return pipeline.Descriptor{
		APIVersion: pipeline.APIVersion,
		Name:       Name,
		Kind:       pipeline.KindTransform,
		Filename:   "shift.so",
	}
}

// Config is the plugin's own typed configuration: the number of positions
// to shift by. Positive values shift right, negative left; magnitude may
// exceed the frame length (§8, R2).
type Config struct {
	Amount int `json:"amount"`
}

type plugin struct {
	amount int
}

// New decodes config and constructs the shift transform.
func New(config json.RawMessage) (*plugin, error) {
	var cfg Config
	if err := pipeline.DecodeConfigInto(config, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	return &plugin{amount: cfg.Amount}, nil
}

// Create adapts New to the pipeline.CreateFunc shape.
func Create(config json.RawMessage) (interface{}, error) {
	return New(config)
}

func (p *plugin) Transform(frame *pipeline.Frame) (*pipeline.Frame, error) {
	n := len(frame.Pixels)
	if n == 0 {
		return pipeline.NewFrame(nil, frame.Meta), nil
	}

	out := make([]pipeline.RGB, n)
	for i := 0; i < n; i++ {
		idx := mod(i+n-p.amount, n)
		out[i] = frame.Pixels[idx]
	}
	return pipeline.NewFrame(out, frame.Meta), nil
}

// mod is Euclidean modulo: Go's % can return negative results for a
// negative dividend, which plain i%n doesn't handle when the shift amount
// exceeds n (§8, R2: "k may exceed n").
func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
