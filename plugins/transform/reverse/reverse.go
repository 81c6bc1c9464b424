// Package reverse implements a Transform plugin that reverses the order of
// a frame's pixel sequence, leaving its metadata untouched. Composed with
// itself it is the identity transform (R1 in SPEC_FULL.md §8).
package reverse

import (
	"encoding/json"

	"github.com/Gamadril/lightoros/pipeline"
)

const Name = "ConvertReverseTransform"

// Descriptor is this plugin's static identity record.
func Descriptor() pipeline.Descriptor {
	return pipeline.Descriptor{
		APIVersion: pipeline.APIVersion,
		Name:       Name,
		Kind:       pipeline.KindTransform,
		Filename:   "reverse.so",
	}
}

type plugin struct{}

// New constructs the reverse transform. It takes no configuration.
func New(_ json.RawMessage) (*plugin, error) {
	return &plugin{}, nil
}

// Create adapts New to the pipeline.CreateFunc shape expected by a plugin
// module's exported "Create" symbol.
func Create(config json.RawMessage) (interface{}, error) {
	return New(config)
}

func (p *plugin) Transform(frame *pipeline.Frame) (*pipeline.Frame, error) {
	out := make([]pipeline.RGB, len(frame.Pixels))
	n := len(frame.Pixels)
	for i, px := range frame.Pixels {
		out[n-1-i] = px
	}
	return pipeline.NewFrame(out, frame.Meta), nil
}
