// Package dim implements a Transform plugin that scales every channel of
// every pixel by a configured brightness percentage.
package dim

import (
	"encoding/json"
	"fmt"

	"github.com/Gamadril/lightoros/pipeline"
)

const Name = "ConvertDimTransform"

func Descriptor() pipeline.Descriptor {
	return pipeline.Descriptor{
		APIVersion: pipeline.APIVersion,
		Name:       Name,
		Kind:       pipeline.KindTransform,
		Filename:   "dim.so",
	}
}

// Config.Brightness is a percentage in [0, 100].
type Config struct {
	Brightness uint8 `json:"brightness"`
}

type plugin struct {
	brightness uint16
}

func New(config json.RawMessage) (*plugin, error) {
	var cfg Config
	if err := pipeline.DecodeConfigInto(config, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	if cfg.Brightness > 100 {
		return nil, fmt.Errorf("%s: invalid brightness %d, valid range is [0-100]", Name, cfg.Brightness)
	}
	return &plugin{brightness: uint16(cfg.Brightness)}, nil
}

func Create(config json.RawMessage) (interface{}, error) {
	return New(config)
}

func (p *plugin) scale(v uint8) uint8 {
	return uint8(uint16(v) * p.brightness / 100)
}

func (p *plugin) Transform(frame *pipeline.Frame) (*pipeline.Frame, error) {
	out := make([]pipeline.RGB, len(frame.Pixels))
	for i, px := range frame.Pixels {
		out[i] = pipeline.RGB{R: p.scale(px.R), G: p.scale(px.G), B: p.scale(px.B)}
	}
	return pipeline.NewFrame(out, frame.Meta), nil
}
