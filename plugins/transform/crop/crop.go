// Package crop implements a Transform plugin that crops a fixed-size
// rectangle out of a row-major image frame, consuming and producing the
// width/height metadata keys (§3, §8 scenario 5).
package crop

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Gamadril/lightoros/pipeline"
)

const Name = "CropImageFixedTransform"

func Descriptor() pipeline.Descriptor {
	return pipeline.Descriptor{
		APIVersion: pipeline.APIVersion,
		Name:       Name,
		Kind:       pipeline.KindTransform,
		Filename:   "crop.so",
	}
}

// Config names how many rows/columns to remove from each edge.
type Config struct {
	Left   int `json:"left"`
	Right  int `json:"right"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

type plugin struct {
	cfg Config
}

func New(config json.RawMessage) (*plugin, error) {
	var cfg Config
	if err := pipeline.DecodeConfigInto(config, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	return &plugin{cfg: cfg}, nil
}

func Create(config json.RawMessage) (interface{}, error) {
	return New(config)
}

func (p *plugin) Transform(frame *pipeline.Frame) (*pipeline.Frame, error) {
	srcWidth, err := metaInt(frame.Meta, pipeline.MetaWidth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	srcHeight, err := metaInt(frame.Meta, pipeline.MetaHeight)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}

	width := srcWidth - p.cfg.Left - p.cfg.Right
	height := srcHeight - p.cfg.Top - p.cfg.Bottom
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%s: crop leaves non-positive dimensions (%dx%d)", Name, width, height)
	}

	out := make([]pipeline.RGB, 0, width*height)
	for y := p.cfg.Top; y < srcHeight-p.cfg.Bottom; y++ {
		for x := p.cfg.Left; x < srcWidth-p.cfg.Right; x++ {
			out = append(out, frame.Pixels[srcWidth*y+x])
		}
	}

	meta := make(map[string]string, len(frame.Meta))
	for k, v := range frame.Meta {
		meta[k] = v
	}
	meta[pipeline.MetaWidth] = strconv.Itoa(width)
	meta[pipeline.MetaHeight] = strconv.Itoa(height)

	return pipeline.NewFrame(out, meta), nil
}

func metaInt(meta map[string]string, key string) (int, error) {
	v, ok := meta[key]
	if !ok {
		return 0, fmt.Errorf("missing metadata key %q", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("metadata key %q is not an integer: %w", key, err)
	}
	return n, nil
}
