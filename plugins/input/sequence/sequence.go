// Package sequence implements an Input plugin that replays a fixed,
// configured list of frames, optionally looping. It stands in for the
// spec's "file players" and "scripted effect generators" sources (§1, §2)
// and is what the engine's own test suite drives through the priority
// arbitrator.
package sequence

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Gamadril/lightoros/pipeline"
)

const Name = "SequenceInput"

func Descriptor() pipeline.Descriptor {
	return pipeline.Descriptor{
		APIVersion: pipeline.APIVersion,
		Name:       Name,
		Kind:       pipeline.KindInput,
		Filename:   "sequence.so",
	}
}

// FrameSpec is one frame in the replay list.
type FrameSpec struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Pixels [][3]uint8 `json:"pixels"`
}

// Config controls replay pacing and looping. IntervalMS is the delay before
// each Get() returns, simulating a source's natural frame rate; Repeat
// controls what happens once the list is exhausted.
type Config struct {
	Frames     []FrameSpec `json:"frames"`
	IntervalMS int         `json:"interval_ms"`
	Repeat     bool        `json:"repeat"`
}

type plugin struct {
	mu       sync.Mutex
	frames   []*pipeline.Frame
	idx      int
	interval time.Duration
	repeat   bool

	stopOnce sync.Once
	stopped  chan struct{}
}

func New(config json.RawMessage) (*plugin, error) {
	var cfg Config
	if err := pipeline.DecodeConfigInto(config, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	if len(cfg.Frames) == 0 {
		return nil, fmt.Errorf("%s: at least one frame is required", Name)
	}

	frames := make([]*pipeline.Frame, 0, len(cfg.Frames))
	for _, fs := range cfg.Frames {
		pixels := make([]pipeline.RGB, len(fs.Pixels))
		for i, p := range fs.Pixels {
			pixels[i] = pipeline.RGB{R: p[0], G: p[1], B: p[2]}
		}
		meta := map[string]string{}
		if fs.Width > 0 {
			meta[pipeline.MetaWidth] = fmt.Sprint(fs.Width)
		}
		if fs.Height > 0 {
			meta[pipeline.MetaHeight] = fmt.Sprint(fs.Height)
		}
		frames = append(frames, pipeline.NewFrame(pixels, meta))
	}

	return &plugin{
		frames:   frames,
		interval: time.Duration(cfg.IntervalMS) * time.Millisecond,
		repeat:   cfg.Repeat,
		stopped:  make(chan struct{}),
	}, nil
}

func Create(config json.RawMessage) (interface{}, error) {
	return New(config)
}

func (p *plugin) Init() error {
	return nil
}

var errStopped = errors.New("sequence: input stopped")

func (p *plugin) Get() (*pipeline.Frame, error) {
	if p.interval > 0 {
		timer := time.NewTimer(p.interval)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-p.stopped:
			return nil, errStopped
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.idx >= len(p.frames) {
		if !p.repeat {
			p.mu.Unlock()
			<-p.stopped
			p.mu.Lock()
			return nil, errStopped
		}
		p.idx = 0
	}

	frame := p.frames[p.idx]
	p.idx++
	return frame, nil
}

// Unblock satisfies pipeline.Unblocker: it releases any Get() call parked
// waiting for more frames once the list has been exhausted and Repeat is
// false.
func (p *plugin) Unblock() {
	p.stopOnce.Do(func() { close(p.stopped) })
}
