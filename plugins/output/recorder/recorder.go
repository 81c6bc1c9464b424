// Package recorder implements an Output plugin that appends every frame it
// receives to an in-memory log, and optionally mirrors a short textual
// summary of each frame to an io.Writer set with AttachWriter (standing in for the
// spec's named-pipe sink, §1, §2).
package recorder

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/Gamadril/lightoros/pipeline"
)

const Name = "RecorderOutput"

func Descriptor() pipeline.Descriptor {
	return pipeline.Descriptor{
		APIVersion: pipeline.APIVersion,
		Name:       Name,
		Kind:       pipeline.KindOutput,
		Filename:   "recorder.so",
	}
}

// Config is the plugin's own configuration. FailNextN, if set, makes the
// next N Send calls return an error before succeeding again — used to
// exercise the recoverable-I/O-error backoff path (§4.5, §7) in tests
// without needing a real flaky device.
type Config struct {
	FailNextN int `json:"fail_next_n"`
}

type Plugin struct {
	mu        sync.Mutex
	frames    []*pipeline.Frame
	writer    *bufio.Writer
	failNextN int
}

func New(config json.RawMessage) (*Plugin, error) {
	var cfg Config
	if err := pipeline.DecodeConfigInto(config, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	return &Plugin{failNextN: cfg.FailNextN}, nil
}

func Create(config json.RawMessage) (interface{}, error) {
	return New(config)
}

// AttachWriter makes this recorder also write a one-line-per-frame summary
// to w (e.g. an opened named pipe). Optional; nothing in the engine or the
// ledctld launcher attaches a writer.
func (p *Plugin) AttachWriter(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = bufio.NewWriter(w)
}

func (p *Plugin) Init() error {
	return nil
}

func (p *Plugin) Send(frame *pipeline.Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failNextN > 0 {
		p.failNextN--
		return fmt.Errorf("%s: simulated send failure", Name)
	}

	p.frames = append(p.frames, frame)
	if p.writer != nil {
		fmt.Fprintf(p.writer, "frame %s: %d pixels (%sx%s)\n",
			frame.ID(), len(frame.Pixels), frame.Meta[pipeline.MetaWidth], frame.Meta[pipeline.MetaHeight])
		return p.writer.Flush()
	}
	return nil
}

// Frames returns a snapshot of every frame received so far, in arrival
// order. Intended for tests (P4).
func (p *Plugin) Frames() []*pipeline.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*pipeline.Frame, len(p.frames))
	copy(out, p.frames)
	return out
}
