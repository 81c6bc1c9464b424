/***** BEGIN LICENSE BLOCK *****
# This Source Code Form is subject to the terms of the Mozilla Public
# License, v. 2.0. If a copy of the MPL was not distributed with this file,
# You can obtain one at http://mozilla.org/MPL/2.0/.
#
# The Initial Developer of the Original Code is the Mozilla Foundation.
# Portions created by the Initial Developer are Copyright (C) 2012
# the Initial Developer. All Rights Reserved.
#
# ***** END LICENSE BLOCK *****/

package pipeline

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// outputInboxSize is the per-output-pipeline inbox buffer depth. Bounded
// buffering is acceptable per §4.3; when the inbox is full, deliver drops
// the oldest queued frame of this one output instead of blocking the
// arbitrator, so backpressure is per-output, not per-engine (§4.6).
const outputInboxSize = 16

// OutputPipeline drives a transform chain and a sink plugin on a dedicated
// worker goroutine, consuming frames from its own inbox (§4.5).
type OutputPipeline struct {
	name           string
	transforms     []Transform
	transformNames []string
	sink           Output
	sinkName       string
	inbox          chan *Frame
	log            *logrus.Entry
}

// buildOutputPipeline constructs the transform chain and sink from desc. The
// last member must be an Output plugin; everything before it must be a
// Transform (§3, §4.5).
func buildOutputPipeline(desc OutputPipeDesc, loader *Loader) (*OutputPipeline, error) {
	if len(desc.Members) == 0 {
		return nil, configErrorf(desc.Name, "pipeline is empty")
	}

	last := desc.Members[len(desc.Members)-1]
	instance, err := loader.Create(desc.Name, last.Kind, KindOutput, last.Config)
	if err != nil {
		return nil, err
	}
	sink, ok := instance.(Output)
	if !ok {
		return nil, configErrorf(desc.Name, "plugin %q does not implement Output", last.Kind)
	}

	transforms, transformNames, err := buildTransformChain(desc.Name, desc.Members[:len(desc.Members)-1], loader)
	if err != nil {
		return nil, err
	}

	if err := sink.Init(); err != nil {
		return nil, constructionErrorf(desc.Name, last.Kind, err)
	}

	return &OutputPipeline{
		name:           desc.Name,
		transforms:     transforms,
		transformNames: transformNames,
		sink:           sink,
		sinkName:       last.Kind,
		inbox:          make(chan *Frame, outputInboxSize),
		log:            logrus.WithField("pipeline", desc.Name),
	}, nil
}

// start launches the worker goroutine.
func (p *OutputPipeline) start(wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.run()
	}()
}

// deliver enqueues frame onto this output's inbox. Called by the arbitrator
// during fan-out (§4.6). The poison pill does not go through deliver: the
// arbitrator's shutdown path writes it to the inbox directly.
func (p *OutputPipeline) deliver(frame *Frame) bool {
	select {
	case p.inbox <- frame:
		return true
	default:
	}

	// Inbox full: drop the oldest queued frame to make room rather than
	// the one just accepted by the arbitrator, per §4.6's backpressure
	// policy.
	select {
	case <-p.inbox:
		p.log.Warn("output inbox full, dropping oldest queued frame")
	default:
	}
	select {
	case p.inbox <- frame:
		return true
	default:
		p.log.Warn("output inbox still full after eviction, dropping frame")
		return false
	}
}

func (p *OutputPipeline) run() {
	for {
		frame, ok := <-p.inbox
		if !ok {
			return
		}
		if frame.Empty() {
			// Poison pill: shutdown signal from the engine. Exit without
			// calling Send (P7).
			return
		}

		var transformFailed bool
		for i, t := range p.transforms {
			var err error
			frame, err = t.Transform(frame)
			if err != nil {
				ioErr := ioErrorf(p.name, p.transformNames[i], err)
				p.log.WithField("plugin", p.transformNames[i]).WithError(ioErr).Warn("transform failed, dropping frame")
				transformFailed = true
				break
			}
		}
		if transformFailed {
			time.Sleep(ioBackoff)
			continue
		}

		if err := p.sink.Send(frame); err != nil {
			ioErr := ioErrorf(p.name, p.sinkName, err)
			p.log.WithField("plugin", p.sinkName).WithError(ioErr).Warn("send failed, backing off")
			time.Sleep(ioBackoff)
		}
	}
}
