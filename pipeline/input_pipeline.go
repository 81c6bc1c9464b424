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
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ioBackoff is the fixed recovery delay after a recoverable plugin I/O error
// (§4.4, §4.5, §7). It is a package variable rather than a constant purely so
// tests can shrink it.
var ioBackoff = 5 * time.Second

// errNoFrame stands in for a source's Get returning neither a frame nor an
// error, so that case takes the same log-and-back-off path as a Get error.
var errNoFrame = errors.New("source returned no frame")

// InputPipeline drives a single source plugin and its transform chain on a
// dedicated worker goroutine, publishing tagged events to the arbitrator
// (§4.4).
type InputPipeline struct {
	name           string
	priority       uint8
	source         Input
	sourceName     string
	transforms     []Transform
	transformNames []string
	out            chan<- TaggedEvent

	cancel context.CancelFunc
	log    *logrus.Entry
}

// buildInputPipeline constructs the source and its transform chain from
// desc, calling Init on the source before returning. On any construction
// error it reports which plugin failed (§4.4).
func buildInputPipeline(desc InputPipeDesc, loader *Loader, out chan<- TaggedEvent) (*InputPipeline, error) {
	if len(desc.Members) == 0 {
		return nil, configErrorf(desc.Name, "pipeline is empty")
	}

	first := desc.Members[0]
	instance, err := loader.Create(desc.Name, first.Kind, KindInput, first.Config)
	if err != nil {
		return nil, err
	}
	source, ok := instance.(Input)
	if !ok {
		return nil, configErrorf(desc.Name, "plugin %q does not implement Input", first.Kind)
	}

	transforms, transformNames, err := buildTransformChain(desc.Name, desc.Members[1:], loader)
	if err != nil {
		return nil, err
	}

	if err := source.Init(); err != nil {
		return nil, constructionErrorf(desc.Name, first.Kind, err)
	}

	return &InputPipeline{
		name:           desc.Name,
		priority:       desc.Priority,
		source:         source,
		sourceName:     first.Kind,
		transforms:     transforms,
		transformNames: transformNames,
		out:            out,
		log:            logrus.WithFields(logrus.Fields{"pipeline": desc.Name, "priority": desc.Priority}),
	}, nil
}

// buildTransformChain resolves refs into a Transform chain, returning the
// plugin name alongside each transform so callers can attribute a later
// runtime failure to the specific plugin that produced it (§7).
func buildTransformChain(pipelineName string, refs []PluginRef, loader *Loader) ([]Transform, []string, error) {
	chain := make([]Transform, 0, len(refs))
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		instance, err := loader.Create(pipelineName, ref.Kind, KindTransform, ref.Config)
		if err != nil {
			return nil, nil, err
		}
		t, ok := instance.(Transform)
		if !ok {
			return nil, nil, configErrorf(pipelineName, "plugin %q does not implement Transform", ref.Kind)
		}
		chain = append(chain, t)
		names = append(names, ref.Kind)
	}
	return chain, names, nil
}

// start launches the worker goroutine. wg is released when the worker
// returns, which happens only after stop() is called and the blocking Get()
// call (or an in-flight send) observes cancellation (§4.4, §5).
func (p *InputPipeline) start(wg *sync.WaitGroup) {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.run(ctx)
	}()
}

// stop signals the worker to exit at its next opportunity. Because Get() may
// block indefinitely, shutdown latency equals the source's own
// responsiveness to cancellation; the engine never force-kills the
// goroutine (§4.4, §5, §9).
func (p *InputPipeline) stop() {
	if p.cancel != nil {
		p.cancel()
	}
	if u, ok := p.source.(Unblocker); ok {
		u.Unblock()
	}
}

func (p *InputPipeline) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		frame, err := p.source.Get()
		if err == nil && frame == nil {
			err = errNoFrame
		}
		if err != nil {
			ioErr := ioErrorf(p.name, p.sourceName, err)
			p.log.WithField("plugin", p.sourceName).WithError(ioErr).Warn("input get failed, backing off")
			if sleepOrDone(ctx, ioBackoff) {
				return
			}
			continue
		}

		var transformFailed bool
		for i, t := range p.transforms {
			frame, err = t.Transform(frame)
			if err != nil {
				ioErr := ioErrorf(p.name, p.transformNames[i], err)
				p.log.WithField("plugin", p.transformNames[i]).WithError(ioErr).Warn("transform failed, dropping frame")
				transformFailed = true
				break
			}
		}
		if transformFailed {
			if sleepOrDone(ctx, ioBackoff) {
				return
			}
			continue
		}

		select {
		case p.out <- TaggedEvent{Frame: frame, Priority: p.priority}:
		case <-ctx.Done():
			return
		}
	}
}

// sleepOrDone waits for d, returning early (and reporting true) if ctx is
// cancelled first, so a backoff never delays shutdown by the full 5 seconds.
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return false
	case <-ctx.Done():
		return true
	}
}
