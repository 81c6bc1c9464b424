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

// Package pipeline implements the LED-control engine runtime: the plugin
// ABI, the plugin loader, input/output pipeline construction and worker
// loops, the priority arbitrator, and the Engine lifecycle that binds them
// together.
package pipeline

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// arbitratorInboxSize bounds the arbitrator's inbox. Producers that outrun
// it block in their own publish step, which is the self-throttling the spec
// allows as an alternative to an unbounded channel (§4.3).
const arbitratorInboxSize = 64

// newLoaderFunc is a package-level seam over NewLoader, the same pattern
// ioBackoff uses to let tests substitute behavior that would otherwise
// require real .so files on disk.
var newLoaderFunc = NewLoader

// state is the engine's lifecycle state machine (§4.6): Idle -> Running ->
// Idle.
type state int

const (
	stateIdle state = iota
	stateRunning
)

// Engine owns every pipeline and the arbitrator for one running
// configuration, and exposes the lifecycle calls a host process drives (§2,
// §4.6, §6).
type Engine struct {
	mu     sync.Mutex
	state  state
	loader *Loader

	inputs     []*InputPipeline
	outputs    []*OutputPipeline
	arbitrator *arbitrator
	wg         sync.WaitGroup

	log *logrus.Entry
}

// New returns an idle Engine ready to be Start-ed.
func New() *Engine {
	return &Engine{
		state: stateIdle,
		log:   logrus.WithField("component", "engine"),
	}
}

// Start parses configText, loads plugins from pluginsDir, builds every input
// and output pipeline, and starts all worker goroutines plus the arbitrator
// (§4.6). It fails with a lifecycle error if the engine is already running;
// any configuration or plugin-construction error leaves the engine Idle.
func (e *Engine) Start(configText, pluginsDir string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == stateRunning {
		return lifecycleErrorf("engine is already running")
	}

	cfg, err := ParseConfig(configText)
	if err != nil {
		return err
	}

	loader, err := newLoaderFunc(pluginsDir)
	if err != nil {
		return err
	}

	outputs := make([]*OutputPipeline, 0, len(cfg.Output))
	for _, outDesc := range cfg.Output {
		out, err := buildOutputPipeline(outDesc, loader)
		if err != nil {
			return err
		}
		outputs = append(outputs, out)
	}

	arb := newArbitrator(arbitratorInboxSize, outputs, time.Duration(cfg.MaxInputInactivityPeriod)*time.Millisecond)

	inputs := make([]*InputPipeline, 0, len(cfg.Input))
	for _, inDesc := range cfg.Input {
		in, err := buildInputPipeline(inDesc, loader, arb.inbox)
		if err != nil {
			return err
		}
		inputs = append(inputs, in)
	}

	for _, out := range outputs {
		out.start(&e.wg)
	}
	arb.start(&e.wg)
	for _, in := range inputs {
		in.start(&e.wg)
	}

	e.loader = loader
	e.inputs = inputs
	e.outputs = outputs
	e.arbitrator = arb
	e.state = stateRunning

	e.log.WithFields(logrus.Fields{
		"inputs":  len(inputs),
		"outputs": len(outputs),
	}).Info("engine started")
	return nil
}

// Stop orders shutdown: the arbitrator stops admitting events and poisons
// every output, every input worker is cancelled, and every worker plus the
// arbitrator is joined before Stop returns (§4.6). It fails if the engine is
// not running. After Stop returns the engine may be Start-ed again (§4.6,
// P6).
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateRunning {
		return lifecycleErrorf("engine is not running")
	}

	e.arbitrator.stop()

	for _, in := range e.inputs {
		in.stop()
	}

	e.wg.Wait()

	e.inputs = nil
	e.outputs = nil
	e.arbitrator = nil
	e.loader = nil
	e.state = stateIdle

	e.log.Info("engine stopped")
	return nil
}

// Running reports whether the engine is currently in the Running state.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == stateRunning
}
