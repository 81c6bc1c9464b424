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

// shutdownGrace is how long the arbitrator waits after sending the poison
// pill to every output inbox before it exits, so that a fan-out send that
// raced the shutdown command doesn't land on a receiver that has already
// stopped reading (§4.6).
const shutdownGrace = 50 * time.Millisecond

// arbitrator is the engine's single central worker: it consumes tagged
// events from every input pipeline, applies the priority/inactivity
// admission policy (§4.6, P1-P3), and fans accepted frames out to every
// output pipeline (P4).
type arbitrator struct {
	inbox             chan TaggedEvent
	outputs           []*OutputPipeline
	inactivityTimeout time.Duration

	currentPriority uint8
	lastAcceptedAt  time.Time

	stopCh chan struct{}
	log    *logrus.Entry
}

func newArbitrator(inboxSize int, outputs []*OutputPipeline, inactivityTimeout time.Duration) *arbitrator {
	return &arbitrator{
		inbox:             make(chan TaggedEvent, inboxSize),
		outputs:           outputs,
		inactivityTimeout: inactivityTimeout,
		stopCh:            make(chan struct{}),
		log:               logrus.WithField("component", "arbitrator"),
	}
}

func (a *arbitrator) start(wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.run()
	}()
}

// stop asks the arbitrator to wind down: it stops admitting new events,
// sends the poison pill to every output, waits out the shutdown grace
// period, then returns from run(). Safe to call exactly once.
func (a *arbitrator) stop() {
	close(a.stopCh)
}

func (a *arbitrator) run() {
	for {
		select {
		case event := <-a.inbox:
			if a.admit(event) {
				a.fanOut(event.Frame)
			}
		case <-a.stopCh:
			a.shutdown()
			return
		}
	}
}

// admit implements the priority/inactivity policy from §4.6. It mutates
// currentPriority/lastAcceptedAt, the arbitrator's only state (invariant
// (iv) in §3).
func (a *arbitrator) admit(event TaggedEvent) bool {
	now := time.Now()

	switch {
	case a.currentPriority == 0:
		a.currentPriority = event.Priority
		a.lastAcceptedAt = now
		return true
	case event.Priority >= a.currentPriority:
		a.currentPriority = event.Priority
		a.lastAcceptedAt = now
		return true
	case now.Sub(a.lastAcceptedAt) >= a.inactivityTimeout:
		a.currentPriority = event.Priority
		a.lastAcceptedAt = now
		return true
	default:
		return false
	}
}

// fanOut delivers frame, by reference, to every output pipeline's inbox
// (P4, P5). A full or otherwise failing output inbox only affects that one
// output; delivery to the others still proceeds.
func (a *arbitrator) fanOut(frame *Frame) {
	for _, out := range a.outputs {
		out.deliver(frame)
	}
}

// shutdown sends the poison pill to every output and waits briefly before
// returning, so receivers currently mid-read don't observe a closed channel
// (§4.6).
func (a *arbitrator) shutdown() {
	pill := poisonPill()
	for _, out := range a.outputs {
		out.inbox <- pill
	}
	time.Sleep(shutdownGrace)
}
