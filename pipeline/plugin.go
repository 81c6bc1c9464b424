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

import "encoding/json"

// APIVersion is the plugin ABI version this build of the engine supports. A
// plugin whose Descriptor.APIVersion disagrees is rejected at load time
// (§4.2, §6).
const APIVersion = 1

// PluginKind classifies what a plugin does, mirroring the three behavioral
// contracts in §4.1.
type PluginKind int

const (
	KindInput PluginKind = iota
	KindOutput
	KindTransform
)

func (k PluginKind) String() string {
	switch k {
	case KindInput:
		return "Input"
	case KindOutput:
		return "Output"
	case KindTransform:
		return "Transform"
	default:
		return "Unknown"
	}
}

// Descriptor is the static identity record every plugin module exports via
// its info() entry point (§3, §4.1). All fields are meant to be statically
// known at plugin build time.
type Descriptor struct {
	APIVersion int
	Name       string
	Kind       PluginKind
	Filename   string
}

// InfoFunc is the signature a plugin module exports under the symbol name
// "Info". It must be side-effect-free and cheap to call repeatedly — the
// loader calls it once per candidate file during a directory scan.
type InfoFunc func() Descriptor

// CreateFunc is the signature a plugin module exports under the symbol name
// "Create". config is the plugin's own JSON config subtree, verbatim from
// the pipeline description (§6). The returned value must satisfy Input,
// Output or Transform according to the plugin's declared Kind.
type CreateFunc func(config json.RawMessage) (interface{}, error)

// Plugin is the base contract every plugin instance satisfies, independent
// of its behavioral kind (§4.1).
type Plugin interface {
	// Init performs any one-time setup that may block (open device,
	// allocate buffers, connect). Called once, while Engine.Start builds the
	// owning pipeline, before that pipeline's worker goroutine starts.
	Init() error
}

// Input is the behavioral contract for source plugins.
type Input interface {
	Plugin
	// Get returns the next frame. It may block until one is available but
	// must return promptly on I/O errors so the worker can back off and
	// retry rather than hang.
	Get() (*Frame, error)
}

// Output is the behavioral contract for sink plugins.
type Output interface {
	Plugin
	// Send transmits a frame, returning a recoverable error on transient
	// I/O failure.
	Send(frame *Frame) error
}

// Transform is the behavioral contract for transform plugins. Transform must
// be pure with respect to engine state and must not block on external I/O;
// it runs on whichever pipeline's worker goroutine owns it.
type Transform interface {
	Transform(frame *Frame) (*Frame, error)
}

// Unblocker is an optional interface an Input may implement when its Get()
// can block indefinitely (socket accept, blocking pipe open, script step).
// If implemented, the engine calls Unblock() when the owning pipeline is
// stopped, alongside cancelling the pipeline's context, so the plugin has a
// chance to make its blocked Get() call return promptly instead of leaking
// the worker goroutine past Stop() (§5, §9: "sources... must arrange their
// own unblocking... at teardown").
type Unblocker interface {
	Unblock()
}
