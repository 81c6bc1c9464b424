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

import "github.com/google/uuid"

// Canonical metadata keys recognized by the reference transform plugins.
const (
	MetaWidth   = "width"
	MetaHeight  = "height"
	metaFrameID = "frame_id"
)

// RGB is a single 8-bit-per-channel pixel.
type RGB struct {
	R, G, B uint8
}

// Frame is an immutable pixel payload plus a small metadata dictionary. Once
// built it must never be mutated in place: every pipeline that touches a
// Frame holds a shared reference, and transforms that change pixels or
// metadata must build and return a new Frame rather than editing theirs.
//
// The zero value is not useful; build frames with NewFrame.
type Frame struct {
	Pixels []RGB
	Meta   map[string]string
}

// NewFrame builds a Frame, copying the provided pixel slice and metadata map
// so the caller's own copies remain free to mutate, and stamping a fresh
// frame_id for log correlation (see SPEC_FULL.md §3).
func NewFrame(pixels []RGB, meta map[string]string) *Frame {
	px := make([]RGB, len(pixels))
	copy(px, pixels)

	m := make(map[string]string, len(meta)+1)
	for k, v := range meta {
		m[k] = v
	}
	if _, ok := m[metaFrameID]; !ok {
		m[metaFrameID] = uuid.NewString()
	}

	return &Frame{Pixels: px, Meta: m}
}

// ID returns the frame's correlation identifier.
func (f *Frame) ID() string {
	return f.Meta[metaFrameID]
}

// Empty reports whether this Frame is the poison-pill sentinel used by the
// arbitrator to signal output-worker shutdown (§4.5, §4.6, P7).
func (f *Frame) Empty() bool {
	return f == nil || len(f.Pixels) == 0
}

// poisonPill is the single shared empty-sequence Frame sent to every output
// inbox during shutdown. It carries no metadata: nothing downstream should
// ever inspect it beyond Empty().
func poisonPill() *Frame {
	return &Frame{Pixels: nil, Meta: nil}
}

// TaggedEvent is the unit published by an input pipeline onto the
// arbitrator's inbox: a Frame plus the priority of the pipeline that
// produced it (§3).
type TaggedEvent struct {
	Frame    *Frame
	Priority uint8
}
