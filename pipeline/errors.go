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

import "fmt"

// Kind classifies the taxonomy of errors the engine can return from its
// public surface. Callers that need to distinguish a config mistake from a
// lifecycle misuse should switch on this rather than parsing the message.
type Kind int

const (
	// ErrConfig covers malformed config text, missing fields, unknown
	// plugin names, kind mismatches and empty pipelines.
	ErrConfig Kind = iota
	// ErrPluginConstruction covers a plugin's Create rejecting its config.
	ErrPluginConstruction
	// ErrPluginIO covers a recoverable get/send/transform failure.
	ErrPluginIO
	// ErrLifecycle covers Start-while-running and Stop-while-idle.
	ErrLifecycle
)

func (k Kind) String() string {
	switch k {
	case ErrConfig:
		return "config"
	case ErrPluginConstruction:
		return "plugin construction"
	case ErrPluginIO:
		return "plugin io"
	case ErrLifecycle:
		return "lifecycle"
	default:
		return "unknown"
	}
}

// Error is the engine's uniform error value. It always names the offending
// pipeline and plugin, if any, so that a log line or a CLI caller doesn't
// have to reconstruct context from a bare message.
type Error struct {
	Kind     Kind
	Pipeline string
	Plugin   string
	Cause    error
}

func (e *Error) Error() string {
	switch {
	case e.Pipeline != "" && e.Plugin != "":
		return fmt.Sprintf("%s: pipeline %q, plugin %q: %s", e.Kind, e.Pipeline, e.Plugin, e.Cause)
	case e.Pipeline != "":
		return fmt.Sprintf("%s: pipeline %q: %s", e.Kind, e.Pipeline, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, pipeline, plugin string, cause error) *Error {
	return &Error{Kind: kind, Pipeline: pipeline, Plugin: plugin, Cause: cause}
}

func configErrorf(pipeline string, format string, args ...interface{}) *Error {
	return newError(ErrConfig, pipeline, "", fmt.Errorf(format, args...))
}

func constructionErrorf(pipeline, plugin string, cause error) *Error {
	return newError(ErrPluginConstruction, pipeline, plugin, cause)
}

func ioErrorf(pipeline, plugin string, cause error) *Error {
	return newError(ErrPluginIO, pipeline, plugin, cause)
}

func lifecycleErrorf(format string, args ...interface{}) *Error {
	return newError(ErrLifecycle, "", "", fmt.Errorf(format, args...))
}
