// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateName is returned by an add* operation when an explicit
	// name collides with an existing context.
	ErrDuplicateName = errors.New("pipeline: duplicate context name")

	// ErrNotFound is returned by remove/replace/get when no context
	// matches the given name, handler, or handler type.
	ErrNotFound = errors.New("pipeline: context not found")

	// ErrSentinel guards Head and Tail against removal or replacement.
	// Head and Tail are not entered in the name index, so Remove and
	// Replace, which look contexts up by name, report ErrNotFound for
	// them rather than ErrSentinel.
	ErrSentinel = errors.New("pipeline: head and tail cannot be removed or renamed")

	// ErrNotSharable is returned when a handler instance not marked
	// Sharable is added to a pipeline that already holds it at another
	// position. Only the pipeline being added to is checked; the same
	// instance held by a different pipeline is not detected.
	ErrNotSharable = errors.New("pipeline: handler is not sharable and already bound to a context")
)

// PipelineError wraps an exception raised by a lifecycle callback
// (handler_added / handler_removed) on a named context. It is fired as
// an exception_caught event. For a handler_added failure the add or
// Replace call also returns it; for a handler_removed failure the call
// returns the underlying cause.
type PipelineError struct {
	ContextName string
	Phase       string // "handler_added" or "handler_removed"
	Cause       error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline: %s on context %q: %v", e.Phase, e.ContextName, e.Cause)
}

func (e *PipelineError) Unwrap() error { return e.Cause }
