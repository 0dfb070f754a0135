// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package diag is a thin structured-logging facade used by the pipeline
// core at three points: an unhandled channel_read reaching Tail
// (diagnostic), an unhandled exception_caught reaching Tail (warning),
// and a context that could not be removed cleanly after its
// handler_added failed (error). It wraps go.uber.org/zap, defaulting to a no-op logger so
// importing the pipeline package does not, by itself, produce any log
// output.
package diag

import "go.uber.org/zap"

// Diag is the logging collaborator pipeline.Tail uses.
type Diag struct {
	log *zap.Logger
}

// New wraps l. A nil l is replaced with zap.NewNop().
func New(l *zap.Logger) *Diag {
	if l == nil {
		l = zap.NewNop()
	}
	return &Diag{log: l}
}

// Nop returns a Diag that discards everything.
func Nop() *Diag { return New(nil) }

// UnhandledRead logs that a channel_read message reached Tail without
// being handled and was released.
func (d *Diag) UnhandledRead(contextName string, msgType string) {
	d.log.Info("unhandled inbound message reached the tail of the pipeline; releasing",
		zap.String("context", contextName),
		zap.String("message_type", msgType),
	)
}

// UnhandledException logs that an exception_caught event reached Tail
// without being handled.
func (d *Diag) UnhandledException(contextName string, cause error) {
	d.log.Warn("an exception_caught event reached the tail of the pipeline",
		zap.String("context", contextName),
		zap.Error(cause),
	)
}

// PipelineError logs a failure to cleanly remove a context after a
// handler_added exception.
func (d *Diag) PipelineError(contextName string, cause error) {
	d.log.Error("handler_added failed and the context could not be removed cleanly",
		zap.String("context", contextName),
		zap.Error(cause),
	)
}
