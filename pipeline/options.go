// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"go.uber.org/zap"

	"code.hybscloud.com/netcore/internal/executor"
)

// Options configures a Pipeline. See WithLogger, WithEventLoopExecutor,
// WithExecutorGroup and WithUnsafe.
type Options struct {
	logger       *zap.Logger
	loopExecutor *executor.Executor
	execGroup    *executor.Group
	unsafe       Unsafe
}

// Option follows the functional-options convention used throughout
// this module.
type Option func(*Options)

// WithLogger sets the *zap.Logger the pipeline's Tail uses for
// unhandled-message and unhandled-exception diagnostics. The default is
// a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.logger = l }
}

// WithEventLoopExecutor binds the pipeline's sentinel Head/Tail, and
// any context added without an explicit executor or group, to exec
// instead of a freshly started one.
func WithEventLoopExecutor(exec *executor.Executor) Option {
	return func(o *Options) { o.loopExecutor = exec }
}

// WithExecutorGroup sets the round-robin group new contexts draw their
// executor from when none is given explicitly at add time.
func WithExecutorGroup(g *executor.Group) Option {
	return func(o *Options) { o.execGroup = g }
}

// WithUnsafe sets the transport collaborator Head delegates outbound
// operations to. The default is a no-op transport that completes every
// promise successfully without doing anything.
func WithUnsafe(u Unsafe) Option {
	return func(o *Options) { o.unsafe = u }
}
