// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"

	"code.hybscloud.com/netcore/internal/diag"
)

// releasable is satisfied structurally by buffer.Buffer without either
// package importing the other: Tail only needs to know a message can
// release itself, not what kind of message it is.
type releasable interface {
	Release() error
}

// tailHandler implements the terminal inbound behavior: an unhandled
// channel_read releases the message and logs a diagnostic; an
// unhandled exception_caught logs a warning. Every other inbound
// callback is absorbed silently, since nothing is left to forward to.
type tailHandler struct {
	d *diag.Diag
}

func (tailHandler) isPipelineHandler() {}

func (tailHandler) ChannelRegistered(*Context) error   { return nil }
func (tailHandler) ChannelUnregistered(*Context) error { return nil }
func (tailHandler) ChannelActive(*Context) error       { return nil }
func (tailHandler) ChannelInactive(*Context) error     { return nil }
func (tailHandler) ChannelReadComplete(*Context) error { return nil }

func (tailHandler) UserEventTriggered(*Context, interface{}) error { return nil }

func (tailHandler) ChannelWritabilityChanged(*Context) error { return nil }

func (t tailHandler) ChannelRead(ctx *Context, msg interface{}) error {
	if r, ok := msg.(releasable); ok {
		_ = r.Release()
	}
	t.d.UnhandledRead(ctx.Name(), fmt.Sprintf("%T", msg))
	return nil
}

func (t tailHandler) ExceptionCaught(ctx *Context, cause error) error {
	t.d.UnhandledException(ctx.Name(), cause)
	return nil
}
