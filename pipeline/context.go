// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"sync/atomic"

	"code.hybscloud.com/netcore/internal/executor"
)

type capFlags uint32

const (
	capChannelRegistered capFlags = 1 << iota
	capChannelUnregistered
	capChannelActive
	capChannelInactive
	capChannelRead
	capChannelReadComplete
	capUserEventTriggered
	capChannelWritabilityChanged
	capExceptionCaught
	capBind
	capConnect
	capDisconnect
	capClose
	capDeregister
	capRead
	capWrite
	capFlush
)

// computeCaps type-asserts h against every narrow handler interface
// once, at add time, and records which callbacks it actually
// implements. Propagation consults this bitmask instead of invoking a
// no-op on every context; there is no reflection involved, only
// ordinary interface satisfaction checks.
func computeCaps(h Handler) capFlags {
	var c capFlags
	if _, ok := h.(ChannelRegisteredHandler); ok {
		c |= capChannelRegistered
	}
	if _, ok := h.(ChannelUnregisteredHandler); ok {
		c |= capChannelUnregistered
	}
	if _, ok := h.(ChannelActiveHandler); ok {
		c |= capChannelActive
	}
	if _, ok := h.(ChannelInactiveHandler); ok {
		c |= capChannelInactive
	}
	if _, ok := h.(ChannelReadHandler); ok {
		c |= capChannelRead
	}
	if _, ok := h.(ChannelReadCompleteHandler); ok {
		c |= capChannelReadComplete
	}
	if _, ok := h.(UserEventTriggeredHandler); ok {
		c |= capUserEventTriggered
	}
	if _, ok := h.(ChannelWritabilityChangedHandler); ok {
		c |= capChannelWritabilityChanged
	}
	if _, ok := h.(ExceptionCaughtHandler); ok {
		c |= capExceptionCaught
	}
	if _, ok := h.(BindHandler); ok {
		c |= capBind
	}
	if _, ok := h.(ConnectHandler); ok {
		c |= capConnect
	}
	if _, ok := h.(DisconnectHandler); ok {
		c |= capDisconnect
	}
	if _, ok := h.(CloseHandler); ok {
		c |= capClose
	}
	if _, ok := h.(DeregisterHandler); ok {
		c |= capDeregister
	}
	if _, ok := h.(ReadHandler); ok {
		c |= capRead
	}
	if _, ok := h.(WriteHandler); ok {
		c |= capWrite
	}
	if _, ok := h.(FlushHandler); ok {
		c |= capFlush
	}
	return c
}

type lifecycleState int32

const (
	stateInit lifecycleState = iota
	stateLive
	statePendingRemove
	stateRemoved
)

// Context wraps a Handler inside a Pipeline: its name, its links, the
// executor callbacks for it run on, and the capability bitmask used to
// skip callbacks it does not implement.
type Context struct {
	name     string
	handler  Handler
	pipeline *Pipeline
	exec     *executor.Executor
	caps     capFlags

	prev atomic.Pointer[Context]
	next atomic.Pointer[Context]

	state atomic.Int32
}

func newContext(p *Pipeline, name string, h Handler, exec *executor.Executor) *Context {
	c := &Context{
		name:     name,
		handler:  h,
		pipeline: p,
		exec:     exec,
		caps:     computeCaps(h),
	}
	return c
}

// Name returns the context's unique name within its pipeline.
func (c *Context) Name() string { return c.name }

// Handler returns the wrapped handler.
func (c *Context) Handler() Handler { return c.handler }

// Pipeline returns the owning pipeline.
func (c *Context) Pipeline() *Pipeline { return c.pipeline }

// Executor returns the context's bound executor.
func (c *Context) Executor() *executor.Executor { return c.exec }

func (c *Context) isRemoved() bool {
	return lifecycleState(c.state.Load()) == stateRemoved
}

func (c *Context) invoke(fn func()) {
	if c.exec.InEventLoop() {
		fn()
	} else {
		c.exec.Execute(fn)
	}
}

// nextInbound walks forward from c looking for the first non-removed
// context whose capabilities include flag. The pipeline guarantees
// Tail always qualifies, so this never returns nil for a context still
// linked into a live pipeline.
func nextInbound(c *Context, flag capFlags) *Context {
	for n := c.next.Load(); n != nil; n = n.next.Load() {
		if n.isRemoved() {
			continue
		}
		if n.caps&flag != 0 {
			return n
		}
	}
	return nil
}

// prevOutbound walks backward from c looking for the first non-removed
// context whose capabilities include flag. Head always qualifies.
func prevOutbound(c *Context, flag capFlags) *Context {
	for p := c.prev.Load(); p != nil; p = p.prev.Load() {
		if p.isRemoved() {
			continue
		}
		if p.caps&flag != 0 {
			return p
		}
	}
	return nil
}

func (c *Context) safeCall(fn func() error) error {
	defer func() {
		if r := recover(); r != nil {
			c.FireExceptionCaught(toError(r))
		}
	}()
	if err := fn(); err != nil {
		c.FireExceptionCaught(err)
		return err
	}
	return nil
}

func toError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicValue{v: r}
}

type panicValue struct{ v interface{} }

func (p *panicValue) Error() string { return "pipeline: handler panicked" }

// --- inbound fan-out ---

func (c *Context) FireChannelRegistered() {
	if t := nextInbound(c, capChannelRegistered); t != nil {
		t.invoke(func() {
			t.safeCall(func() error { return t.handler.(ChannelRegisteredHandler).ChannelRegistered(t) })
		})
	}
}

func (c *Context) FireChannelUnregistered() {
	if t := nextInbound(c, capChannelUnregistered); t != nil {
		t.invoke(func() {
			t.safeCall(func() error { return t.handler.(ChannelUnregisteredHandler).ChannelUnregistered(t) })
		})
	}
}

func (c *Context) FireChannelActive() {
	if t := nextInbound(c, capChannelActive); t != nil {
		t.invoke(func() {
			t.safeCall(func() error { return t.handler.(ChannelActiveHandler).ChannelActive(t) })
		})
	}
}

func (c *Context) FireChannelInactive() {
	if t := nextInbound(c, capChannelInactive); t != nil {
		t.invoke(func() {
			t.safeCall(func() error { return t.handler.(ChannelInactiveHandler).ChannelInactive(t) })
		})
	}
}

func (c *Context) FireChannelRead(msg interface{}) {
	if t := nextInbound(c, capChannelRead); t != nil {
		t.invoke(func() {
			t.safeCall(func() error { return t.handler.(ChannelReadHandler).ChannelRead(t, msg) })
		})
	}
}

func (c *Context) FireChannelReadComplete() {
	if t := nextInbound(c, capChannelReadComplete); t != nil {
		t.invoke(func() {
			t.safeCall(func() error { return t.handler.(ChannelReadCompleteHandler).ChannelReadComplete(t) })
		})
	}
}

func (c *Context) FireUserEventTriggered(evt interface{}) {
	if t := nextInbound(c, capUserEventTriggered); t != nil {
		t.invoke(func() {
			t.safeCall(func() error { return t.handler.(UserEventTriggeredHandler).UserEventTriggered(t, evt) })
		})
	}
}

func (c *Context) FireChannelWritabilityChanged() {
	if t := nextInbound(c, capChannelWritabilityChanged); t != nil {
		t.invoke(func() {
			t.safeCall(func() error {
				return t.handler.(ChannelWritabilityChangedHandler).ChannelWritabilityChanged(t)
			})
		})
	}
}

// FireExceptionCaught fires an exception_caught event at the next
// context after c, regardless of whether the originating operation was
// inbound or outbound: the error taxonomy treats exception_caught as an
// inbound event.
func (c *Context) FireExceptionCaught(cause error) {
	t := nextInbound(c, capExceptionCaught)
	if t == nil {
		return
	}
	t.invoke(func() {
		// A handler's own ExceptionCaught is not itself guarded by
		// safeCall: a second panic here is a programming error in
		// diagnostic code, not an in-band condition to convert again.
		_ = t.handler.(ExceptionCaughtHandler).ExceptionCaught(t, cause)
	})
}

// --- outbound fan-out, originates from the caller's context and walks
// toward Head ---

func (c *Context) Bind(localAddr interface{}, p *Promise) error {
	t := prevOutbound(c, capBind)
	t.invoke(func() {
		if err := t.handler.(BindHandler).Bind(t, localAddr, p); err != nil {
			t.FireExceptionCaught(err)
		}
	})
	return nil
}

func (c *Context) Connect(remoteAddr, localAddr interface{}, p *Promise) error {
	t := prevOutbound(c, capConnect)
	t.invoke(func() {
		if err := t.handler.(ConnectHandler).Connect(t, remoteAddr, localAddr, p); err != nil {
			t.FireExceptionCaught(err)
		}
	})
	return nil
}

func (c *Context) Disconnect(p *Promise) error {
	t := prevOutbound(c, capDisconnect)
	t.invoke(func() {
		if err := t.handler.(DisconnectHandler).Disconnect(t, p); err != nil {
			t.FireExceptionCaught(err)
		}
	})
	return nil
}

func (c *Context) Close(p *Promise) error {
	t := prevOutbound(c, capClose)
	t.invoke(func() {
		if err := t.handler.(CloseHandler).Close(t, p); err != nil {
			t.FireExceptionCaught(err)
		}
	})
	return nil
}

func (c *Context) Deregister(p *Promise) error {
	t := prevOutbound(c, capDeregister)
	t.invoke(func() {
		if err := t.handler.(DeregisterHandler).Deregister(t, p); err != nil {
			t.FireExceptionCaught(err)
		}
	})
	return nil
}

func (c *Context) Read() error {
	t := prevOutbound(c, capRead)
	t.invoke(func() {
		if err := t.handler.(ReadHandler).Read(t); err != nil {
			t.FireExceptionCaught(err)
		}
	})
	return nil
}

func (c *Context) Write(msg interface{}, p *Promise) error {
	t := prevOutbound(c, capWrite)
	t.invoke(func() {
		if err := t.handler.(WriteHandler).Write(t, msg, p); err != nil {
			t.FireExceptionCaught(err)
		}
	})
	return nil
}

func (c *Context) Flush() error {
	t := prevOutbound(c, capFlush)
	t.invoke(func() {
		if err := t.handler.(FlushHandler).Flush(t); err != nil {
			t.FireExceptionCaught(err)
		}
	})
	return nil
}

// WriteAndFlush is a convenience combining Write and Flush, mirroring
// the common two-step outbound call pipelines expose to callers.
func (c *Context) WriteAndFlush(msg interface{}, p *Promise) error {
	if err := c.Write(msg, p); err != nil {
		return err
	}
	return c.Flush()
}
