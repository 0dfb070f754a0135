// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"sync/atomic"
	"time"
)

// IdleState identifies which direction went quiet.
type IdleState int

const (
	ReaderIdle IdleState = iota
	WriterIdle
	AllIdle
)

// IdleStateEvent is fired via UserEventTriggered when an IdleStateHandler
// detects that its configured interval elapsed without activity.
type IdleStateEvent struct {
	State IdleState
}

// IdleStateHandler observes ChannelRead traffic passing through its
// context, and writes reported to it through NoteWrite, and fires
// IdleStateEvent when reader, writer, or both
// have been silent for longer than the configured interval. It
// schedules its own recurring check on the context's executor, the way
// a timer-driven handler is expected to use the executor collaborator
// rather than spinning its own goroutine loop.
type IdleStateHandler struct {
	ChannelInboundHandlerAdapter

	readerIdleTime time.Duration
	writerIdleTime time.Duration

	lastRead  atomic.Int64 // unix nanos
	lastWrite atomic.Int64

	timer atomic.Pointer[time.Timer]
	ctx   atomic.Pointer[Context]
}

// NewIdleStateHandler returns a handler that fires ReaderIdle after
// readerIdleTime with no inbound traffic, WriterIdle after
// writerIdleTime with no outbound traffic, or AllIdle if both elapse
// together. A zero duration disables that direction's check.
func NewIdleStateHandler(readerIdleTime, writerIdleTime time.Duration) *IdleStateHandler {
	return &IdleStateHandler{readerIdleTime: readerIdleTime, writerIdleTime: writerIdleTime}
}

func (h *IdleStateHandler) HandlerAdded(ctx *Context) error {
	h.ctx.Store(ctx)
	now := nowNano()
	h.lastRead.Store(now)
	h.lastWrite.Store(now)
	h.schedule()
	return nil
}

func (h *IdleStateHandler) HandlerRemoved(*Context) error {
	if t := h.timer.Load(); t != nil {
		t.Stop()
	}
	return nil
}

func (h *IdleStateHandler) ChannelRead(ctx *Context, msg interface{}) error {
	h.lastRead.Store(nowNano())
	ctx.FireChannelRead(msg)
	return nil
}

// NoteWrite should be called by a caller-owned write path (IdleStateHandler
// has no outbound Write override by default, since write idleness is
// normally observed at the context a caller writes through, not by the
// handler itself) to reset the writer-idle clock.
func (h *IdleStateHandler) NoteWrite() {
	h.lastWrite.Store(nowNano())
}

func (h *IdleStateHandler) schedule() {
	interval := h.shortestInterval()
	if interval <= 0 {
		return
	}
	t := time.AfterFunc(interval, h.check)
	h.timer.Store(t)
}

func (h *IdleStateHandler) shortestInterval() time.Duration {
	switch {
	case h.readerIdleTime > 0 && h.writerIdleTime > 0:
		if h.readerIdleTime < h.writerIdleTime {
			return h.readerIdleTime
		}
		return h.writerIdleTime
	case h.readerIdleTime > 0:
		return h.readerIdleTime
	default:
		return h.writerIdleTime
	}
}

func (h *IdleStateHandler) check() {
	ctx := h.ctx.Load()
	if ctx == nil || ctx.isRemoved() {
		return
	}
	ctx.Executor().Execute(func() {
		now := nowNano()
		readerIdle := h.readerIdleTime > 0 && time.Duration(now-h.lastRead.Load()) >= h.readerIdleTime
		writerIdle := h.writerIdleTime > 0 && time.Duration(now-h.lastWrite.Load()) >= h.writerIdleTime
		switch {
		case readerIdle && writerIdle:
			ctx.FireUserEventTriggered(IdleStateEvent{State: AllIdle})
		case readerIdle:
			ctx.FireUserEventTriggered(IdleStateEvent{State: ReaderIdle})
		case writerIdle:
			ctx.FireUserEventTriggered(IdleStateEvent{State: WriterIdle})
		}
		h.schedule()
	})
}

func nowNano() int64 { return time.Now().UnixNano() }
