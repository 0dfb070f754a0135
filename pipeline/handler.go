// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

// Handler is the capability a Context wraps. Concrete handlers
// implement whichever of the narrow interfaces below they need; a
// Context computes its skip flags once, at add time, by type-asserting
// the handler against each one. There is no reflection and no witness
// table: the interface set below is the witness table, checked by the
// compiler and the runtime type assertion alike.
type Handler interface {
	// marker method, so arbitrary values cannot satisfy Handler by accident
	isPipelineHandler()
}

// Sharable, if implemented and reporting true, waives the one-position
// rule: the same handler instance may be added at more than one
// context or pipeline.
type Sharable interface {
	Sharable() bool
}

// Lifecycle callbacks, common to every handler class.

type HandlerAddedHandler interface {
	HandlerAdded(ctx *Context) error
}

type HandlerRemovedHandler interface {
	HandlerRemoved(ctx *Context) error
}

type ExceptionCaughtHandler interface {
	ExceptionCaught(ctx *Context, cause error) error
}

// Inbound callbacks (head -> tail propagation).

type ChannelRegisteredHandler interface {
	ChannelRegistered(ctx *Context) error
}

type ChannelUnregisteredHandler interface {
	ChannelUnregistered(ctx *Context) error
}

type ChannelActiveHandler interface {
	ChannelActive(ctx *Context) error
}

type ChannelInactiveHandler interface {
	ChannelInactive(ctx *Context) error
}

type ChannelReadHandler interface {
	ChannelRead(ctx *Context, msg interface{}) error
}

type ChannelReadCompleteHandler interface {
	ChannelReadComplete(ctx *Context) error
}

type UserEventTriggeredHandler interface {
	UserEventTriggered(ctx *Context, evt interface{}) error
}

type ChannelWritabilityChangedHandler interface {
	ChannelWritabilityChanged(ctx *Context) error
}

// Outbound callbacks (tail -> head propagation).

type BindHandler interface {
	Bind(ctx *Context, localAddr interface{}, p *Promise) error
}

type ConnectHandler interface {
	Connect(ctx *Context, remoteAddr, localAddr interface{}, p *Promise) error
}

type DisconnectHandler interface {
	Disconnect(ctx *Context, p *Promise) error
}

type CloseHandler interface {
	Close(ctx *Context, p *Promise) error
}

type DeregisterHandler interface {
	Deregister(ctx *Context, p *Promise) error
}

type ReadHandler interface {
	Read(ctx *Context) error
}

type WriteHandler interface {
	Write(ctx *Context, msg interface{}, p *Promise) error
}

type FlushHandler interface {
	Flush(ctx *Context) error
}
