// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

// ChannelInboundHandlerAdapter is an embeddable base for handlers that
// only care about a subset of inbound callbacks: embed it and override
// just the methods you need.
//
// Embedding costs the skip-flag optimization on every method the
// adapter forwards, since the embedded method satisfies the narrow
// interface whether or not the caller overrode it — the same tradeoff
// gRPC's generated UnimplementedXServer embeds accept for forward
// compatibility. Implement the narrow pipeline.*Handler interfaces
// directly, without embedding, when the skip on an unused callback
// matters.
type ChannelInboundHandlerAdapter struct{}

func (ChannelInboundHandlerAdapter) isPipelineHandler() {}

func (ChannelInboundHandlerAdapter) HandlerAdded(*Context) error   { return nil }
func (ChannelInboundHandlerAdapter) HandlerRemoved(*Context) error { return nil }

func (ChannelInboundHandlerAdapter) ExceptionCaught(ctx *Context, cause error) error {
	ctx.FireExceptionCaught(cause)
	return nil
}

func (ChannelInboundHandlerAdapter) ChannelRegistered(ctx *Context) error {
	ctx.FireChannelRegistered()
	return nil
}

func (ChannelInboundHandlerAdapter) ChannelUnregistered(ctx *Context) error {
	ctx.FireChannelUnregistered()
	return nil
}

func (ChannelInboundHandlerAdapter) ChannelActive(ctx *Context) error {
	ctx.FireChannelActive()
	return nil
}

func (ChannelInboundHandlerAdapter) ChannelInactive(ctx *Context) error {
	ctx.FireChannelInactive()
	return nil
}

func (ChannelInboundHandlerAdapter) ChannelRead(ctx *Context, msg interface{}) error {
	ctx.FireChannelRead(msg)
	return nil
}

func (ChannelInboundHandlerAdapter) ChannelReadComplete(ctx *Context) error {
	ctx.FireChannelReadComplete()
	return nil
}

func (ChannelInboundHandlerAdapter) UserEventTriggered(ctx *Context, evt interface{}) error {
	ctx.FireUserEventTriggered(evt)
	return nil
}

func (ChannelInboundHandlerAdapter) ChannelWritabilityChanged(ctx *Context) error {
	ctx.FireChannelWritabilityChanged()
	return nil
}

// ChannelOutboundHandlerAdapter is an embeddable base for handlers that
// only care about a subset of outbound callbacks; unoverridden methods
// forward toward Head unchanged, same tradeoff as the inbound adapter.
type ChannelOutboundHandlerAdapter struct{}

func (ChannelOutboundHandlerAdapter) isPipelineHandler() {}

func (ChannelOutboundHandlerAdapter) HandlerAdded(*Context) error   { return nil }
func (ChannelOutboundHandlerAdapter) HandlerRemoved(*Context) error { return nil }

func (ChannelOutboundHandlerAdapter) ExceptionCaught(ctx *Context, cause error) error {
	ctx.FireExceptionCaught(cause)
	return nil
}

func (ChannelOutboundHandlerAdapter) Bind(ctx *Context, localAddr interface{}, p *Promise) error {
	return ctx.Bind(localAddr, p)
}

func (ChannelOutboundHandlerAdapter) Connect(ctx *Context, remoteAddr, localAddr interface{}, p *Promise) error {
	return ctx.Connect(remoteAddr, localAddr, p)
}

func (ChannelOutboundHandlerAdapter) Disconnect(ctx *Context, p *Promise) error {
	return ctx.Disconnect(p)
}

func (ChannelOutboundHandlerAdapter) Close(ctx *Context, p *Promise) error {
	return ctx.Close(p)
}

func (ChannelOutboundHandlerAdapter) Deregister(ctx *Context, p *Promise) error {
	return ctx.Deregister(p)
}

func (ChannelOutboundHandlerAdapter) Read(ctx *Context) error {
	return ctx.Read()
}

func (ChannelOutboundHandlerAdapter) Write(ctx *Context, msg interface{}, p *Promise) error {
	return ctx.Write(msg, p)
}

func (ChannelOutboundHandlerAdapter) Flush(ctx *Context) error {
	return ctx.Flush()
}
