// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

// Unsafe is the transport collaborator Head's outbound handling
// terminates into. Its internals — socket I/O, a selector loop,
// bootstrap wiring — are out of scope for this package; only the
// contract is specified.
type Unsafe interface {
	Bind(localAddr interface{}, p *Promise)
	Connect(remoteAddr, localAddr interface{}, p *Promise)
	Disconnect(p *Promise)
	Close(p *Promise)
	Deregister(p *Promise)
	BeginRead()
	Write(msg interface{}, p *Promise)
	Flush()
}

// noopUnsafe is the default Unsafe: every promise completes
// successfully and every other call is a no-op. A pipeline used
// without a real transport still exercises its full event-propagation
// contract against this stand-in.
type noopUnsafe struct{}

func (noopUnsafe) Bind(_ interface{}, p *Promise)       { p.SetSuccess() }
func (noopUnsafe) Connect(_, _ interface{}, p *Promise) { p.SetSuccess() }
func (noopUnsafe) Disconnect(p *Promise)                { p.SetSuccess() }
func (noopUnsafe) Close(p *Promise)                     { p.SetSuccess() }
func (noopUnsafe) Deregister(p *Promise)                { p.SetSuccess() }
func (noopUnsafe) BeginRead()                           {}
func (noopUnsafe) Write(_ interface{}, p *Promise)      { p.SetSuccess() }
func (noopUnsafe) Flush()                               {}

// headHandler terminates outbound propagation by delegating to an
// Unsafe transport.
type headHandler struct{ unsafe Unsafe }

func (headHandler) isPipelineHandler() {}

func (h headHandler) Bind(_ *Context, localAddr interface{}, p *Promise) error {
	h.unsafe.Bind(localAddr, p)
	return nil
}

func (h headHandler) Connect(_ *Context, remoteAddr, localAddr interface{}, p *Promise) error {
	h.unsafe.Connect(remoteAddr, localAddr, p)
	return nil
}

func (h headHandler) Disconnect(_ *Context, p *Promise) error {
	h.unsafe.Disconnect(p)
	return nil
}

func (h headHandler) Close(_ *Context, p *Promise) error {
	h.unsafe.Close(p)
	return nil
}

// Deregister is submitted to the event loop by the normal outbound
// dispatch path already (invoke() enqueues unless the caller is
// already on the loop), satisfying the "never run inline while the
// loop is pausing for new tasks" requirement without special-casing it
// here.
func (h headHandler) Deregister(_ *Context, p *Promise) error {
	h.unsafe.Deregister(p)
	return nil
}

func (h headHandler) Read(*Context) error {
	h.unsafe.BeginRead()
	return nil
}

func (h headHandler) Write(_ *Context, msg interface{}, p *Promise) error {
	h.unsafe.Write(msg, p)
	return nil
}

func (h headHandler) Flush(*Context) error {
	h.unsafe.Flush()
	return nil
}
