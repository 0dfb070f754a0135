// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pipeline implements the channel handler pipeline core: an
// intrusive doubly-linked list of stages between two sentinel
// contexts, Head and Tail, through which inbound and outbound events
// travel with per-stage executor affinity and thread-safe dynamic
// reconfiguration.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"code.hybscloud.com/netcore/internal/diag"
	"code.hybscloud.com/netcore/internal/executor"
)

// Pipeline owns Head, Tail, and the ordered list of user contexts
// between them, plus the structural mutex and name index guarding
// dynamic reconfiguration.
type Pipeline struct {
	mu      sync.Mutex
	names   map[string]*Context
	typeSeq map[string]int

	head *Context
	tail *Context

	diag      *diag.Diag
	loopExec  *executor.Executor
	execGroup *executor.Group
	unsafe    Unsafe
}

// New builds a Pipeline with Head and Tail wired up and ready for
// AddFirst/AddLast. The pipeline starts its own event-loop executor
// unless WithEventLoopExecutor supplies one.
func New(opts ...Option) *Pipeline {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.unsafe == nil {
		o.unsafe = noopUnsafe{}
	}
	if o.loopExecutor == nil {
		o.loopExecutor = executor.New()
	}

	p := &Pipeline{
		names:     make(map[string]*Context),
		typeSeq:   make(map[string]int),
		diag:      diag.New(o.logger),
		loopExec:  o.loopExecutor,
		execGroup: o.execGroup,
		unsafe:    o.unsafe,
	}
	p.head = newContext(p, "head", headHandler{unsafe: o.unsafe}, p.loopExec)
	p.tail = newContext(p, "tail", tailHandler{d: p.diag}, p.loopExec)
	p.head.next.Store(p.tail)
	p.tail.prev.Store(p.head)
	p.head.state.Store(int32(stateLive))
	p.tail.state.Store(int32(stateLive))
	return p
}

func (p *Pipeline) resolveExecutor(execs []*executor.Executor) *executor.Executor {
	for _, e := range execs {
		if e != nil {
			return e
		}
	}
	if p.execGroup != nil {
		return p.execGroup.Next()
	}
	return p.loopExec
}

func (p *Pipeline) uniqueName(h Handler) string {
	base := strings.TrimLeft(fmt.Sprintf("%T", h), "*")
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[i+1:]
	}
	n := p.typeSeq[base]
	for {
		candidate := fmt.Sprintf("%s#%d", base, n)
		n++
		if _, exists := p.names[candidate]; !exists {
			p.typeSeq[base] = n
			return candidate
		}
	}
}

func sameHandler(a, b Handler) (eq bool) {
	defer func() { recover() }() // non-comparable handler types: never sharable-conflicting
	return a == b
}

func (p *Pipeline) checkSharable(h Handler) error {
	if s, ok := h.(Sharable); ok && s.Sharable() {
		return nil
	}
	for _, c := range p.names {
		if sameHandler(c.handler, h) {
			return ErrNotSharable
		}
	}
	return nil
}

type addPosition int

const (
	posFirst addPosition = iota
	posLast
	posBefore
	posAfter
)

func (p *Pipeline) add(position addPosition, baseName, name string, h Handler, execs []*executor.Executor) (*Context, error) {
	exec := p.resolveExecutor(execs)

	p.mu.Lock()
	if err := p.checkSharable(h); err != nil {
		p.mu.Unlock()
		return nil, err
	}
	if name == "" {
		name = p.uniqueName(h)
	} else if _, exists := p.names[name]; exists {
		p.mu.Unlock()
		return nil, ErrDuplicateName
	}

	var before, after *Context
	switch position {
	case posFirst:
		before, after = p.head, p.head.next.Load()
	case posLast:
		before, after = p.tail.prev.Load(), p.tail
	case posBefore:
		b, ok := p.names[baseName]
		if !ok {
			p.mu.Unlock()
			return nil, ErrNotFound
		}
		before, after = b.prev.Load(), b
	case posAfter:
		a, ok := p.names[baseName]
		if !ok {
			p.mu.Unlock()
			return nil, ErrNotFound
		}
		before, after = a, a.next.Load()
	}

	ctx := newContext(p, name, h, exec)
	// Publish ctx's own links before splicing it into the neighbors so a
	// concurrent walker that observes the new neighbor pointer always
	// finds a fully formed context, never a half-linked one.
	ctx.prev.Store(before)
	ctx.next.Store(after)
	after.prev.Store(ctx)
	before.next.Store(ctx)
	p.names[name] = ctx
	p.mu.Unlock()

	if err := runOnExecutorSync(ctx.exec, func() error {
		if hh, ok := ctx.handler.(HandlerAddedHandler); ok {
			return hh.HandlerAdded(ctx)
		}
		return nil
	}); err != nil {
		rmErr := p.removeContext(ctx)
		if rmErr != nil {
			p.diag.PipelineError(ctx.name, rmErr)
		}
		pe := &PipelineError{ContextName: name, Phase: "handler_added", Cause: err}
		ctx.FireExceptionCaught(pe)
		return nil, pe
	}
	ctx.state.Store(int32(stateLive))
	return ctx, nil
}

// AddFirst inserts h immediately after Head. An empty name is replaced
// with a generated SimpleClassName#N. An explicit executor overrides
// the pipeline's default executor/group assignment.
func (p *Pipeline) AddFirst(name string, h Handler, execs ...*executor.Executor) (*Context, error) {
	return p.add(posFirst, "", name, h, execs)
}

// AddLast inserts h immediately before Tail.
func (p *Pipeline) AddLast(name string, h Handler, execs ...*executor.Executor) (*Context, error) {
	return p.add(posLast, "", name, h, execs)
}

// AddBefore inserts h immediately before the context named baseName.
func (p *Pipeline) AddBefore(baseName, name string, h Handler, execs ...*executor.Executor) (*Context, error) {
	return p.add(posBefore, baseName, name, h, execs)
}

// AddAfter inserts h immediately after the context named baseName.
func (p *Pipeline) AddAfter(baseName, name string, h Handler, execs ...*executor.Executor) (*Context, error) {
	return p.add(posAfter, baseName, name, h, execs)
}

// removeContext unlinks ctx under the pipeline mutex, then runs
// handler_removed on ctx's executor outside it.
func (p *Pipeline) removeContext(ctx *Context) error {
	p.mu.Lock()
	if ctx.isRemoved() {
		p.mu.Unlock()
		return nil
	}
	delete(p.names, ctx.name)
	before, after := ctx.prev.Load(), ctx.next.Load()
	before.next.Store(after)
	after.prev.Store(before)
	p.mu.Unlock()

	return runOnExecutorSync(ctx.exec, func() error {
		ctx.state.Store(int32(stateRemoved))
		if hr, ok := ctx.handler.(HandlerRemovedHandler); ok {
			return hr.HandlerRemoved(ctx)
		}
		return nil
	})
}

// Remove unlinks the context named name and runs its handler_removed
// callback. Head and Tail cannot be removed.
func (p *Pipeline) Remove(name string) error {
	p.mu.Lock()
	ctx, ok := p.names[name]
	if !ok {
		p.mu.Unlock()
		return ErrNotFound
	}
	if ctx == p.head || ctx == p.tail {
		p.mu.Unlock()
		return ErrSentinel
	}
	p.mu.Unlock()
	return p.removeFound(ctx, name)
}

// RemoveHandler unlinks the context wrapping the given handler instance
// (identity, not type, compared the same way checkSharable compares
// instances) and runs its handler_removed callback.
func (p *Pipeline) RemoveHandler(h Handler) error {
	ctx, err := p.findByHandler(h)
	if err != nil {
		return err
	}
	return p.removeFound(ctx, ctx.name)
}

// RemoveType unlinks the first context whose handler has the same
// concrete type as sample and runs its handler_removed callback. sample
// is typically a zero value of the target handler type, used only to
// carry a type token the way Get/Context's type-keyed lookups do.
func (p *Pipeline) RemoveType(sample Handler) error {
	ctx, err := p.findByType(sample)
	if err != nil {
		return err
	}
	return p.removeFound(ctx, ctx.name)
}

func (p *Pipeline) removeFound(ctx *Context, name string) error {
	ctx.state.Store(int32(statePendingRemove))
	if err := p.removeContext(ctx); err != nil {
		ctx.FireExceptionCaught(&PipelineError{ContextName: name, Phase: "handler_removed", Cause: err})
		return err
	}
	return nil
}

// findByHandler returns the context wrapping the same handler instance
// as h, walking pipeline order under the structural mutex.
func (p *Pipeline) findByHandler(h Handler) (*Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for c := p.head.next.Load(); c != p.tail; c = c.next.Load() {
		if sameHandler(c.handler, h) {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

// findByType returns the first context whose handler has the same
// concrete type as sample, walking pipeline order under the structural
// mutex. Type identity is compared with fmt.Sprintf("%T", ...), the same
// technique uniqueName already uses to derive a type-keyed name; no
// reflect package import is needed.
func (p *Pipeline) findByType(sample Handler) (*Context, error) {
	want := fmt.Sprintf("%T", sample)
	p.mu.Lock()
	defer p.mu.Unlock()
	for c := p.head.next.Load(); c != p.tail; c = c.next.Load() {
		if fmt.Sprintf("%T", c.handler) == want {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

// Replace splices newHandler in at oldName's position, unlinking the
// displaced context in the same list update, runs the new handler's
// handler_added, and only then runs handler_removed on the displaced
// context — atomic in list order, per the replace contract.
func (p *Pipeline) Replace(oldName, newName string, newHandler Handler) (*Context, error) {
	p.mu.Lock()
	old, ok := p.names[oldName]
	if !ok {
		p.mu.Unlock()
		return nil, ErrNotFound
	}
	if old == p.head || old == p.tail {
		p.mu.Unlock()
		return nil, ErrSentinel
	}
	if err := p.checkSharable(newHandler); err != nil {
		p.mu.Unlock()
		return nil, err
	}
	if newName == "" {
		newName = p.uniqueName(newHandler)
	} else if newName != oldName {
		if _, exists := p.names[newName]; exists {
			p.mu.Unlock()
			return nil, ErrDuplicateName
		}
	}

	before, after := old.prev.Load(), old.next.Load()
	newCtx := newContext(p, newName, newHandler, old.exec)
	newCtx.prev.Store(before)
	newCtx.next.Store(after)
	after.prev.Store(newCtx)
	before.next.Store(newCtx)
	old.state.Store(int32(statePendingRemove))
	delete(p.names, oldName)
	p.names[newName] = newCtx
	p.mu.Unlock()

	if err := runOnExecutorSync(newCtx.exec, func() error {
		if hh, ok := newCtx.handler.(HandlerAddedHandler); ok {
			return hh.HandlerAdded(newCtx)
		}
		return nil
	}); err != nil {
		newCtx.state.Store(int32(stateRemoved))
		pe := &PipelineError{ContextName: newName, Phase: "handler_added", Cause: err}
		newCtx.FireExceptionCaught(pe)
		return nil, pe
	}
	newCtx.state.Store(int32(stateLive))

	if err := runOnExecutorSync(old.exec, func() error {
		old.state.Store(int32(stateRemoved))
		if hr, ok := old.handler.(HandlerRemovedHandler); ok {
			return hr.HandlerRemoved(old)
		}
		return nil
	}); err != nil {
		old.FireExceptionCaught(&PipelineError{ContextName: oldName, Phase: "handler_removed", Cause: err})
		return newCtx, err
	}
	return newCtx, nil
}

// First returns the first user context, or nil if the pipeline holds
// only Head and Tail.
func (p *Pipeline) First() *Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.head.next.Load()
	if c == p.tail {
		return nil
	}
	return c
}

// Last returns the last user context, or nil if the pipeline holds
// only Head and Tail.
func (p *Pipeline) Last() *Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.tail.prev.Load()
	if c == p.head {
		return nil
	}
	return c
}

// Get returns the handler named name, or nil.
func (p *Pipeline) Get(name string) Handler {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.names[name]; ok {
		return c.handler
	}
	return nil
}

// GetByType returns the handler of the first context whose handler has
// the same concrete type as sample, or nil. sample is typically a zero
// value of the target handler type, carrying only a type token.
func (p *Pipeline) GetByType(sample Handler) Handler {
	c, err := p.findByType(sample)
	if err != nil {
		return nil
	}
	return c.handler
}

// Context returns the context named name, or nil.
func (p *Pipeline) Context(name string) *Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.names[name]
}

// ContextOfHandler returns the context wrapping the same handler
// instance as h, or nil.
func (p *Pipeline) ContextOfHandler(h Handler) *Context {
	c, err := p.findByHandler(h)
	if err != nil {
		return nil
	}
	return c
}

// ContextOfType returns the context of the first handler with the same
// concrete type as sample, or nil. sample is typically a zero value of
// the target handler type, carrying only a type token.
func (p *Pipeline) ContextOfType(sample Handler) *Context {
	c, err := p.findByType(sample)
	if err != nil {
		return nil
	}
	return c
}

// Names returns user context names in pipeline order, Head and Tail
// excluded.
func (p *Pipeline) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.names))
	for c := p.head.next.Load(); c != p.tail; c = c.next.Load() {
		names = append(names, c.name)
	}
	return names
}

// ToMap returns a snapshot of the name -> handler index.
func (p *Pipeline) ToMap() map[string]Handler {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := make(map[string]Handler, len(p.names))
	for name, c := range p.names {
		m[name] = c.handler
	}
	return m
}

// Teardown removes every user context, firing handler_removed on each.
// It walks forward to Tail first, marking every context
// pending-removal, then walks backward unlinking for real, guaranteeing
// no handler receives an event after its own handler_removed.
func (p *Pipeline) Teardown() error {
	p.mu.Lock()
	var ordered []*Context
	for c := p.head.next.Load(); c != p.tail; c = c.next.Load() {
		c.state.Store(int32(statePendingRemove))
		ordered = append(ordered, c)
	}
	p.mu.Unlock()

	var errs []error
	for i := len(ordered) - 1; i >= 0; i-- {
		if err := p.removeContext(ordered[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// --- inbound entry points, delivered starting just after Head ---

func (p *Pipeline) FireChannelRegistered()   { p.head.FireChannelRegistered() }
func (p *Pipeline) FireChannelUnregistered() { p.head.FireChannelUnregistered() }
func (p *Pipeline) FireChannelActive()       { p.head.FireChannelActive() }
func (p *Pipeline) FireChannelInactive()     { p.head.FireChannelInactive() }
func (p *Pipeline) FireChannelRead(msg interface{}) {
	p.head.FireChannelRead(msg)
}
func (p *Pipeline) FireChannelReadComplete() { p.head.FireChannelReadComplete() }
func (p *Pipeline) FireUserEventTriggered(evt interface{}) {
	p.head.FireUserEventTriggered(evt)
}
func (p *Pipeline) FireChannelWritabilityChanged() { p.head.FireChannelWritabilityChanged() }
func (p *Pipeline) FireExceptionCaught(cause error) { p.head.FireExceptionCaught(cause) }

// --- outbound entry points, originate at Tail ---

func (p *Pipeline) Bind(localAddr interface{}, prom *Promise) error {
	return p.tail.Bind(localAddr, prom)
}
func (p *Pipeline) Connect(remoteAddr, localAddr interface{}, prom *Promise) error {
	return p.tail.Connect(remoteAddr, localAddr, prom)
}
func (p *Pipeline) Disconnect(prom *Promise) error { return p.tail.Disconnect(prom) }
func (p *Pipeline) Close(prom *Promise) error      { return p.tail.Close(prom) }
func (p *Pipeline) Deregister(prom *Promise) error { return p.tail.Deregister(prom) }
func (p *Pipeline) Read() error                    { return p.tail.Read() }
func (p *Pipeline) Write(msg interface{}, prom *Promise) error {
	return p.tail.Write(msg, prom)
}
func (p *Pipeline) Flush() error { return p.tail.Flush() }
func (p *Pipeline) WriteAndFlush(msg interface{}, prom *Promise) error {
	return p.tail.WriteAndFlush(msg, prom)
}

// runOnExecutorSync runs fn inline if the calling goroutine is already
// on exec's loop, otherwise submits it and waits outside any lock the
// caller might hold, to avoid deadlocking a concurrent task on exec.
func runOnExecutorSync(exec *executor.Executor, fn func() error) error {
	if exec.InEventLoop() {
		return fn()
	}
	var err error
	f := exec.Submit(func() { err = fn() })
	if werr := f.Wait(); werr != nil {
		// The task itself panicked, as opposed to fn returning an
		// ordinary error; surface that instead.
		return werr
	}
	return err
}
