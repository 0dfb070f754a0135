package pipeline_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/netcore/pipeline"
)

// traceHandler records which callback ran on it, in the order the
// pipeline delivered them, into a shared, mutex-guarded trace slice.
type traceHandler struct {
	pipeline.ChannelInboundHandlerAdapter
	name  string
	trace *[]string
	mu    *sync.Mutex
	// forward controls whether ChannelRead continues propagation.
	forward bool
}

func (h *traceHandler) ChannelRead(ctx *pipeline.Context, msg interface{}) error {
	h.mu.Lock()
	*h.trace = append(*h.trace, h.name+".channel_read")
	h.mu.Unlock()
	if h.forward {
		ctx.FireChannelRead(msg)
	}
	return nil
}

func (h *traceHandler) HandlerAdded(*pipeline.Context) error {
	h.mu.Lock()
	*h.trace = append(*h.trace, h.name+".handler_added")
	h.mu.Unlock()
	return nil
}

func (h *traceHandler) HandlerRemoved(*pipeline.Context) error {
	h.mu.Lock()
	*h.trace = append(*h.trace, h.name+".handler_removed")
	h.mu.Unlock()
	return nil
}

func waitForLen(t *testing.T, trace *[]string, mu *sync.Mutex, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		got := len(*trace)
		mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for trace length %d", n)
}

// TestPipelineOrderingTrace is scenario S5: A, B, C forward in order,
// terminating at Tail which releases the (non-releasable) message.
func TestPipelineOrderingTrace(t *testing.T) {
	var trace []string
	var mu sync.Mutex

	p := pipeline.New()
	newHandler := func(name string) *traceHandler {
		return &traceHandler{name: name, trace: &trace, mu: &mu, forward: true}
	}
	if _, err := p.AddLast("A", newHandler("A")); err != nil {
		t.Fatalf("AddLast A: %v", err)
	}
	if _, err := p.AddLast("B", newHandler("B")); err != nil {
		t.Fatalf("AddLast B: %v", err)
	}
	if _, err := p.AddLast("C", newHandler("C")); err != nil {
		t.Fatalf("AddLast C: %v", err)
	}

	waitForLen(t, &trace, &mu, 3) // three handler_added callbacks

	p.FireChannelRead("x")
	waitForLen(t, &trace, &mu, 6)

	mu.Lock()
	defer mu.Unlock()
	want := []string{
		"A.handler_added", "B.handler_added", "C.handler_added",
		"A.channel_read", "B.channel_read", "C.channel_read",
	}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i, v := range want {
		if trace[i] != v {
			t.Fatalf("trace[%d] = %q, want %q (full trace %v)", i, trace[i], v, trace)
		}
	}
}

// TestReplacePreservesOrderAndFiresLifecycleInOrder is scenario S6.
func TestReplacePreservesOrderAndFiresLifecycleInOrder(t *testing.T) {
	var trace []string
	var mu sync.Mutex

	p := pipeline.New()
	newHandler := func(name string) *traceHandler {
		return &traceHandler{name: name, trace: &trace, mu: &mu, forward: true}
	}
	a, b, c := newHandler("A"), newHandler("B"), newHandler("C")
	if _, err := p.AddLast("A", a); err != nil {
		t.Fatalf("AddLast A: %v", err)
	}
	if _, err := p.AddLast("B", b); err != nil {
		t.Fatalf("AddLast B: %v", err)
	}
	if _, err := p.AddLast("C", c); err != nil {
		t.Fatalf("AddLast C: %v", err)
	}
	waitForLen(t, &trace, &mu, 3)

	bPrime := newHandler("B'")
	if _, err := p.Replace("B", "B'", bPrime); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	waitForLen(t, &trace, &mu, 5) // B'.handler_added, B.handler_removed

	mu.Lock()
	addedIdx, removedIdx := -1, -1
	for i, v := range trace {
		if v == "B'.handler_added" {
			addedIdx = i
		}
		if v == "B.handler_removed" {
			removedIdx = i
		}
	}
	mu.Unlock()
	if addedIdx < 0 || removedIdx < 0 || removedIdx <= addedIdx {
		t.Fatalf("expected B'.handler_added before B.handler_removed, trace=%v", trace)
	}

	if got := p.Names(); got[0] != "A" || got[1] != "B'" || got[2] != "C" {
		t.Fatalf("Names() = %v, want [A B' C]", got)
	}

	p.FireChannelRead("x")
	waitForLen(t, &trace, &mu, 8)
	mu.Lock()
	defer mu.Unlock()
	tail3 := trace[len(trace)-3:]
	want := []string{"A.channel_read", "B'.channel_read", "C.channel_read"}
	for i := range want {
		if tail3[i] != want[i] {
			t.Fatalf("post-replace read trace = %v, want %v", tail3, want)
		}
	}
}

// TestNameToMapConsistentWithListWalk checks that ToMap never disagrees
// with a forward walk over Names, including right after a removal.
func TestNameToMapConsistentWithListWalk(t *testing.T) {
	p := pipeline.New()
	for _, n := range []string{"A", "B", "C"} {
		if _, err := p.AddLast(n, &traceHandler{name: n, trace: &[]string{}, mu: &sync.Mutex{}}); err != nil {
			t.Fatalf("AddLast %s: %v", n, err)
		}
	}
	if err := p.Remove("B"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	names := p.Names()
	m := p.ToMap()
	if len(names) != len(m) {
		t.Fatalf("Names()=%v (%d) inconsistent with ToMap() (%d entries)", names, len(names), len(m))
	}
	for _, n := range names {
		if _, ok := m[n]; !ok {
			t.Fatalf("name %q present in Names() but not ToMap()", n)
		}
	}
	if _, ok := m["B"]; ok {
		t.Fatal("removed context B still present in ToMap()")
	}
}

// TestRemovedContextNeverReceivesEvents checks that a context removed
// before an event is fired is skipped rather than invoked.
func TestRemovedContextNeverReceivesEvents(t *testing.T) {
	var trace []string
	var mu sync.Mutex
	p := pipeline.New()
	a := &traceHandler{name: "A", trace: &trace, mu: &mu, forward: true}
	b := &traceHandler{name: "B", trace: &trace, mu: &mu, forward: true}
	if _, err := p.AddLast("A", a); err != nil {
		t.Fatalf("AddLast A: %v", err)
	}
	if _, err := p.AddLast("B", b); err != nil {
		t.Fatalf("AddLast B: %v", err)
	}
	waitForLen(t, &trace, &mu, 2)

	if err := p.Remove("B"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	waitForLen(t, &trace, &mu, 3) // B.handler_removed

	p.FireChannelRead("x")
	waitForLen(t, &trace, &mu, 4) // A.channel_read only

	mu.Lock()
	defer mu.Unlock()
	for _, v := range trace {
		if v == "B.channel_read" {
			t.Fatalf("removed context B received channel_read; trace=%v", trace)
		}
	}
}

// TestAddFirstAddBeforeAddAfter exercises the remaining structural
// positions.
func TestAddFirstAddBeforeAddAfter(t *testing.T) {
	p := pipeline.New()
	var trace []string
	var mu sync.Mutex
	newHandler := func(name string) *traceHandler {
		return &traceHandler{name: name, trace: &trace, mu: &mu}
	}
	if _, err := p.AddLast("B", newHandler("B")); err != nil {
		t.Fatalf("AddLast B: %v", err)
	}
	if _, err := p.AddFirst("A", newHandler("A")); err != nil {
		t.Fatalf("AddFirst A: %v", err)
	}
	if _, err := p.AddAfter("B", "D", newHandler("D")); err != nil {
		t.Fatalf("AddAfter D: %v", err)
	}
	if _, err := p.AddBefore("B", "C", newHandler("C")); err != nil {
		t.Fatalf("AddBefore C: %v", err)
	}
	got := p.Names()
	want := []string{"A", "C", "B", "D"}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
}

func TestDuplicateNameRejected(t *testing.T) {
	p := pipeline.New()
	if _, err := p.AddLast("A", &traceHandler{name: "A", trace: &[]string{}, mu: &sync.Mutex{}}); err != nil {
		t.Fatalf("AddLast: %v", err)
	}
	_, err := p.AddLast("A", &traceHandler{name: "A2", trace: &[]string{}, mu: &sync.Mutex{}})
	if !errors.Is(err, pipeline.ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
}

func TestRemoveMissingNameReturnsErrNotFound(t *testing.T) {
	p := pipeline.New()
	if err := p.Remove("nope"); !errors.Is(err, pipeline.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGeneratedNamesAreUniqueAcrossCollisions(t *testing.T) {
	p := pipeline.New()
	var trace []string
	var mu sync.Mutex
	h1 := &traceHandler{name: "dup", trace: &trace, mu: &mu}
	h2 := &traceHandler{name: "dup", trace: &trace, mu: &mu}
	h3 := &traceHandler{name: "dup", trace: &trace, mu: &mu}
	c1, err := p.AddLast("", h1)
	if err != nil {
		t.Fatalf("AddLast: %v", err)
	}
	c2, err := p.AddLast("", h2)
	if err != nil {
		t.Fatalf("AddLast: %v", err)
	}
	c3, err := p.AddLast("", h3)
	if err != nil {
		t.Fatalf("AddLast: %v", err)
	}
	if c1.Name() == c2.Name() || c2.Name() == c3.Name() || c1.Name() == c3.Name() {
		t.Fatalf("generated names collided: %q %q %q", c1.Name(), c2.Name(), c3.Name())
	}
}

// releasableMessage asserts Tail's unhandled-read path releases
// whatever it receives.
type releasableMessage struct {
	released bool
}

func (m *releasableMessage) Release() error {
	m.released = true
	return nil
}

func TestUnhandledReadAtTailReleasesMessage(t *testing.T) {
	p := pipeline.New()
	msg := &releasableMessage{}
	p.FireChannelRead(msg)
	deadline := time.Now().Add(time.Second)
	for !msg.released && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !msg.released {
		t.Fatal("unhandled message reaching Tail was not released")
	}
}

// markerHandler is a distinct concrete type from traceHandler, used to
// exercise the type-keyed Get/Context/Remove variants without one
// handler's type accidentally matching another's.
type markerHandler struct {
	pipeline.ChannelInboundHandlerAdapter
}

func TestGetContextByHandlerInstance(t *testing.T) {
	p := pipeline.New()
	h := &traceHandler{name: "A", trace: &[]string{}, mu: &sync.Mutex{}}
	if _, err := p.AddLast("A", h); err != nil {
		t.Fatalf("AddLast: %v", err)
	}
	ctx := p.ContextOfHandler(h)
	if ctx == nil {
		t.Fatal("ContextOfHandler returned nil for a handler instance in the pipeline")
	}
	if ctx.Name() != "A" {
		t.Fatalf("ContextOfHandler name = %q, want %q", ctx.Name(), "A")
	}

	other := &traceHandler{name: "not-added", trace: &[]string{}, mu: &sync.Mutex{}}
	if ctx := p.ContextOfHandler(other); ctx != nil {
		t.Fatalf("ContextOfHandler found a context for a handler never added: %v", ctx)
	}
}

func TestGetContextRemoveByHandlerType(t *testing.T) {
	p := pipeline.New()
	trace := &traceHandler{name: "A", trace: &[]string{}, mu: &sync.Mutex{}}
	marker := &markerHandler{}
	if _, err := p.AddLast("A", trace); err != nil {
		t.Fatalf("AddLast trace: %v", err)
	}
	if _, err := p.AddLast("M", marker); err != nil {
		t.Fatalf("AddLast marker: %v", err)
	}

	got := p.GetByType(&markerHandler{})
	if got != pipeline.Handler(marker) {
		t.Fatalf("GetByType(&markerHandler{}) = %v, want %v", got, marker)
	}

	ctx := p.ContextOfType(&markerHandler{})
	if ctx == nil || ctx.Name() != "M" {
		t.Fatalf("ContextOfType(&markerHandler{}) = %v, want context named M", ctx)
	}

	if err := p.RemoveType(&markerHandler{}); err != nil {
		t.Fatalf("RemoveType: %v", err)
	}
	if p.GetByType(&markerHandler{}) != nil {
		t.Fatal("markerHandler still reachable by type after RemoveType")
	}
	if p.Get("M") != nil {
		t.Fatal("context M still reachable by name after RemoveType")
	}
}

func TestRemoveHandlerByInstance(t *testing.T) {
	p := pipeline.New()
	h := &traceHandler{name: "A", trace: &[]string{}, mu: &sync.Mutex{}}
	if _, err := p.AddLast("A", h); err != nil {
		t.Fatalf("AddLast: %v", err)
	}
	if err := p.RemoveHandler(h); err != nil {
		t.Fatalf("RemoveHandler: %v", err)
	}
	if p.Get("A") != nil {
		t.Fatal("context A still reachable by name after RemoveHandler")
	}

	if err := p.RemoveHandler(h); !errors.Is(err, pipeline.ErrNotFound) {
		t.Fatalf("RemoveHandler on an already-removed handler: err = %v, want ErrNotFound", err)
	}
}
