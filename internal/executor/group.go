// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package executor

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Group is a fixed-size round-robin pool of Executors, from which a
// context may be bound an affinity executor once, at add time.
type Group struct {
	execs []*Executor
	next  atomic.Uint32
}

// NewGroup starts n Executors and returns a Group over them. n must be
// at least 1.
func NewGroup(n int) *Group {
	if n < 1 {
		n = 1
	}
	g := &Group{execs: make([]*Executor, n)}
	for i := range g.execs {
		g.execs[i] = New()
	}
	return g
}

// Next returns the next Executor in round-robin order.
func (g *Group) Next() *Executor {
	i := g.next.Add(1)
	return g.execs[int(i)%len(g.execs)]
}

// Size returns the number of Executors in the group.
func (g *Group) Size() int { return len(g.execs) }

// Close closes every member Executor concurrently and waits for all of
// them to drain, using an errgroup.Group to fan out and join the member
// shutdowns.
func (g *Group) Close() error {
	var eg errgroup.Group
	for _, e := range g.execs {
		eg.Go(e.Close)
	}
	return eg.Wait()
}
