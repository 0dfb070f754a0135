// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffer

import "io"

// Chain is a read-only, zero-copy iterator presenting the readable
// regions of several Buffers as one logical sequence. It does not copy
// or own the underlying Buffers; callers remain responsible for
// releasing each one.
//
// Grounded on the segment-iteration idea of mosn's BufferChain
// (other_examples/3319ddba_mosn-pkg__buffer-bufferchain.go.go): a chain
// walks member buffers in order without concatenating their backing
// arrays. It is a standalone helper; the pipeline package does not use
// it.
type Chain struct {
	members []*Buffer
}

// NewChain returns a Chain over the given buffers, in order.
func NewChain(members ...*Buffer) *Chain {
	cp := make([]*Buffer, len(members))
	copy(cp, members)
	return &Chain{members: cp}
}

// Len returns the total readable bytes across every member buffer.
func (c *Chain) Len() int64 {
	var total int64
	for _, m := range c.members {
		total += m.ReadableBytes()
	}
	return total
}

// WriteTo writes every member's readable bytes, in order, to w,
// advancing each member's reader index as it is consumed. It stops and
// returns the first error encountered. Because Chain lives in this
// package, it reaches a member's backing array directly through the
// same st/base/cs fields Buffer's own accessors use, writing straight
// out of the shared storage instead of copying through ReadBytes first.
func (c *Chain) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, m := range c.members {
		if err := m.checkAlive(); err != nil {
			return total, err
		}
		for m.cs.w > m.cs.r {
			wn, werr := w.Write(m.st.data[m.base+m.cs.r : m.base+m.cs.w])
			m.cs.r += int64(wn)
			total += int64(wn)
			if werr != nil {
				return total, werr
			}
		}
	}
	return total, nil
}

// Buffers returns the chain's member buffers, in order.
func (c *Chain) Buffers() []*Buffer {
	out := make([]*Buffer, len(c.members))
	copy(out, c.members)
	return out
}
