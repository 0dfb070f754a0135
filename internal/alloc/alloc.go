// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package alloc implements the capacity-growth allocator collaborator for
// the buffer core: CalculateNewCapacity and NewBytes.
//
// The growth policy follows a tiered doubling-then-linear-chunk shape
// inspired by the pack's iobuf package (a 12-tier power-of-4 buffer size
// hierarchy, Pico 32B through Titan 128MiB): capacities below the linear
// threshold round up to the next tier boundary, capacities above it grow
// in fixed-size chunks. Unlike iobuf's pools, tiers here are not backed
// by pre-allocated pool slots — they only shape the growth curve.
package alloc

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrMaxCapacity reports that min exceeds max; the caller must fail
// before mutating any state, per the buffer core's CapacityError contract.
var ErrMaxCapacity = errors.New("alloc: requested capacity exceeds max_capacity")

// tiers mirrors iobuf's power-of-4 progression up to the point where
// linear chunking takes over.
var tiers = []int64{
	32,                // Pico
	128,               // Nano
	512,               // Micro
	2 * 1024,          // Small
	8 * 1024,          // Medium
	32 * 1024,         // Big
	128 * 1024,        // Large
	512 * 1024,        // Great
	2 * 1024 * 1024,   // Huge
	8 * 1024 * 1024,   // Vast
	32 * 1024 * 1024,  // Giant
	128 * 1024 * 1024, // Titan
}

// linearChunk is the fixed growth increment used once minRequired exceeds
// the largest tier boundary.
const linearChunk = 128 * 1024 * 1024

// CalculateNewCapacity returns the smallest capacity r such that
// minRequired <= r <= maxCapacity, following the tiered growth policy.
// It is deterministic for a given (minRequired, maxCapacity) pair.
func CalculateNewCapacity(minRequired, maxCapacity int64) (int64, error) {
	if minRequired < 0 || maxCapacity < 0 {
		return 0, fmt.Errorf("alloc: negative capacity: min=%d max=%d", minRequired, maxCapacity)
	}
	if minRequired > maxCapacity {
		return 0, ErrMaxCapacity
	}
	if minRequired == 0 {
		return 0, nil
	}

	for _, t := range tiers {
		if minRequired <= t {
			if t > maxCapacity {
				return maxCapacity, nil
			}
			return t, nil
		}
	}

	// Above the last tier: grow in fixed linear chunks from the last tier.
	r := tiers[len(tiers)-1]
	for r < minRequired {
		r += linearChunk
	}
	if r > maxCapacity {
		return maxCapacity, nil
	}
	return r, nil
}

// Allocator is the collaborator Buffer's growth path calls into. A
// pool-backed implementation may return iox.ErrWouldBlock from NewBytes
// when momentarily exhausted, matching the non-blocking-first contract
// the rest of this module follows.
type Allocator interface {
	CalculateNewCapacity(minRequired, maxCapacity int64) (int64, error)
	NewBytes(initial, max int64) ([]byte, error)
}

// Default is a plain heap-backed allocator: CalculateNewCapacity follows
// the tiered policy above, and NewBytes never returns iox.ErrWouldBlock
// because it has no bounded pool behind it; it fails only for a negative
// initial or max, or initial > max.
type Default struct{}

func (Default) CalculateNewCapacity(minRequired, maxCapacity int64) (int64, error) {
	return CalculateNewCapacity(minRequired, maxCapacity)
}

func (Default) NewBytes(initial, max int64) ([]byte, error) {
	if initial < 0 || max < 0 || initial > max {
		return nil, fmt.Errorf("alloc: invalid initial/max: %d/%d", initial, max)
	}
	return make([]byte, initial), nil
}

// assert iox is actually wired: callers of pool-backed allocators surface
// exhaustion as this exact sentinel, so it is re-exported for convenience.
var ErrWouldBlock = iox.ErrWouldBlock
