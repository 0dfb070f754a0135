// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffer

import "errors"

var (
	// ErrIndexOutOfRange reports a cursor or explicit-index operation outside
	// the buffer's valid [0, capacity) window, or a read/write past the
	// available readable/writable bytes.
	ErrIndexOutOfRange = errors.New("buffer: index out of range")

	// ErrCapacityExceeded reports that growing the buffer to satisfy a
	// write or EnsureWritable call would exceed max_capacity.
	ErrCapacityExceeded = errors.New("buffer: capacity exceeds max_capacity")

	// ErrReleased reports an operation attempted on a Buffer whose ref_count
	// has reached zero. The diagnostic always carries ref_count=0.
	ErrReleased = errors.New("buffer: use of released buffer (ref_count=0)")

	// ErrUnderflow reports Release called more times than Retain (plus the
	// implicit retain held at construction).
	ErrUnderflow = errors.New("buffer: release underflow")
)
