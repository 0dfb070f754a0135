// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffer

import (
	"encoding/binary"

	"code.hybscloud.com/netcore/internal/alloc"
	"code.hybscloud.com/netcore/internal/bo"
)

// Options configures a new Buffer, following this module's usual
// functional-options convention.
type Options struct {
	order     binary.ByteOrder
	allocator alloc.Allocator
}

var defaultOptions = Options{
	order:     binary.BigEndian,
	allocator: alloc.Default{},
}

type Option func(*Options)

// WithByteOrder sets the default (big-endian unless overridden) accessor
// byte order for the new Buffer.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *Options) { o.order = order }
}

// WithNativeByteOrder sets the new Buffer's accessor byte order to the
// machine's native order, rather than the network-order default.
func WithNativeByteOrder() Option {
	return func(o *Options) { o.order = bo.Native() }
}

// WithAllocator injects a custom allocator collaborator.
func WithAllocator(a alloc.Allocator) Option {
	return func(o *Options) { o.allocator = a }
}
