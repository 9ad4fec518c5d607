// Package wire implements the hand-rolled, schema-free binary codec used to
// talk to Cursor's AgentService: varints, tags, length-delimited fields, and
// the framed envelope layered on top of HTTP streaming.
//
// The codec is deliberately narrow. It does not compile a .proto schema; it
// knows the field numbers it cares about and skips everything else. Wire
// primitives are built on protowire, which is the same low-level package the
// generated protobuf runtime uses internally for exactly this kind of
// field-number-specific encode/decode.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

const maxVarintBytes = 10

// AppendVarint appends the base-128 little-endian varint encoding of v.
func AppendVarint(buf []byte, v uint64) []byte {
	return protowire.AppendVarint(buf, v)
}

// ConsumeVarint decodes a varint from the front of buf, returning the value
// and the number of bytes consumed. n is negative on error.
func ConsumeVarint(buf []byte) (v uint64, n int) {
	v, n = protowire.ConsumeVarint(buf)
	if n < 0 {
		return 0, n
	}
	if n > maxVarintBytes {
		return 0, -1
	}
	return v, n
}

// EncodeVarint is a convenience wrapper returning a fresh slice.
func EncodeVarint(v uint64) []byte {
	return AppendVarint(nil, v)
}

// DecodeVarint decodes a single varint and errors if trailing bytes remain
// or the encoding is malformed/oversized.
func DecodeVarint(buf []byte) (uint64, error) {
	v, n := ConsumeVarint(buf)
	if n < 0 {
		return 0, fmt.Errorf("wire: malformed or oversized varint")
	}
	if n != len(buf) {
		return 0, fmt.Errorf("wire: trailing bytes after varint")
	}
	return v, nil
}

// TwosComplementVarintFromInt32 encodes a signed field the way the Cursor
// schema does: in practice these fields are never negative, but when one
// is, it is carried as its unsigned two's-complement 64-bit form rather
// than true zig-zag.
func TwosComplementVarintFromInt32(v int32) uint64 {
	if v >= 0 {
		return uint64(v)
	}
	return uint64(v) + (1 << 32)
}
