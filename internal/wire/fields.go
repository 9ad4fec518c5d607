package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// RawField is one decoded (field_number, wire_type, payload) triple.
type RawField struct {
	Number  int32
	Type    WireType
	Varint  uint64 // valid when Type == Varint
	Payload []byte // valid when Type == Len
}

// ParseFields decodes buf into a flat list of fields in wire order, ignoring
// nothing on the outside (callers decide which field numbers they care
// about) but failing hard on any malformed varint or truncated LEN payload,
// per the "decode errors are fatal" rule in the session protocol.
func ParseFields(buf []byte) ([]RawField, error) {
	var out []RawField
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return nil, fmt.Errorf("wire: malformed tag with %d bytes remaining", len(buf))
		}
		buf = buf[n:]
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return nil, fmt.Errorf("wire: malformed varint for field %d", num)
			}
			out = append(out, RawField{Number: int32(num), Type: typ, Varint: v})
			buf = buf[n:]
		case protowire.BytesType:
			b, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return nil, fmt.Errorf("wire: truncated LEN payload for field %d", num)
			}
			payload := make([]byte, len(b))
			copy(payload, b)
			out = append(out, RawField{Number: int32(num), Type: typ, Payload: payload})
			buf = buf[n:]
		default:
			// The codec never emits fixed32/fixed64; a field of any other
			// wire type is skipped without being returned, and the parse
			// fails only when its value cannot be skipped.
			n := protowire.ConsumeFieldValue(protowire.Number(num), typ, buf)
			if n < 0 {
				return nil, fmt.Errorf("wire: unskippable field %d (wire type %d)", num, typ)
			}
			buf = buf[n:]
		}
	}
	return out, nil
}

// First returns the first field with the given number, if any.
func First(fields []RawField, number int32) (RawField, bool) {
	for _, f := range fields {
		if f.Number == number {
			return f, true
		}
	}
	return RawField{}, false
}

// All returns every field with the given number, preserving wire order.
func All(fields []RawField, number int32) []RawField {
	var out []RawField
	for _, f := range fields {
		if f.Number == number {
			out = append(out, f)
		}
	}
	return out
}

// --- field emission, default values omitted on encode ---

// AppendUvarintField appends field (number, VARINT) only if v != 0.
func AppendUvarintField(buf []byte, number int32, v uint64) []byte {
	if v == 0 {
		return buf
	}
	buf = AppendTag(buf, number, Varint)
	buf = AppendVarint(buf, v)
	return buf
}

// AppendInt32Field appends a signed 32-bit field, carried as its two's
// complement 64-bit unsigned form when negative. Omitted when zero.
func AppendInt32Field(buf []byte, number int32, v int32) []byte {
	if v == 0 {
		return buf
	}
	return AppendUvarintField(buf, number, TwosComplementVarintFromInt32(v))
}

// AppendInt64Field appends a 64-bit signed field (e.g. append_seqno), omitted
// when zero.
func AppendInt64Field(buf []byte, number int32, v int64) []byte {
	if v == 0 {
		return buf
	}
	return AppendUvarintField(buf, number, uint64(v))
}

// AppendBoolField appends field (number, VARINT) only if v is true.
func AppendBoolField(buf []byte, number int32, v bool) []byte {
	if !v {
		return buf
	}
	buf = AppendTag(buf, number, Varint)
	buf = AppendVarint(buf, 1)
	return buf
}

// AppendStringField appends field (number, LEN) only if s is non-empty.
func AppendStringField(buf []byte, number int32, s string) []byte {
	if s == "" {
		return buf
	}
	return AppendBytesField(buf, number, []byte(s))
}

// AppendBytesField appends field (number, LEN) only if b is non-empty.
func AppendBytesField(buf []byte, number int32, b []byte) []byte {
	if len(b) == 0 {
		return buf
	}
	buf = AppendTag(buf, number, Len)
	buf = protowire.AppendBytes(buf, b)
	return buf
}

// AppendMessageField appends a nested message field. Unlike scalar fields,
// nested messages are always emitted when present, even with an empty body
// (the presence itself is the signal, e.g. stream_close{id:0}).
func AppendMessageField(buf []byte, number int32, body []byte) []byte {
	buf = AppendTag(buf, number, Len)
	buf = protowire.AppendBytes(buf, body)
	return buf
}

// GetString returns the decoded bytes of field as a string.
func (f RawField) GetString() string { return string(f.Payload) }

// GetBytes returns the decoded bytes of field.
func (f RawField) GetBytes() []byte { return f.Payload }

// GetUint32 returns the varint value truncated to uint32.
func (f RawField) GetUint32() uint32 { return uint32(f.Varint) }

// GetInt32 decodes a two's-complement-as-varint signed field back to int32.
func (f RawField) GetInt32() int32 {
	if f.Varint >= (1 << 32) {
		return int32(f.Varint - (1 << 32))
	}
	return int32(f.Varint)
}

// GetInt64 returns the varint value as int64.
func (f RawField) GetInt64() int64 { return int64(f.Varint) }

// GetBool reports whether the varint value is non-zero.
func (f RawField) GetBool() bool { return f.Varint != 0 }
