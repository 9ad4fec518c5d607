package wire

import "google.golang.org/protobuf/encoding/protowire"

// WireType identifies how a field's payload is encoded. Only VARINT and LEN
// appear in the Cursor schema; the codec never emits fixed32/fixed64.
type WireType = protowire.Type

const (
	Varint WireType = protowire.VarintType
	Len    WireType = protowire.BytesType
)

// EncodeTag appends the tag byte sequence for (fieldNumber, wireType).
func EncodeTag(fieldNumber int32, wt WireType) []byte {
	return protowire.AppendTag(nil, protowire.Number(fieldNumber), wt)
}

// AppendTag appends a tag onto buf.
func AppendTag(buf []byte, fieldNumber int32, wt WireType) []byte {
	return protowire.AppendTag(buf, protowire.Number(fieldNumber), wt)
}

// DecodeTag decodes a tag, returning field number and wire type.
func DecodeTag(buf []byte) (fieldNumber int32, wt WireType, err error) {
	num, typ, n := protowire.ConsumeTag(buf)
	if n < 0 {
		return 0, 0, errMalformedTag
	}
	if n != len(buf) {
		return 0, 0, errTrailingTag
	}
	return int32(num), typ, nil
}

var (
	errMalformedTag = tagError("wire: malformed tag")
	errTrailingTag  = tagError("wire: trailing bytes after tag")
)

type tagError string

func (e tagError) Error() string { return string(e) }
