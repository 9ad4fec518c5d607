package wire

import "testing"

func TestTagIdentity(t *testing.T) {
	fieldNumbers := []int32{1, 2, 15, 16, 127, 128, (1 << 29) - 1}
	wireTypes := []WireType{Varint, Len}
	for _, f := range fieldNumbers {
		for _, wt := range wireTypes {
			enc := EncodeTag(f, wt)
			gotF, gotWT, err := DecodeTag(enc)
			if err != nil {
				t.Fatalf("decode_tag(encode_tag(%d,%v)): %v", f, wt, err)
			}
			if gotF != f || gotWT != wt {
				t.Fatalf("decode_tag(encode_tag(%d,%v)) = (%d,%v)", f, wt, gotF, gotWT)
			}
		}
	}
}

func TestTagTrailingBytesRejected(t *testing.T) {
	enc := EncodeTag(1, Varint)
	enc = append(enc, 0xff, 0xff)
	if _, _, err := DecodeTag(enc); err == nil {
		t.Fatal("expected trailing bytes after tag to be rejected")
	}
}
