package wire

import (
	"math"
	"testing"
)

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16384, math.MaxUint32, math.MaxUint64}
	for _, v := range values {
		enc := EncodeVarint(v)
		if len(enc) > maxVarintBytes {
			t.Fatalf("encode_varint(%d) produced %d bytes, want <= %d", v, len(enc), maxVarintBytes)
		}
		got, err := DecodeVarint(enc)
		if err != nil {
			t.Fatalf("decode_varint(encode_varint(%d)): %v", v, err)
		}
		if got != v {
			t.Fatalf("decode_varint(encode_varint(%d)) = %d", v, got)
		}
	}
}

func TestVarintScenarioS1(t *testing.T) {
	cases := []struct {
		v    uint64
		want []byte
	}{
		{300, []byte{0xac, 0x02}},
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
	}
	for _, c := range cases {
		got := EncodeVarint(c.v)
		if string(got) != string(c.want) {
			t.Errorf("encode_varint(%d) = % x, want % x", c.v, got, c.want)
		}
	}
}

func TestVarintOversized(t *testing.T) {
	// 11 bytes, all with the continuation bit set, exceed the 10-byte
	// ceiling and must be rejected.
	buf := make([]byte, 11)
	for i := range buf {
		buf[i] = 0x80
	}
	if _, err := DecodeVarint(buf); err == nil {
		t.Fatal("expected an error decoding an 11-byte varint")
	}
}
