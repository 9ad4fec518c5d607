package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameSelfDelimitingUnderArbitrarySplits(t *testing.T) {
	payloads := [][]byte{
		[]byte("hello"),
		{},
		bytes.Repeat([]byte{0x42}, 300),
		[]byte("grpc-status: 0\r\n"),
	}
	var stream []byte
	for i, p := range payloads {
		flags := byte(0)
		if i == len(payloads)-1 {
			flags = TrailerFlag
		}
		stream = EncodeFrame(stream, flags, p)
	}

	for split := 0; split <= len(stream); split++ {
		got := decodeAllViaSplitReader(t, stream, split)
		if len(got) != len(payloads) {
			t.Fatalf("split=%d: got %d frames, want %d", split, len(got), len(payloads))
		}
		for i, f := range got {
			if !bytes.Equal(f.Payload, payloads[i]) {
				t.Fatalf("split=%d: frame %d payload = %x, want %x", split, i, f.Payload, payloads[i])
			}
		}
	}
}

// decodeAllViaSplitReader feeds stream through a reader that returns it in
// exactly two reads (at the given split point), forcing the FrameReader to
// buffer a partial frame across a Read boundary that can fall anywhere,
// including mid-header and mid-payload.
func decodeAllViaSplitReader(t *testing.T, stream []byte, split int) []Frame {
	t.Helper()
	r := &twoPartReader{first: stream[:split], second: stream[split:]}
	fr := NewFrameReader(r)
	var frames []Frame
	for {
		f, err := fr.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			t.Fatalf("split=%d: Next: %v", split, err)
		}
		frames = append(frames, f)
	}
	return frames
}

type twoPartReader struct {
	first, second []byte
}

func (r *twoPartReader) Read(p []byte) (int, error) {
	if len(r.first) > 0 {
		n := copy(p, r.first)
		r.first = r.first[n:]
		return n, nil
	}
	if len(r.second) > 0 {
		n := copy(p, r.second)
		r.second = r.second[n:]
		return n, nil
	}
	return 0, io.EOF
}

func TestFrameReaderMidFrameEOF(t *testing.T) {
	full := EncodeFrame(nil, 0, []byte("hello world"))
	truncated := full[:len(full)-2]
	fr := NewFrameReader(bytes.NewReader(truncated))
	_, err := fr.Next()
	if err == nil || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected wrapped io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestTrailerErrorScenarioS6(t *testing.T) {
	payload := []byte("grpc-status: 13\r\ngrpc-message: foo%20bar\r\n")
	err := ParseTrailer(payload)
	var te *TrailerError
	if !errors.As(err, &te) {
		t.Fatalf("ParseTrailer(%q) = %v, want *TrailerError", payload, err)
	}
	if te.Status != 13 {
		t.Fatalf("trailer status = %d, want 13", te.Status)
	}
	if te.Message != "foo bar" {
		t.Fatalf("trailer message = %q, want %q", te.Message, "foo bar")
	}
}

func TestTrailerZeroStatusIsNotAnError(t *testing.T) {
	if err := ParseTrailer([]byte("grpc-status: 0\r\n")); err != nil {
		t.Fatalf("zero grpc-status should not error, got %v", err)
	}
}

func TestTrailerWithoutStatusIsNotAnError(t *testing.T) {
	if err := ParseTrailer([]byte("some-other-header: value\r\n")); err != nil {
		t.Fatalf("trailer without grpc-status should not error, got %v", err)
	}
}
