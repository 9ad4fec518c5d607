package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"google.golang.org/grpc/codes"
)

const frameHeaderSize = 5

// TrailerFlag marks a frame whose payload is a trailer (headers-style
// metadata) rather than a message, mirroring grpc-web's framing.
const TrailerFlag byte = 0x80

// Frame is one length-prefixed envelope: a one-byte flags field followed
// by a big-endian uint32 length and that many payload bytes.
type Frame struct {
	Flags   byte
	Payload []byte
}

// IsTrailer reports whether this frame carries trailer metadata instead of
// a message payload.
func (f Frame) IsTrailer() bool { return f.Flags&TrailerFlag != 0 }

// EncodeFrame appends the framed encoding of payload: [flags, be_u32(len)] ++ payload.
func EncodeFrame(buf []byte, flags byte, payload []byte) []byte {
	buf = append(buf, flags)
	var lenBytes [4]byte
	binary.BigEndian.PutUint32(lenBytes[:], uint32(len(payload)))
	buf = append(buf, lenBytes[:]...)
	buf = append(buf, payload...)
	return buf
}

// DecodeFrame decodes exactly one frame from the front of buf. n is the
// number of bytes consumed, or 0 if buf does not yet hold a complete frame
// (the caller should read more and retry — this is not an error).
func DecodeFrame(buf []byte) (f Frame, n int, err error) {
	if len(buf) < frameHeaderSize {
		return Frame{}, 0, nil
	}
	flags := buf[0]
	length := binary.BigEndian.Uint32(buf[1:5])
	total := frameHeaderSize + int(length)
	if len(buf) < total {
		return Frame{}, 0, nil
	}
	payload := make([]byte, length)
	copy(payload, buf[frameHeaderSize:total])
	return Frame{Flags: flags, Payload: payload}, total, nil
}

// FrameReader pulls frames off an underlying stream (an HTTP response body
// in practice), buffering partial reads until a complete frame is
// available. Each Cursor RunSSE/BidiAppend response body is a concatenation
// of these frames with no other delimiter, so the reader is the only thing
// that makes the stream self-synchronizing.
type FrameReader struct {
	r   *bufio.Reader
	buf []byte
}

// NewFrameReader wraps r for frame-at-a-time reading.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReaderSize(r, 32*1024)}
}

// Next returns the next frame, reading from the underlying stream as
// needed. It returns io.EOF when the stream ends cleanly with no partial
// frame buffered, and an error wrapping io.ErrUnexpectedEOF if the stream
// ends mid-frame.
func (fr *FrameReader) Next() (Frame, error) {
	for {
		f, n, err := DecodeFrame(fr.buf)
		if err != nil {
			return Frame{}, err
		}
		if n > 0 {
			fr.buf = fr.buf[n:]
			return f, nil
		}
		chunk := make([]byte, 32*1024)
		read, readErr := fr.r.Read(chunk)
		if read > 0 {
			fr.buf = append(fr.buf, chunk[:read]...)
		}
		if readErr != nil {
			if readErr == io.EOF {
				if len(fr.buf) == 0 {
					return Frame{}, io.EOF
				}
				return Frame{}, fmt.Errorf("wire: stream ended mid-frame: %w", io.ErrUnexpectedEOF)
			}
			return Frame{}, readErr
		}
	}
}

// TrailerError is returned when a trailer frame reports a non-zero
// grpc-status.
type TrailerError struct {
	Status  int
	Message string
}

func (e *TrailerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("wire: server trailer %s: %s", e.Code(), e.Message)
	}
	return fmt.Sprintf("wire: server trailer %s", e.Code())
}

// Code maps the raw grpc-status trailer value onto the standard gRPC
// status-code vocabulary, the same one grpc-web trailers use on the wire.
func (e *TrailerError) Code() codes.Code {
	return codes.Code(e.Status)
}

// ParseTrailer decodes a trailer frame's payload as CRLF-separated
// "key: value" ASCII header lines and raises an error if grpc-status is
// present and non-zero. grpc-message is percent-decoded per the grpc-web
// convention before being surfaced.
func ParseTrailer(payload []byte) error {
	headers := map[string]string{}
	for _, line := range strings.Split(string(payload), "\r\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	statusStr, ok := headers["grpc-status"]
	if !ok {
		return nil
	}
	status, err := strconv.Atoi(statusStr)
	if err != nil {
		return fmt.Errorf("wire: malformed grpc-status trailer %q", statusStr)
	}
	if status == 0 {
		return nil
	}
	msg := headers["grpc-message"]
	if decoded, err := url.QueryUnescape(msg); err == nil {
		msg = decoded
	}
	return &TrailerError{Status: status, Message: msg}
}
