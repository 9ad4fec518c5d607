package session

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/cursorbridge/cursorbridge/internal/cursorproto"
	"github.com/cursorbridge/cursorbridge/internal/wire"
)

// fakeTransport records every BidiAppend body (decoding append_seqno from
// it) and serves a scripted RunSSE frame stream.
type fakeTransport struct {
	mu      sync.Mutex
	seqnos  []int64
	stream  []byte
}

func (f *fakeTransport) OpenRunSSE(ctx context.Context, requestID string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.stream)), nil
}

func (f *fakeTransport) BidiAppend(ctx context.Context, framedBody []byte) error {
	frame, n, err := wire.DecodeFrame(framedBody)
	if err != nil || n == 0 {
		return err
	}
	fields, err := wire.ParseFields(frame.Payload)
	if err != nil {
		return err
	}
	for _, fld := range fields {
		if fld.Number == 3 { // BidiAppendRequest.append_seqno
			f.mu.Lock()
			f.seqnos = append(f.seqnos, fld.GetInt64())
			f.mu.Unlock()
		}
	}
	return nil
}

func encodeServerFrame(msg cursorproto.AgentServerMessage) []byte {
	// Build by hand since AgentServerMessage has no Encode method (it is
	// decode-only, mirroring its role as an inbound-only type); tests
	// construct the raw bytes through the same field-append helpers the
	// outbound side uses.
	var buf []byte
	if msg.InteractionUpdate != nil {
		buf = wire.AppendMessageField(buf, 1, encodeInteractionUpdate(*msg.InteractionUpdate))
	}
	return wire.EncodeFrame(nil, 0, buf)
}

func encodeInteractionUpdate(u cursorproto.InteractionUpdate) []byte {
	var buf []byte
	if u.HasTextDelta {
		inner := wire.AppendStringField(nil, 1, u.TextDelta)
		buf = wire.AppendMessageField(buf, 1, inner)
	}
	if u.Heartbeat {
		buf = wire.AppendMessageField(buf, 13, nil)
	}
	if u.TurnEnded {
		buf = wire.AppendMessageField(buf, 14, nil)
	}
	return buf
}

func TestAppendMonotonicity(t *testing.T) {
	var stream []byte
	stream = append(stream, encodeServerFrame(cursorproto.AgentServerMessage{
		InteractionUpdate: &cursorproto.InteractionUpdate{HasTextDelta: true, TextDelta: "hi"},
	})...)
	stream = append(stream, encodeServerFrame(cursorproto.AgentServerMessage{
		InteractionUpdate: &cursorproto.InteractionUpdate{TurnEnded: true},
	})...)

	ft := &fakeTransport{stream: stream}
	s := New("sess-1", ft, DefaultHeartbeatPolicy(), time.Minute)

	done := make(chan error, 1)
	go func() {
		done <- s.Run(context.Background(), cursorproto.AgentRunRequest{ConversationID: "c1"})
	}()

	var texts []string
	for ev := range s.Events() {
		if ev.Kind == EventText {
			texts = append(texts, ev.Text)
		}
	}
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(texts) != 1 || texts[0] != "hi" {
		t.Fatalf("got texts %v", texts)
	}

	ft.mu.Lock()
	defer ft.mu.Unlock()
	for i, seq := range ft.seqnos {
		if seq != int64(i) {
			t.Fatalf("append_seqno sequence = %v, want 0,1,2,...", ft.seqnos)
		}
	}
	if len(ft.seqnos) != 1 {
		t.Fatalf("expected exactly 1 BidiAppend (the initial run request), got %d", len(ft.seqnos))
	}
}

func TestHeartbeatStarvationScenarioS5(t *testing.T) {
	var stream []byte
	stream = append(stream, encodeServerFrame(cursorproto.AgentServerMessage{
		InteractionUpdate: &cursorproto.InteractionUpdate{HasTextDelta: true, TextDelta: "hi"},
	})...)
	for i := 0; i < 1000; i++ {
		stream = append(stream, encodeServerFrame(cursorproto.AgentServerMessage{
			InteractionUpdate: &cursorproto.InteractionUpdate{Heartbeat: true},
		})...)
	}

	ft := &fakeTransport{stream: stream}
	s := New("sess-2", ft, DefaultHeartbeatPolicy(), time.Minute)

	done := make(chan error, 1)
	go func() {
		done <- s.Run(context.Background(), cursorproto.AgentRunRequest{ConversationID: "c2"})
	}()

	sawTurnEnd := false
	for ev := range s.Events() {
		if ev.Kind == EventTurnEnded {
			sawTurnEnd = true
		}
	}
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !sawTurnEnd {
		t.Fatal("expected synthetic turn-end after 1000 heartbeats with no further progress")
	}
}

// fakeDiag records every Publish call in order, for asserting the session
// state machine's own lifecycle mirroring (as opposed to the owning
// HTTP handler's) without a real NATS server.
type fakeDiag struct {
	mu    sync.Mutex
	kinds []string
}

func (d *fakeDiag) Publish(sessionID, kind, detail string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.kinds = append(d.kinds, kind)
}

func TestRunPublishesOpenedAndClosed(t *testing.T) {
	var stream []byte
	stream = append(stream, encodeServerFrame(cursorproto.AgentServerMessage{
		InteractionUpdate: &cursorproto.InteractionUpdate{TurnEnded: true},
	})...)

	ft := &fakeTransport{stream: stream}
	s := New("sess-3", ft, DefaultHeartbeatPolicy(), time.Minute)
	d := &fakeDiag{}
	s.SetDiag(d)

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background(), cursorproto.AgentRunRequest{ConversationID: "c3"}) }()
	for range s.Events() {
	}
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.kinds) < 2 || d.kinds[0] != "opened" || d.kinds[len(d.kinds)-1] != "closed" {
		t.Fatalf("got diag kinds %v, want first=opened last=closed", d.kinds)
	}
}

func TestBidiAppendRequestSeqnoRoundTrip(t *testing.T) {
	req := cursorproto.BidiAppendRequest{DataHex: hex.EncodeToString([]byte("abc")), AppendSeqno: 5}
	enc := req.Encode()
	fields, err := wire.ParseFields(enc)
	if err != nil {
		t.Fatalf("ParseFields: %v", err)
	}
	seqField, ok := wire.First(fields, 3)
	if !ok || seqField.GetInt64() != 5 {
		t.Fatalf("append_seqno round trip failed: %+v", seqField)
	}
}
