// Package session drives one Cursor AgentService session end to end: the
// RunSSE inbound demux, the BidiAppend outbound sequencer, blob handling,
// and the heartbeat/idle policy that force-closes a stalled stream. A
// Session is opened fresh per inbound OpenAI request and never reused
// across requests — the inbound response ends at the first tool call or
// turn end and the session is torn down immediately after, so there is no
// benefit to keeping one alive longer than a single request's lifetime.
package session

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cursorbridge/cursorbridge/internal/blobstore"
	"github.com/cursorbridge/cursorbridge/internal/cursorerr"
	"github.com/cursorbridge/cursorbridge/internal/cursorproto"
	"github.com/cursorbridge/cursorbridge/internal/wire"
)

type State int

const (
	StateOpening State = iota
	StateStreaming
	StateAwaitingTool
	StateClosing
	StateClosed
)

// Transport is the HTTP boundary a Session drives. A concrete
// implementation lives in internal/cursorclient; tests substitute a fake.
type Transport interface {
	OpenRunSSE(ctx context.Context, requestID string) (io.ReadCloser, error)
	BidiAppend(ctx context.Context, framedBody []byte) error
}

// HeartbeatPolicy holds the pre/post-first-progress idle thresholds.
type HeartbeatPolicy struct {
	IdleNoProgress    time.Duration
	MaxBeatsNoProgress int
	IdleProgress      time.Duration
	MaxBeatsProgress  int
}

// DefaultHeartbeatPolicy matches the session protocol's defaults.
func DefaultHeartbeatPolicy() HeartbeatPolicy {
	return HeartbeatPolicy{
		IdleNoProgress:     180 * time.Second,
		MaxBeatsNoProgress: 1000,
		IdleProgress:       120 * time.Second,
		MaxBeatsProgress:   1000,
	}
}

// Diag is the minimal publish surface the session state machine mirrors
// its own lifecycle facts onto, satisfied by *diag.Bus (a nil *diag.Bus
// is itself a no-op, so a Session with no Diag set behaves identically).
type Diag interface {
	Publish(sessionID, kind, detail string)
}

type noopDiag struct{}

func (noopDiag) Publish(string, string, string) {}

// Session is the mutable per-request record described by the session
// protocol: request_id, append_seqno, blob_store, state, and the
// assistant-blob recovery buffer. There is no pending-exec table: a
// session's first exec request ends the inbound OpenAI response and the
// session is torn down immediately after, so nothing is ever resolved
// back into it (see the openai package's Stream/Aggregate docs).
type Session struct {
	RequestID string

	transport Transport
	policy    HeartbeatPolicy
	deadline  time.Time
	diag      Diag

	events chan Event

	// sendMu serializes the entire reserve-seqno + BidiAppend round trip so
	// that wire order always equals assignment order.
	sendMu sync.Mutex

	mu              sync.Mutex
	appendSeqno     int64
	state           State
	blobs           *blobstore.Store
	assistantBlobs  []string
	sawStreamedText bool

	lastProgressAt          time.Time
	firstProgressSeen       bool
	heartbeatsSinceProgress int
}

// New creates a session bound to transport, with a wall-clock deadline
// measured from now.
func New(requestID string, transport Transport, policy HeartbeatPolicy, deadline time.Duration) *Session {
	now := time.Now()
	return &Session{
		RequestID:      requestID,
		transport:      transport,
		policy:         policy,
		deadline:       now.Add(deadline),
		diag:           noopDiag{},
		events:         make(chan Event, 16),
		blobs:          blobstore.New(),
		lastProgressAt: now,
		state:          StateOpening,
	}
}

// SetDiag wires a diagnostics sink the session mirrors its own lifecycle
// facts onto (tool exec started/completed, blob set, turn ended). A nil
// d is equivalent to never calling SetDiag.
func (s *Session) SetDiag(d Diag) {
	if d == nil {
		d = noopDiag{}
	}
	s.diag = d
}

// Events returns the channel of demultiplexed inbound events. It is closed
// when Run returns, regardless of outcome.
func (s *Session) Events() <-chan Event { return s.events }

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run opens the RunSSE stream, sends the initial BidiAppend carrying
// runRequest at seqno 0, and demultiplexes the stream until turn-end,
// heartbeat starvation, deadline, or a fatal transport/protocol error. It
// mirrors its own opened/closed-or-error facts onto Diag, alongside the
// finer-grained facts published from demux/handleInteractionUpdate/handleKv.
func (s *Session) Run(ctx context.Context, runRequest cursorproto.AgentRunRequest) (err error) {
	s.diag.Publish(s.RequestID, "opened", "")
	defer func() {
		close(s.events)
		s.blobs.Close()
		if err != nil {
			st := cursorerr.ToStatus(err)
			s.diag.Publish(s.RequestID, "error", st.Code().String()+": "+st.Message())
		} else {
			s.diag.Publish(s.RequestID, "closed", "")
		}
	}()

	body, err := s.transport.OpenRunSSE(ctx, s.RequestID)
	if err != nil {
		return fmt.Errorf("session: open RunSSE: %w: %v", cursorerr.TransportIO, err)
	}
	defer body.Close()

	if err := s.sendSequence(ctx, cursorproto.AgentClientMessage{RunRequest: &runRequest}); err != nil {
		return err
	}
	s.setState(StateStreaming)

	return s.demux(ctx, body)
}

func (s *Session) demux(ctx context.Context, body io.ReadCloser) error {
	fr := wire.NewFrameReader(body)
	for {
		if time.Now().After(s.deadline) {
			s.setState(StateClosed)
			s.emit(Event{Kind: EventError, Err: cursorerr.DeadlineExceeded})
			return cursorerr.DeadlineExceeded
		}

		frame, err := fr.Next()
		if err != nil {
			if err == io.EOF {
				s.setState(StateClosed)
				return nil
			}
			return fmt.Errorf("session: %w: %v", cursorerr.TransportIO, err)
		}

		if frame.IsTrailer() {
			if terr := wire.ParseTrailer(frame.Payload); terr != nil {
				s.emit(Event{Kind: EventError, Err: terr})
				return fmt.Errorf("session: %w: %v", cursorerr.ProtocolFraming, terr)
			}
			continue
		}

		msg, err := cursorproto.DecodeAgentServerMessage(frame.Payload)
		if err != nil {
			return fmt.Errorf("session: %w: %v", cursorerr.ProtocolFraming, err)
		}

		done, err := s.handle(ctx, msg)
		if err != nil {
			return err
		}
		if done {
			s.setState(StateClosed)
			return nil
		}
	}
}

func (s *Session) handle(ctx context.Context, msg cursorproto.AgentServerMessage) (done bool, err error) {
	switch {
	case msg.InteractionUpdate != nil:
		return s.handleInteractionUpdate(ctx, *msg.InteractionUpdate)
	case msg.ExecServerMessage != nil:
		exec, err := cursorproto.DecodeExecServerMessage(msg.ExecServerMessage)
		if err != nil {
			return false, fmt.Errorf("session: %w: %v", cursorerr.ProtocolFraming, err)
		}
		s.markProgress()
		if exec.Type == cursorproto.ExecUnknown {
			s.emit(Event{Kind: EventError, Err: cursorerr.UnknownExecType})
			return false, nil
		}
		s.mu.Lock()
		s.state = StateAwaitingTool
		s.mu.Unlock()
		s.diag.Publish(s.RequestID, "tool_exec_requested", exec.ExecID)
		s.emit(Event{Kind: EventExecRequest, ExecRequest: &exec})
		return false, nil
	case msg.KvServerMessage != nil:
		s.markProgress()
		return false, s.handleKv(ctx, *msg.KvServerMessage)
	case msg.ConversationCheckpoint != nil:
		s.markProgress()
		s.emit(Event{Kind: EventCheckpoint})
		return false, nil
	case msg.ExecServerControlMessage != nil:
		s.markProgress()
		s.emit(Event{Kind: EventAbort, Err: cursorerr.ServerAbort})
		return false, nil
	default:
		return false, nil
	}
}

func (s *Session) handleInteractionUpdate(ctx context.Context, u cursorproto.InteractionUpdate) (bool, error) {
	switch {
	case u.Heartbeat:
		return s.handleHeartbeat(), nil
	case u.TurnEnded:
		s.finishTurn()
		return true, nil
	case u.HasTextDelta:
		s.markProgress()
		s.mu.Lock()
		s.sawStreamedText = s.sawStreamedText || u.TextDelta != ""
		s.mu.Unlock()
		if u.TextDelta != "" {
			s.emit(Event{Kind: EventText, Text: u.TextDelta})
		}
		return false, nil
	case u.HasTokenDelta:
		s.markProgress()
		s.mu.Lock()
		s.sawStreamedText = s.sawStreamedText || u.TokenDelta != ""
		s.mu.Unlock()
		if u.TokenDelta != "" {
			s.emit(Event{Kind: EventText, Text: u.TokenDelta})
		}
		return false, nil
	case u.PartialToolCall != nil:
		s.markProgress()
		s.emit(Event{Kind: EventPartialToolCall, PartialToolCall: u.PartialToolCall})
		return false, nil
	case u.ToolCallStarted != nil:
		s.markProgress()
		s.diag.Publish(s.RequestID, "tool_call_started", "")
		s.emit(Event{Kind: EventToolCallStarted})
		return false, nil
	case u.ToolCallDone != nil:
		s.markProgress()
		s.diag.Publish(s.RequestID, "tool_call_completed", "")
		s.emit(Event{Kind: EventToolCallCompleted})
		return false, nil
	default:
		return false, nil
	}
}

// handleHeartbeat applies the idle policy and returns true if the session
// should force-close as if it had observed turn_ended.
func (s *Session) handleHeartbeat() bool {
	s.mu.Lock()
	s.heartbeatsSinceProgress++
	sinceProgress := time.Since(s.lastProgressAt)
	progressed := s.firstProgressSeen
	beats := s.heartbeatsSinceProgress
	s.mu.Unlock()

	idleLimit, beatLimit := s.policy.IdleNoProgress, s.policy.MaxBeatsNoProgress
	if progressed {
		idleLimit, beatLimit = s.policy.IdleProgress, s.policy.MaxBeatsProgress
	}
	if sinceProgress >= idleLimit || beats >= beatLimit {
		s.emit(Event{Kind: EventError, Err: cursorerr.HeartbeatStarvation})
		s.finishTurn()
		return true
	}
	return false
}

func (s *Session) markProgress() {
	s.mu.Lock()
	s.lastProgressAt = time.Now()
	s.firstProgressSeen = true
	s.heartbeatsSinceProgress = 0
	s.mu.Unlock()
}

// finishTurn implements assistant-response recovery: if nothing was
// streamed but blob sets carried assistant content, emit that content as
// synthetic text before the terminal turn-end event.
func (s *Session) finishTurn() {
	s.setState(StateClosing)

	s.mu.Lock()
	streamed := s.sawStreamedText
	recovered := append([]string(nil), s.assistantBlobs...)
	s.mu.Unlock()

	if !streamed {
		for _, text := range recovered {
			s.emit(Event{Kind: EventText, Text: text})
		}
	}
	s.diag.Publish(s.RequestID, "turn_ended", "")
	s.emit(Event{Kind: EventTurnEnded})
}

func (s *Session) handleKv(ctx context.Context, kv cursorproto.KvServerMessage) error {
	switch {
	case kv.HasGetBlob:
		data := s.blobs.Get(string(kv.GetBlobID))
		reply := cursorproto.AgentClientMessage{
			KvClientMessage: &cursorproto.KvClientMessage{ID: kv.ID, GetBlobResult: data},
		}
		return s.sendSequence(ctx, reply)
	case kv.HasSetBlob:
		s.blobs.Set(string(kv.SetBlobID), kv.SetBlobData)
		s.diag.Publish(s.RequestID, "blob_set", string(kv.SetBlobID))
		if texts := blobstore.AnalyzeAssistantText(kv.SetBlobData); len(texts) > 0 {
			s.mu.Lock()
			s.assistantBlobs = append(s.assistantBlobs, texts...)
			s.mu.Unlock()
		}
		reply := cursorproto.AgentClientMessage{
			KvClientMessage: &cursorproto.KvClientMessage{ID: kv.ID, IsSetBlob: true},
		}
		return s.sendSequence(ctx, reply)
	default:
		return nil
	}
}

func (s *Session) sendSequence(ctx context.Context, msgs ...cursorproto.AgentClientMessage) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	for _, msg := range msgs {
		s.mu.Lock()
		seqno := s.appendSeqno
		s.appendSeqno++
		s.mu.Unlock()

		inner := msg.Encode()
		req := cursorproto.BidiAppendRequest{
			DataHex:     hex.EncodeToString(inner),
			RequestID:   cursorproto.BidiRequestID{RequestID: s.RequestID},
			AppendSeqno: seqno,
		}
		framed := wire.EncodeFrame(nil, 0, req.Encode())
		if err := s.transport.BidiAppend(ctx, framed); err != nil {
			return fmt.Errorf("session: %w: %v", cursorerr.TransportIO, err)
		}
	}
	return nil
}

func (s *Session) emit(e Event) {
	// Blocking by design: backpressure onto the demux loop preserves
	// arrival order rather than dropping events when the consumer lags.
	s.events <- e
}
