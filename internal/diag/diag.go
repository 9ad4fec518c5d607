// Package diag mirrors session lifecycle events onto a NATS JetStream
// subject, the same durable-mirror pattern the control plane's store
// package uses for job/log events, adapted to session diagnostics and
// opt-in rather than load-bearing: a nil *Bus is a valid no-op.
package diag

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Event is one mirrored session lifecycle fact, kept intentionally small
// and JSON-encoded (unlike the teacher's protobuf JobEvent/LogEvent) since
// there is no generated schema for this repo's own domain types.
type Event struct {
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Detail    string    `json:"detail,omitempty"`
	EmittedAt time.Time `json:"emitted_at"`
}

// Bus publishes diagnostic events to a JetStream stream. The zero value is
// not usable; use New or a nil *Bus (Publish on a nil Bus is a no-op).
type Bus struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	prefix string
	stream string
	log    *slog.Logger
}

// Options configures the mirrored stream, mirroring the teacher's
// JetStreamOptions shape with names relevant to this domain.
type Options struct {
	URL      string
	Stream   string
	Prefix   string
	MaxBytes int64
}

func (o *Options) setDefaults() {
	if o.Stream == "" {
		o.Stream = "CURSORBRIDGE_DIAG"
	}
	if o.Prefix == "" {
		o.Prefix = "cursorbridge"
	}
	if o.MaxBytes == 0 {
		o.MaxBytes = 256 << 20
	}
}

// New connects to NATS and ensures the diagnostics stream exists. A blank
// opts.URL is treated as "diagnostics disabled" and returns a nil Bus with
// no error, so callers can wire it unconditionally from config.
func New(opts Options, log *slog.Logger) (*Bus, error) {
	if opts.URL == "" {
		return nil, nil
	}
	opts.setDefaults()

	conn, err := nats.Connect(opts.URL, nats.Name("cursorbridge-diag"))
	if err != nil {
		return nil, fmt.Errorf("diag: connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("diag: jetstream context: %w", err)
	}

	b := &Bus{conn: conn, js: js, prefix: opts.Prefix, stream: opts.Stream, log: log}
	if err := b.ensureStream(opts); err != nil {
		conn.Close()
		return nil, err
	}
	return b, nil
}

func (b *Bus) ensureStream(opts Options) error {
	cfg := &nats.StreamConfig{
		Name:      b.stream,
		Subjects:  []string{b.wildcard()},
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
		MaxMsgs:   -1,
		MaxBytes:  opts.MaxBytes,
		Discard:   nats.DiscardOld,
	}
	if _, err := b.js.StreamInfo(cfg.Name); err != nil {
		if err == nats.ErrStreamNotFound {
			_, addErr := b.js.AddStream(cfg)
			return addErr
		}
		return err
	}
	_, err := b.js.UpdateStream(cfg)
	return err
}

func (b *Bus) subject(sessionID string) string {
	return fmt.Sprintf("%s.sessions.%s", b.prefix, sessionID)
}

func (b *Bus) wildcard() string {
	return fmt.Sprintf("%s.sessions.*", b.prefix)
}

// Publish mirrors one event. A nil Bus silently drops it: diagnostics are
// an observability add-on, never a dependency of the session's own
// correctness.
func (b *Bus) Publish(sessionID, kind, detail string) {
	if b == nil {
		return
	}
	evt := Event{SessionID: sessionID, Kind: kind, Detail: detail, EmittedAt: time.Now()}
	payload, err := json.Marshal(evt)
	if err != nil {
		b.log.Warn("diag: marshal event", "err", err)
		return
	}
	if _, err := b.js.Publish(b.subject(sessionID), payload); err != nil {
		b.log.Warn("diag: publish event", "err", err, "session_id", sessionID)
	}
}

// Close drains and closes the NATS connection. A nil Bus is a no-op.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.conn.Drain()
	b.conn.Close()
}
