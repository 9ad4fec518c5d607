package session

import "github.com/cursorbridge/cursorbridge/internal/cursorproto"

// EventKind discriminates the events a Session yields to its consumer (the
// OpenAI adapter in practice) in arrival order.
type EventKind int

const (
	EventText EventKind = iota
	EventToolCallStarted
	EventPartialToolCall
	EventToolCallCompleted
	EventExecRequest
	EventCheckpoint
	EventAbort
	EventTurnEnded
	EventError
)

// Event is one inbound occurrence, demultiplexed from the RunSSE frame
// stream and handed to whatever consumes Session.Events().
type Event struct {
	Kind EventKind

	Text string // EventText: streamed or recovered-from-blob text

	PartialToolCall *cursorproto.PartialToolCall // EventPartialToolCall

	ExecRequest *cursorproto.ExecServerMessage // EventExecRequest

	Err error // EventError
}
