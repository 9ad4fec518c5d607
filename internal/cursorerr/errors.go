// Package cursorerr defines the error-kind vocabulary used across the
// proxy. Kinds are sentinel errors wrapped with fmt.Errorf("...: %w", Kind)
// at the point they occur, so callers use errors.Is against the kind
// rather than a parallel error-code enum.
package cursorerr

import "errors"

var (
	// ProtocolFraming covers malformed varints/frames and non-zero trailer
	// statuses. Fatal: the session closes and surfaces a terminal SSE error.
	ProtocolFraming = errors.New("cursorbridge: protocol framing error")

	// TransportIO covers HTTP read/write failures. Fatal for the session.
	TransportIO = errors.New("cursorbridge: transport I/O error")

	// Unauthorized is a 401 from any Cursor call.
	Unauthorized = errors.New("cursorbridge: unauthorized")

	// AuthRefreshFailed means a refresh call returned non-JSON or non-200.
	// The caller continues using the existing (possibly expired) token.
	AuthRefreshFailed = errors.New("cursorbridge: auth refresh failed")

	// ServerAbort is an exec_server_control_message abort signal. It does
	// not by itself terminate the stream.
	ServerAbort = errors.New("cursorbridge: server abort")

	// HeartbeatStarvation fires when the idle/heartbeat threshold is
	// exceeded; the session closes as if it saw turn_ended.
	HeartbeatStarvation = errors.New("cursorbridge: heartbeat starvation")

	// UnknownExecType is an unrecognized inbound exec variant; logged and
	// ignored, never fatal.
	UnknownExecType = errors.New("cursorbridge: unknown exec type")

	// UnknownToolCallId is an OpenAI tool result referencing an id the
	// bridge has no record of; logged and dropped, never fatal.
	UnknownToolCallId = errors.New("cursorbridge: unknown tool_call_id")

	// DeadlineExceeded is the session's wall-clock watchdog firing.
	DeadlineExceeded = errors.New("cursorbridge: session deadline exceeded")
)
