package openai

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cursorbridge/cursorbridge/internal/session"
	"github.com/cursorbridge/cursorbridge/internal/toolbridge"
)

// Writer turns a Session's event stream into OpenAI SSE chunks. It owns no
// HTTP framing itself (the caller has already set the SSE headers); it
// just writes `data: ...\n\n` lines and the final `data: [DONE]\n\n`.
type Writer struct {
	w       io.Writer
	id      string
	model   string
	sawTool bool
}

func NewWriter(w io.Writer, id, model string) *Writer {
	return &Writer{w: w, id: id, model: model}
}

func (sw *Writer) writeChunk(choice Choice) error {
	chunk := StreamChunk{ID: sw.id, Object: "chat.completion.chunk", Model: sw.model, Choices: []Choice{choice}}
	b, err := json.Marshal(chunk)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(sw.w, "data: %s\n\n", b)
	return err
}

// Text emits one delta.content chunk.
func (sw *Writer) Text(text string) error {
	sw.sawTool = false
	return sw.writeChunk(Choice{Index: 0, Delta: &Delta{Content: text}})
}

// ToolCallStarted emits one delta.tool_calls[] chunk announcing a new tool
// call by id/name and carrying its complete JSON arguments in that same
// chunk.
func (sw *Writer) ToolCallStarted(tc toolbridge.ToolCall) error {
	sw.sawTool = true
	return sw.writeChunk(Choice{Index: 0, Delta: &Delta{
		ToolCalls: []ToolCall{{
			ID:   tc.ID,
			Type: "function",
			Function: ToolCallFunction{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		}},
	}})
}

// Finish emits the terminal finish_reason chunk followed by [DONE].
// finish_reason is "tool_calls" if the last emitted event was a tool call
// start, otherwise "stop".
func (sw *Writer) Finish() error {
	reason := "stop"
	if sw.sawTool {
		reason = "tool_calls"
	}
	if err := sw.writeChunk(Choice{Index: 0, Delta: &Delta{}, FinishReason: &reason}); err != nil {
		return err
	}
	_, err := fmt.Fprint(sw.w, "data: [DONE]\n\n")
	return err
}

// Error emits a terminal SSE error chunk used when a session closes on a
// fatal ProtocolFraming/TransportIO error mid-stream.
func (sw *Writer) Error(err error) error {
	payload := map[string]any{"error": map[string]string{"message": err.Error()}}
	b, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return marshalErr
	}
	_, writeErr := fmt.Fprintf(sw.w, "data: %s\n\n", b)
	return writeErr
}

// Stream drains a session's event channel, writing SSE chunks as it goes.
// There is no continuation of a session across inbound requests: the first
// tool-exec request ends the stream with finish_reason=tool_calls, same as
// turn_ended ends it with finish_reason=stop. The caller is responsible for
// tearing down the now-unneeded session (its context cancellation) once
// Stream returns, since the underlying Cursor session would otherwise sit
// in StateAwaitingTool until it starves on heartbeats.
func Stream(sw *Writer, events <-chan session.Event, sessionID string) error {
	for ev := range events {
		switch ev.Kind {
		case session.EventText:
			if err := sw.Text(ev.Text); err != nil {
				return err
			}
		case session.EventExecRequest:
			tc, err := toolbridge.ToOpenAI(sessionID, *ev.ExecRequest)
			if err != nil {
				continue
			}
			if err := sw.ToolCallStarted(tc); err != nil {
				return err
			}
			return sw.Finish()
		case session.EventError:
			_ = sw.Error(ev.Err)
		case session.EventTurnEnded:
			return sw.Finish()
		}
	}
	return sw.Finish()
}

// Aggregate drains a session's event channel into one non-streaming
// ChatResponse, used when the inbound request has stream=false. As in
// Stream, the first tool-exec request ends aggregation immediately; the
// caller tears down the session rather than waiting for it to starve.
func Aggregate(events <-chan session.Event, sessionID, id, model string) (ChatResponse, error) {
	var content string
	var toolCalls []ToolCall
loop:
	for ev := range events {
		switch ev.Kind {
		case session.EventText:
			content += ev.Text
		case session.EventExecRequest:
			tc, err := toolbridge.ToOpenAI(sessionID, *ev.ExecRequest)
			if err != nil {
				continue
			}
			toolCalls = append(toolCalls, ToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: ToolCallFunction{Name: tc.Name, Arguments: tc.Arguments},
			})
			break loop
		}
	}
	reason := "stop"
	if len(toolCalls) > 0 {
		reason = "tool_calls"
	}
	return ChatResponse{
		ID:     id,
		Object: "chat.completion",
		Model:  model,
		Choices: []Choice{{
			Index:        0,
			Message:      Message{Role: "assistant", Content: content, ToolCalls: toolCalls},
			FinishReason: &reason,
		}},
	}, nil
}
