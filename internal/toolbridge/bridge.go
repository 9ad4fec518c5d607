package toolbridge

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cursorbridge/cursorbridge/internal/cursorproto"
	"github.com/cursorbridge/cursorbridge/internal/wire"
)

// ToolCall is the OpenAI-facing shape an ExecServerMessage is translated
// into: a synthetic id, the tool name the model sees, and its JSON
// arguments.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON-encoded
}

// ToolName maps an exec type to the OpenAI tool name the adapter exposes,
// per the bridge's type table. mcp exec requests forward the server's own
// tool name verbatim.
func ToolName(exec cursorproto.ExecServerMessage) string {
	switch exec.Type {
	case cursorproto.ExecShell:
		return "bash"
	case cursorproto.ExecRead:
		return "read"
	case cursorproto.ExecLs:
		return "list"
	case cursorproto.ExecGrep:
		if exec.Grep != nil && exec.Grep.Glob != "" {
			return "glob"
		}
		return "grep"
	case cursorproto.ExecWrite:
		return "write"
	case cursorproto.ExecMcp:
		if exec.Mcp != nil {
			return exec.Mcp.ToolName
		}
		return "mcp"
	default:
		return "unknown"
	}
}

// execBase picks the identifier MakeToolCallID sanitizes: the mcp tool name
// for mcp execs (McpArgs does not decode a Cursor tool_call_id), otherwise
// exec_id, falling back to the numeric id.
func execBase(exec cursorproto.ExecServerMessage) string {
	if exec.Type == cursorproto.ExecMcp && exec.Mcp != nil && exec.Mcp.ToolName != "" {
		return exec.Mcp.ToolName
	}
	if exec.ExecID != "" {
		return exec.ExecID
	}
	return strconv.FormatUint(uint64(exec.ID), 10)
}

// ToOpenAI translates one server-issued exec request into the OpenAI
// tool_calls shape the adapter streams to the client.
func ToOpenAI(sessionID string, exec cursorproto.ExecServerMessage) (ToolCall, error) {
	args, err := argumentsJSON(exec)
	if err != nil {
		return ToolCall{}, err
	}
	return ToolCall{
		ID:        MakeToolCallID(sessionID, execBase(exec)),
		Name:      ToolName(exec),
		Arguments: args,
	}, nil
}

func argumentsJSON(exec cursorproto.ExecServerMessage) (string, error) {
	var v any
	switch exec.Type {
	case cursorproto.ExecShell:
		m := map[string]any{"command": exec.Shell.Command}
		if exec.Shell.Description != "" {
			m["description"] = exec.Shell.Description
		}
		if exec.Shell.Workdir != "" {
			m["workdir"] = exec.Shell.Workdir
		}
		v = m
	case cursorproto.ExecRead:
		v = map[string]any{"filePath": exec.Read.FilePath}
	case cursorproto.ExecLs:
		v = map[string]any{"path": exec.Ls.Path}
	case cursorproto.ExecGrep:
		pattern, path := "", ""
		if exec.Grep != nil {
			pattern, path = exec.Grep.Pattern, exec.Grep.Path
			if exec.Grep.Glob != "" {
				pattern = exec.Grep.Glob
			}
		}
		v = map[string]any{"pattern": pattern, "path": path}
	case cursorproto.ExecWrite:
		v = map[string]any{"filePath": exec.Write.FilePath, "content": exec.Write.Content}
	case cursorproto.ExecMcp:
		v = wire.ToJSON(exec.Mcp.Arguments)
	default:
		return "", fmt.Errorf("toolbridge: unsupported exec type %v", exec.Type)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("toolbridge: marshal arguments: %w", err)
	}
	return string(b), nil
}

// Reply-reconstruction (turning a later OpenAI tool-result message back
// into a Cursor ExecClientMessage and resuming the originating session) is
// intentionally not implemented: a session ends with the inbound OpenAI
// response that first surfaces a tool call, and a fresh session is opened
// per inbound request, so there is no live session left to resume by the
// time a tool result would arrive in a later request. A subsequent "tool"
// role message is instead folded into the next request's flattened
// prompt (see the openai package's FlattenPrompt).
