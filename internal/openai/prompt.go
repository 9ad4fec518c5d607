package openai

import (
	"fmt"
	"strings"
)

// FlattenPrompt concatenates an OpenAI messages[] history into the single
// user prompt Cursor's session protocol expects, since a fresh Cursor
// session is opened per inbound request and carries no memory of its own.
// Assistant tool calls are rendered as a call-and-arguments line; tool
// results are labeled with the tool_call_id they answer.
func FlattenPrompt(messages []Message) string {
	var b strings.Builder
	for _, m := range messages {
		switch m.Role {
		case "system":
			fmt.Fprintf(&b, "[system]\n%s\n\n", m.Content)
		case "user":
			fmt.Fprintf(&b, "[user]\n%s\n\n", m.Content)
		case "assistant":
			if m.Content != "" {
				fmt.Fprintf(&b, "[assistant]\n%s\n\n", m.Content)
			}
			for _, tc := range m.ToolCalls {
				fmt.Fprintf(&b, "[assistant tool_call %s]\n%s(%s)\n\n", tc.ID, tc.Function.Name, tc.Function.Arguments)
			}
		case "tool":
			fmt.Fprintf(&b, "[tool_result %s]\n%s\n\n", m.ToolCallID, m.Content)
		default:
			fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
		}
	}
	return strings.TrimSpace(b.String())
}
