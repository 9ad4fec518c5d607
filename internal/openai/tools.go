package openai

import (
	"encoding/json"

	"github.com/cursorbridge/cursorbridge/internal/cursorproto"
	"github.com/cursorbridge/cursorbridge/internal/wire"
)

// ToMcpToolDefinitions converts the inbound tools[] array into the
// McpToolDefinition records forwarded in the session's RequestContext,
// routing each tool's JSON schema through the wire codec's generic Value
// encoder so schema shapes the codec has never seen still round-trip.
func ToMcpToolDefinitions(tools []Tool) ([]cursorproto.McpToolDefinition, error) {
	defs := make([]cursorproto.McpToolDefinition, 0, len(tools))
	for _, t := range tools {
		schema, err := toWireValue(t.Function.Parameters)
		if err != nil {
			return nil, err
		}
		defs = append(defs, cursorproto.McpToolDefinition{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Schema:      schema,
		})
	}
	return defs, nil
}

func toWireValue(v any) (wire.Value, error) {
	if v == nil {
		return wire.NullValue(), nil
	}
	// Round-trip through encoding/json first so the caller can pass either
	// an already-decoded any (map[string]any, []any, ...) or a Go struct
	// with json tags, and both land in the same normalized shape.
	b, err := json.Marshal(v)
	if err != nil {
		return wire.Value{}, err
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return wire.Value{}, err
	}
	return wire.FromJSON(generic), nil
}
