package blobstore

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/cursorbridge/cursorbridge/internal/wire"
)

// minProtobufTextLen is the length floor for the protobuf-field fallback:
// short LEN payloads are much more likely to be ids or enum-ish tokens than
// recoverable prose, so they are not treated as candidate assistant text.
const minProtobufTextLen = 50

// AnalyzeAssistantText implements the blob-set analysis heuristic from the
// session protocol: given the bytes of a set_blob_args value, extract any
// text that looks like assistant-authored content, in encounter order.
// Called on every blob set; callers accumulate the results into a
// session's running assistant_blobs list for end-of-turn recovery.
func AnalyzeAssistantText(data []byte) []string {
	if utf8.Valid(data) {
		if texts, ok := analyzeJSON(data); ok {
			return texts
		}
	}
	return analyzeProtobufFields(data)
}

func analyzeJSON(data []byte) ([]string, bool) {
	if !looksLikeJSONOrUTF8(data) {
		return nil, false
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false
	}

	var texts []string
	switch root := doc.(type) {
	case map[string]any:
		texts = append(texts, extractAssistantMessage(root)...)
		if msgs, ok := root["messages"].([]any); ok {
			for _, m := range msgs {
				if mm, ok := m.(map[string]any); ok {
					texts = append(texts, extractAssistantMessage(mm)...)
				}
			}
		}
	case []any:
		for _, m := range root {
			if mm, ok := m.(map[string]any); ok {
				texts = append(texts, extractAssistantMessage(mm)...)
			}
		}
	}
	return texts, true
}

func extractAssistantMessage(m map[string]any) []string {
	role, _ := m["role"].(string)
	if role != "assistant" {
		return nil
	}
	switch content := m["content"].(type) {
	case string:
		if content != "" {
			return []string{content}
		}
	case []any:
		var out []string
		for _, block := range content {
			bm, ok := block.(map[string]any)
			if !ok {
				continue
			}
			if t, _ := bm["type"].(string); t != "text" {
				continue
			}
			if text, ok := bm["text"].(string); ok && text != "" {
				out = append(out, text)
			}
		}
		return out
	}
	return nil
}

// analyzeProtobufFields is the fallback for binary blobs: parse as raw wire
// fields and keep any LEN payload that is valid UTF-8, long enough to be
// prose rather than an id, and does not itself look like nested JSON.
func analyzeProtobufFields(data []byte) []string {
	fields, err := wire.ParseFields(data)
	if err != nil {
		return nil
	}
	var out []string
	for _, f := range fields {
		if f.Type != wire.Len {
			continue
		}
		if len(f.Payload) <= minProtobufTextLen {
			continue
		}
		if !utf8.Valid(f.Payload) {
			continue
		}
		trimmed := f.Payload
		if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
			continue
		}
		out = append(out, string(f.Payload))
	}
	return out
}
