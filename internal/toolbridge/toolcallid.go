// Package toolbridge translates between Cursor's server-issued exec
// requests and OpenAI's tool_calls/tool-result message shapes.
package toolbridge

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
)

const (
	toolCallIDPrefix = "sess_"
	toolCallIDInfix  = "__call_"
	maxBaseLen       = 32
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

// MakeToolCallID builds a stable OpenAI tool_call_id of the form
// "sess_<sid>__call_<base>", where base is sanitized to at most 32
// characters of [A-Za-z0-9], falling back to a random token if base
// sanitizes to empty.
func MakeToolCallID(sessionID, base string) string {
	clean := nonAlnum.ReplaceAllString(base, "")
	if len(clean) > maxBaseLen {
		clean = clean[:maxBaseLen]
	}
	if clean == "" {
		clean = randomBase()
	}
	return toolCallIDPrefix + sessionID + toolCallIDInfix + clean
}

func randomBase() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "fallback"
	}
	return hex.EncodeToString(b[:])
}

// ParseSessionID recovers the session id embedded in a tool_call_id
// produced by MakeToolCallID. ok is false if id does not have the expected
// shape.
func ParseSessionID(id string) (sessionID string, ok bool) {
	if !strings.HasPrefix(id, toolCallIDPrefix) {
		return "", false
	}
	rest := id[len(toolCallIDPrefix):]
	idx := strings.Index(rest, toolCallIDInfix)
	if idx < 0 {
		return "", false
	}
	return rest[:idx], true
}
