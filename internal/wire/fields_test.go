package wire

import "testing"

func TestDefaultOmission(t *testing.T) {
	var buf []byte
	buf = AppendUvarintField(buf, 1, 0)
	buf = AppendInt32Field(buf, 2, 0)
	buf = AppendInt64Field(buf, 3, 0)
	buf = AppendBoolField(buf, 4, false)
	buf = AppendStringField(buf, 5, "")
	buf = AppendBytesField(buf, 6, nil)
	if len(buf) != 0 {
		t.Fatalf("encoding all-default scalar fields produced %d bytes, want 0", len(buf))
	}
}

func TestDefaultOmissionMessageFieldAlwaysEmitted(t *testing.T) {
	// Unlike scalar fields, a present-but-empty nested message (e.g.
	// stream_close{id:0}) must still be emitted: presence is the signal.
	buf := AppendMessageField(nil, 1, nil)
	if len(buf) == 0 {
		t.Fatal("message field with empty body must still be emitted")
	}
}

func TestParseFieldsSkipsUnknownNumbers(t *testing.T) {
	var buf []byte
	buf = AppendUvarintField(buf, 99, 42)
	buf = AppendStringField(buf, 1, "hello")
	fields, err := ParseFields(buf)
	if err != nil {
		t.Fatalf("ParseFields: %v", err)
	}
	f, ok := First(fields, 1)
	if !ok || f.GetString() != "hello" {
		t.Fatalf("expected field 1 = %q, got %+v ok=%v", "hello", f, ok)
	}
}

// TestStreamCloseScenarioS2 reproduces the literal bytes for
// ExecClientControlMessage{stream_close{id=1}} and the id=0 default-omitted
// variant.
func TestStreamCloseScenarioS2(t *testing.T) {
	withID := AppendMessageField(nil, 1, AppendInt64Field(nil, 1, 1))
	want := []byte{0x0a, 0x02, 0x08, 0x01}
	if string(withID) != string(want) {
		t.Fatalf("stream_close{id=1} = % x, want % x", withID, want)
	}

	withoutID := AppendMessageField(nil, 1, AppendInt64Field(nil, 1, 0))
	wantEmpty := []byte{0x0a, 0x00}
	if string(withoutID) != string(wantEmpty) {
		t.Fatalf("stream_close{id=0} = % x, want % x", withoutID, wantEmpty)
	}
}

// TestMcpResultScenarioS3 reproduces the literal bytes for
// McpResult{success{result=[TextContentBlock{text="test result"}]}}, a
// chain of nested single-field-1 messages bottoming out in a string field.
func TestMcpResultScenarioS3(t *testing.T) {
	textBlock := AppendStringField(nil, 1, "test result")
	result := AppendMessageField(nil, 1, textBlock)
	success := AppendMessageField(nil, 1, result)
	mcpResult := AppendMessageField(nil, 1, success)

	want := []byte{
		0x0a, 0x11, 0x0a, 0x0f, 0x0a, 0x0d, 0x0a, 0x0b,
		0x74, 0x65, 0x73, 0x74, 0x20, 0x72, 0x65, 0x73, 0x75, 0x6c, 0x74,
	}
	if string(mcpResult) != string(want) {
		t.Fatalf("McpResult = % x, want % x", mcpResult, want)
	}
}
