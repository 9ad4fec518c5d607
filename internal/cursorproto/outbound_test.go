package cursorproto

import (
	"testing"

	"github.com/cursorbridge/cursorbridge/internal/wire"
)

func TestShellResultEnvelopeScenarioS4(t *testing.T) {
	shell := ShellResult{
		Command:  "echo",
		Cwd:      "/",
		ExitCode: 0,
		Stdout:   "ok\n",
		Stderr:   "",
		ExecTimeMs: 100,
	}
	msg := ExecClientMessage{
		ID:          0,
		ShellResult: shell.Encode(),
		ExecID:      "ex",
	}
	encoded := msg.Encode()

	fields, err := wire.ParseFields(encoded)
	if err != nil {
		t.Fatalf("ParseFields: %v", err)
	}
	if _, ok := wire.First(fields, fExecClientID); ok {
		t.Fatal("id=0 must be omitted on the outer message")
	}
	execIDField, ok := wire.First(fields, fExecClientExecID)
	if !ok || execIDField.GetString() != "ex" {
		t.Fatalf("exec_id = %+v, want \"ex\"", execIDField)
	}
	shellField, ok := wire.First(fields, fExecClientShellResult)
	if !ok {
		t.Fatal("shell_result field missing")
	}

	innerFields, err := wire.ParseFields(shellField.Payload)
	if err != nil {
		t.Fatalf("ParseFields(inner): %v", err)
	}
	populated := map[int32]bool{}
	for _, f := range innerFields {
		populated[f.Number] = true
	}
	for _, want := range []int32{fShellCommand, fShellCwd, fShellStdout, fShellExecTime} {
		if !populated[want] {
			t.Errorf("expected inner field %d to be populated", want)
		}
	}
	for _, notWant := range []int32{fShellExitCode, fShellStderr, fShellReserved} {
		if populated[notWant] {
			t.Errorf("expected inner field %d to be omitted (zero/empty)", notWant)
		}
	}
}

func TestExecServerMessageRoundTrip(t *testing.T) {
	original := ExecServerMessage{
		ID:     7,
		ExecID: "ex-7",
		Type:   ExecShell,
		Shell:  &ShellArgs{Command: "ls -la", Workdir: "/tmp"},
	}
	var buf []byte
	buf = appendUvarint(buf, fExecServerID, uint64(original.ID))
	buf = appendShellArgs(buf, *original.Shell)
	buf = appendString(buf, fExecServerExecID, original.ExecID)

	decoded, err := DecodeExecServerMessage(buf)
	if err != nil {
		t.Fatalf("DecodeExecServerMessage: %v", err)
	}
	if decoded.Type != ExecShell || decoded.Shell == nil {
		t.Fatalf("decoded type = %v, want shell", decoded.Type)
	}
	if decoded.Shell.Command != "ls -la" || decoded.Shell.Workdir != "/tmp" {
		t.Fatalf("decoded shell args = %+v", decoded.Shell)
	}
	if decoded.ID != 7 || decoded.ExecID != "ex-7" {
		t.Fatalf("decoded id/exec_id = %d/%q", decoded.ID, decoded.ExecID)
	}
}

func appendUvarint(buf []byte, num int32, v uint64) []byte {
	return wire.AppendUvarintField(buf, num, v)
}

func appendString(buf []byte, num int32, s string) []byte {
	return wire.AppendStringField(buf, num, s)
}

func appendShellArgs(buf []byte, a ShellArgs) []byte {
	var inner []byte
	inner = wire.AppendStringField(inner, fShellArgsCommand, a.Command)
	inner = wire.AppendStringField(inner, fShellArgsDescription, a.Description)
	inner = wire.AppendStringField(inner, fShellArgsWorkdir, a.Workdir)
	return wire.AppendMessageField(buf, fExecServerShellArgs, inner)
}

func TestMcpResultWrapScenarioS3(t *testing.T) {
	result := McpResult{Success: &McpSuccess{Result: []TextContentBlock{{Text: "test result"}}}}
	got := result.Encode()
	want := []byte{
		0x0a, 0x11, 0x0a, 0x0f, 0x0a, 0x0d, 0x0a, 0x0b,
		0x74, 0x65, 0x73, 0x74, 0x20, 0x72, 0x65, 0x73, 0x75, 0x6c, 0x74,
	}
	if string(got) != string(want) {
		t.Fatalf("McpResult = % x, want % x", got, want)
	}
}
