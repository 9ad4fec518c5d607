package cursorproto

import "github.com/cursorbridge/cursorbridge/internal/wire"

// Field numbers for the per-exec-type result messages nested inside
// ExecClientMessage. Shell's layout is pinned by spec scenario S4: command,
// cwd, exitCode, stderr, stdout, (reserved), execTimeMs at 1..7, with
// exitCode/stderr/reserved omitted when zero/empty.
const (
	fShellCommand   = 1
	fShellCwd       = 2
	fShellExitCode  = 3
	fShellStderr    = 4
	fShellStdout    = 5
	fShellReserved  = 6
	fShellExecTime  = 7

	fLsFiles = 1

	fReadContent     = 1
	fReadTotalLines  = 2
	fReadFileSize    = 3
	fReadTruncated   = 4

	fGrepMatches = 1 // repeated string

	fWriteSuccess = 1
	fWriteFailure = 2

	fWriteSuccessLinesCreated = 1
	fWriteSuccessFileSize     = 2
	fWriteSuccessContent      = 3

	fWriteFailureError = 1

	fMcpSuccess = 1
	fMcpFailure = 2

	fMcpSuccessResult = 1 // repeated ContentBlock
	fMcpFailureError  = 1

	fTextContentBlockText = 1

	fContentBlockText = 1
)

// ShellResult is the shell exec result, shaped exactly per spec scenario S4.
type ShellResult struct {
	Command   string
	Cwd       string
	ExitCode  int32
	Stderr    string
	Stdout    string
	ExecTimeMs int64
}

func (m ShellResult) Encode() []byte {
	var buf []byte
	buf = wire.AppendStringField(buf, fShellCommand, m.Command)
	buf = wire.AppendStringField(buf, fShellCwd, m.Cwd)
	buf = wire.AppendInt32Field(buf, fShellExitCode, m.ExitCode)
	buf = wire.AppendStringField(buf, fShellStderr, m.Stderr)
	buf = wire.AppendStringField(buf, fShellStdout, m.Stdout)
	buf = wire.AppendInt64Field(buf, fShellExecTime, m.ExecTimeMs)
	return buf
}

// LsResult carries the raw files listing as the server expects it.
type LsResult struct {
	Files string
}

func (m LsResult) Encode() []byte {
	return wire.AppendStringField(nil, fLsFiles, m.Files)
}

// ReadResult carries the full content of a read exec plus the bookkeeping
// fields the server expects alongside it.
type ReadResult struct {
	Content     string
	TotalLines  int32
	FileSize    int64
	Truncated   bool
}

func (m ReadResult) Encode() []byte {
	var buf []byte
	buf = wire.AppendStringField(buf, fReadContent, m.Content)
	buf = wire.AppendInt32Field(buf, fReadTotalLines, m.TotalLines)
	buf = wire.AppendInt64Field(buf, fReadFileSize, m.FileSize)
	buf = wire.AppendBoolField(buf, fReadTruncated, m.Truncated)
	return buf
}

// GrepResult carries the non-empty matched lines.
type GrepResult struct {
	Matches []string
}

func (m GrepResult) Encode() []byte {
	var buf []byte
	for _, line := range m.Matches {
		buf = wire.AppendStringField(buf, fGrepMatches, line)
	}
	return buf
}

// WriteResult is a success/failure oneof.
type WriteResult struct {
	Success *WriteSuccess
	Failure *WriteFailure
}

type WriteSuccess struct {
	LinesCreated       int32
	FileSize           int64
	FileContentAfterWrite string
}

func (m WriteSuccess) Encode() []byte {
	var buf []byte
	buf = wire.AppendInt32Field(buf, fWriteSuccessLinesCreated, m.LinesCreated)
	buf = wire.AppendInt64Field(buf, fWriteSuccessFileSize, m.FileSize)
	buf = wire.AppendStringField(buf, fWriteSuccessContent, m.FileContentAfterWrite)
	return buf
}

type WriteFailure struct {
	Error string
}

func (m WriteFailure) Encode() []byte {
	return wire.AppendStringField(nil, fWriteFailureError, m.Error)
}

func (m WriteResult) Encode() []byte {
	var buf []byte
	if m.Success != nil {
		buf = wire.AppendMessageField(buf, fWriteSuccess, m.Success.Encode())
	}
	if m.Failure != nil {
		buf = wire.AppendMessageField(buf, fWriteFailure, m.Failure.Encode())
	}
	return buf
}

// TextContentBlock is the sole content-block variant observed on the wire.
type TextContentBlock struct {
	Text string
}

func (m TextContentBlock) Encode() []byte {
	return wire.AppendStringField(nil, fTextContentBlockText, m.Text)
}

// ContentBlock is the content-block envelope each McpSuccess.Result entry
// wraps its text variant in on the wire; it is the sole variant observed,
// so it always carries a TextContentBlock.
type ContentBlock struct {
	Text TextContentBlock
}

func (m ContentBlock) Encode() []byte {
	return wire.AppendMessageField(nil, fContentBlockText, m.Text.Encode())
}

// McpResult is a success/failure oneof wrapping a list of content blocks, or
// an error string. Its exact byte layout for the single-text-block success
// case is pinned by spec scenario S3.
type McpResult struct {
	Success *McpSuccess
	Failure *McpFailure
}

type McpSuccess struct {
	Result []TextContentBlock
}

func (m McpSuccess) Encode() []byte {
	var buf []byte
	for _, block := range m.Result {
		wrapped := ContentBlock{Text: block}.Encode()
		buf = wire.AppendMessageField(buf, fMcpSuccessResult, wrapped)
	}
	return buf
}

type McpFailure struct {
	Error string
}

func (m McpFailure) Encode() []byte {
	return wire.AppendStringField(nil, fMcpFailureError, m.Error)
}

func (m McpResult) Encode() []byte {
	var buf []byte
	if m.Success != nil {
		buf = wire.AppendMessageField(buf, fMcpSuccess, m.Success.Encode())
	}
	if m.Failure != nil {
		buf = wire.AppendMessageField(buf, fMcpFailure, m.Failure.Encode())
	}
	return buf
}
