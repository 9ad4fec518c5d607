package cursorproto

import (
	"fmt"

	"github.com/cursorbridge/cursorbridge/internal/wire"
)

// ExecType identifies which tool the server is asking the client to run.
type ExecType int

const (
	ExecUnknown ExecType = iota
	ExecShell
	ExecRead
	ExecLs
	ExecGrep
	ExecWrite
	ExecMcp
	ExecRequestContext
)

func (t ExecType) String() string {
	switch t {
	case ExecShell:
		return "shell"
	case ExecRead:
		return "read"
	case ExecLs:
		return "ls"
	case ExecGrep:
		return "grep"
	case ExecWrite:
		return "write"
	case ExecMcp:
		return "mcp"
	case ExecRequestContext:
		return "request_context"
	default:
		return "unknown"
	}
}

// Field numbers mirror ExecClientMessage's own layout (id/exec_id share the
// same slots; each exec-type arg payload sits at the field number its
// corresponding *Result occupies on the reply side).
const (
	fExecServerID                 = 1
	fExecServerShellArgs          = 2
	fExecServerLsArgs             = 4
	fExecServerReadArgs           = 6
	fExecServerGrepArgs           = 7
	fExecServerWriteArgs          = 8
	fExecServerMcpArgs            = 11
	fExecServerRequestContextArgs = 12
	fExecServerExecID             = 15

	fShellArgsCommand     = 1
	fShellArgsDescription = 2
	fShellArgsWorkdir     = 3

	fReadArgsFilePath = 1

	fLsArgsPath = 1

	fGrepArgsPattern = 1
	fGrepArgsPath    = 2
	fGrepArgsGlob    = 3

	fWriteArgsFilePath = 1
	fWriteArgsContent  = 2

	fMcpArgsToolName  = 1
	fMcpArgsArguments = 2
)

// ExecServerMessage is a server-issued instruction to run exactly one tool.
type ExecServerMessage struct {
	ID     uint32
	ExecID string
	Type   ExecType

	Shell   *ShellArgs
	Read    *ReadArgs
	Ls      *LsArgs
	Grep    *GrepArgs
	Write   *WriteArgs
	Mcp     *McpArgs
}

type ShellArgs struct {
	Command     string
	Description string
	Workdir     string
}

type ReadArgs struct {
	FilePath string
}

type LsArgs struct {
	Path string
}

type GrepArgs struct {
	Pattern string
	Path    string
	Glob    string
}

type WriteArgs struct {
	FilePath string
	Content  string
}

type McpArgs struct {
	ToolName  string
	Arguments wire.Value
}

// DecodeExecServerMessage parses the payload nested at AgentServerMessage
// field 2 into a typed exec request. Unrecognized shapes return
// ExecUnknown rather than an error: per the open question in the design
// notes, new variants are skipped conservatively, not treated as fatal.
func DecodeExecServerMessage(buf []byte) (ExecServerMessage, error) {
	fields, err := wire.ParseFields(buf)
	if err != nil {
		return ExecServerMessage{}, fmt.Errorf("cursorproto: ExecServerMessage: %w", err)
	}
	var m ExecServerMessage
	for _, f := range fields {
		switch f.Number {
		case fExecServerID:
			m.ID = f.GetUint32()
		case fExecServerExecID:
			m.ExecID = f.GetString()
		case fExecServerShellArgs:
			args, err := decodeShellArgs(f.Payload)
			if err != nil {
				return ExecServerMessage{}, err
			}
			m.Type, m.Shell = ExecShell, &args
		case fExecServerReadArgs:
			args, err := decodeReadArgs(f.Payload)
			if err != nil {
				return ExecServerMessage{}, err
			}
			m.Type, m.Read = ExecRead, &args
		case fExecServerLsArgs:
			args, err := decodeLsArgs(f.Payload)
			if err != nil {
				return ExecServerMessage{}, err
			}
			m.Type, m.Ls = ExecLs, &args
		case fExecServerGrepArgs:
			args, err := decodeGrepArgs(f.Payload)
			if err != nil {
				return ExecServerMessage{}, err
			}
			m.Type, m.Grep = ExecGrep, &args
		case fExecServerWriteArgs:
			args, err := decodeWriteArgs(f.Payload)
			if err != nil {
				return ExecServerMessage{}, err
			}
			m.Type, m.Write = ExecWrite, &args
		case fExecServerMcpArgs:
			args, err := decodeMcpArgs(f.Payload)
			if err != nil {
				return ExecServerMessage{}, err
			}
			m.Type, m.Mcp = ExecMcp, &args
		case fExecServerRequestContextArgs:
			m.Type = ExecRequestContext
		}
	}
	return m, nil
}

func decodeShellArgs(buf []byte) (ShellArgs, error) {
	fields, err := wire.ParseFields(buf)
	if err != nil {
		return ShellArgs{}, err
	}
	var a ShellArgs
	for _, f := range fields {
		switch f.Number {
		case fShellArgsCommand:
			a.Command = f.GetString()
		case fShellArgsDescription:
			a.Description = f.GetString()
		case fShellArgsWorkdir:
			a.Workdir = f.GetString()
		}
	}
	return a, nil
}

func decodeReadArgs(buf []byte) (ReadArgs, error) {
	fields, err := wire.ParseFields(buf)
	if err != nil {
		return ReadArgs{}, err
	}
	var a ReadArgs
	if v, ok := wire.First(fields, fReadArgsFilePath); ok {
		a.FilePath = v.GetString()
	}
	return a, nil
}

func decodeLsArgs(buf []byte) (LsArgs, error) {
	fields, err := wire.ParseFields(buf)
	if err != nil {
		return LsArgs{}, err
	}
	var a LsArgs
	if v, ok := wire.First(fields, fLsArgsPath); ok {
		a.Path = v.GetString()
	}
	return a, nil
}

func decodeGrepArgs(buf []byte) (GrepArgs, error) {
	fields, err := wire.ParseFields(buf)
	if err != nil {
		return GrepArgs{}, err
	}
	var a GrepArgs
	for _, f := range fields {
		switch f.Number {
		case fGrepArgsPattern:
			a.Pattern = f.GetString()
		case fGrepArgsPath:
			a.Path = f.GetString()
		case fGrepArgsGlob:
			a.Glob = f.GetString()
		}
	}
	return a, nil
}

func decodeWriteArgs(buf []byte) (WriteArgs, error) {
	fields, err := wire.ParseFields(buf)
	if err != nil {
		return WriteArgs{}, err
	}
	var a WriteArgs
	for _, f := range fields {
		switch f.Number {
		case fWriteArgsFilePath:
			a.FilePath = f.GetString()
		case fWriteArgsContent:
			a.Content = f.GetString()
		}
	}
	return a, nil
}

func decodeMcpArgs(buf []byte) (McpArgs, error) {
	fields, err := wire.ParseFields(buf)
	if err != nil {
		return McpArgs{}, err
	}
	var a McpArgs
	for _, f := range fields {
		switch f.Number {
		case fMcpArgsToolName:
			a.ToolName = f.GetString()
		case fMcpArgsArguments:
			v, err := wire.Decode(f.Payload)
			if err != nil {
				return McpArgs{}, err
			}
			a.Arguments = v
		}
	}
	return a, nil
}
