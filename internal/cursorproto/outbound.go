// Package cursorproto holds the field-number tables for Cursor's
// AgentService/BidiService wire schema. There is no .proto source: the
// tables below *are* the schema, encoded directly against internal/wire's
// primitives. Field numbers come from observed traffic, not a compiler.
package cursorproto

import "github.com/cursorbridge/cursorbridge/internal/wire"

const (
	fBidiRequestIDRequestID = 1

	fBidiAppendData        = 1
	fBidiAppendRequestID   = 2
	fBidiAppendSeqno       = 3

	fAgentClientRunRequest        = 1
	fAgentClientExecMessage       = 2
	fAgentClientKvMessage         = 3
	fAgentClientExecControlMsg    = 5

	fExecClientID                  = 1
	fExecClientShellResult         = 2
	fExecClientLsResult            = 4
	fExecClientReadResult          = 6
	fExecClientGrepResult          = 7
	fExecClientWriteResult         = 8
	fExecClientMcpResult           = 11
	fExecClientRequestContextResult = 12
	fExecClientExecID              = 15

	fExecControlStreamClose = 1
	fStreamCloseID          = 1

	fKvClientID            = 1
	fKvClientGetBlobResult = 2
	fKvClientSetBlobResult = 3
	fGetBlobResultData     = 1

	fAgentRunConversationState    = 1
	fAgentRunAction               = 2
	fAgentRunModelDetails         = 3
	fAgentRunMcpToolsWrapper      = 4
	fAgentRunConversationID       = 5
	fAgentRunMcpFileSystemOptions = 6

	fConversationActionUserMessage     = 1
	fConversationActionRequestContext  = 2

	fUserMessageText      = 1
	fUserMessageMessageID = 2
	fUserMessageMode      = 4

	fRequestContextEnv             = 4
	fRequestContextMcpTool         = 7
	fRequestContextMcpInstructions = 14

	fEnvOSDescriptor    = 1
	fEnvWorkspacePath   = 2
	fEnvShell           = 3
	fEnvTimezone        = 10
	fEnvWorkspacePath2  = 11

	fMcpToolQualifiedName = 1
	fMcpToolDescription   = 2
	fMcpToolSchema        = 3
	fMcpToolServerLabel   = 4
	fMcpToolName          = 5

	fMcpFsEnabled          = 1
	fMcpFsWorkspaceProjDir = 2
	fMcpFsDescriptor       = 3
)

// UserMode mirrors the mode enum referenced by spec §4.2. Only ASK is
// confirmed from observed traffic; AGENT is the inferred companion value
// per the open question in the design notes.
type UserMode int32

const (
	ModeAsk   UserMode = 1
	ModeAgent UserMode = 2
)

// BidiRequestID wraps the session's opaque request id, used as the body of
// the RunSSE call and nested inside every BidiAppendRequest.
type BidiRequestID struct {
	RequestID string
}

func (m BidiRequestID) Encode() []byte {
	var buf []byte
	buf = wire.AppendStringField(buf, fBidiRequestIDRequestID, m.RequestID)
	return buf
}

// BidiAppendRequest is the body of one BidiAppend call.
type BidiAppendRequest struct {
	DataHex     string
	RequestID   BidiRequestID
	AppendSeqno int64
}

func (m BidiAppendRequest) Encode() []byte {
	var buf []byte
	buf = wire.AppendStringField(buf, fBidiAppendData, m.DataHex)
	buf = wire.AppendMessageField(buf, fBidiAppendRequestID, m.RequestID.Encode())
	buf = wire.AppendInt64Field(buf, fBidiAppendSeqno, m.AppendSeqno)
	return buf
}

// AgentClientMessage is the oneof envelope for everything the client sends
// into a session body (before hex-wrapping into a BidiAppendRequest).
type AgentClientMessage struct {
	RunRequest              *AgentRunRequest
	ExecClientMessage       *ExecClientMessage
	KvClientMessage         *KvClientMessage
	ExecClientControlMessage *ExecClientControlMessage
}

func (m AgentClientMessage) Encode() []byte {
	var buf []byte
	if m.RunRequest != nil {
		buf = wire.AppendMessageField(buf, fAgentClientRunRequest, m.RunRequest.Encode())
	}
	if m.ExecClientMessage != nil {
		buf = wire.AppendMessageField(buf, fAgentClientExecMessage, m.ExecClientMessage.Encode())
	}
	if m.KvClientMessage != nil {
		buf = wire.AppendMessageField(buf, fAgentClientKvMessage, m.KvClientMessage.Encode())
	}
	if m.ExecClientControlMessage != nil {
		buf = wire.AppendMessageField(buf, fAgentClientExecControlMsg, m.ExecClientControlMessage.Encode())
	}
	return buf
}

// ExecClientMessage carries the result of exactly one tool execution back
// to the server. Exactly one of the *Result fields should be set.
type ExecClientMessage struct {
	ID                   uint32
	ShellResult          []byte // pre-encoded nested message
	LsResult             []byte
	ReadResult           []byte
	GrepResult           []byte
	WriteResult          []byte
	McpResult            []byte
	RequestContextResult []byte
	ExecID               string
}

func (m ExecClientMessage) Encode() []byte {
	var buf []byte
	buf = wire.AppendUvarintField(buf, fExecClientID, uint64(m.ID))
	if m.ShellResult != nil {
		buf = wire.AppendMessageField(buf, fExecClientShellResult, m.ShellResult)
	}
	if m.LsResult != nil {
		buf = wire.AppendMessageField(buf, fExecClientLsResult, m.LsResult)
	}
	if m.ReadResult != nil {
		buf = wire.AppendMessageField(buf, fExecClientReadResult, m.ReadResult)
	}
	if m.GrepResult != nil {
		buf = wire.AppendMessageField(buf, fExecClientGrepResult, m.GrepResult)
	}
	if m.WriteResult != nil {
		buf = wire.AppendMessageField(buf, fExecClientWriteResult, m.WriteResult)
	}
	if m.McpResult != nil {
		buf = wire.AppendMessageField(buf, fExecClientMcpResult, m.McpResult)
	}
	if m.RequestContextResult != nil {
		buf = wire.AppendMessageField(buf, fExecClientRequestContextResult, m.RequestContextResult)
	}
	buf = wire.AppendStringField(buf, fExecClientExecID, m.ExecID)
	return buf
}

// ExecClientControlMessage currently has exactly one variant: stream_close.
type ExecClientControlMessage struct {
	StreamCloseID uint32
}

func (m ExecClientControlMessage) Encode() []byte {
	inner := wire.AppendUvarintField(nil, fStreamCloseID, uint64(m.StreamCloseID))
	return wire.AppendMessageField(nil, fExecControlStreamClose, inner)
}

// KvClientMessage answers a server blob get/set request.
type KvClientMessage struct {
	ID            uint32
	GetBlobResult []byte // nil when the reply is a set_blob_result instead
	IsSetBlob     bool
}

func (m KvClientMessage) Encode() []byte {
	var buf []byte
	buf = wire.AppendUvarintField(buf, fKvClientID, uint64(m.ID))
	if m.IsSetBlob {
		buf = wire.AppendMessageField(buf, fKvClientSetBlobResult, nil)
	} else {
		inner := wire.AppendBytesField(nil, fGetBlobResultData, m.GetBlobResult)
		buf = wire.AppendMessageField(buf, fKvClientGetBlobResult, inner)
	}
	return buf
}

// AgentRunRequest is the session-opening message, sent as the first
// BidiAppend body.
type AgentRunRequest struct {
	Action               UserMessageAction
	ModelDetails         []byte
	McpToolsWrapper       []byte
	ConversationID        string
	McpFileSystemOptions *McpFileSystemOptions
}

func (m AgentRunRequest) Encode() []byte {
	var buf []byte
	buf = wire.AppendMessageField(buf, fAgentRunConversationState, nil)
	buf = wire.AppendMessageField(buf, fAgentRunAction, m.Action.Encode())
	if m.ModelDetails != nil {
		buf = wire.AppendMessageField(buf, fAgentRunModelDetails, m.ModelDetails)
	}
	if m.McpToolsWrapper != nil {
		buf = wire.AppendMessageField(buf, fAgentRunMcpToolsWrapper, m.McpToolsWrapper)
	}
	buf = wire.AppendStringField(buf, fAgentRunConversationID, m.ConversationID)
	if m.McpFileSystemOptions != nil {
		buf = wire.AppendMessageField(buf, fAgentRunMcpFileSystemOptions, m.McpFileSystemOptions.Encode())
	}
	return buf
}

// UserMessageAction is the ConversationAction → UserMessageAction variant;
// it is the only action kind this client ever sends.
type UserMessageAction struct {
	UserMessage    UserMessage
	RequestContext *RequestContext
}

func (m UserMessageAction) Encode() []byte {
	var buf []byte
	buf = wire.AppendMessageField(buf, fConversationActionUserMessage, m.UserMessage.Encode())
	if m.RequestContext != nil {
		buf = wire.AppendMessageField(buf, fConversationActionRequestContext, m.RequestContext.Encode())
	}
	return buf
}

type UserMessage struct {
	Text      string
	MessageID string
	Mode      UserMode
}

func (m UserMessage) Encode() []byte {
	var buf []byte
	buf = wire.AppendStringField(buf, fUserMessageText, m.Text)
	buf = wire.AppendStringField(buf, fUserMessageMessageID, m.MessageID)
	buf = wire.AppendInt32Field(buf, fUserMessageMode, int32(m.Mode))
	return buf
}

// RequestContext carries the workspace environment description and MCP
// tool definitions forwarded from the OpenAI request's tools[].
type RequestContext struct {
	Env             Env
	McpTools        []McpToolDefinition
	McpInstructions string
}

func (m RequestContext) Encode() []byte {
	var buf []byte
	buf = wire.AppendMessageField(buf, fRequestContextEnv, m.Env.Encode())
	for _, t := range m.McpTools {
		buf = wire.AppendMessageField(buf, fRequestContextMcpTool, t.Encode())
	}
	buf = wire.AppendStringField(buf, fRequestContextMcpInstructions, m.McpInstructions)
	return buf
}

type Env struct {
	OSDescriptor  string
	WorkspacePath string
	Shell         string
	Timezone      string
}

func (m Env) Encode() []byte {
	var buf []byte
	buf = wire.AppendStringField(buf, fEnvOSDescriptor, m.OSDescriptor)
	buf = wire.AppendStringField(buf, fEnvWorkspacePath, m.WorkspacePath)
	buf = wire.AppendStringField(buf, fEnvShell, m.Shell)
	buf = wire.AppendStringField(buf, fEnvTimezone, m.Timezone)
	buf = wire.AppendStringField(buf, fEnvWorkspacePath2, m.WorkspacePath)
	return buf
}

// McpToolDefinition describes one OpenAI tool forwarded into the session so
// the model can call it. QualifiedName follows the server's
// "cursor-tools-<name>" convention; ServerLabel is always "cursor-tools".
type McpToolDefinition struct {
	Name        string
	Description string
	Schema      wire.Value
}

func (m McpToolDefinition) Encode() []byte {
	var buf []byte
	buf = wire.AppendStringField(buf, fMcpToolQualifiedName, "cursor-tools-"+m.Name)
	buf = wire.AppendStringField(buf, fMcpToolDescription, m.Description)
	buf = wire.AppendMessageField(buf, fMcpToolSchema, wire.Encode(nil, m.Schema))
	buf = wire.AppendStringField(buf, fMcpToolServerLabel, "cursor-tools")
	buf = wire.AppendStringField(buf, fMcpToolName, m.Name)
	return buf
}

type McpFileSystemOptions struct {
	Enabled          bool
	WorkspaceProjDir string
	McpDescriptors   []string
}

func (m McpFileSystemOptions) Encode() []byte {
	var buf []byte
	buf = wire.AppendBoolField(buf, fMcpFsEnabled, m.Enabled)
	buf = wire.AppendStringField(buf, fMcpFsWorkspaceProjDir, m.WorkspaceProjDir)
	for _, d := range m.McpDescriptors {
		buf = wire.AppendStringField(buf, fMcpFsDescriptor, d)
	}
	return buf
}
