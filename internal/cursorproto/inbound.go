package cursorproto

import (
	"fmt"

	"github.com/cursorbridge/cursorbridge/internal/wire"
)

const (
	fAgentServerInteractionUpdate       = 1
	fAgentServerExecMessage             = 2
	fAgentServerConversationCheckpoint  = 3
	fAgentServerKvMessage               = 4
	fAgentServerExecControlMessage      = 5
	fAgentServerInteractionQuery        = 7

	fInteractionUpdateTextDelta       = 1
	fInteractionUpdateToolCallStarted = 2
	fInteractionUpdateToolCallDone    = 3
	fInteractionUpdatePartialToolCall = 7
	fInteractionUpdateTokenDelta      = 8
	fInteractionUpdateHeartbeat       = 13
	fInteractionUpdateTurnEnded       = 14

	fTextDeltaStr = 1

	fPartialToolCallID        = 1
	fPartialToolCallArgsDelta = 2

	fKvServerID           = 1
	fKvServerGetBlobArgs  = 2
	fKvServerSetBlobArgs  = 3

	fGetBlobArgsBlobID = 1
	fSetBlobArgsBlobID = 1
	fSetBlobArgsData   = 2
)

// AgentServerMessage is the oneof envelope for everything the server can
// push down the RunSSE stream.
type AgentServerMessage struct {
	InteractionUpdate       *InteractionUpdate
	ExecServerMessage       []byte // raw payload; type-dispatched by ExecType, see exec.go
	ConversationCheckpoint  []byte
	KvServerMessage         *KvServerMessage
	ExecServerControlMessage []byte
	InteractionQuery        []byte
}

// DecodeAgentServerMessage parses one top-level server message.
func DecodeAgentServerMessage(buf []byte) (AgentServerMessage, error) {
	fields, err := wire.ParseFields(buf)
	if err != nil {
		return AgentServerMessage{}, fmt.Errorf("cursorproto: AgentServerMessage: %w", err)
	}
	var m AgentServerMessage
	for _, f := range fields {
		switch f.Number {
		case fAgentServerInteractionUpdate:
			iu, err := DecodeInteractionUpdate(f.Payload)
			if err != nil {
				return AgentServerMessage{}, err
			}
			m.InteractionUpdate = &iu
		case fAgentServerExecMessage:
			m.ExecServerMessage = f.Payload
		case fAgentServerConversationCheckpoint:
			m.ConversationCheckpoint = f.Payload
		case fAgentServerKvMessage:
			kv, err := DecodeKvServerMessage(f.Payload)
			if err != nil {
				return AgentServerMessage{}, err
			}
			m.KvServerMessage = &kv
		case fAgentServerExecControlMessage:
			m.ExecServerControlMessage = f.Payload
		case fAgentServerInteractionQuery:
			m.InteractionQuery = f.Payload
		}
	}
	return m, nil
}

// InteractionUpdate is the most common inbound variant: incremental model
// output, tool-call lifecycle, heartbeats, and turn termination.
type InteractionUpdate struct {
	TextDelta       string
	HasTextDelta    bool
	ToolCallStarted []byte
	ToolCallDone    []byte
	PartialToolCall *PartialToolCall
	TokenDelta      string
	HasTokenDelta   bool
	Heartbeat       bool
	TurnEnded       bool
}

type PartialToolCall struct {
	CallID        string
	ArgsTextDelta string
}

func DecodeInteractionUpdate(buf []byte) (InteractionUpdate, error) {
	fields, err := wire.ParseFields(buf)
	if err != nil {
		return InteractionUpdate{}, fmt.Errorf("cursorproto: InteractionUpdate: %w", err)
	}
	var u InteractionUpdate
	for _, f := range fields {
		switch f.Number {
		case fInteractionUpdateTextDelta:
			inner, err := wire.ParseFields(f.Payload)
			if err != nil {
				return InteractionUpdate{}, err
			}
			if td, ok := wire.First(inner, fTextDeltaStr); ok {
				u.TextDelta = td.GetString()
			}
			u.HasTextDelta = true
		case fInteractionUpdateToolCallStarted:
			u.ToolCallStarted = f.Payload
		case fInteractionUpdateToolCallDone:
			u.ToolCallDone = f.Payload
		case fInteractionUpdatePartialToolCall:
			inner, err := wire.ParseFields(f.Payload)
			if err != nil {
				return InteractionUpdate{}, err
			}
			p := &PartialToolCall{}
			if v, ok := wire.First(inner, fPartialToolCallID); ok {
				p.CallID = v.GetString()
			}
			if v, ok := wire.First(inner, fPartialToolCallArgsDelta); ok {
				p.ArgsTextDelta = v.GetString()
			}
			u.PartialToolCall = p
		case fInteractionUpdateTokenDelta:
			inner, err := wire.ParseFields(f.Payload)
			if err != nil {
				return InteractionUpdate{}, err
			}
			if td, ok := wire.First(inner, fTextDeltaStr); ok {
				u.TokenDelta = td.GetString()
			}
			u.HasTokenDelta = true
		case fInteractionUpdateHeartbeat:
			u.Heartbeat = true
		case fInteractionUpdateTurnEnded:
			u.TurnEnded = true
		}
	}
	return u, nil
}

// KvServerMessage is a blob get/set request from the server.
type KvServerMessage struct {
	ID           uint32
	GetBlobID    []byte
	HasGetBlob   bool
	SetBlobID    []byte
	SetBlobData  []byte
	HasSetBlob   bool
}

func DecodeKvServerMessage(buf []byte) (KvServerMessage, error) {
	fields, err := wire.ParseFields(buf)
	if err != nil {
		return KvServerMessage{}, fmt.Errorf("cursorproto: KvServerMessage: %w", err)
	}
	var m KvServerMessage
	for _, f := range fields {
		switch f.Number {
		case fKvServerID:
			m.ID = f.GetUint32()
		case fKvServerGetBlobArgs:
			inner, err := wire.ParseFields(f.Payload)
			if err != nil {
				return KvServerMessage{}, err
			}
			if v, ok := wire.First(inner, fGetBlobArgsBlobID); ok {
				m.GetBlobID = v.GetBytes()
			}
			m.HasGetBlob = true
		case fKvServerSetBlobArgs:
			inner, err := wire.ParseFields(f.Payload)
			if err != nil {
				return KvServerMessage{}, err
			}
			if v, ok := wire.First(inner, fSetBlobArgsBlobID); ok {
				m.SetBlobID = v.GetBytes()
			}
			if v, ok := wire.First(inner, fSetBlobArgsData); ok {
				m.SetBlobData = v.GetBytes()
			}
			m.HasSetBlob = true
		}
	}
	return m, nil
}
