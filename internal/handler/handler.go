// Package handler dispatches decoded login-dialect packets to the handlers
// that process them, mirroring the opcode-indexed processor tables in
// original_source's server/auth module.
package handler

import (
	"context"

	"github.com/idewave/tine/internal/protocol"
	"github.com/idewave/tine/internal/realm"
	"github.com/idewave/tine/internal/srp"
)

// HandlerInput is the shared view a Handler gets of one inbound packet plus
// the connection's SRP state.
type HandlerInput struct {
	Opcode  uint8
	Payload []byte
	Srp     *srp.Handle
}

// OutputKind tags the variant carried by a HandlerOutput.
type OutputKind int

const (
	// OutputData is a wire-ready byte slice to write back to the client.
	OutputData OutputKind = iota
	// OutputSessionKey installs the connection's negotiated session key.
	OutputSessionKey
)

// HandlerOutput is the tagged union a Handler produces: either bytes to
// write to the socket, or a session key to install into connection state.
type HandlerOutput struct {
	Kind       OutputKind
	Data       []byte
	SessionKey []byte
}

// Handler processes one inbound packet and produces zero or more outputs.
type Handler interface {
	Handle(ctx context.Context, in *HandlerInput) ([]HandlerOutput, error)
}

// Processor inspects an inbound packet's opcode and returns the (possibly
// empty) ordered list of handlers that should process it.
type Processor func(in *HandlerInput) []Handler

// AuthProcessor dispatches the three login-dialect opcodes to their
// handlers. source is the Realm Directory (or a test mock) consulted by
// REALM_LIST.
func AuthProcessor(source realm.Source) Processor {
	return func(in *HandlerInput) []Handler {
		switch in.Opcode {
		case protocol.OpLoginChallenge:
			return []Handler{&LoginChallengeHandler{}}
		case protocol.OpLoginProof:
			return []Handler{&LoginProofHandler{}}
		case protocol.OpRealmList:
			return []Handler{&RealmListHandler{Source: source}}
		default:
			return nil
		}
	}
}
