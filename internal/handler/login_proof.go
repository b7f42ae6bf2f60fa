package handler

import (
	"bytes"
	"context"
	"fmt"

	"github.com/idewave/tine/internal/protocol"
)

// LoginProofHandler completes the SRP handshake: it derives the session key
// from the client ephemeral and replies only when the client's proof
// matches the server's independently computed one.
type LoginProofHandler struct{}

// Handle implements Handler. A proof mismatch produces no outputs at all --
// no error packet is synthesized, matching the legacy client's expectation
// that a failed proof simply times out.
func (h *LoginProofHandler) Handle(_ context.Context, in *HandlerInput) ([]HandlerOutput, error) {
	msg, err := protocol.DecodeLoginProofIn(in.Payload)
	if err != nil {
		return nil, fmt.Errorf("handler: decoding login proof: %w", err)
	}

	engine := in.Srp.Lock()
	defer in.Srp.Unlock()

	if err := engine.CalculateSessionKey(msg.ClientEphemeral[:]); err != nil {
		return nil, fmt.Errorf("handler: calculating session key: %w", err)
	}

	expectedProof, err := engine.CalculateProof(msg.ClientEphemeral[:])
	if err != nil {
		return nil, fmt.Errorf("handler: calculating proof: %w", err)
	}

	if !bytes.Equal(expectedProof, msg.ClientProof[:]) {
		return nil, nil
	}

	serverProof, err := engine.HashedServerProof(msg.ClientEphemeral[:], expectedProof)
	if err != nil {
		return nil, fmt.Errorf("handler: calculating hashed server proof: %w", err)
	}

	sessionKey, err := engine.SessionKey()
	if err != nil {
		return nil, fmt.Errorf("handler: reading session key: %w", err)
	}

	out := &protocol.LoginProofOut{}
	copy(out.ServerProof[:], serverProof)

	return []HandlerOutput{
		{Kind: OutputSessionKey, SessionKey: sessionKey},
		{Kind: OutputData, Data: out.Encode()},
	}, nil
}
