package handler

import (
	"context"
	"fmt"

	"github.com/idewave/tine/internal/protocol"
	"github.com/idewave/tine/internal/srp"
)

// LoginChallengeHandler seeds a connection's SRP state from the client's
// account name and replies with the group parameters, salt, and server
// ephemeral.
type LoginChallengeHandler struct{}

// Handle implements Handler.
func (h *LoginChallengeHandler) Handle(_ context.Context, in *HandlerInput) ([]HandlerOutput, error) {
	msg, err := protocol.DecodeLoginChallengeIn(in.Payload)
	if err != nil {
		return nil, fmt.Errorf("handler: decoding login challenge: %w", err)
	}

	engine := in.Srp.Lock()
	defer in.Srp.Unlock()

	engine.SetAccount(msg.Account)

	if err := engine.GenerateVerifier(); err != nil {
		return nil, fmt.Errorf("handler: generating verifier: %w", err)
	}
	if err := engine.GenerateServerEphemeral(); err != nil {
		return nil, fmt.Errorf("handler: generating server ephemeral: %w", err)
	}

	serverEphemeral, err := engine.ServerEphemeral()
	if err != nil {
		return nil, fmt.Errorf("handler: reading server ephemeral: %w", err)
	}

	out := &protocol.LoginChallengeOut{
		ServerEphemeral: serverEphemeral,
		Generator:       srp.GBytes(),
		Modulus:         srp.NBytes(),
	}
	copy(out.Salt[:], engine.Salt())

	return []HandlerOutput{{Kind: OutputData, Data: out.Encode()}}, nil
}
