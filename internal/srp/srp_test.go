package srp_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/idewave/tine/internal/srp"
)

func TestGroupParameters(t *testing.T) {
	require.Equal(t, big.NewInt(7), srp.G)
	require.Equal(t, big.NewInt(3), srp.K)
	require.True(t, srp.N.Sign() > 0)
	require.Equal(t, 256, srp.N.BitLen())
}

func TestEngine_OrderingInvariant(t *testing.T) {
	e, err := srp.New()
	require.NoError(t, err)

	_, err = e.ServerEphemeral()
	require.ErrorIs(t, err, srp.ErrPrerequisiteMissing)

	require.ErrorIs(t, e.GenerateVerifier(), srp.ErrPrerequisiteMissing)

	e.SetAccount("test")
	require.ErrorIs(t, e.GenerateServerEphemeral(), srp.ErrPrerequisiteMissing)

	require.NoError(t, e.GenerateVerifier())
	require.NoError(t, e.GenerateServerEphemeral())

	_, err = e.CalculateProof(make([]byte, 32))
	require.ErrorIs(t, err, srp.ErrPrerequisiteMissing)

	nonZeroEphemeral := make([]byte, 32)
	nonZeroEphemeral[0] = 1
	require.NoError(t, e.CalculateSessionKey(nonZeroEphemeral))
}

func TestEngine_RejectsZeroClientEphemeral(t *testing.T) {
	e, err := srp.New()
	require.NoError(t, err)
	e.SetAccount("TEST")
	require.NoError(t, e.GenerateVerifier())
	require.NoError(t, e.GenerateServerEphemeral())

	zero := make([]byte, 32)
	err = e.CalculateSessionKey(zero)
	require.ErrorIs(t, err, srp.ErrInvalidClientEphemeral)
}

// TestRoundTrip exercises invariant 2 from the spec: a reference client
// computing its side of SRP-6 independently must derive the same session
// key and mutually-verifying proofs as the server-side Engine.
func TestRoundTrip(t *testing.T) {
	const account = "TEST"

	engine, err := srp.New()
	require.NoError(t, err)

	engine.SetAccount(account)
	require.NoError(t, engine.GenerateVerifier())
	require.NoError(t, engine.GenerateServerEphemeral())

	client, err := newReferenceClient(account, account)
	require.NoError(t, err)

	serverEphemeral, err := engine.ServerEphemeral()
	require.NoError(t, err)

	clientM, clientK := client.deriveProof(engine.Salt(), serverEphemeral)

	require.NoError(t, engine.CalculateSessionKey(client.ephemeralBytes()))
	serverKey, err := engine.SessionKey()
	require.NoError(t, err)
	require.Equal(t, clientK, serverKey)

	serverM, err := engine.CalculateProof(client.ephemeralBytes())
	require.NoError(t, err)
	require.Equal(t, clientM, serverM)

	m2, err := engine.HashedServerProof(client.ephemeralBytes(), serverM)
	require.NoError(t, err)
	require.Len(t, m2, srp.ProofSize)
}

func TestRoundTrip_WrongPasswordFailsProof(t *testing.T) {
	const account = "TEST"

	engine, err := srp.New()
	require.NoError(t, err)
	engine.SetAccount(account)
	require.NoError(t, engine.GenerateVerifier())
	require.NoError(t, engine.GenerateServerEphemeral())

	client, err := newReferenceClient(account, "WRONG")
	require.NoError(t, err)

	serverEphemeral, err := engine.ServerEphemeral()
	require.NoError(t, err)

	clientM, _ := client.deriveProof(engine.Salt(), serverEphemeral)

	require.NoError(t, engine.CalculateSessionKey(client.ephemeralBytes()))
	serverM, err := engine.CalculateProof(client.ephemeralBytes())
	require.NoError(t, err)

	require.NotEqual(t, clientM, serverM)
}
