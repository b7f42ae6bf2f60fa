package gateway_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/idewave/tine/internal/config"
	"github.com/idewave/tine/internal/gateway"
	"github.com/idewave/tine/internal/logging"
	"github.com/idewave/tine/internal/protocol"
)

func testLogger() *logging.Logger {
	l := logging.New(logging.LevelError, logging.FormatJSON)
	l.SetOutput(discardWriter{}, discardWriter{})
	return l
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func startLoginServer(t *testing.T, cfg *config.Config) *gateway.LoginServer {
	t.Helper()
	srv := gateway.NewLoginServer(cfg, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, time.Second, time.Millisecond)
	return srv
}

func dial(t *testing.T, addr net.Addr) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr.String(), 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	return conn
}

func TestLoginServer_LoginChallengeRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Login.Port = 0
	srv := startLoginServer(t, cfg)
	conn := dial(t, srv.Addr())

	payload := buildLoginChallengePayload("TEST")
	packet := append([]byte{protocol.OpLoginChallenge}, payload...)
	_, err := conn.Write(packet)
	require.NoError(t, err)

	buf := make([]byte, 512)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Greater(t, n, 0)
	require.Equal(t, protocol.OpLoginChallenge, buf[0])
}

func TestLoginServer_RealmListRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Login.Port = 0
	cfg.Realms.CountMin = 2
	cfg.Realms.CountMax = 2
	srv := startLoginServer(t, cfg)
	conn := dial(t, srv.Addr())

	_, err := conn.Write([]byte{protocol.OpRealmList})
	require.NoError(t, err)

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Greater(t, n, 0)
	require.Equal(t, protocol.OpRealmList, buf[0])
}

func TestWorldServer_WritesAuthChallengeImmediately(t *testing.T) {
	cfg := config.Default()
	cfg.World.Port = 0
	srv := gateway.NewWorldServer(cfg, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = srv.Run(ctx) }()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, time.Second, time.Millisecond)
	conn := dial(t, srv.Addr())

	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 44, n)

	opcode := uint16(buf[2]) | uint16(buf[3])<<8
	require.Equal(t, protocol.OpSMSGAuthChallenge, opcode)
}

func TestLoginServer_UnknownOpcodeKeepsConnectionOpen(t *testing.T) {
	cfg := config.Default()
	cfg.Login.Port = 0
	srv := startLoginServer(t, cfg)
	conn := dial(t, srv.Addr())

	_, err := conn.Write([]byte{0xFF})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	require.Equal(t, 0, n)
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	require.True(t, netErr.Timeout())

	// The connection must still be usable: a subsequent recognized opcode
	// gets a reply on the same socket.
	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Write([]byte{protocol.OpRealmList})
	require.NoError(t, err)
	n, err = conn.Read(buf)
	require.NoError(t, err)
	require.Greater(t, n, 0)
	require.Equal(t, protocol.OpRealmList, buf[0])
}

func buildLoginChallengePayload(account string) []byte {
	w := protocol.NewWriter()
	w.WriteU8(0)
	w.WriteU16LE(0)
	w.WriteCString("WoW")
	w.WriteBytes([]byte{3, 3, 5})
	w.WriteU16LE(12340)
	w.WriteCString("x86")
	w.WriteCString("Win")
	w.WriteBytes([]byte{0x65, 0x6E, 0x55, 0x53})
	w.WriteU32LE(0)
	w.WriteBytes([]byte{127, 0, 0, 1})
	w.WriteU8(uint8(len(account))) //nolint:gosec // test account names are short
	w.WriteBytes([]byte(account))
	return w.Bytes()
}
