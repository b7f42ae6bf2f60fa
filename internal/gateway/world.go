package gateway

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"net"
	"strconv"

	"github.com/idewave/tine/internal/config"
	"github.com/idewave/tine/internal/logging"
	"github.com/idewave/tine/internal/protocol"
)

// WorldServer accepts post-auth connections and issues the encryption-seed
// handshake (SMSG_AUTH_CHALLENGE) immediately, before reading anything from
// the client.
type WorldServer struct {
	srv    *server
	logger *logging.Logger
}

// NewWorldServer constructs the World Server from configuration.
func NewWorldServer(cfg *config.Config, logger *logging.Logger) *WorldServer {
	w := &WorldServer{logger: logger}
	addr := net.JoinHostPort(cfg.World.Address, strconv.Itoa(cfg.World.Port))
	w.srv = newServer("world server", addr, logger, w.handleConnection)
	return w
}

// Run serves until ctx is cancelled.
func (w *WorldServer) Run(ctx context.Context) error {
	return w.srv.Run(ctx)
}

// Addr returns the bound listener address, or nil before Run starts.
func (w *WorldServer) Addr() net.Addr {
	return w.srv.Addr()
}

func (w *WorldServer) handleConnection(_ context.Context, conn net.Conn) {
	peerAddr := conn.RemoteAddr().String()

	challenge, err := buildAuthChallenge()
	if err != nil {
		w.logger.Error("failed to build auth challenge", map[string]any{"remote": peerAddr, "error": err.Error()})
		return
	}

	if _, err := conn.Write(challenge.Encode()); err != nil {
		w.logger.Error("failed to write auth challenge", map[string]any{"remote": peerAddr, "error": err.Error()})
		return
	}

	// The world-session protocol beyond the initial handshake is out of
	// scope; the connection is held open only long enough to deliver the
	// challenge and then drained until the peer disconnects.
	buf := make([]byte, readBufferSize)
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}

func buildAuthChallenge() (*protocol.AuthChallengeOut, error) {
	var seedBytes [4]byte
	if _, err := rand.Read(seedBytes[:]); err != nil {
		return nil, err
	}

	out := &protocol.AuthChallengeOut{ServerSeed: binary.LittleEndian.Uint32(seedBytes[:])}
	if _, err := rand.Read(out.Seed[:]); err != nil {
		return nil, err
	}
	return out, nil
}
