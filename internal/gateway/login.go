package gateway

import (
	"context"
	"net"
	"strconv"

	"github.com/idewave/tine/internal/config"
	"github.com/idewave/tine/internal/handler"
	"github.com/idewave/tine/internal/logging"
	"github.com/idewave/tine/internal/realm"
	"github.com/idewave/tine/internal/session"
	"github.com/idewave/tine/internal/srp"
)

// LoginServer accepts the SRP login handshake and serves the realm
// directory. It carries a session store shared across all connections for
// the lifetime of the process, and one processor table.
type LoginServer struct {
	srv        *server
	processors []handler.Processor
	sessions   *session.Store
	logger     *logging.Logger
}

// NewLoginServer constructs the Login Server from configuration.
func NewLoginServer(cfg *config.Config, logger *logging.Logger) *LoginServer {
	directory := realm.New(cfg.World.Port, cfg.Realms.CountMin, cfg.Realms.CountMax)
	sessions := session.NewStore()

	l := &LoginServer{
		processors: []handler.Processor{handler.AuthProcessor(directory)},
		sessions:   sessions,
		logger:     logger,
	}
	addr := net.JoinHostPort(cfg.Login.Address, strconv.Itoa(cfg.Login.Port))
	l.srv = newServer("login server", addr, logger, l.handleConnection)
	return l
}

// Run serves until ctx is cancelled.
func (l *LoginServer) Run(ctx context.Context) error {
	return l.srv.Run(ctx)
}

// Addr returns the bound listener address, or nil before Run starts.
func (l *LoginServer) Addr() net.Addr {
	return l.srv.Addr()
}

// Sessions exposes the connection-keyed session key store, e.g. for a
// future World Server handoff.
func (l *LoginServer) Sessions() *session.Store {
	return l.sessions
}

func (l *LoginServer) handleConnection(ctx context.Context, conn net.Conn) {
	peerAddr := conn.RemoteAddr().String()
	l.sessions.Create(peerAddr)
	defer l.sessions.Delete(peerAddr)

	engineHandle, err := srp.NewHandle()
	if err != nil {
		l.logger.Error("failed to create srp handle", map[string]any{"remote": peerAddr, "error": err.Error()})
		return
	}

	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			return
		}

		packet := buf[:n]
		in := &handler.HandlerInput{
			Opcode:  packet[0],
			Payload: packet[1:],
			Srp:     engineHandle,
		}

		for _, proc := range l.processors {
			for _, h := range proc(in) {
				outputs, err := h.Handle(ctx, in)
				if err != nil {
					l.logger.Error("handler failed", map[string]any{
						"remote": peerAddr,
						"opcode": in.Opcode,
						"error":  err.Error(),
					})
					continue
				}

				for _, out := range outputs {
					switch out.Kind {
					case handler.OutputData:
						if _, err := conn.Write(out.Data); err != nil {
							l.logger.Error("write failed", map[string]any{"remote": peerAddr, "error": err.Error()})
							return
						}
					case handler.OutputSessionKey:
						l.sessions.SetKey(peerAddr, out.SessionKey)
					}
				}
			}
		}
	}
}
