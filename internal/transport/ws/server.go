// Package ws exposes the streaming session protocol over a WebSocket
// endpoint: one connection, one session handler, ordered server events.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"sign-stream-service/internal/observability/logging"
	"sign-stream-service/internal/schema"
	"sign-stream-service/internal/service/session"
)

const writeTimeout = 5 * time.Second

// Server upgrades HTTP requests and runs the per-connection read and
// write pumps around a session handler.
type Server struct {
	deps     session.Deps
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewServer(deps session.Deps) *Server {
	return &Server{
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: logging.WithComponent("ws"),
	}
}

// ServeHTTP upgrades the connection and blocks for its lifetime. The
// write pump drains the handler's event channel; the read pump owns
// the connection close.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("upgrade failed")
		return
	}

	h := session.NewHandler(s.deps)
	log := logging.WithSession(h.ID()).With().Str("remote", r.RemoteAddr).Logger()
	log.Info().Msg("client connected")

	done := make(chan struct{})
	go s.writePump(conn, h, log, done)

	s.readPump(conn, h, log)

	// Teardown closes the event channel, which ends the write pump.
	h.Disconnect()
	<-done
	_ = conn.Close()
	log.Info().Msg("client disconnected")
}

func (s *Server) readPump(conn *websocket.Conn, h *session.Handler, log zerolog.Logger) {
	ctx := context.Background()
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("read error")
			}
			return
		}

		if msgType == websocket.BinaryMessage {
			h.Audio(ctx, data)
			continue
		}

		env, err := parseClientMessage(data)
		if err != nil {
			h.RejectMessage(session.KindBadPayload, err.Error())
			continue
		}

		switch env.Type {
		case msgStartStreaming:
			cfg := env.streamConfig()
			if err := schema.ValidateStreamConfig(cfg); err != nil {
				h.RejectMessage(session.KindInvalidConfig, err.Error())
				continue
			}
			h.Start(ctx, cfg)
		case msgAudioData:
			chunk, err := env.decodeAudio()
			if err != nil {
				h.RejectMessage(session.KindBadPayload, err.Error())
				continue
			}
			h.Audio(ctx, chunk)
		case msgStopStreaming:
			h.Stop()
		case msgDisconnect:
			return
		default:
			log.Warn().Str("type", env.Type).Msg("unknown message type")
			h.RejectMessage(session.KindBadPayload, "unknown message type "+env.Type)
		}
	}
}

// writePump serializes every session event for this client. It is the
// only writer on the connection.
func (s *Server) writePump(conn *websocket.Conn, h *session.Handler, log zerolog.Logger, done chan<- struct{}) {
	defer close(done)

	for ev := range h.Events() {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Error().Err(err).Str("event", ev.Type).Msg("event marshal failed")
			continue
		}
		if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Warn().Err(err).Msg("write error")
			return
		}
	}

	// Event channel closed: session is fully stopped, say goodbye.
	// Closing the connection also unblocks a read pump still waiting on
	// a client that will never send again (reaper or provider teardown).
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
}
