package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"sad/backend/pkg/origin"
)

const (
	writeWait  = 10 * time.Second
	pongDelay  = 60 * time.Second
	pingPeriod = (pongDelay * 9) / 10
)

// Streamer serves the realtime notification feed over WebSocket.
type Streamer struct {
	hub      *Hub
	upgrader websocket.Upgrader
	clients  prometheus.Gauge
	logger   *zap.Logger
}

// NewStreamer creates a Streamer. allowedOrigins follows the CORS rules
// ("*", trailing slashes); an empty list accepts any origin. clients may be nil.
func NewStreamer(hub *Hub, allowedOrigins []string, clients prometheus.Gauge, logger *zap.Logger) *Streamer {
	allowed := origin.New(allowedOrigins)
	return &Streamer{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				o := r.Header.Get("Origin")
				// native apps send no Origin header
				return o == "" || allowed.Empty() || allowed.Allows(o)
			},
		},
		clients: clients,
		logger:  logger,
	}
}

// Serve upgrades the request and streams workerID's notifications until the
// client goes away or ctx is cancelled.
func (s *Streamer) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, workerID string) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if s.clients != nil {
		s.clients.Inc()
		defer s.clients.Dec()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := s.hub.Subscribe(ctx, workerID)
	if err != nil {
		s.logger.Error("realtime subscribe failed", zap.String("worker_id", workerID), zap.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"),
			time.Now().Add(writeWait))
		return
	}

	// ping/pong lets the server notice when the client goes away
	_ = conn.SetReadDeadline(time.Now().Add(pongDelay))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongDelay))
	})
	go s.drain(conn, cancel)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	s.logger.Debug("realtime client connected", zap.String("worker_id", workerID))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.logger.Debug("failed to write ping", zap.Error(err))
				return
			}
		case msg, ok := <-messages:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.logger.Debug("failed to write message", zap.Error(err))
				return
			}
		}
	}
}

// drain reads and discards client frames so control frames are processed;
// a read error means the connection is gone.
func (s *Streamer) drain(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
