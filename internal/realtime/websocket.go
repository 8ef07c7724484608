package realtime

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Handler upgrades HTTP requests to websocket connections that receive every
// broadcast event as a JSON text message. Messages sent by clients are
// ignored.
type Handler struct {
	broadcaster *Broadcaster
	upgrader    websocket.Upgrader
}

func NewHandler(b *Broadcaster) *Handler {
	return &Handler{
		broadcaster: b,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	id, events := h.broadcaster.Subscribe()
	slog.Info("realtime client connected", "subscriber", id, "remote", r.RemoteAddr)

	go writePump(conn, events)
	go h.readPump(conn, id)
}

func (h *Handler) readPump(conn *websocket.Conn, id uint64) {
	defer func() {
		h.broadcaster.Unsubscribe(id)
		conn.Close()
		slog.Info("realtime client disconnected", "subscriber", id)
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "subscriber", id, "error", err)
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, events <-chan *Event) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case e, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"))
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				slog.Debug("websocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
