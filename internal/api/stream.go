package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mr1hm/go-flood-alerts/internal/models"
)

const (
	writeWait      = 10 * time.Second    // Time allowed to write a message to the peer.
	pongWait       = 60 * time.Second    // Time allowed to read the next pong message from the peer.
	pingPeriod     = (pongWait * 9) / 10 // Must be less than pongWait.
	maxMessageSize = 512                 // Clients only send control frames.
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type streamMessage struct {
	Type    string          `json:"type"`
	Payload models.Snapshot `json:"payload"`
}

// streamFeed upgrades to a WebSocket, sends the current snapshot and then
// every snapshot the feed publishes until either side goes away.
func (h *Handler) streamFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	id, updates := h.stream.Subscribe()
	if h.metrics != nil {
		h.metrics.StreamClients.Inc()
	}
	h.logger.Debug("feed stream client connected", "remote", conn.RemoteAddr().String())

	readerDone := make(chan struct{})
	go readPump(conn, readerDone)

	writePump(conn, h.feed.Snapshot(), updates, readerDone)

	h.stream.Unsubscribe(id)
	conn.Close()
	<-readerDone

	if h.metrics != nil {
		h.metrics.StreamClients.Dec()
	}
	h.logger.Debug("feed stream client disconnected", "remote", conn.RemoteAddr().String())
}

// readPump discards client messages and keeps the read deadline moving on pongs.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, initial models.Snapshot, updates <-chan models.Snapshot, readerDone <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if err := writeSnapshot(conn, initial); err != nil {
		return
	}

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				// The broadcaster closed; the server is shutting down.
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := writeSnapshot(conn, snap); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readerDone:
			return
		}
	}
}

func writeSnapshot(conn *websocket.Conn, s models.Snapshot) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(streamMessage{Type: "snapshot", Payload: s})
}
