package wsserver

import (
	"log/slog"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// wsConn adapts a Fiber WebSocket connection to the signaling.Conn contract.
// The router may deliver to the same connection from several peers' handlers
// at once, so writes are serialized here.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// handleWebSocket runs one connection: registration, read loop, cleanup.
// The read loop is the only reader, which keeps a single connection's
// messages strictly ordered.
func (m *Module) handleWebSocket(c *websocket.Conn) {
	conn := &wsConn{conn: c}
	router := m.signaling.Router()

	peerID := router.HandleConnect(conn)
	defer router.HandleDisconnect(conn)

	logger := slog.Default().With("peerID", peerID)
	logger.Info("client connected", "remote", c.RemoteAddr().String())

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Info("client closed connection")
			} else {
				logger.Info("connection error", "error", err)
			}
			break
		}
		router.HandleMessage(conn, raw)
	}
}
