// Package signal is the WebSocket adapter of the relay: it upgrades
// connections and routes each inbound message through the per-session
// state machine against the injected registry.
package signal

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/wavelink/internal/config"
	"github.com/dkeye/wavelink/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	cfg      *config.Config
	registry *core.Registry
}

func NewController(cfg *config.Config, reg *core.Registry) *Controller {
	return &Controller{cfg: cfg, registry: reg}
}

// wsSignalConn pairs the websocket with a buffered outbound queue. Sends
// are fire-and-forget: a full queue or a closed connection drops the frame
// instead of blocking the sender's path.
type wsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsSignalConn) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

func (c *wsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSignal upgrades the request and starts the connection pumps. The
// session stays inert until its first join message.
func (ctl *Controller) HandleSignal(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("remote", ws.RemoteAddr().String()).Msg("new WS connection")

	conn := &wsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	sess := newSession(conn)

	go ctl.writePump(conn)
	go ctl.readPump(sess, conn)
}

func (ctl *Controller) sendJSON(conn core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = conn.TrySend(b)
}
