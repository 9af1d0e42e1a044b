package signal

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// writePump is the only writer on the connection. It also drives liveness:
// a ping every PingPeriod, paired with the PongWait read deadline armed in
// readPump.
func (ctl *Controller) writePump(c *wsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump is the only reader. Each pong resets the read deadline; a
// client that stops confirming liveness within PongWait fails the read and
// falls into the same leave path as an explicit close, so half-open
// connections never hold a room slot.
func (ctl *Controller) readPump(sess *session, c *wsSignalConn) {
	defer func() {
		ctl.leave(sess)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("module", "signal").Msg("readPump read error")
			}
			return
		}
		ctl.handleFrame(sess, data)
	}
}

// handleFrame routes one inbound message through the session state
// machine. Malformed input is dropped without reply, and so is anything
// but a join while the session is still unjoined.
func (ctl *Controller) handleFrame(sess *session, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case typeJoin:
		ctl.handleJoin(sess, data)
	case typeLeave:
		ctl.handleLeave(sess)
	case typeOffer, typeAnswer, typeCandidate:
		ctl.handleForward(sess, env.Type, data)
	default:
		log.Debug().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}
