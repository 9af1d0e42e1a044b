package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// handleForward relays an offer, answer, or candidate to the session named
// by "to" in the sender's room. The relay never interprets the payload; it
// only attaches the sender id. A nonexistent or closed target means a
// silent drop: best-effort delivery, retries are the client's business.
func (ctl *Controller) handleForward(sess *session, kind string, data []byte) {
	state, sid, roomName := sess.snapshot()
	if state != stateJoined {
		return
	}

	var msg forward
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad forward payload")
		return
	}
	if msg.To == "" {
		return
	}

	target, ok := ctl.registry.Lookup(roomName, msg.To)
	if !ok || !target.Signal().IsOpen() {
		log.Debug().Str("module", "signal").Str("type", kind).Str("to", string(msg.To)).Msg("forward target unavailable")
		return
	}

	msg.From = sid
	out, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal forward")
		return
	}
	if err := target.Signal().TrySend(out); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("to", string(msg.To)).Msg("forward dropped")
		return
	}
	log.Debug().Str("module", "signal").Str("type", kind).Str("from", string(sid)).Str("to", string(msg.To)).Msg("forwarded")
}
