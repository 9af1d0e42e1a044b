package signal

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/wavelink/internal/core"
	"github.com/dkeye/wavelink/internal/domain"
)

func (ctl *Controller) handleJoin(sess *session, data []byte) {
	var req joinRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}

	sess.mu.Lock()
	if sess.state != stateUnjoined {
		sess.mu.Unlock()
		return
	}
	roomName := domain.SanitizeRoomName(req.RoomID)
	sid := core.SessionID(uuid.NewString())
	name := domain.SanitizeDisplayName(req.DisplayName)
	sess.id = sid
	sess.displayName = name
	sess.mu.Unlock()

	notice, err := json.Marshal(peerJoinedEvent{Type: typePeerJoined, SessionID: sid, DisplayName: name})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal peer-joined")
		return
	}

	roster, err := ctl.registry.Admit(roomName, sess, notice)
	if err != nil {
		if errors.Is(err, core.ErrRoomFull) {
			log.Info().Str("module", "signal").Str("room", string(roomName)).Msg("join rejected, room full")
			sess.mu.Lock()
			sess.id = ""
			sess.displayName = ""
			sess.mu.Unlock()
			ctl.sendJSON(sess.conn, roomFullReply{
				Type:     typeRoomFull,
				RoomID:   roomName,
				Capacity: ctl.registry.Capacity(),
			})
		}
		return
	}

	sess.mu.Lock()
	sess.state = stateJoined
	sess.room = roomName
	sess.mu.Unlock()

	ctl.sendJSON(sess.conn, joinedReply{
		Type:        typeJoined,
		SessionID:   sid,
		RoomID:      roomName,
		DisplayName: name,
		Peers:       roster,
	})
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(roomName)).Str("name", name).Msg("join")
}

// handleLeave serves an explicit leave frame. Before a join there is
// nothing to leave: the frame is ignored like any other pre-join message
// and the connection stays usable.
func (ctl *Controller) handleLeave(sess *session) {
	if state, _, _ := sess.snapshot(); state != stateJoined {
		return
	}
	ctl.leave(sess)
	sess.conn.Close()
}

// leave is the single removal routine. Every departure funnels here:
// explicit leave, client close, transport error, liveness timeout. The
// state check makes it run at most once per session.
func (ctl *Controller) leave(sess *session) {
	sess.mu.Lock()
	if sess.state != stateJoined {
		sess.state = stateClosed
		sess.mu.Unlock()
		return
	}
	sess.state = stateClosed
	sid := sess.id
	roomName := sess.room
	sess.room = ""
	sess.mu.Unlock()

	notice, err := json.Marshal(peerLeftEvent{Type: typePeerLeft, SessionID: sid})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal peer-left")
		notice = nil
	}
	ctl.registry.Remove(roomName, sid, notice)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(roomName)).Msg("session left")
}
