package signal

import (
	"encoding/json"

	"github.com/dkeye/wavelink/internal/core"
	"github.com/dkeye/wavelink/internal/domain"
)

// Message types exchanged over the signaling socket.
const (
	typeJoin       = "join"
	typeJoined     = "joined"
	typeRoomFull   = "room-full"
	typePeerJoined = "peer-joined"
	typePeerLeft   = "peer-left"
	typeOffer      = "offer"
	typeAnswer     = "answer"
	typeCandidate  = "candidate"
	typeLeave      = "leave"
)

type envelope struct {
	Type string `json:"type"`
}

type joinRequest struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

type joinedReply struct {
	Type        string          `json:"type"`
	SessionID   core.SessionID  `json:"sessionId"`
	RoomID      domain.RoomName `json:"roomId"`
	DisplayName string          `json:"displayName"`
	Peers       []core.PeerInfo `json:"peers"`
}

type roomFullReply struct {
	Type     string          `json:"type"`
	RoomID   domain.RoomName `json:"roomId"`
	Capacity int             `json:"capacity"`
}

type peerJoinedEvent struct {
	Type        string         `json:"type"`
	SessionID   core.SessionID `json:"sessionId"`
	DisplayName string         `json:"displayName"`
}

type peerLeftEvent struct {
	Type      string         `json:"type"`
	SessionID core.SessionID `json:"sessionId"`
}

// forward is an offer/answer/candidate in flight. Payload stays
// byte-for-byte intact; the relay only attaches the sender id.
type forward struct {
	Type    string          `json:"type"`
	To      core.SessionID  `json:"to"`
	From    core.SessionID  `json:"from,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
