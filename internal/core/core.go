// Package core holds the transport-agnostic relay model: the session and
// connection interfaces and the room registry that owns all membership
// state.
package core

import "github.com/dkeye/wavelink/internal/domain"

// Frame is a marshaled signaling message ready for the wire.
type Frame []byte

type SessionID string

// SignalConnection abstracts the transport endpoint of one member.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	IsOpen() bool
	Close()
}

// PeerSession is what a room stores and fans out to.
type PeerSession interface {
	ID() SessionID
	DisplayName() string
	Signal() SignalConnection
}

// PeerInfo is a read-only roster entry (no transport fields).
type PeerInfo struct {
	ID          SessionID `json:"id"`
	DisplayName string    `json:"displayName"`
}

type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"memberCount"`
}
