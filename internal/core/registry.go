package core

import (
	"errors"
	"sync"

	"github.com/dkeye/wavelink/internal/domain"
	"github.com/rs/zerolog/log"
)

// ErrRoomFull rejects an admit into a room at capacity.
var ErrRoomFull = errors.New("room full")

type room struct {
	members map[SessionID]PeerSession
	order   []SessionID
}

// roster returns members in natural join order.
func (r *room) roster() []PeerInfo {
	out := make([]PeerInfo, 0, len(r.order))
	for _, sid := range r.order {
		ps := r.members[sid]
		out = append(out, PeerInfo{ID: ps.ID(), DisplayName: ps.DisplayName()})
	}
	return out
}

// Registry owns the room-to-members mapping. All mutation goes through
// Admit and Remove, so under concurrent connection pumps a session appears
// in at most one room and a room exists iff it has members. Rooms are
// created lazily and reaped the moment they empty.
type Registry struct {
	capacity int

	mu    sync.RWMutex
	rooms map[domain.RoomName]*room
}

func NewRegistry(capacity int) *Registry {
	return &Registry{
		capacity: capacity,
		rooms:    make(map[domain.RoomName]*room),
	}
}

func (reg *Registry) Capacity() int { return reg.capacity }

// Admit inserts the session into the room, creating the room on first use,
// and returns the roster as it was before insertion. A full room leaves
// state untouched and returns ErrRoomFull. notice, when non-nil, is fanned
// out to the pre-existing members under the same lock, so membership
// events reach every member's send queue in admit order and the returned
// roster can never contain the joiner.
func (reg *Registry) Admit(name domain.RoomName, ps PeerSession, notice Frame) ([]PeerInfo, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, existed := reg.rooms[name]
	if !existed {
		r = &room{members: make(map[SessionID]PeerSession)}
		reg.rooms[name] = r
	}
	if len(r.members) >= reg.capacity {
		if !existed {
			delete(reg.rooms, name)
		}
		return nil, ErrRoomFull
	}

	roster := r.roster()
	r.members[ps.ID()] = ps
	r.order = append(r.order, ps.ID())
	if notice != nil {
		r.fanOut(ps.ID(), notice)
	}
	log.Info().Str("module", "core.registry").Str("room", string(name)).Str("sid", string(ps.ID())).Int("members", len(r.members)).Msg("member admitted")
	return roster, nil
}

// Remove deletes the session from the room if present and reaps the room
// when it empties. Removing an absent session is a no-op. notice is
// broadcast to the members remaining after removal.
func (reg *Registry) Remove(name domain.RoomName, sid SessionID, notice Frame) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[name]
	if !ok {
		return false
	}
	if _, ok := r.members[sid]; !ok {
		return false
	}
	delete(r.members, sid)
	for i, id := range r.order {
		if id == sid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if len(r.members) == 0 {
		delete(reg.rooms, name)
		log.Info().Str("module", "core.registry").Str("room", string(name)).Msg("room reaped")
	} else if notice != nil {
		r.fanOut(sid, notice)
	}
	log.Info().Str("module", "core.registry").Str("room", string(name)).Str("sid", string(sid)).Msg("member removed")
	return true
}

// Lookup resolves a forward target against current membership.
func (reg *Registry) Lookup(name domain.RoomName, sid SessionID) (PeerSession, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rooms[name]
	if !ok {
		return nil, false
	}
	ps, ok := r.members[sid]
	return ps, ok
}

// Broadcast sends frame to every open member of the room except exceptID.
// Members with a closed connection are skipped; eviction is driven only by
// the leave path, never by a failed send.
func (reg *Registry) Broadcast(name domain.RoomName, exceptID SessionID, frame Frame) (sent, dropped int) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rooms[name]
	if !ok {
		return 0, 0
	}
	sent, dropped = r.fanOut(exceptID, frame)
	log.Debug().Str("module", "core.registry").Str("room", string(name)).Int("sent", sent).Int("dropped", dropped).Msg("broadcast result")
	return sent, dropped
}

func (r *room) fanOut(exceptID SessionID, frame Frame) (sent, dropped int) {
	for sid, ps := range r.members {
		if sid == exceptID {
			continue
		}
		conn := ps.Signal()
		if !conn.IsOpen() {
			dropped++
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			dropped++
			continue
		}
		sent++
	}
	return sent, dropped
}

func (reg *Registry) List() []RoomInfo {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]RoomInfo, 0, len(reg.rooms))
	for name, r := range reg.rooms {
		out = append(out, RoomInfo{Name: name, MemberCount: len(r.members)})
	}
	return out
}

func (reg *Registry) Stats() (rooms, members int) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	rooms = len(reg.rooms)
	for _, r := range reg.rooms {
		members += len(r.members)
	}
	return rooms, members
}
