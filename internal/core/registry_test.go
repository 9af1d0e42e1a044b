package core

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/wavelink/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	closed bool
}

func (f *fakeConn) TrySend(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("connection closed")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) received() []Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

type fakePeer struct {
	id   SessionID
	name string
	conn *fakeConn
}

func newFakePeer(id string) *fakePeer {
	return &fakePeer{id: SessionID(id), name: "peer-" + id, conn: &fakeConn{}}
}

func (p *fakePeer) ID() SessionID            { return p.id }
func (p *fakePeer) DisplayName() string      { return p.name }
func (p *fakePeer) Signal() SignalConnection { return p.conn }

func TestRegistry_AdmitRoster(t *testing.T) {
	reg := NewRegistry(12)

	a := newFakePeer("a")
	roster, err := reg.Admit("r1", a, nil)
	require.NoError(t, err)
	assert.Empty(t, roster)

	b := newFakePeer("b")
	roster, err = reg.Admit("r1", b, nil)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, SessionID("a"), roster[0].ID)
	assert.Equal(t, "peer-a", roster[0].DisplayName)

	// The roster never contains the joiner itself.
	c := newFakePeer("c")
	roster, err = reg.Admit("r1", c, nil)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	for _, pi := range roster {
		assert.NotEqual(t, c.ID(), pi.ID)
	}
	// Natural join order.
	assert.Equal(t, SessionID("a"), roster[0].ID)
	assert.Equal(t, SessionID("b"), roster[1].ID)
}

func TestRegistry_Capacity(t *testing.T) {
	const capacity = 3
	reg := NewRegistry(capacity)

	for i := 0; i < capacity; i++ {
		_, err := reg.Admit("r1", newFakePeer(fmt.Sprintf("p%d", i)), nil)
		require.NoError(t, err)
	}

	_, err := reg.Admit("r1", newFakePeer("overflow"), nil)
	assert.ErrorIs(t, err, ErrRoomFull)

	_, members := reg.Stats()
	assert.Equal(t, capacity, members)
	_, found := reg.Lookup("r1", "overflow")
	assert.False(t, found)
}

func TestRegistry_FullRejectionLeavesNoEmptyRoom(t *testing.T) {
	reg := NewRegistry(0)

	_, err := reg.Admit("r1", newFakePeer("a"), nil)
	assert.ErrorIs(t, err, ErrRoomFull)
	rooms, _ := reg.Stats()
	assert.Equal(t, 0, rooms)
}

func TestRegistry_AdmitNotifiesExistingMembersOnly(t *testing.T) {
	reg := NewRegistry(12)

	a := newFakePeer("a")
	_, err := reg.Admit("r1", a, Frame("hello-a"))
	require.NoError(t, err)
	assert.Empty(t, a.conn.received(), "first member has nobody to be announced to")

	b := newFakePeer("b")
	_, err = reg.Admit("r1", b, Frame("hello-b"))
	require.NoError(t, err)

	require.Len(t, a.conn.received(), 1)
	assert.Equal(t, Frame("hello-b"), a.conn.received()[0])
	assert.Empty(t, b.conn.received(), "joiner must not receive its own notice")
}

func TestRegistry_RemoveIdempotentAndReaps(t *testing.T) {
	reg := NewRegistry(12)

	a := newFakePeer("a")
	b := newFakePeer("b")
	_, err := reg.Admit("r1", a, nil)
	require.NoError(t, err)
	_, err = reg.Admit("r1", b, nil)
	require.NoError(t, err)

	assert.True(t, reg.Remove("r1", a.ID(), Frame("a-left")))
	require.Len(t, b.conn.received(), 1)
	assert.Equal(t, Frame("a-left"), b.conn.received()[0])

	// Second removal of the same session is a no-op.
	assert.False(t, reg.Remove("r1", a.ID(), Frame("a-left")))
	assert.Len(t, b.conn.received(), 1)

	_, found := reg.Lookup("r1", a.ID())
	assert.False(t, found)

	// Last member out reaps the room.
	assert.True(t, reg.Remove("r1", b.ID(), Frame("b-left")))
	rooms, members := reg.Stats()
	assert.Equal(t, 0, rooms)
	assert.Equal(t, 0, members)

	// A later join with the same name gets a fresh, empty room.
	roster, err := reg.Admit("r1", newFakePeer("c"), nil)
	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestRegistry_RemoveUnknownRoom(t *testing.T) {
	reg := NewRegistry(12)
	assert.False(t, reg.Remove("nope", "a", nil))
}

func TestRegistry_Broadcast(t *testing.T) {
	reg := NewRegistry(12)

	a := newFakePeer("a")
	b := newFakePeer("b")
	c := newFakePeer("c")
	other := newFakePeer("d")
	for _, p := range []*fakePeer{a, b, c} {
		_, err := reg.Admit("r1", p, nil)
		require.NoError(t, err)
	}
	_, err := reg.Admit("r2", other, nil)
	require.NoError(t, err)

	c.conn.Close()

	sent, dropped := reg.Broadcast("r1", a.ID(), Frame("msg"))
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, dropped)

	assert.Empty(t, a.conn.received(), "sender excluded")
	require.Len(t, b.conn.received(), 1)
	assert.Empty(t, other.conn.received(), "no cross-room delivery")

	// A closed member is skipped, never evicted, by a broadcast.
	_, found := reg.Lookup("r1", c.ID())
	assert.True(t, found)
}

func TestRegistry_BroadcastUnknownRoom(t *testing.T) {
	reg := NewRegistry(12)
	sent, dropped := reg.Broadcast("nope", "a", Frame("msg"))
	assert.Zero(t, sent)
	assert.Zero(t, dropped)
}

func TestRegistry_List(t *testing.T) {
	reg := NewRegistry(12)
	_, err := reg.Admit("r1", newFakePeer("a"), nil)
	require.NoError(t, err)
	_, err = reg.Admit("r1", newFakePeer("b"), nil)
	require.NoError(t, err)
	_, err = reg.Admit("r2", newFakePeer("c"), nil)
	require.NoError(t, err)

	infos := reg.List()
	require.Len(t, infos, 2)
	byName := map[domain.RoomName]int{}
	for _, info := range infos {
		byName[info.Name] = info.MemberCount
	}
	assert.Equal(t, 2, byName["r1"])
	assert.Equal(t, 1, byName["r2"])
}
