package signaling

import (
	"sync"

	"github.com/google/uuid"
)

// Session is the mutable per-connection state owned by the Store.
type Session struct {
	ID   string // assigned once at registration, immutable afterwards
	Room string // empty until the peer joins a room
}

// Member pairs a room member's identity with its connection handle.
type Member struct {
	ID   string
	Conn Conn
}

// Store is the connection registry and room directory. One mutex guards both
// maps so that join, leave and disconnect sequences are atomic with respect
// to each other and no handler can observe a half-updated pair.
type Store struct {
	mu    sync.Mutex
	peers map[Conn]*Session
	rooms map[string]map[Conn]struct{}
	newID func() string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		peers: make(map[Conn]*Session),
		rooms: make(map[string]map[Conn]struct{}),
		newID: uuid.NewString,
	}
}

// Register allocates an identity for conn and stores a fresh session.
func (s *Store) Register(conn Conn) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	s.peers[conn] = &Session{ID: id}
	return id
}

// Lookup returns a copy of conn's session.
func (s *Store) Lookup(conn Conn) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.peers[conn]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// SetRoom updates conn's current room. Unregistered connections are ignored.
func (s *Store) SetRoom(conn Conn, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.peers[conn]; ok {
		sess.Room = roomID
	}
}

// Deregister removes conn and returns its last session so the caller can
// clean up room state. Calling it again for the same conn reports not found.
func (s *Store) Deregister(conn Conn) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.peers[conn]
	if !ok {
		return Session{}, false
	}
	delete(s.peers, conn)
	return *sess, true
}

// Join adds conn to roomID, creating the room on first use. Adding an
// existing member is a no-op.
func (s *Store) Join(roomID string, conn Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.joinLocked(roomID, conn)
}

// Members returns the members of roomID, empty when the room does not exist.
func (s *Store) Members(roomID string) []Member {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.membersLocked(roomID, nil)
}

// Leave removes conn from roomID and deletes the room once its member set is
// empty. Unknown rooms and non-members are a no-op.
func (s *Store) Leave(roomID string, conn Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leaveLocked(roomID, conn)
}

// PeerCount returns the number of registered connections.
func (s *Store) PeerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}

// RoomCount returns the number of rooms with at least one member.
func (s *Store) RoomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// JoinResult is the membership snapshot taken while a join executes.
type JoinResult struct {
	ID        string   // joining peer's identity
	New       bool     // conn was not already a member of the room
	Left      string   // previous room the peer was moved out of, if any
	Remaining []Member // members still in the previous room
	Others    []Member // the other members of the joined room
}

// JoinRoom atomically moves conn into roomID. A peer sitting in a different
// room is removed from it first, so membership and the session's room pointer
// never diverge. Returns false when conn is not registered.
func (s *Store) JoinRoom(conn Conn, roomID string) (JoinResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.peers[conn]
	if !ok {
		return JoinResult{}, false
	}

	res := JoinResult{ID: sess.ID}
	if sess.Room != "" && sess.Room != roomID {
		res.Left = sess.Room
		s.leaveLocked(sess.Room, conn)
		res.Remaining = s.membersLocked(res.Left, nil)
	}

	sess.Room = roomID
	res.New = s.joinLocked(roomID, conn)
	res.Others = s.membersLocked(roomID, conn)
	return res, true
}

// LeaveResult is the snapshot captured while a disconnect cleanup executes.
type LeaveResult struct {
	ID        string   // identity of the removed peer
	Room      string   // room the peer was in, empty if none
	Remaining []Member // members still in that room
}

// RemovePeer atomically deregisters conn and removes it from its room.
// Returns false when conn was already deregistered, making redundant
// disconnect handling a safe no-op.
func (s *Store) RemovePeer(conn Conn) (LeaveResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.peers[conn]
	if !ok {
		return LeaveResult{}, false
	}
	delete(s.peers, conn)

	res := LeaveResult{ID: sess.ID, Room: sess.Room}
	if sess.Room != "" {
		s.leaveLocked(sess.Room, conn)
		res.Remaining = s.membersLocked(sess.Room, nil)
	}
	return res, true
}

// ResolveTarget finds the member of conn's current room whose identity is to,
// never conn itself. Also returns the sender's identity for the from rewrite.
func (s *Store) ResolveTarget(conn Conn, to string) (Conn, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.peers[conn]
	if !ok || sess.Room == "" {
		return nil, "", false
	}
	for member := range s.rooms[sess.Room] {
		if member == conn {
			continue
		}
		if peer, ok := s.peers[member]; ok && peer.ID == to {
			return member, sess.ID, true
		}
	}
	return nil, "", false
}

// joinLocked reports whether conn was newly added to the room.
func (s *Store) joinLocked(roomID string, conn Conn) bool {
	room, ok := s.rooms[roomID]
	if !ok {
		room = make(map[Conn]struct{})
		s.rooms[roomID] = room
	}
	if _, present := room[conn]; present {
		return false
	}
	room[conn] = struct{}{}
	return true
}

func (s *Store) leaveLocked(roomID string, conn Conn) {
	room, ok := s.rooms[roomID]
	if !ok {
		return
	}
	delete(room, conn)
	if len(room) == 0 {
		delete(s.rooms, roomID)
	}
}

func (s *Store) membersLocked(roomID string, exclude Conn) []Member {
	room := s.rooms[roomID]
	members := make([]Member, 0, len(room))
	for conn := range room {
		if conn == exclude {
			continue
		}
		if sess, ok := s.peers[conn]; ok {
			members = append(members, Member{ID: sess.ID, Conn: conn})
		}
	}
	return members
}
