package chat

import (
	"sort"
	"sync"
	"time"

	domain "github.com/example/veilchat/domain/chat"
)

// RoomStore owns the mapping from room code to room state: membership set,
// bounded message log, and creation time. A room with zero members never
// exists in the store; RemoveMember deletes the room in the same locked
// operation that empties it.
type RoomStore struct {
	mu       sync.RWMutex
	rooms    map[string]*domain.Room
	members  map[string]map[string]struct{} // roomID -> set of session IDs
	messages map[string][]domain.Message    // roomID -> log, oldest first
}

// NewRoomStore creates an empty room store.
func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms:    make(map[string]*domain.Room),
		members:  make(map[string]map[string]struct{}),
		messages: make(map[string][]domain.Message),
	}
}

// CreateRoom generates a fresh room code, inserts an empty room, and returns
// it. Generation is retried until the code does not collide with a live room.
func (s *RoomStore) CreateRoom() (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var code string
	for {
		generated, err := GenerateRoomCode()
		if err != nil {
			return domain.Room{}, err
		}
		if _, taken := s.rooms[generated]; !taken {
			code = generated
			break
		}
	}

	room := &domain.Room{
		ID:        code,
		CreatedAt: time.Now().UTC(),
	}
	s.rooms[code] = room
	s.members[code] = make(map[string]struct{})
	s.messages[code] = make([]domain.Message, 0)
	return *room, nil
}

// Get returns a copy of the room.
func (s *RoomStore) Get(roomID string) (domain.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return domain.Room{}, false
	}
	return *room, true
}

// AddMember inserts a session into a room and returns the new member count.
// Fails with ErrRoomNotFound or ErrRoomFull; membership is unchanged on error.
func (s *RoomStore) AddMember(roomID, sessionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.members[roomID]
	if !ok {
		return 0, ErrRoomNotFound
	}
	if _, already := members[sessionID]; !already && len(members) >= MaxRoomMembers {
		return 0, ErrRoomFull
	}
	members[sessionID] = struct{}{}
	return len(members), nil
}

// RemoveMember removes a session from a room and returns the new member
// count. When the count reaches zero the room and its log are deleted before
// the lock is released, so no caller can observe an empty room. The second
// return reports whether the session was actually a member.
func (s *RoomStore) RemoveMember(roomID, sessionID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.members[roomID]
	if !ok {
		return 0, false
	}
	if _, present := members[sessionID]; !present {
		return len(members), false
	}

	delete(members, sessionID)
	count := len(members)
	if count == 0 {
		delete(s.rooms, roomID)
		delete(s.members, roomID)
		delete(s.messages, roomID)
	}
	return count, true
}

// AppendMessage appends to the room's log, dropping the oldest entries when
// the log exceeds MaxHistorySize. Appending to an unknown room is a no-op.
func (s *RoomStore) AppendMessage(roomID string, msg domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.messages[roomID]
	if !ok {
		return false
	}
	log = append(log, msg)
	if len(log) > MaxHistorySize {
		log = log[len(log)-MaxHistorySize:]
	}
	s.messages[roomID] = log
	return true
}

// RecentMessages returns the last n messages of a room, oldest first. The
// result is never nil.
func (s *RoomStore) RecentMessages(roomID string, n int) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.messages[roomID]
	if n <= 0 || n > len(log) {
		n = len(log)
	}
	result := make([]domain.Message, n)
	copy(result, log[len(log)-n:])
	return result
}

// MemberIDs returns a snapshot of the room's member session IDs.
func (s *RoomStore) MemberIDs(roomID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := s.members[roomID]
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MemberCount returns the current member count of a room, 0 if it does not exist.
func (s *RoomStore) MemberCount(roomID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members[roomID])
}

// Len returns the number of live rooms.
func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
