package store

import (
	"sync"
	"time"

	"github.com/Maxim12412/Monopolista/internal/game"
	"github.com/Maxim12412/Monopolista/internal/model"
)

// MaxPlayers caps the room roster.
const MaxPlayers = 6

// RoomStore is the in-memory registry of live rooms, keyed by room code. It
// is constructed in main and injected everywhere; there is no package-level
// instance.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*model.Room
}

func New() *RoomStore {
	return &RoomStore{rooms: make(map[string]*model.Room)}
}

// Get returns the room for a code, or nil.
func (s *RoomStore) Get(code string) *model.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[code]
}

// Put registers a room (used by crash-recovery rehydration).
func (s *RoomStore) Put(r *model.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.Code] = r
}

// Delete removes a room from the registry.
func (s *RoomStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

// Exists reports whether a code is taken.
func (s *RoomStore) Exists(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[code]
	return ok
}

// Count returns the number of live rooms.
func (s *RoomStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// CreateRoom builds a new waiting room with the creator as host.
func (s *RoomStore) CreateRoom(code, nickname, connID string) (*model.Room, *model.Player) {
	now := time.Now()
	host := &model.Player{
		ID:       connID,
		Nickname: nickname,
		Color:    model.Colors[0],
		JoinedAt: now,
	}
	room := &model.Room{
		Code:         code,
		Status:       model.RoomWaiting,
		HostID:       connID,
		Ready:        map[string]bool{connID: false},
		Players:      []*model.Player{host},
		Board:        game.NewBoard(),
		Phase:        model.PhaseRoll,
		CreatedAt:    now,
		LastActivity: now,
	}
	s.mu.Lock()
	s.rooms[code] = room
	s.mu.Unlock()
	return room, host
}

// Join adds a player to a waiting room, or rebinds a returning player to a
// playing room when the nickname matches an existing record. Callers hold
// the room lock.
func (s *RoomStore) Join(r *model.Room, nickname, connID string) (*model.Player, error) {
	if r.Status == model.RoomPlaying {
		existing := r.PlayerByNickname(nickname)
		if existing == nil {
			return nil, model.ErrGameStarted
		}
		Rebind(r, existing.ID, connID)
		existing.DisconnectedAt = nil
		return existing, nil
	}
	if len(r.Players) >= MaxPlayers {
		return nil, model.ErrRoomFull
	}
	if r.PlayerByNickname(nickname) != nil {
		return nil, model.ErrNicknameTaken
	}
	p := &model.Player{
		ID:       connID,
		Nickname: nickname,
		Color:    nextColor(r),
		JoinedAt: time.Now(),
	}
	r.Players = append(r.Players, p)
	r.Ready[connID] = false
	return p, nil
}

// Rebind replaces a player's identity with a new connection identity
// everywhere the room references it: the player record, host and winner
// pointers, the ready map, board tile owners, and the pending action target.
// Callers hold the room lock, so no intent can observe the old identity
// mid-swap.
func Rebind(r *model.Room, oldID, newID string) {
	p := r.PlayerByID(oldID)
	if p == nil {
		return
	}
	p.ID = newID
	if r.HostID == oldID {
		r.HostID = newID
	}
	if r.WinnerID == oldID {
		r.WinnerID = newID
	}
	if ready, ok := r.Ready[oldID]; ok {
		delete(r.Ready, oldID)
		r.Ready[newID] = ready
	}
	for i := range r.Board {
		if r.Board[i].OwnerID == oldID {
			r.Board[i].OwnerID = newID
		}
	}
	if r.Pending != nil && r.Pending.PlayerID == oldID {
		r.Pending.PlayerID = newID
	}
}

// Disconnect flags a player as gone. In a waiting room the player is removed
// outright and the host reassigned; the returned bool reports whether the
// room became empty and was deleted. Callers hold the room lock.
func (s *RoomStore) Disconnect(r *model.Room, playerID string) (removed bool) {
	p := r.PlayerByID(playerID)
	if p == nil {
		return false
	}
	now := time.Now()
	p.Connected = false
	p.DisconnectedAt = &now

	if r.Status == model.RoomWaiting {
		for i, q := range r.Players {
			if q.ID == playerID {
				r.Players = append(r.Players[:i], r.Players[i+1:]...)
				break
			}
		}
		delete(r.Ready, playerID)
		if len(r.Players) == 0 {
			s.Delete(r.Code)
			return true
		}
		if r.HostID == playerID {
			r.HostID = r.Players[0].ID
		}
	}
	return false
}

// IdleRooms returns codes of rooms whose players are all disconnected and
// have been so since before the cutoff. Feeds the periodic sweeper.
func (s *RoomStore) IdleRooms(cutoff time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var codes []string
	for code, r := range s.rooms {
		if allIdleSince(r, cutoff) {
			codes = append(codes, code)
		}
	}
	return codes
}

func allIdleSince(r *model.Room, cutoff time.Time) bool {
	if len(r.Players) == 0 {
		return r.LastActivity.Before(cutoff)
	}
	for _, p := range r.Players {
		if p.Connected {
			return false
		}
		if p.DisconnectedAt == nil || p.DisconnectedAt.After(cutoff) {
			return false
		}
	}
	return true
}

func nextColor(r *model.Room) string {
	taken := make(map[string]bool, len(r.Players))
	for _, p := range r.Players {
		taken[p.Color] = true
	}
	for _, c := range model.Colors {
		if !taken[c] {
			return c
		}
	}
	return model.Colors[len(r.Players)%len(model.Colors)]
}
