package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Maxim12412/Monopolista/internal/cache"
	"github.com/Maxim12412/Monopolista/internal/config"
	"github.com/Maxim12412/Monopolista/internal/game"
	"github.com/Maxim12412/Monopolista/internal/metrics"
	"github.com/Maxim12412/Monopolista/internal/model"
	"github.com/Maxim12412/Monopolista/internal/repository"
	"github.com/Maxim12412/Monopolista/internal/store"

	"github.com/google/uuid"
)

const minPlayersToStart = 2

// GameService owns intent handling for all rooms: it validates the actor and
// phase, drives the engine under the room lock, pushes the resulting events
// through the broadcaster, and keeps the snapshot store and caches current.
type GameService struct {
	store       *store.RoomStore
	engine      *game.Engine
	snapshots   repository.SnapshotRepo
	roomCache   cache.RoomCache
	leaderboard cache.LeaderboardCache
	authSvc     *AuthService
	broadcaster Broadcaster

	turnTimeout      time.Duration
	snapshotDebounce time.Duration
	idleEvict        time.Duration

	mu         sync.Mutex
	turnTimers map[string]*time.Timer
	saveTimers map[string]*time.Timer
}

// NewGameService creates a new game service.
func NewGameService(
	st *store.RoomStore,
	engine *game.Engine,
	snapshots repository.SnapshotRepo,
	roomCache cache.RoomCache,
	leaderboard cache.LeaderboardCache,
	authSvc *AuthService,
	cfg *config.Config,
) *GameService {
	return &GameService{
		store:            st,
		engine:           engine,
		snapshots:        snapshots,
		roomCache:        roomCache,
		leaderboard:      leaderboard,
		authSvc:          authSvc,
		turnTimeout:      cfg.TurnTimeout,
		snapshotDebounce: cfg.SnapshotDebounce,
		idleEvict:        cfg.RoomIdleEvict,
		turnTimers:       make(map[string]*time.Timer),
		saveTimers:       make(map[string]*time.Timer),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events.
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateRoom creates a room with the caller as host and returns the join
// credentials.
func (s *GameService) CreateRoom(ctx context.Context, nickname string) (*model.JoinResponse, error) {
	if nickname == "" {
		return nil, model.ErrInvalidNickname
	}
	code, err := s.generateRoomCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate room code: %w", err)
	}

	connID := uuid.New().String()
	room, host := s.store.CreateRoom(code, nickname, connID)

	token, err := s.authSvc.IssuePlayerToken(code, connID, nickname)
	if err != nil {
		s.store.Delete(code)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.writeMeta(ctx, room)
	s.scheduleSave(code)
	metrics.RoomsCreated.Inc()
	metrics.ActiveRooms.Set(float64(s.store.Count()))
	log.Printf("Room %s created by %s", code, host.Nickname)

	room.Lock()
	defer room.Unlock()
	return &model.JoinResponse{
		RoomCode: code,
		PlayerID: connID,
		Token:    token,
		State:    model.Snapshot(room),
	}, nil
}

// JoinRoom joins a waiting room, or rejoins a playing one when the nickname
// matches an existing player (the rebind path). An unknown room code falls
// back to the snapshot store to recover rooms lost to a process restart.
func (s *GameService) JoinRoom(ctx context.Context, code, nickname string) (*model.JoinResponse, error) {
	if nickname == "" {
		return nil, model.ErrInvalidNickname
	}
	room := s.store.Get(code)
	if room == nil {
		room = s.rehydrate(ctx, code)
	}
	if room == nil {
		return nil, model.ErrRoomNotFound
	}

	room.Lock()
	defer room.Unlock()

	connID := uuid.New().String()
	player, err := s.store.Join(room, nickname, connID)
	if err != nil {
		return nil, err
	}

	token, err := s.authSvc.IssuePlayerToken(code, player.ID, nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	room.Touch()
	s.writeMeta(ctx, room)
	s.scheduleSave(code)
	s.broadcaster.BroadcastToRoom(code, model.MsgRoomUpdate, model.RoomUpdate(room))
	log.Printf("Player %s joined room %s", nickname, code)

	return &model.JoinResponse{
		RoomCode: code,
		PlayerID: player.ID,
		Token:    token,
		State:    model.Snapshot(room),
	}, nil
}

// HandleConnect attaches a live connection to a player: the player becomes
// connected and receives the current snapshot plus the full log history.
func (s *GameService) HandleConnect(code, playerID string) {
	room := s.store.Get(code)
	if room == nil {
		return
	}
	room.Lock()
	defer room.Unlock()

	p := room.PlayerByID(playerID)
	if p == nil {
		return
	}
	p.Connected = true
	p.DisconnectedAt = nil
	room.Touch()

	s.broadcaster.BroadcastToPlayer(code, playerID, model.MsgState, model.Snapshot(room))
	s.broadcaster.BroadcastToPlayer(code, playerID, model.MsgLogHistory, &model.LogHistoryPayload{Lines: room.Log})
	s.broadcaster.BroadcastToRoom(code, model.MsgRoomUpdate, model.RoomUpdate(room))
	s.scheduleSave(code)
}

// HandleDisconnect flags a player as gone. A waiting room that empties out
// is destroyed along with its snapshot; a playing room survives indefinitely
// (until the idle sweeper reaps it).
func (s *GameService) HandleDisconnect(code, playerID string) {
	room := s.store.Get(code)
	if room == nil {
		return
	}
	room.Lock()
	p := room.PlayerByID(playerID)
	if p == nil {
		room.Unlock()
		return
	}
	nickname := p.Nickname
	removed := s.store.Disconnect(room, playerID)
	room.Unlock()

	if removed {
		log.Printf("Room %s is empty, removing", code)
		s.evictRoom(code)
		return
	}

	room.Lock()
	s.broadcaster.BroadcastToRoom(code, model.MsgRoomUpdate, model.RoomUpdate(room))
	if room.Status == model.RoomPlaying {
		room.AppendLog(nickname + " disconnected")
		s.broadcaster.BroadcastToRoom(code, model.MsgLogLine, &model.LogPayload{Text: nickname + " disconnected"})
	}
	room.Unlock()
	s.scheduleSave(code)
}

// HandleIntent dispatches one client intent and returns the ack for the
// acting connection. The whole transition runs under the room lock.
func (s *GameService) HandleIntent(code, playerID string, env *model.Envelope) *model.AckPayload {
	metrics.Intents.WithLabelValues(string(env.Type)).Inc()

	room := s.store.Get(code)
	if room == nil {
		return s.reject(model.ErrRoomNotFound)
	}

	room.Lock()
	defer room.Unlock()

	if room.PlayerByID(playerID) == nil {
		return s.reject(model.ErrUnknownPlayer)
	}

	// Chat never mutates game state.
	if env.Type == model.IntentChat {
		return s.handleChat(room, playerID, env)
	}

	wasOver := room.GameOver

	var evs []game.Event
	var err error
	switch env.Type {
	case model.IntentSetReady:
		err = s.handleSetReady(room, playerID, env)
	case model.IntentStartGame:
		evs, err = s.handleStartGame(room, playerID)
	case model.IntentRestartGame:
		evs, err = s.handleRestartGame(room, playerID)
	case model.IntentRoll:
		evs, err = s.engine.Roll(room, playerID)
	case model.IntentBuy:
		evs, err = s.engine.Buy(room, playerID)
	case model.IntentSkipBuy:
		evs, err = s.engine.SkipBuy(room, playerID)
	case model.IntentJailChoice:
		var p model.JailChoicePayload
		if err = json.Unmarshal(env.Payload, &p); err != nil {
			err = model.ErrBadPayload
		} else {
			evs, err = s.engine.JailChoice(room, playerID, p.Pay)
		}
	case model.IntentCardAck:
		evs, err = s.engine.CardAck(room, playerID)
	default:
		err = model.ErrUnknownIntent
	}

	if err != nil {
		return s.reject(err)
	}

	s.finishTransition(room, evs, wasOver)
	return &model.AckPayload{OK: true}
}

// RunSweeper periodically evicts rooms whose players have all been
// disconnected for longer than the idle window.
func (s *GameService) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.idleEvict)
			for _, code := range s.store.IdleRooms(cutoff) {
				log.Printf("Room %s idle since before %s, evicting", code, cutoff.Format(time.RFC3339))
				s.evictRoom(code)
			}
		}
	}
}

// Leaderboard returns the global top win counts.
func (s *GameService) Leaderboard(ctx context.Context, limit int) ([]cache.LeaderboardEntry, error) {
	return s.leaderboard.GetTop(ctx, limit)
}

func (s *GameService) handleChat(room *model.Room, playerID string, env *model.Envelope) *model.AckPayload {
	var p model.ChatSendPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil || p.Text == "" {
		return s.reject(model.ErrBadPayload)
	}
	sender := room.PlayerByID(playerID)
	s.broadcaster.BroadcastToRoom(room.Code, model.MsgChat, &model.ChatPayload{
		Nickname: sender.Nickname,
		Text:     p.Text,
	})
	return &model.AckPayload{OK: true}
}

func (s *GameService) handleSetReady(room *model.Room, playerID string, env *model.Envelope) error {
	if room.Status != model.RoomWaiting {
		return model.ErrGameStarted
	}
	var p model.SetReadyPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return model.ErrBadPayload
	}
	room.Ready[playerID] = p.Ready
	return nil
}

func (s *GameService) handleStartGame(room *model.Room, playerID string) ([]game.Event, error) {
	if room.Status != model.RoomWaiting {
		return nil, model.ErrGameStarted
	}
	if room.HostID != playerID {
		return nil, model.ErrNotHost
	}
	if len(room.Players) < minPlayersToStart {
		return nil, model.ErrTooFewPlayers
	}
	for _, p := range room.Players {
		if !room.Ready[p.ID] {
			return nil, model.ErrNotAllReady
		}
	}
	return s.engine.StartGame(room), nil
}

func (s *GameService) handleRestartGame(room *model.Room, playerID string) ([]game.Event, error) {
	if room.Status != model.RoomPlaying {
		return nil, model.ErrGameNotStarted
	}
	if room.HostID != playerID {
		return nil, model.ErrNotHost
	}
	return s.engine.Restart(room), nil
}

// finishTransition runs after every successful mutating intent: emit the
// narrow events, broadcast the snapshot, refresh timers and persistence, and
// settle the leaderboard if the game just ended. Callers hold the room lock.
func (s *GameService) finishTransition(room *model.Room, evs []game.Event, wasOver bool) {
	code := room.Code
	for _, ev := range evs {
		if ev.To == "" {
			s.broadcaster.BroadcastToRoom(code, ev.Type, ev.Payload)
		} else {
			s.broadcaster.BroadcastToPlayer(code, ev.To, ev.Type, ev.Payload)
		}
	}
	s.broadcaster.BroadcastToRoom(code, model.MsgState, model.Snapshot(room))
	s.broadcaster.BroadcastToRoom(code, model.MsgRoomUpdate, model.RoomUpdate(room))

	room.Touch()
	s.scheduleSave(code)

	if room.Status == model.RoomPlaying && !room.GameOver {
		s.resetTurnTimer(code)
	} else {
		s.stopTurnTimer(code)
	}

	if !wasOver && room.GameOver && room.WinnerID != "" {
		if winner := room.PlayerByID(room.WinnerID); winner != nil {
			nickname := winner.Nickname
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := s.leaderboard.IncrementWins(ctx, nickname); err != nil {
					log.Printf("leaderboard update failed for %s: %v", nickname, err)
				}
			}()
		}
	}
}

// onTurnDeadline fires when the current player stalls past the turn timeout.
func (s *GameService) onTurnDeadline(code string) {
	room := s.store.Get(code)
	if room == nil {
		return
	}
	room.Lock()
	defer room.Unlock()

	wasOver := room.GameOver
	evs := s.engine.ResolveDeadline(room)
	if len(evs) == 0 {
		return
	}
	s.finishTransition(room, evs, wasOver)
}

func (s *GameService) resetTurnTimer(code string) {
	if s.turnTimeout == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.turnTimers[code]; ok {
		t.Stop()
	}
	s.turnTimers[code] = time.AfterFunc(s.turnTimeout, func() {
		s.onTurnDeadline(code)
	})
}

func (s *GameService) stopTurnTimer(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.turnTimers[code]; ok {
		t.Stop()
		delete(s.turnTimers, code)
	}
}

// scheduleSave debounces snapshot writes: repeated changes within the window
// collapse into one write.
func (s *GameService) scheduleSave(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.saveTimers[code]; ok {
		return
	}
	s.saveTimers[code] = time.AfterFunc(s.snapshotDebounce, func() {
		s.mu.Lock()
		delete(s.saveTimers, code)
		s.mu.Unlock()
		s.persist(code)
	})
}

// persist writes the room snapshot. Best effort: failures are logged, never
// surfaced, and gameplay continues purely in memory.
func (s *GameService) persist(code string) {
	room := s.store.Get(code)
	if room == nil {
		return
	}
	room.Lock()
	snapshot := room.Clone()
	room.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.snapshots.Save(ctx, snapshot); err != nil {
		metrics.SnapshotWrites.WithLabelValues("error").Inc()
		log.Printf("snapshot write failed for room %s: %v", code, err)
		return
	}
	metrics.SnapshotWrites.WithLabelValues("ok").Inc()
}

// rehydrate rebuilds a room from its durable snapshot after a process
// restart. Every player comes back flagged disconnected until they reattach.
func (s *GameService) rehydrate(ctx context.Context, code string) *model.Room {
	room, err := s.snapshots.Load(ctx, code)
	if err != nil {
		log.Printf("snapshot load failed for room %s: %v", code, err)
		return nil
	}
	if room == nil {
		return nil
	}
	now := time.Now()
	for _, p := range room.Players {
		p.Connected = false
		p.DisconnectedAt = &now
	}
	if room.Ready == nil {
		room.Ready = make(map[string]bool)
	}
	s.store.Put(room)
	metrics.ActiveRooms.Set(float64(s.store.Count()))
	log.Printf("Room %s rehydrated from snapshot", code)
	return room
}

// evictRoom removes a room from memory and cleans up its durable traces.
func (s *GameService) evictRoom(code string) {
	s.store.Delete(code)
	s.stopTurnTimer(code)
	s.mu.Lock()
	if t, ok := s.saveTimers[code]; ok {
		t.Stop()
		delete(s.saveTimers, code)
	}
	s.mu.Unlock()
	s.broadcaster.DisconnectRoom(code)
	metrics.ActiveRooms.Set(float64(s.store.Count()))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.snapshots.Delete(ctx, code); err != nil {
			log.Printf("snapshot delete failed for room %s: %v", code, err)
		}
		if err := s.roomCache.Delete(ctx, code); err != nil {
			log.Printf("room meta delete failed for room %s: %v", code, err)
		}
	}()
}

// writeMeta refreshes the redis-side room record. Best effort.
func (s *GameService) writeMeta(ctx context.Context, room *model.Room) {
	meta := &cache.RoomMeta{
		Status:       room.Status,
		PlayerCount:  len(room.Players),
		CreatedAt:    room.CreatedAt,
		LastActivity: room.LastActivity,
	}
	if err := s.roomCache.SetMeta(ctx, room.Code, meta); err != nil {
		log.Printf("room meta write failed for room %s: %v", room.Code, err)
	}
}

func (s *GameService) reject(err error) *model.AckPayload {
	code := "internal"
	if rej, ok := err.(*model.Reject); ok {
		code = rej.Code
	}
	metrics.Rejections.WithLabelValues(code).Inc()
	return &model.AckPayload{OK: false, Code: code}
}

// generateRoomCode creates a 6-char alphanumeric code, retrying on collision
// against both the in-memory registry and the redis meta cache.
func (s *GameService) generateRoomCode(ctx context.Context) (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLen = 6

	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, codeLen)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, codeLen)
		for i := range code {
			code[i] = chars[int(b[i])%len(chars)]
		}
		codeStr := string(code)

		if s.store.Exists(codeStr) {
			continue
		}
		exists, err := s.roomCache.Exists(ctx, codeStr)
		if err != nil {
			log.Printf("room code uniqueness check failed: %v", err)
		}
		if !exists {
			return codeStr, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique room code")
}
