package service

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/Maxim12412/Monopolista/internal/cache"
	"github.com/Maxim12412/Monopolista/internal/config"
	"github.com/Maxim12412/Monopolista/internal/game"
	"github.com/Maxim12412/Monopolista/internal/model"
	"github.com/Maxim12412/Monopolista/internal/store"
)

type sentMsg struct {
	Code     string
	PlayerID string
	Type     model.MessageType
	Payload  any
}

type fakeBroadcaster struct {
	mu      sync.Mutex
	room    []sentMsg
	direct  []sentMsg
	evicted []string
}

func (b *fakeBroadcaster) BroadcastToRoom(code string, t model.MessageType, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.room = append(b.room, sentMsg{Code: code, Type: t, Payload: payload})
}

func (b *fakeBroadcaster) BroadcastToPlayer(code, playerID string, t model.MessageType, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.direct = append(b.direct, sentMsg{Code: code, PlayerID: playerID, Type: t, Payload: payload})
}

func (b *fakeBroadcaster) DisconnectRoom(code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.evicted = append(b.evicted, code)
}

func (b *fakeBroadcaster) lastState() *model.StatePayload {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.room) - 1; i >= 0; i-- {
		if b.room[i].Type == model.MsgState {
			return b.room[i].Payload.(*model.StatePayload)
		}
	}
	return nil
}

func (b *fakeBroadcaster) sawRoomMsg(t model.MessageType) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range b.room {
		if m.Type == t {
			return true
		}
	}
	return false
}

type fakeSnapshotRepo struct {
	mu    sync.Mutex
	rooms map[string]*model.Room
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{rooms: make(map[string]*model.Room)}
}

func (r *fakeSnapshotRepo) Save(_ context.Context, room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.Code] = room
	return nil
}

func (r *fakeSnapshotRepo) Load(_ context.Context, code string) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rooms[code], nil
}

func (r *fakeSnapshotRepo) Delete(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, code)
	return nil
}

func (r *fakeSnapshotRepo) saved(code string) *model.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rooms[code]
}

type fakeRoomCache struct {
	mu   sync.Mutex
	meta map[string]*cache.RoomMeta
}

func newFakeRoomCache() *fakeRoomCache {
	return &fakeRoomCache{meta: make(map[string]*cache.RoomMeta)}
}

func (c *fakeRoomCache) SetMeta(_ context.Context, code string, meta *cache.RoomMeta) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.meta[code] = meta
	return nil
}

func (c *fakeRoomCache) GetMeta(_ context.Context, code string) (*cache.RoomMeta, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta[code], nil
}

func (c *fakeRoomCache) Delete(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.meta, code)
	return nil
}

func (c *fakeRoomCache) Exists(_ context.Context, code string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.meta[code]
	return ok, nil
}

type fakeLeaderboard struct {
	wins chan string
}

func newFakeLeaderboard() *fakeLeaderboard {
	return &fakeLeaderboard{wins: make(chan string, 8)}
}

func (l *fakeLeaderboard) IncrementWins(_ context.Context, nickname string) error {
	l.wins <- nickname
	return nil
}

func (l *fakeLeaderboard) GetTop(_ context.Context, _ int) ([]cache.LeaderboardEntry, error) {
	return nil, nil
}

func newTestService(t *testing.T) (*GameService, *fakeBroadcaster, *fakeSnapshotRepo, *fakeLeaderboard) {
	t.Helper()
	repo := newFakeSnapshotRepo()
	lb := newFakeLeaderboard()
	svc := NewGameService(
		store.New(),
		game.NewEngine(rand.New(rand.NewSource(99))),
		repo,
		newFakeRoomCache(),
		lb,
		NewAuthService("test-secret"),
		&config.Config{
			TurnTimeout:      0, // deadlines are driven manually in tests
			SnapshotDebounce: time.Millisecond,
			RoomIdleEvict:    time.Hour,
		},
	)
	b := &fakeBroadcaster{}
	svc.SetBroadcaster(b)
	return svc, b, repo, lb
}

func intent(t model.MessageType, payload string) *model.Envelope {
	env := &model.Envelope{Type: t}
	if payload != "" {
		env.Payload = json.RawMessage(payload)
	}
	return env
}

// startedGame creates a room, joins a second player, readies both, and starts
// the game. Returns the room code and both player IDs.
func startedGame(t *testing.T, svc *GameService) (code, aliceID, bobID string) {
	t.Helper()
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, "alice")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	joined, err := svc.JoinRoom(ctx, created.RoomCode, "bob")
	if err != nil {
		t.Fatalf("join room: %v", err)
	}
	code, aliceID, bobID = created.RoomCode, created.PlayerID, joined.PlayerID

	for _, id := range []string{aliceID, bobID} {
		if ack := svc.HandleIntent(code, id, intent(model.IntentSetReady, `{"ready":true}`)); !ack.OK {
			t.Fatalf("set_ready rejected: %s", ack.Code)
		}
	}
	if ack := svc.HandleIntent(code, aliceID, intent(model.IntentStartGame, "")); !ack.OK {
		t.Fatalf("start_game rejected: %s", ack.Code)
	}
	return code, aliceID, bobID
}

func TestCreateRoomIssuesCredentials(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	resp, err := svc.CreateRoom(context.Background(), "alice")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if len(resp.RoomCode) != 6 {
		t.Fatalf("code = %q, want 6 chars", resp.RoomCode)
	}
	if resp.Token == "" || resp.PlayerID == "" {
		t.Fatal("missing credentials")
	}
	if len(resp.State.Players) != 1 || resp.State.Players[0].Nickname != "alice" {
		t.Fatalf("state roster = %v", resp.State.Players)
	}

	claims, err := svc.authSvc.ValidatePlayerToken(resp.Token)
	if err != nil {
		t.Fatalf("token does not validate: %v", err)
	}
	if claims.RoomCode != resp.RoomCode || claims.PlayerID != resp.PlayerID {
		t.Fatalf("claims = %+v, want bound to room and player", claims)
	}
}

func TestCreateRoomRejectsEmptyNickname(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if _, err := svc.CreateRoom(context.Background(), ""); err != model.ErrInvalidNickname {
		t.Fatalf("err = %v, want invalid_nickname", err)
	}
}

func TestJoinRoomUnknownCode(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if _, err := svc.JoinRoom(context.Background(), "NOSUCH", "bob"); err != model.ErrRoomNotFound {
		t.Fatalf("err = %v, want room_not_found", err)
	}
}

func TestStartGameGating(t *testing.T) {
	svc, b, _, _ := newTestService(t)
	ctx := context.Background()

	created, _ := svc.CreateRoom(ctx, "alice")
	code, aliceID := created.RoomCode, created.PlayerID

	if ack := svc.HandleIntent(code, aliceID, intent(model.IntentStartGame, "")); ack.OK || ack.Code != "too_few_players" {
		t.Fatalf("ack = %+v, want too_few_players", ack)
	}

	joined, _ := svc.JoinRoom(ctx, code, "bob")
	bobID := joined.PlayerID

	if ack := svc.HandleIntent(code, bobID, intent(model.IntentStartGame, "")); ack.OK || ack.Code != "not_host" {
		t.Fatalf("ack = %+v, want not_host", ack)
	}
	if ack := svc.HandleIntent(code, aliceID, intent(model.IntentStartGame, "")); ack.OK || ack.Code != "not_all_ready" {
		t.Fatalf("ack = %+v, want not_all_ready", ack)
	}

	for _, id := range []string{aliceID, bobID} {
		if ack := svc.HandleIntent(code, id, intent(model.IntentSetReady, `{"ready":true}`)); !ack.OK {
			t.Fatalf("set_ready rejected: %s", ack.Code)
		}
	}
	if ack := svc.HandleIntent(code, aliceID, intent(model.IntentStartGame, "")); !ack.OK {
		t.Fatalf("start rejected: %s", ack.Code)
	}

	state := b.lastState()
	if state == nil || state.Status != model.RoomPlaying || state.Phase != model.PhaseRoll {
		t.Fatalf("state = %+v, want playing/awaiting_roll", state)
	}
	for _, p := range state.Players {
		if p.Balance != game.StartBalance {
			t.Fatalf("player %s balance = %d, want %d", p.Nickname, p.Balance, game.StartBalance)
		}
	}
}

func TestChatBroadcastsWithoutTouchingGameState(t *testing.T) {
	svc, b, _, _ := newTestService(t)

	created, _ := svc.CreateRoom(context.Background(), "alice")
	code, aliceID := created.RoomCode, created.PlayerID

	if ack := svc.HandleIntent(code, aliceID, intent(model.IntentChat, `{"text":"hello"}`)); !ack.OK {
		t.Fatalf("chat rejected: %s", ack.Code)
	}
	if !b.sawRoomMsg(model.MsgChat) {
		t.Fatal("no chat broadcast")
	}

	room := svc.store.Get(code)
	if room.Status != model.RoomWaiting {
		t.Fatal("chat must not mutate the room")
	}

	if ack := svc.HandleIntent(code, aliceID, intent(model.IntentChat, `{"text":""}`)); ack.OK || ack.Code != "bad_payload" {
		t.Fatalf("ack = %+v, want bad_payload", ack)
	}
}

func TestIntentRejectionsCarryCodes(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	code, aliceID, bobID := startedGame(t, svc)

	if ack := svc.HandleIntent(code, bobID, intent(model.IntentRoll, "")); ack.OK || ack.Code != "not_your_turn" {
		t.Fatalf("ack = %+v, want not_your_turn", ack)
	}
	if ack := svc.HandleIntent(code, aliceID, intent(model.IntentBuy, "")); ack.OK || ack.Code != "wrong_phase" {
		t.Fatalf("ack = %+v, want wrong_phase", ack)
	}
	if ack := svc.HandleIntent(code, "ghost", intent(model.IntentRoll, "")); ack.OK || ack.Code != "unknown_player" {
		t.Fatalf("ack = %+v, want unknown_player", ack)
	}
	if ack := svc.HandleIntent("NOROOM", aliceID, intent(model.IntentRoll, "")); ack.OK || ack.Code != "room_not_found" {
		t.Fatalf("ack = %+v, want room_not_found", ack)
	}
	if ack := svc.HandleIntent(code, aliceID, intent("warp", "")); ack.OK || ack.Code != "unknown_intent" {
		t.Fatalf("ack = %+v, want unknown_intent", ack)
	}
}

func TestBankruptcyEndsGameAndSettlesLeaderboard(t *testing.T) {
	svc, b, _, lb := newTestService(t)
	code, aliceID, _ := startedGame(t, svc)

	room := svc.store.Get(code)
	room.Lock()
	alice := room.PlayerByID(aliceID)
	alice.Balance = 40
	room.Board[1].OwnerID = aliceID
	alice.Tiles = []int{1}
	room.Phase = model.PhaseCard
	room.Pending = &model.PendingAction{
		Kind: model.PendingCard, PlayerID: aliceID, Deck: model.DeckChest,
		Card: &model.Card{ID: 7, Text: "Pay hospital fees of 100", Effect: model.EffectMoney, Amount: -100},
	}
	room.Unlock()

	if ack := svc.HandleIntent(code, aliceID, intent(model.IntentCardAck, "")); !ack.OK {
		t.Fatalf("card_ack rejected: %s", ack.Code)
	}

	state := b.lastState()
	if state == nil || !state.GameOver {
		t.Fatalf("state = %+v, want game over", state)
	}
	var winner *model.Player
	for _, p := range state.Players {
		if p.ID == state.WinnerID {
			winner = p
		}
		if p.ID == aliceID && (!p.Bankrupt || p.Balance != 0 || len(p.Tiles) != 0) {
			t.Fatalf("loser state = %+v, want zeroed", p)
		}
	}
	if winner == nil || winner.Nickname != "bob" {
		t.Fatalf("winner = %+v, want bob", winner)
	}
	if state.Board[1].OwnerID != "" {
		t.Fatal("holdings not released in the broadcast snapshot")
	}

	select {
	case nick := <-lb.wins:
		if nick != "bob" {
			t.Fatalf("leaderboard credited %q, want bob", nick)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("leaderboard never credited")
	}
}

func TestDeadlineAppliesNeutralDefault(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	code, aliceID, _ := startedGame(t, svc)

	room := svc.store.Get(code)
	room.Lock()
	room.Phase = model.PhaseBuy
	room.Pending = &model.PendingAction{Kind: model.PendingBuy, PlayerID: aliceID, TileID: 1}
	room.Unlock()

	svc.onTurnDeadline(code)

	room.Lock()
	defer room.Unlock()
	if room.Board[1].OwnerID != "" {
		t.Fatal("deadline must decline the buy")
	}
	if room.Turn != 1 || room.Pending != nil {
		t.Fatalf("turn = %d pending = %v, want advanced", room.Turn, room.Pending)
	}
}

func TestRejoinKeepsSeatAndRebindsIdentity(t *testing.T) {
	svc, b, _, _ := newTestService(t)
	code, aliceID, _ := startedGame(t, svc)

	room := svc.store.Get(code)
	room.Lock()
	room.PlayerByID(aliceID).Balance = 777
	room.Unlock()

	svc.HandleDisconnect(code, aliceID)

	room.Lock()
	if p := room.PlayerByNickname("alice"); p == nil || p.Connected {
		t.Fatal("alice should be flagged disconnected, not removed")
	}
	room.Unlock()

	rejoined, err := svc.JoinRoom(context.Background(), code, "alice")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if rejoined.PlayerID == aliceID {
		t.Fatal("rejoin must mint a new connection identity")
	}

	room.Lock()
	defer room.Unlock()
	p := room.PlayerByID(rejoined.PlayerID)
	if p == nil || p.Nickname != "alice" || p.Balance != 777 {
		t.Fatalf("seat lost on rejoin: %+v", p)
	}
	if room.HostID != rejoined.PlayerID {
		t.Fatalf("host = %q, want rebound to %q", room.HostID, rejoined.PlayerID)
	}
	if !b.sawRoomMsg(model.MsgRoomUpdate) {
		t.Fatal("no roster broadcast")
	}
}

func TestHandleConnectSendsSnapshotAndHistory(t *testing.T) {
	svc, b, _, _ := newTestService(t)
	code, aliceID, _ := startedGame(t, svc)

	svc.HandleConnect(code, aliceID)

	b.mu.Lock()
	defer b.mu.Unlock()
	var gotState, gotHistory bool
	for _, m := range b.direct {
		if m.PlayerID != aliceID {
			continue
		}
		switch m.Type {
		case model.MsgState:
			gotState = true
		case model.MsgLogHistory:
			if len(m.Payload.(*model.LogHistoryPayload).Lines) == 0 {
				t.Fatal("log history is empty after game start")
			}
			gotHistory = true
		}
	}
	if !gotState || !gotHistory {
		t.Fatalf("directed messages: state=%v history=%v, want both", gotState, gotHistory)
	}

	room := svc.store.Get(code)
	room.Lock()
	defer room.Unlock()
	if p := room.PlayerByID(aliceID); !p.Connected {
		t.Fatal("player not marked connected")
	}
}

func TestEmptyWaitingRoomIsEvicted(t *testing.T) {
	svc, b, _, _ := newTestService(t)

	created, _ := svc.CreateRoom(context.Background(), "alice")
	code, aliceID := created.RoomCode, created.PlayerID

	svc.HandleDisconnect(code, aliceID)

	if svc.store.Get(code) != nil {
		t.Fatal("empty waiting room must be removed")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.evicted) != 1 || b.evicted[0] != code {
		t.Fatalf("evicted = %v, want [%s]", b.evicted, code)
	}
}

func TestSnapshotPersistedAfterDebounce(t *testing.T) {
	svc, _, repo, _ := newTestService(t)
	code, _, _ := startedGame(t, svc)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if saved := repo.saved(code); saved != nil && saved.Status == model.RoomPlaying {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("snapshot never persisted")
}

func TestRehydrateAfterRestart(t *testing.T) {
	svc, _, repo, _ := newTestService(t)
	code, _, _ := startedGame(t, svc)

	room := svc.store.Get(code)
	room.Lock()
	snapshot := room.Clone()
	room.Unlock()
	if err := repo.Save(context.Background(), snapshot); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	// Simulate a restart: a fresh service sharing only the snapshot store.
	svc2 := NewGameService(
		store.New(),
		game.NewEngine(rand.New(rand.NewSource(1))),
		repo,
		newFakeRoomCache(),
		newFakeLeaderboard(),
		NewAuthService("test-secret"),
		&config.Config{SnapshotDebounce: time.Millisecond, RoomIdleEvict: time.Hour},
	)
	svc2.SetBroadcaster(&fakeBroadcaster{})

	rejoined, err := svc2.JoinRoom(context.Background(), code, "alice")
	if err != nil {
		t.Fatalf("rejoin after restart: %v", err)
	}
	recovered := svc2.store.Get(code)
	if recovered == nil || recovered.Status != model.RoomPlaying {
		t.Fatal("room not rehydrated")
	}

	recovered.Lock()
	defer recovered.Unlock()
	if p := recovered.PlayerByID(rejoined.PlayerID); p == nil || p.Nickname != "alice" {
		t.Fatal("returning player not rebound into the recovered room")
	}
	if p := recovered.PlayerByNickname("bob"); p == nil || p.Connected {
		t.Fatal("absent players must come back disconnected")
	}
}
