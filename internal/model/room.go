package model

import (
	"sync"
	"time"
)

type RoomStatus string

const (
	RoomWaiting RoomStatus = "waiting"
	RoomPlaying RoomStatus = "playing"
)

type GamePhase string

const (
	PhaseRoll GamePhase = "awaiting_roll"
	PhaseBuy  GamePhase = "awaiting_buy"
	PhaseJail GamePhase = "awaiting_jail_choice"
	PhaseCard GamePhase = "awaiting_card_ack"
)

type PendingKind string

const (
	PendingBuy  PendingKind = "buy"
	PendingJail PendingKind = "jail_choice"
	PendingCard PendingKind = "card_ack"
)

// PendingAction is the single outstanding prompt for a room. At most one
// exists at a time; it names the player who must act and what is expected.
type PendingAction struct {
	Kind     PendingKind `json:"kind" bson:"kind"`
	PlayerID string      `json:"playerId" bson:"playerId"`
	TileID   int         `json:"tileId,omitempty" bson:"tileId,omitempty"`
	Fine     int         `json:"fine,omitempty" bson:"fine,omitempty"`
	Deck     DeckKind    `json:"deck,omitempty" bson:"deck,omitempty"`
	Card     *Card       `json:"card,omitempty" bson:"card,omitempty"`
	// DiceSum carries the roll that triggered a drawn card forward, so
	// utility rent after card-driven movement uses the original pips.
	DiceSum int `json:"diceSum,omitempty" bson:"diceSum,omitempty"`
}

// LogCapacity bounds the room event log; oldest entries are dropped.
const LogCapacity = 100

// Room is the aggregate root for one game session. All mutation happens with
// the room lock held, so a single intent is always applied to completion
// before the next one for the same room.
type Room struct {
	Code         string          `json:"code" bson:"code"`
	Status       RoomStatus      `json:"status" bson:"status"`
	HostID       string          `json:"hostId" bson:"hostId"`
	Ready        map[string]bool `json:"ready" bson:"ready"`
	Players      []*Player       `json:"players" bson:"players"`
	Board        []Tile          `json:"board" bson:"board"`
	Turn         int             `json:"turn" bson:"turn"`
	Phase        GamePhase       `json:"phase" bson:"phase"`
	Pending      *PendingAction  `json:"pending,omitempty" bson:"pending,omitempty"`
	GameOver     bool            `json:"gameOver" bson:"gameOver"`
	WinnerID     string          `json:"winnerId,omitempty" bson:"winnerId,omitempty"`
	Chance       Deck            `json:"chance" bson:"chance"`
	Chest        Deck            `json:"chest" bson:"chest"`
	Log          []string        `json:"log" bson:"log"`
	CreatedAt    time.Time       `json:"createdAt" bson:"createdAt"`
	LastActivity time.Time       `json:"lastActivity" bson:"lastActivity"`

	mu sync.Mutex
}

func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

// CurrentPlayer returns the turn holder, or nil before the game starts.
func (r *Room) CurrentPlayer() *Player {
	if len(r.Players) == 0 || r.Turn < 0 || r.Turn >= len(r.Players) {
		return nil
	}
	return r.Players[r.Turn]
}

// PlayerByID returns the player with the given identity, or nil.
func (r *Room) PlayerByID(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByNickname returns the player with the given nickname, or nil.
func (r *Room) PlayerByNickname(nickname string) *Player {
	for _, p := range r.Players {
		if p.Nickname == nickname {
			return p
		}
	}
	return nil
}

// Solvent returns the players that are not bankrupt.
func (r *Room) Solvent() []*Player {
	var out []*Player
	for _, p := range r.Players {
		if !p.Bankrupt {
			out = append(out, p)
		}
	}
	return out
}

// AppendLog adds a line to the bounded room log, dropping the oldest entry
// once the capacity is reached.
func (r *Room) AppendLog(line string) {
	r.Log = append(r.Log, line)
	if len(r.Log) > LogCapacity {
		r.Log = r.Log[len(r.Log)-LogCapacity:]
	}
}

// Touch records activity for idle-room eviction.
func (r *Room) Touch() {
	r.LastActivity = time.Now()
}

// Clone returns a deep copy of the room suitable for marshalling outside the
// room lock. The copy shares immutable card and rent data only.
func (r *Room) Clone() *Room {
	cp := &Room{
		Code:         r.Code,
		Status:       r.Status,
		HostID:       r.HostID,
		Turn:         r.Turn,
		Phase:        r.Phase,
		GameOver:     r.GameOver,
		WinnerID:     r.WinnerID,
		Chance:       Deck{Kind: r.Chance.Kind, Cursor: r.Chance.Cursor},
		Chest:        Deck{Kind: r.Chest.Kind, Cursor: r.Chest.Cursor},
		CreatedAt:    r.CreatedAt,
		LastActivity: r.LastActivity,
	}
	cp.Players = make([]*Player, len(r.Players))
	for i, p := range r.Players {
		pc := *p
		pc.Tiles = append([]int(nil), p.Tiles...)
		if p.DisconnectedAt != nil {
			t := *p.DisconnectedAt
			pc.DisconnectedAt = &t
		}
		cp.Players[i] = &pc
	}
	cp.Board = append([]Tile(nil), r.Board...)
	cp.Ready = make(map[string]bool, len(r.Ready))
	for k, v := range r.Ready {
		cp.Ready[k] = v
	}
	if r.Pending != nil {
		pa := *r.Pending
		if r.Pending.Card != nil {
			c := *r.Pending.Card
			pa.Card = &c
		}
		cp.Pending = &pa
	}
	cp.Chance.Cards = append([]Card(nil), r.Chance.Cards...)
	cp.Chest.Cards = append([]Card(nil), r.Chest.Cards...)
	cp.Log = append([]string(nil), r.Log...)
	return cp
}

// Deck returns the room's deck instance for the given kind.
func (r *Room) Deck(kind DeckKind) *Deck {
	if kind == DeckChance {
		return &r.Chance
	}
	return &r.Chest
}
