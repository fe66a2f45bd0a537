package model

import "time"

// Colors is the token palette; unique within a room at assignment time.
var Colors = []string{"red", "blue", "green", "yellow", "purple", "orange"}

// Player is a participant in a room. The ID is the connection identity the
// player joined with; a rejoin rebinds it everywhere rather than creating a
// new record. Disconnection flags the player but never removes them once the
// game is playing.
type Player struct {
	ID             string     `json:"id" bson:"id"`
	Nickname       string     `json:"nickname" bson:"nickname"`
	Color          string     `json:"color" bson:"color"`
	Position       int        `json:"position" bson:"position"`
	Balance        int        `json:"balance" bson:"balance"`
	Tiles          []int      `json:"tiles" bson:"tiles"`
	Bankrupt       bool       `json:"bankrupt" bson:"bankrupt"`
	InJail         bool       `json:"inJail" bson:"inJail"`
	JailTurns      int        `json:"jailTurns" bson:"jailTurns"`
	Connected      bool       `json:"connected" bson:"connected"`
	DisconnectedAt *time.Time `json:"disconnectedAt,omitempty" bson:"disconnectedAt,omitempty"`
	JoinedAt       time.Time  `json:"joinedAt" bson:"joinedAt"`
}

// Active reports whether the player still participates in turn selection.
func (p *Player) Active() bool {
	return !p.Bankrupt && p.Connected
}
