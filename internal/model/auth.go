package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims binds a join token to one player identity in one room. The
// WebSocket handler validates it before attaching the connection.
type PlayerClaims struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}

// JoinResponse is returned from create-room and join-room.
type JoinResponse struct {
	RoomCode string        `json:"roomCode"`
	PlayerID string        `json:"playerId"`
	Token    string        `json:"token"`
	State    *StatePayload `json:"state"`
}
