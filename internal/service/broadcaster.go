package service

import "github.com/Maxim12412/Monopolista/internal/model"

// Broadcaster is the only surface through which state leaves the engine.
// The WebSocket hub implements it; defining it here avoids an import cycle.
type Broadcaster interface {
	BroadcastToRoom(roomCode string, msgType model.MessageType, payload any)
	BroadcastToPlayer(roomCode, playerID string, msgType model.MessageType, payload any)
	DisconnectRoom(roomCode string)
}
