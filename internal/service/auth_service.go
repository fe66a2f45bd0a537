package service

import (
	"errors"
	"time"

	"github.com/Maxim12412/Monopolista/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService issues and validates player join tokens. A token binds one
// player identity to one room; the WebSocket handler requires it before
// attaching a connection.
type AuthService struct {
	jwtSecret []byte
}

// NewAuthService creates a new auth service.
func NewAuthService(secret string) *AuthService {
	return &AuthService{jwtSecret: []byte(secret)}
}

// IssuePlayerToken signs a token for a player in a room.
func (s *AuthService) IssuePlayerToken(roomCode, playerID, nickname string) (string, error) {
	claims := &model.PlayerClaims{
		RoomCode: roomCode,
		PlayerID: playerID,
		Nickname: nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(48 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidatePlayerToken validates a player JWT and returns its claims.
func (s *AuthService) ValidatePlayerToken(tokenString string) (*model.PlayerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.PlayerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.PlayerClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
