package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Maxim12412/Monopolista/internal/model"
	"github.com/Maxim12412/Monopolista/internal/service"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler handles WebSocket connections.
type Handler struct {
	hub     *Hub
	authSvc *service.AuthService
	gameSvc *service.GameService
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, authSvc *service.AuthService, gameSvc *service.GameService) *Handler {
	return &Handler{
		hub:     hub,
		authSvc: authSvc,
		gameSvc: gameSvc,
	}
}

// RoomWS handles GET /v1/ws/rooms/{code}. The join token authenticates the
// connection as one player of the room; all in-game intents then travel over
// this channel and are answered with acks.
func (h *Handler) RoomWS(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidatePlayerToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if claims.RoomCode != code {
		http.Error(w, "token not valid for this room", http.StatusForbidden)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		RoomCode: code,
		PlayerID: claims.PlayerID,
		Send:     make(chan []byte, 256),
		Hub:      h.hub,
	}

	h.hub.Register(conn)
	h.gameSvc.HandleConnect(code, claims.PlayerID)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var env model.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.sendAck(conn, "", &model.AckPayload{OK: false, Code: "bad_payload"})
			continue
		}

		ack := h.gameSvc.HandleIntent(conn.RoomCode, conn.PlayerID, &env)
		h.sendAck(conn, env.ReqID, ack)
	}
}

// sendAck answers an intent on the acting connection only; other players in
// the room never observe someone else's rejection.
func (h *Handler) sendAck(conn *Connection, reqID string, ack *model.AckPayload) {
	payload, _ := json.Marshal(ack)
	data, _ := json.Marshal(&model.Envelope{
		Type:    model.MsgAck,
		ReqID:   reqID,
		Payload: payload,
	})
	select {
	case conn.Send <- data:
	default:
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
