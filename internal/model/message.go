package model

import "encoding/json"

// MessageType discriminates the WebSocket envelope. One canonical snake_case
// name per logical message; clients needing legacy aliases translate at their
// own boundary.
type MessageType string

// Server -> client events.
const (
	MsgState         MessageType = "state"
	MsgRoomUpdate    MessageType = "room_update"
	MsgDiceResult    MessageType = "dice_result"
	MsgMovement      MessageType = "movement"
	MsgLogLine       MessageType = "log"
	MsgLogHistory    MessageType = "log_history"
	MsgChat          MessageType = "chat"
	MsgToast         MessageType = "toast"
	MsgPaymentPrompt MessageType = "payment_prompt"
	MsgCardPrompt    MessageType = "card_prompt"
	MsgJailPrompt    MessageType = "jail_prompt"
	MsgReset         MessageType = "reset"
	MsgAck           MessageType = "ack"
)

// Client -> server intents.
const (
	IntentSetReady    MessageType = "set_ready"
	IntentStartGame   MessageType = "start_game"
	IntentRestartGame MessageType = "restart_game"
	IntentChat        MessageType = "chat_send"
	IntentRoll        MessageType = "roll"
	IntentBuy         MessageType = "buy"
	IntentSkipBuy     MessageType = "skip_buy"
	IntentJailChoice  MessageType = "jail_choice"
	IntentCardAck     MessageType = "card_ack"
)

// Envelope is the wire format in both directions. ReqID, when set on an
// intent, is echoed back on the ack so clients can correlate responses.
type Envelope struct {
	Type    MessageType     `json:"type"`
	ReqID   string          `json:"reqId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AckPayload answers every intent on the acting connection only.
type AckPayload struct {
	OK   bool   `json:"ok"`
	Code string `json:"code,omitempty"`
}

// Intent payloads.

type SetReadyPayload struct {
	Ready bool `json:"ready"`
}

type ChatSendPayload struct {
	Text string `json:"text"`
}

type JailChoicePayload struct {
	Pay bool `json:"pay"`
}

// Event payloads.

type DiceResultPayload struct {
	PlayerID string `json:"playerId"`
	Die1     int    `json:"die1"`
	Die2     int    `json:"die2"`
	Sum      int    `json:"sum"`
	Tile     int    `json:"tile"`
}

type MovementPayload struct {
	PlayerID string `json:"playerId"`
	Path     []int  `json:"path"`
	Reason   string `json:"reason"` // "roll" or "card"
}

type LogPayload struct {
	Text string `json:"text"`
}

type LogHistoryPayload struct {
	Lines []string `json:"lines"`
}

type ChatPayload struct {
	Nickname string `json:"nickname"`
	Text     string `json:"text"`
}

type ToastPayload struct {
	Level string `json:"level"` // "info", "warn", "error"
	Text  string `json:"text"`
}

type PaymentPromptPayload struct {
	Kind         string `json:"kind"` // "rent" or "tax"
	Amount       int    `json:"amount"`
	Counterparty string `json:"counterparty,omitempty"`
}

type CardPromptPayload struct {
	Deck DeckKind `json:"deck"`
	Text string   `json:"text"`
}

type JailPromptPayload struct {
	Fine int `json:"fine"`
}

// RoomUpdatePayload is the lobby-level roster view.
type RoomUpdatePayload struct {
	Code    string          `json:"code"`
	Status  RoomStatus      `json:"status"`
	HostID  string          `json:"hostId"`
	Ready   map[string]bool `json:"ready"`
	Players []*Player       `json:"players"`
}

// StatePayload is the full-state snapshot broadcast after every completed
// mutation. Deck contents stay server-side; only cursors would leak order.
type StatePayload struct {
	Code     string         `json:"code"`
	Status   RoomStatus     `json:"status"`
	Phase    GamePhase      `json:"phase"`
	Pending  *PendingAction `json:"pending,omitempty"`
	GameOver bool           `json:"gameOver"`
	WinnerID string         `json:"winnerId,omitempty"`
	Turn     int            `json:"turn"`
	HostID   string         `json:"hostId"`
	Players  []*Player      `json:"players"`
	Board    []Tile         `json:"board"`
}

// Snapshot builds the broadcast view of a room. Callers hold the room lock.
func Snapshot(r *Room) *StatePayload {
	return &StatePayload{
		Code:     r.Code,
		Status:   r.Status,
		Phase:    r.Phase,
		Pending:  r.Pending,
		GameOver: r.GameOver,
		WinnerID: r.WinnerID,
		Turn:     r.Turn,
		HostID:   r.HostID,
		Players:  r.Players,
		Board:    r.Board,
	}
}

// RoomUpdate builds the lobby roster view of a room.
func RoomUpdate(r *Room) *RoomUpdatePayload {
	return &RoomUpdatePayload{
		Code:    r.Code,
		Status:  r.Status,
		HostID:  r.HostID,
		Ready:   r.Ready,
		Players: r.Players,
	}
}
