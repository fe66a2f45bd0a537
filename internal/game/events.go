package game

import "github.com/Maxim12412/Monopolista/internal/model"

// Event is an outbound notification produced by an engine transition. The
// engine never talks to the transport; the caller forwards events to the
// broadcaster after the mutation completes.
type Event struct {
	To      string // target player ID; empty means room broadcast
	Type    model.MessageType
	Payload any
}

func broadcast(t model.MessageType, payload any) Event {
	return Event{Type: t, Payload: payload}
}

func directed(to string, t model.MessageType, payload any) Event {
	return Event{To: to, Type: t, Payload: payload}
}
