package game

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/Maxim12412/Monopolista/internal/model"
)

// Engine is the room state machine: it applies validated intents to a Room
// and returns the narrow events to emit. Callers hold the room lock for the
// whole call, so transitions never interleave within a room. The rng is
// shared across rooms and guarded separately.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewEngine(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

func (e *Engine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Intn(n)
}

func (e *Engine) shuffledDeck(kind model.DeckKind) model.Deck {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ShuffledDeck(kind, e.rng)
}

// StartGame deals a fresh game: cloned board, shuffled decks, reset players.
// Host/ready/player-count validation is the caller's job.
func (e *Engine) StartGame(r *model.Room) []Event {
	r.Status = model.RoomPlaying
	return e.reset(r, "The game begins")
}

// Restart re-deals an in-progress game in place, keeping the player order.
func (e *Engine) Restart(r *model.Room) []Event {
	evs := e.reset(r, "The game restarts")
	return append(evs, broadcast(model.MsgReset, nil))
}

func (e *Engine) reset(r *model.Room, line string) []Event {
	r.Board = NewBoard()
	r.Chance = e.shuffledDeck(model.DeckChance)
	r.Chest = e.shuffledDeck(model.DeckChest)
	r.Turn = 0
	r.Phase = model.PhaseRoll
	r.Pending = nil
	r.GameOver = false
	r.WinnerID = ""
	for _, p := range r.Players {
		p.Position = 0
		p.Balance = StartBalance
		p.Tiles = nil
		p.Bankrupt = false
		p.InJail = false
		p.JailTurns = 0
	}
	var evs []Event
	e.logf(r, &evs, "%s", line)
	return evs
}

// Roll handles the roll intent for the current turn holder. A jailed player
// does not roll: the turn becomes a jail choice instead.
func (e *Engine) Roll(r *model.Room, playerID string) ([]Event, error) {
	p, err := e.requireTurn(r, playerID)
	if err != nil {
		return nil, err
	}
	if p.InJail && p.JailTurns > 0 {
		r.Phase = model.PhaseJail
		r.Pending = &model.PendingAction{Kind: model.PendingJail, PlayerID: p.ID, Fine: JailFine}
		return []Event{directed(p.ID, model.MsgJailPrompt, &model.JailPromptPayload{Fine: JailFine})}, nil
	}

	die1 := e.intn(6) + 1
	die2 := e.intn(6) + 1
	sum := die1 + die2

	from := p.Position
	path := walk(from, sum)
	p.Position = path[len(path)-1]

	evs := []Event{
		broadcast(model.MsgDiceResult, &model.DiceResultPayload{
			PlayerID: p.ID, Die1: die1, Die2: die2, Sum: sum, Tile: p.Position,
		}),
		broadcast(model.MsgMovement, &model.MovementPayload{PlayerID: p.ID, Path: path, Reason: "roll"}),
	}
	e.logf(r, &evs, "%s rolls %d+%d and moves to %s", p.Nickname, die1, die2, r.Board[p.Position].Name)

	if from+sum >= BoardSize {
		p.Balance += PassGoBonus
		e.logf(r, &evs, "%s passes GO and collects %d", p.Nickname, PassGoBonus)
	}

	e.resolveLanding(r, p, sum, false, &evs)
	return evs, nil
}

// Buy handles the buy intent for the pending buy offer.
func (e *Engine) Buy(r *model.Room, playerID string) ([]Event, error) {
	p, err := e.requirePending(r, playerID, model.PendingBuy, model.PhaseBuy)
	if err != nil {
		return nil, err
	}
	tile := &r.Board[r.Pending.TileID]
	if tile.OwnerID != "" {
		return nil, model.ErrTileOwned
	}
	if p.Balance < tile.Price {
		return nil, model.ErrInsufficientFunds
	}
	p.Balance -= tile.Price
	tile.OwnerID = p.ID
	p.Tiles = append(p.Tiles, tile.ID)

	var evs []Event
	e.logf(r, &evs, "%s buys %s for %d", p.Nickname, tile.Name, tile.Price)
	e.endTurn(r, &evs)
	return evs, nil
}

// SkipBuy declines the pending buy offer; ownership is unchanged.
func (e *Engine) SkipBuy(r *model.Room, playerID string) ([]Event, error) {
	p, err := e.requirePending(r, playerID, model.PendingBuy, model.PhaseBuy)
	if err != nil {
		return nil, err
	}
	tile := &r.Board[r.Pending.TileID]

	var evs []Event
	e.logf(r, &evs, "%s declines to buy %s", p.Nickname, tile.Name)
	e.endTurn(r, &evs)
	return evs, nil
}

// JailChoice resolves the pending jail prompt. Paying clears jail at the cost
// of the fine; skipping serves the term. Either way the turn is spent.
func (e *Engine) JailChoice(r *model.Room, playerID string, pay bool) ([]Event, error) {
	p, err := e.requirePending(r, playerID, model.PendingJail, model.PhaseJail)
	if err != nil {
		return nil, err
	}
	var evs []Event
	if pay {
		p.Balance -= r.Pending.Fine
		p.InJail = false
		p.JailTurns = 0
		e.logf(r, &evs, "%s pays the %d fine and leaves jail", p.Nickname, r.Pending.Fine)
		if e.evaluateBankruptcy(r, p, &evs) {
			e.endTurn(r, &evs)
			return evs, nil
		}
	} else {
		p.JailTurns--
		if p.JailTurns <= 0 {
			p.InJail = false
			p.JailTurns = 0
			e.logf(r, &evs, "%s serves the term and leaves jail", p.Nickname)
		} else {
			e.logf(r, &evs, "%s stays in jail", p.Nickname)
		}
	}
	e.endTurn(r, &evs)
	return evs, nil
}

// CardAck applies the pending drawn card after the player acknowledges it.
// Card-driven movement re-runs landing resolution once, with further card
// draws suppressed to cap the chain.
func (e *Engine) CardAck(r *model.Room, playerID string) ([]Event, error) {
	p, err := e.requirePending(r, playerID, model.PendingCard, model.PhaseCard)
	if err != nil {
		return nil, err
	}
	card := r.Pending.Card
	diceSum := r.Pending.DiceSum
	r.Pending = nil
	r.Phase = model.PhaseRoll

	var evs []Event
	switch card.Effect {
	case model.EffectMoney:
		p.Balance += card.Amount
		if card.Amount >= 0 {
			e.logf(r, &evs, "%s collects %d (%s)", p.Nickname, card.Amount, card.Text)
		} else {
			e.logf(r, &evs, "%s pays %d (%s)", p.Nickname, -card.Amount, card.Text)
		}
		e.evaluateBankruptcy(r, p, &evs)
		e.endTurn(r, &evs)

	case model.EffectJail:
		e.jail(r, p, &evs)
		e.evaluateWin(r, &evs)
		e.endTurn(r, &evs)

	case model.EffectMove:
		path := walk(p.Position, card.Steps)
		p.Position = path[len(path)-1]
		evs = append(evs, broadcast(model.MsgMovement, &model.MovementPayload{PlayerID: p.ID, Path: path, Reason: "card"}))
		e.logf(r, &evs, "%s moves to %s (%s)", p.Nickname, r.Board[p.Position].Name, card.Text)
		e.resolveLanding(r, p, diceSum, true, &evs)

	case model.EffectMoveTo:
		from := p.Position
		steps := card.Target - from
		if steps <= 0 {
			steps += BoardSize
		}
		path := walk(from, steps)
		p.Position = card.Target
		evs = append(evs, broadcast(model.MsgMovement, &model.MovementPayload{PlayerID: p.ID, Path: path, Reason: "card"}))
		e.logf(r, &evs, "%s moves to %s (%s)", p.Nickname, r.Board[p.Position].Name, card.Text)
		if card.Target < from {
			p.Balance += PassGoBonus
			e.logf(r, &evs, "%s passes GO and collects %d", p.Nickname, PassGoBonus)
		}
		e.resolveLanding(r, p, diceSum, true, &evs)
	}
	return evs, nil
}

// ResolveDeadline applies the neutral default for the current phase when the
// turn deadline expires, so a stalled player cannot block the room.
func (e *Engine) ResolveDeadline(r *model.Room) []Event {
	if r.Status != model.RoomPlaying || r.GameOver {
		return nil
	}
	if r.Phase != model.PhaseRoll && r.Pending == nil {
		return nil
	}
	var evs []Event
	switch r.Phase {
	case model.PhaseRoll:
		p := r.CurrentPlayer()
		if p == nil {
			return nil
		}
		e.logf(r, &evs, "%s ran out of time", p.Nickname)
		if !p.Connected {
			e.endTurn(r, &evs)
			return evs
		}
		rolled, err := e.Roll(r, p.ID)
		if err != nil {
			e.endTurn(r, &evs)
			return evs
		}
		return append(evs, rolled...)
	case model.PhaseBuy:
		if out, err := e.SkipBuy(r, r.Pending.PlayerID); err == nil {
			evs = out
		}
	case model.PhaseJail:
		if out, err := e.JailChoice(r, r.Pending.PlayerID, false); err == nil {
			evs = out
		}
	case model.PhaseCard:
		if out, err := e.CardAck(r, r.Pending.PlayerID); err == nil {
			evs = out
		}
	}
	return evs
}

// resolveLanding evaluates the rules for the tile the player's position has
// settled on. fromCard suppresses card draws so a card-driven move can never
// open another draw.
func (e *Engine) resolveLanding(r *model.Room, p *model.Player, diceSum int, fromCard bool, evs *[]Event) {
	tile := &r.Board[p.Position]
	switch tile.Kind {
	case model.TileGoToJail:
		e.jail(r, p, evs)
		e.endTurn(r, evs)

	case model.TileTax:
		p.Balance -= tile.Amount
		e.logf(r, evs, "%s pays %d %s", p.Nickname, tile.Amount, tile.Name)
		*evs = append(*evs, directed(p.ID, model.MsgPaymentPrompt, &model.PaymentPromptPayload{
			Kind: "tax", Amount: tile.Amount, Counterparty: tile.Name,
		}))
		e.evaluateBankruptcy(r, p, evs)
		e.endTurn(r, evs)

	case model.TileChance, model.TileChest:
		if fromCard {
			e.endTurn(r, evs)
			return
		}
		kind := model.DeckChest
		if tile.Kind == model.TileChance {
			kind = model.DeckChance
		}
		card := r.Deck(kind).Draw()
		r.Phase = model.PhaseCard
		r.Pending = &model.PendingAction{
			Kind: model.PendingCard, PlayerID: p.ID, Deck: kind, Card: &card, DiceSum: diceSum,
		}
		e.logf(r, evs, "%s draws a card", p.Nickname)
		*evs = append(*evs, directed(p.ID, model.MsgCardPrompt, &model.CardPromptPayload{Deck: kind, Text: card.Text}))

	case model.TileProperty, model.TileStation, model.TileUtility:
		switch {
		case tile.OwnerID != "" && tile.OwnerID != p.ID:
			owner := r.PlayerByID(tile.OwnerID)
			rent := Rent(r.Board, tile, diceSum)
			p.Balance -= rent
			owner.Balance += rent
			e.logf(r, evs, "%s pays %d rent to %s for %s", p.Nickname, rent, owner.Nickname, tile.Name)
			*evs = append(*evs, directed(p.ID, model.MsgPaymentPrompt, &model.PaymentPromptPayload{
				Kind: "rent", Amount: rent, Counterparty: owner.Nickname,
			}))
			e.evaluateBankruptcy(r, p, evs)
			e.endTurn(r, evs)
		case tile.OwnerID == "" && tile.Price > 0:
			r.Phase = model.PhaseBuy
			r.Pending = &model.PendingAction{Kind: model.PendingBuy, PlayerID: p.ID, TileID: tile.ID}
			*evs = append(*evs, directed(p.ID, model.MsgToast, &model.ToastPayload{
				Level: "info", Text: fmt.Sprintf("%s is for sale for %d", tile.Name, tile.Price),
			}))
		default:
			e.endTurn(r, evs)
		}

	default:
		e.endTurn(r, evs)
	}
}

// jail moves the player to the jail tile and starts a one-turn term.
func (e *Engine) jail(r *model.Room, p *model.Player, evs *[]Event) {
	p.Position = JailTile
	p.InJail = true
	p.JailTurns = 1
	e.logf(r, evs, "%s goes to jail", p.Nickname)
	*evs = append(*evs, directed(p.ID, model.MsgToast, &model.ToastPayload{Level: "warn", Text: "You are in jail"}))
}

// evaluateBankruptcy converts a negative balance into bankruptcy: zero the
// balance, release every owned tile to the bank, clear jail state, then check
// the win condition. Returns true if the player went bankrupt.
func (e *Engine) evaluateBankruptcy(r *model.Room, p *model.Player, evs *[]Event) bool {
	if p.Bankrupt || p.Balance >= 0 {
		return false
	}
	p.Bankrupt = true
	p.Balance = 0
	p.InJail = false
	p.JailTurns = 0
	for i := range r.Board {
		if r.Board[i].OwnerID == p.ID {
			r.Board[i].OwnerID = ""
		}
	}
	p.Tiles = nil
	e.logf(r, evs, "%s goes bankrupt", p.Nickname)
	*evs = append(*evs, directed(p.ID, model.MsgToast, &model.ToastPayload{Level: "error", Text: "You are bankrupt"}))
	e.evaluateWin(r, evs)
	return true
}

// evaluateWin declares a winner once exactly one solvent player remains.
// With zero or two-plus survivors the game simply continues.
func (e *Engine) evaluateWin(r *model.Room, evs *[]Event) {
	if r.GameOver {
		return
	}
	solvent := r.Solvent()
	if len(solvent) != 1 {
		return
	}
	winner := solvent[0]
	r.GameOver = true
	r.WinnerID = winner.ID
	r.Phase = model.PhaseRoll
	r.Pending = nil
	e.logf(r, evs, "%s wins the game", winner.Nickname)
}

// endTurn advances the turn pointer, skipping bankrupt and disconnected
// players for at most one full lap.
func (e *Engine) endTurn(r *model.Room, evs *[]Event) {
	r.Pending = nil
	r.Phase = model.PhaseRoll
	if r.GameOver {
		return
	}
	n := len(r.Players)
	if n == 0 {
		return
	}
	r.Turn = (r.Turn + 1) % n
	for i := 0; i < n; i++ {
		if r.Players[r.Turn].Active() {
			break
		}
		r.Turn = (r.Turn + 1) % n
	}
}

// requireTurn validates a roll-phase intent from the current turn holder.
func (e *Engine) requireTurn(r *model.Room, playerID string) (*model.Player, error) {
	if r.Status != model.RoomPlaying {
		return nil, model.ErrGameNotStarted
	}
	if r.GameOver {
		return nil, model.ErrGameOver
	}
	p := r.CurrentPlayer()
	if p == nil {
		return nil, model.ErrUnknownPlayer
	}
	if p.ID != playerID {
		return nil, model.ErrNotYourTurn
	}
	if p.Bankrupt {
		return nil, model.ErrBankruptActor
	}
	if r.Phase != model.PhaseRoll {
		return nil, model.ErrWrongPhase
	}
	return p, nil
}

// requirePending validates an intent against the room's pending action.
func (e *Engine) requirePending(r *model.Room, playerID string, kind model.PendingKind, phase model.GamePhase) (*model.Player, error) {
	if r.Status != model.RoomPlaying {
		return nil, model.ErrGameNotStarted
	}
	if r.GameOver {
		return nil, model.ErrGameOver
	}
	if r.Phase != phase {
		return nil, model.ErrWrongPhase
	}
	if r.Pending == nil || r.Pending.Kind != kind {
		return nil, model.ErrNoPendingAction
	}
	if r.Pending.PlayerID != playerID {
		return nil, model.ErrNotYourTurn
	}
	p := r.PlayerByID(playerID)
	if p == nil {
		return nil, model.ErrUnknownPlayer
	}
	return p, nil
}

// logf appends to the room log and emits the line as an event.
func (e *Engine) logf(r *model.Room, evs *[]Event, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	r.AppendLog(line)
	*evs = append(*evs, broadcast(model.MsgLogLine, &model.LogPayload{Text: line}))
}

// walk returns the ordered tile indices visited by a signed number of steps
// from a starting position, wrapping around the board. The last element is
// the destination.
func walk(from, steps int) []int {
	if steps == 0 {
		return []int{from}
	}
	dir := 1
	if steps < 0 {
		dir = -1
		steps = -steps
	}
	path := make([]int, 0, steps)
	pos := from
	for i := 0; i < steps; i++ {
		pos = ((pos+dir)%BoardSize + BoardSize) % BoardSize
		path = append(path, pos)
	}
	return path
}
