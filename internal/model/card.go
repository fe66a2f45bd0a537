package model

type DeckKind string

const (
	DeckChance DeckKind = "chance"
	DeckChest  DeckKind = "chest"
)

type CardEffect string

const (
	EffectMoney  CardEffect = "money"   // flat balance delta
	EffectMove   CardEffect = "move"    // relative steps, signed
	EffectMoveTo CardEffect = "move_to" // absolute tile index
	EffectJail   CardEffect = "jail"
)

// Card is an immutable catalog entry.
type Card struct {
	ID     int        `json:"id" bson:"id"`
	Text   string     `json:"text" bson:"text"`
	Effect CardEffect `json:"effect" bson:"effect"`
	Amount int        `json:"amount,omitempty" bson:"amount,omitempty"`
	Steps  int        `json:"steps,omitempty" bson:"steps,omitempty"`
	Target int        `json:"target,omitempty" bson:"target,omitempty"`
}

// Deck is a per-room shuffled permutation of a card catalog with a wrapping
// draw cursor. The order is fixed for the whole game: after the cursor wraps,
// cards repeat in the same sequence.
type Deck struct {
	Kind   DeckKind `json:"kind" bson:"kind"`
	Cards  []Card   `json:"cards" bson:"cards"`
	Cursor int      `json:"cursor" bson:"cursor"`
}

// Draw returns the card at the cursor and advances it, wrapping to the start.
func (d *Deck) Draw() Card {
	card := d.Cards[d.Cursor]
	d.Cursor++
	if d.Cursor >= len(d.Cards) {
		d.Cursor = 0
	}
	return card
}
