package game

import (
	"math/rand"

	"github.com/Maxim12412/Monopolista/internal/model"
)

var chanceCatalog = []model.Card{
	{ID: 1, Text: "Advance to GO", Effect: model.EffectMoveTo, Target: 0},
	{ID: 2, Text: "Go directly to Jail", Effect: model.EffectJail},
	{ID: 3, Text: "Bank pays you dividend of 50", Effect: model.EffectMoney, Amount: 50},
	{ID: 4, Text: "Speeding fine, pay 15", Effect: model.EffectMoney, Amount: -15},
	{ID: 5, Text: "Advance to Trafalgar Square", Effect: model.EffectMoveTo, Target: 24},
	{ID: 6, Text: "Go back 3 spaces", Effect: model.EffectMove, Steps: -3},
	{ID: 7, Text: "Take a trip to Mayfair", Effect: model.EffectMoveTo, Target: 39},
	{ID: 8, Text: "Your building loan matures, collect 150", Effect: model.EffectMoney, Amount: 150},
	{ID: 9, Text: "Pay school fees of 150", Effect: model.EffectMoney, Amount: -150},
	{ID: 10, Text: "Take a ride to Kings Cross Station", Effect: model.EffectMoveTo, Target: 5},
	{ID: 11, Text: "You won a crossword competition, collect 100", Effect: model.EffectMoney, Amount: 100},
	{ID: 12, Text: "Move forward 3 spaces", Effect: model.EffectMove, Steps: 3},
}

var chestCatalog = []model.Card{
	{ID: 1, Text: "Bank error in your favour, collect 200", Effect: model.EffectMoney, Amount: 200},
	{ID: 2, Text: "Doctor's fee, pay 50", Effect: model.EffectMoney, Amount: -50},
	{ID: 3, Text: "Income tax refund, collect 20", Effect: model.EffectMoney, Amount: 20},
	{ID: 4, Text: "You inherit 100", Effect: model.EffectMoney, Amount: 100},
	{ID: 5, Text: "Go directly to Jail", Effect: model.EffectJail},
	{ID: 6, Text: "Advance to GO", Effect: model.EffectMoveTo, Target: 0},
	{ID: 7, Text: "Pay hospital fees of 100", Effect: model.EffectMoney, Amount: -100},
	{ID: 8, Text: "Your insurance matures, collect 100", Effect: model.EffectMoney, Amount: 100},
	{ID: 9, Text: "From sale of stock you get 50", Effect: model.EffectMoney, Amount: 50},
	{ID: 10, Text: "It is your birthday, collect 10", Effect: model.EffectMoney, Amount: 10},
	{ID: 11, Text: "Receive consultancy fee of 25", Effect: model.EffectMoney, Amount: 25},
	{ID: 12, Text: "Street repairs, pay 40", Effect: model.EffectMoney, Amount: -40},
}

// ShuffledDeck builds a per-room deck: a uniform random permutation of the
// catalog with the draw cursor reset.
func ShuffledDeck(kind model.DeckKind, rng *rand.Rand) model.Deck {
	catalog := chestCatalog
	if kind == model.DeckChance {
		catalog = chanceCatalog
	}
	cards := make([]model.Card, len(catalog))
	copy(cards, catalog)
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return model.Deck{Kind: kind, Cards: cards}
}
