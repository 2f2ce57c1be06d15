package blackjack

import (
	"math/rand/v2"
)

// Card is a card value in [1, 10]. 1 is an Ace; face cards count as 10.
//
// Cardは[1, 10]のカードの値です。1はエースで、絵札は10として扱います。
type Card int

const (
	Ace     Card = 1
	MaxCard Card = 10
)

// Value returns the points the card adds to a hand; an Ace is first counted as 11.
func (c Card) Value() int {
	if c == Ace {
		return 11
	}
	return int(c)
}

// DrawCard draws from an infinite deck: a rank in [1, 13] capped at 10.
//
// DrawCardは無限デッキからカードを引きます。[1, 13]のランクを引き、10を上限とします。
func DrawCard(rng *rand.Rand) Card {
	return min(Card(rng.IntN(13)+1), MaxCard)
}

type Deck interface {
	Draw() Card
}

// InfiniteDeck draws every card independently with its own rng.
type InfiniteDeck struct {
	rng *rand.Rand
}

func NewInfiniteDeck(rng *rand.Rand) *InfiniteDeck {
	return &InfiniteDeck{rng: rng}
}

func (d *InfiniteDeck) Draw() Card {
	return DrawCard(d.rng)
}

// ScriptedDeck replays a fixed sequence of cards.
//
// ScriptedDeckは決められた順番でカードを返します。テストで配札を固定する為に使います。
type ScriptedDeck struct {
	Cards []Card
	idx   int
}

func NewScriptedDeck(cards ...Card) *ScriptedDeck {
	return &ScriptedDeck{Cards: cards}
}

func (d *ScriptedDeck) Draw() Card {
	if d.idx >= len(d.Cards) {
		panic("BUG: ScriptedDeck のカードが尽きました")
	}
	c := d.Cards[d.idx]
	d.idx++
	return c
}

// Remaining returns the number of cards that have not been drawn yet.
func (d *ScriptedDeck) Remaining() int {
	return len(d.Cards) - d.idx
}
