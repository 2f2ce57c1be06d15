package blackjack_test

import (
	"math/rand/v2"
	"testing"

	bj "github.com/sw965/blackjack/game/blackjack"
)

func TestHandAdd(t *testing.T) {
	tests := []struct {
		name  string
		cards []bj.Card
		want  bj.Hand
	}{
		{
			name:  "正常_エース1枚",
			cards: []bj.Card{bj.Ace},
			want:  bj.Hand{Sum: 11, UsableAces: 1},
		},
		{
			name:  "正常_エース2枚は12",
			cards: []bj.Card{bj.Ace, bj.Ace},
			want:  bj.Hand{Sum: 12, UsableAces: 1},
		},
		{
			name:  "正常_エース2枚と10",
			cards: []bj.Card{bj.Ace, bj.Ace, 10},
			want:  bj.Hand{Sum: 12, UsableAces: 0},
		},
		{
			name:  "正常_ソフト16に10",
			cards: []bj.Card{bj.Ace, 5, 10},
			want:  bj.Hand{Sum: 16, UsableAces: 0},
		},
		{
			name:  "正常_11にエースは12",
			cards: []bj.Card{5, 6, bj.Ace},
			want:  bj.Hand{Sum: 12, UsableAces: 0},
		},
		{
			name:  "正常_ブラックジャック",
			cards: []bj.Card{bj.Ace, 10},
			want:  bj.Hand{Sum: 21, UsableAces: 1},
		},
		{
			name:  "正常_バースト",
			cards: []bj.Card{10, 6, 9},
			want:  bj.Hand{Sum: 25, UsableAces: 0},
		},
		{
			name:  "正常_エース3枚",
			cards: []bj.Card{bj.Ace, bj.Ace, bj.Ace},
			want:  bj.Hand{Sum: 13, UsableAces: 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got bj.Hand
			for _, c := range tc.cards {
				got = got.Add(c)
			}
			if got != tc.want {
				t.Errorf("want: %+v, got: %+v", tc.want, got)
			}
		})
	}
}

func TestHandAddIsPure(t *testing.T) {
	h := bj.Hand{Sum: 15, UsableAces: 1}
	_ = h.Add(10)
	if h.Sum != 15 || h.UsableAces != 1 {
		t.Errorf("元の手札が変更された: %+v", h)
	}
}

func TestDrawCard(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	counts := map[bj.Card]int{}
	n := 13000
	for i := 0; i < n; i++ {
		c := bj.DrawCard(rng)
		if c < bj.Ace || c > bj.MaxCard {
			t.Fatalf("範囲外のカード: %d", c)
		}
		counts[c]++
	}
	// 10は10, J, Q, Kの4ランク分
	if counts[10] < 3600 || counts[10] > 4400 {
		t.Errorf("10の出現回数が想定外: %d", counts[10])
	}
	if counts[bj.Ace] < 800 || counts[bj.Ace] > 1200 {
		t.Errorf("エースの出現回数が想定外: %d", counts[bj.Ace])
	}
}

func TestCardValue(t *testing.T) {
	if got := bj.Ace.Value(); got != 11 {
		t.Errorf("want: 11, got: %d", got)
	}
	if got := bj.Card(7).Value(); got != 7 {
		t.Errorf("want: 7, got: %d", got)
	}
}

func TestScriptedDeck(t *testing.T) {
	d := bj.NewScriptedDeck(3, 4)
	if got := d.Draw(); got != 3 {
		t.Errorf("want: 3, got: %d", got)
	}
	if got := d.Remaining(); got != 1 {
		t.Errorf("want: 1, got: %d", got)
	}
	d.Draw()

	defer func() {
		if recover() == nil {
			t.Errorf("カードが尽きた時にpanicしなかった")
		}
	}()
	d.Draw()
}
