package blackjack

const (
	Blackjack      = 21
	MinDecisionSum = 12
)

// Hand is a running total together with the number of Aces still counted as 11.
// A Boolean flag alone cannot tell one soft Ace from two, so the count is kept.
//
// Handは合計値と、11として数えているエースの枚数を保持します。
type Hand struct {
	Sum        int
	UsableAces int
}

// Add returns the hand after drawing c. Aces counted as 11 are collapsed to 1
// one at a time while the hand would otherwise bust.
//
// Addはカードcを引いた後の手札を返します。バーストする間、11として数えているエースを1として数え直します。
func (h Hand) Add(c Card) Hand {
	h.Sum += c.Value()
	if c == Ace {
		h.UsableAces++
	}
	for h.Sum > Blackjack && h.UsableAces > 0 {
		h.Sum -= 10
		h.UsableAces--
	}
	return h
}

func (h Hand) Usable() bool {
	return h.UsableAces > 0
}

func (h Hand) Bust() bool {
	return h.Sum > Blackjack
}

func handFromState(s State) Hand {
	h := Hand{Sum: s.PlayerSum}
	if s.UsableAce {
		h.UsableAces = 1
	}
	return h
}
