package blackjack

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState  = errors.New("Stateエラー: 範囲外の値です")
	ErrInvalidAction = errors.New("Actionエラー: 不正な行動です")
)

type Action int

const (
	Hit Action = iota
	Stick
)

// Actions lists every action in table-axis order.
var Actions = []Action{Hit, Stick}

func (a Action) IsValid() bool {
	return a == Hit || a == Stick
}

func (a Action) String() string {
	switch a {
	case Hit:
		return "hit"
	case Stick:
		return "stick"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

func ParseAction(s string) (Action, error) {
	switch s {
	case "hit", "HIT", "Hit":
		return Hit, nil
	case "stick", "STICK", "Stick":
		return Stick, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

const (
	SumSize    = 10
	DealerSize = 10
	AceSize    = 2
	ActionSize = 2
	MinDealer  = 1
	MaxDealer  = 10
)

// State is a player decision point: whether the player holds a usable Ace,
// the player's sum and the dealer's showing card.
//
// Stateはプレイヤーの意思決定時点の状態です。使えるエースの有無、プレイヤーの合計、ディーラーの見えているカードを表します。
type State struct {
	UsableAce  bool
	PlayerSum  int
	DealerCard int
}

func (s State) Validate() error {
	if s.PlayerSum < MinDecisionSum || s.PlayerSum > Blackjack {
		return fmt.Errorf("%w: PlayerSum=%d", ErrInvalidState, s.PlayerSum)
	}
	if s.DealerCard < MinDealer || s.DealerCard > MaxDealer {
		return fmt.Errorf("%w: DealerCard=%d", ErrInvalidState, s.DealerCard)
	}
	return nil
}

// Index returns the table coordinates (player sum - 12, dealer card - 1, usable ace).
func (s State) Index() (int, int, int) {
	ace := 0
	if s.UsableAce {
		ace = 1
	}
	return s.PlayerSum - MinDecisionSum, s.DealerCard - MinDealer, ace
}

func (s State) String() string {
	return fmt.Sprintf("State{UsableAce:%t PlayerSum:%d DealerCard:%d}", s.UsableAce, s.PlayerSum, s.DealerCard)
}

type Step struct {
	State  State
	Action Action
}

type Trajectory []Step
