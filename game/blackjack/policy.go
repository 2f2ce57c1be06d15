package blackjack

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/sw965/blackjack/game"
)

var (
	ErrPolicyTableSize = errors.New("TablePolicyエラー: 要素数は22である必要があります")
	ErrNilActorFunc    = errors.New("Actorエラー: フィールドの関数がnilです")
)

const TableSize = Blackjack + 1

// TablePolicy is a deterministic policy indexed by hand sum. Entries below 12 are
// ignored and always read as Hit.
//
// TablePolicyは合計値をインデックスとする決定的な方策です。12未満の要素は無視され、常にHitとして扱います。
type TablePolicy [TableSize]Action

func NewTablePolicy(actions []Action) (TablePolicy, error) {
	var p TablePolicy
	if len(actions) != TableSize {
		return p, fmt.Errorf("%w: got %d", ErrPolicyTableSize, len(actions))
	}
	for i, a := range actions {
		if !a.IsValid() {
			return p, fmt.Errorf("%w: idx=%d value=%d", ErrInvalidAction, i, int(a))
		}
		p[i] = a
	}
	return p, nil
}

// NewThresholdPolicy sticks on every sum >= stickAt and hits otherwise.
func NewThresholdPolicy(stickAt int) TablePolicy {
	var p TablePolicy
	for sum := MinDecisionSum; sum < TableSize; sum++ {
		if sum >= stickAt {
			p[sum] = Stick
		} else {
			p[sum] = Hit
		}
	}
	return p
}

var (
	PlayerStick20 = NewThresholdPolicy(20)
	PlayerStick18 = NewThresholdPolicy(18)
	DealerStick17 = NewThresholdPolicy(17)
)

func (p TablePolicy) Action(sum int) Action {
	if sum < MinDecisionSum || sum >= TableSize {
		return Hit
	}
	return p[sum]
}

type PolicyFunc func(State) game.Policy[Action]

// Actor chooses an action at each player decision point.
//
// Actorはプレイヤーの各意思決定時点で行動を選択します。
type Actor struct {
	Name       string
	PolicyFunc PolicyFunc
	SelectFunc game.SelectFunc[Action]
}

func (a Actor) Validate() error {
	if a.PolicyFunc == nil {
		return fmt.Errorf("%w: PolicyFunc", ErrNilActorFunc)
	}
	if a.SelectFunc == nil {
		return fmt.Errorf("%w: SelectFunc", ErrNilActorFunc)
	}
	return nil
}

func (a Actor) Act(state State, rng *rand.Rand) (Action, error) {
	policy := a.PolicyFunc(state)
	if err := policy.ValidateForLegalMoves(Actions); err != nil {
		return 0, err
	}
	return a.SelectFunc(policy, rng)
}

// TableActor follows p deterministically.
func TableActor(p TablePolicy) Actor {
	return Actor{
		Name: "table",
		PolicyFunc: func(s State) game.Policy[Action] {
			return game.Deterministic(p.Action(s.PlayerSum), Actions)
		},
		SelectFunc: game.MaxSelectFunc[Action],
	}
}

// RandomActor hits or sticks with probability 0.5 each.
func RandomActor() Actor {
	return Actor{
		Name: "random",
		PolicyFunc: func(State) game.Policy[Action] {
			return game.Uniform(Actions)
		},
		SelectFunc: game.WeightedRandomSelectFunc[Action],
	}
}
