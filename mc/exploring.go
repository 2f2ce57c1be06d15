package mc

import (
	"fmt"
	"math/rand/v2"

	"github.com/sw965/blackjack/game"
	bj "github.com/sw965/blackjack/game/blackjack"
	"github.com/sw965/blackjack/mathx/randx"
)

// RandomStart draws a uniform starting state and first action.
func RandomStart(rng *rand.Rand) (bj.State, bj.Action) {
	s := bj.State{
		UsableAce:  randx.Bool(rng),
		PlayerSum:  randx.IntRange(bj.MinDecisionSum, bj.Blackjack, rng),
		DealerCard: randx.IntRange(bj.MinDealer, bj.MaxDealer, rng),
	}
	a := bj.Actions[rng.IntN(len(bj.Actions))]
	return s, a
}

// greedyActor puts weight 1 on every action whose running average is maximal and lets
// tieBreak choose among them.
func greedyActor(acc *actionAccumulator, tieBreak game.SelectFunc[bj.Action]) bj.Actor {
	return bj.Actor{
		Name: "greedy",
		PolicyFunc: func(s bj.State) game.Policy[bj.Action] {
			avg := acc.averages(s)
			best := avg[0]
			for _, v := range avg[1:] {
				best = max(best, v)
			}
			p := make(game.Policy[bj.Action], len(bj.Actions))
			for _, a := range bj.Actions {
				if avg[a] == best {
					p[a] = 1
				} else {
					p[a] = 0
				}
			}
			return p
		},
		SelectFunc: tieBreak,
	}
}

// ControlExploringStarts estimates the optimal action values. Each episode starts from a
// uniform random state and action; the first episode then follows PlayerPolicy and every
// later one the greedy policy of the running averages. Only the first occurrence of a
// state-action pair in an episode is counted. Episodes depend on each other, so they
// always run sequentially.
//
// ControlExploringStartsは開始探索法で最適行動価値を推定します。エピソード間に依存関係がある為、常に逐次実行します。
func (e *Estimator) ControlExploringStarts(episodes int) (ActionValues, error) {
	const method = "exploring-starts"
	if err := validateEpisodes(episodes); err != nil {
		return ActionValues{}, err
	}
	e.setDefaults()
	began := e.logStart(method, episodes)

	rng := randx.Split(e.rng, 1)[0]
	deck := e.NewDeck(rng)
	acc := newActionAccumulator()
	target := e.TargetActor()
	greedy := greedyActor(acc, e.TieBreak)
	progress := newProgress(e.Logger, method, episodes)

	for i := 0; i < episodes; i++ {
		state, action := RandomStart(rng)
		actor := greedy
		if i == 0 {
			actor = target
		}

		ep, err := e.Engine.Play(actor, deck, rng, bj.Start{State: &state, Action: &action})
		if err != nil {
			return ActionValues{}, fmt.Errorf("episode %d: %w", i, err)
		}

		acc.addFirstVisits(ep)
		progress.tick()
	}

	e.logDone(method, episodes, began)
	return acc.mean(), nil
}
