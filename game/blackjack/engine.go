// Package blackjack simulates single hands of infinite-deck blackjack between a
// player actor and a dealer following a fixed table policy.
//
// Package blackjack は無限デッキのブラックジャックを1ハンドずつシミュレートします。
package blackjack

import (
	"fmt"
	"math/rand/v2"
)

// Start optionally forces the initial state and the first player action.
// A forced State skips the player deal and the dealer's showing card; the
// dealer's hidden card is still drawn.
type Start struct {
	State  *State
	Action *Action
}

// Episode is the outcome of one hand.
//
// Episodeは1ハンドの結果です。
type Episode struct {
	InitState  State
	Reward     float64
	Trajectory Trajectory
	Player     Hand
	Dealer     Hand
}

type Engine struct {
	DealerPolicy TablePolicy
}

func NewEngine(dealer TablePolicy) Engine {
	return Engine{DealerPolicy: dealer}
}

// Play simulates one hand. Each player decision is appended to the trajectory
// before it is applied; the hand ends at the first bust or after the showdown.
//
// Playは1ハンドをシミュレートします。プレイヤーの意思決定は適用前に軌跡へ追加されます。
func (e Engine) Play(actor Actor, deck Deck, rng *rand.Rand, start Start) (Episode, error) {
	if err := actor.Validate(); err != nil {
		return Episode{}, err
	}

	var player, dealer Hand
	var showing Card

	if start.State == nil {
		for player.Sum < MinDecisionSum {
			player = player.Add(deck.Draw())
		}
		showing = deck.Draw()
	} else {
		if err := start.State.Validate(); err != nil {
			return Episode{}, err
		}
		player = handFromState(*start.State)
		showing = Card(start.State.DealerCard)
	}
	dealer = dealer.Add(showing).Add(deck.Draw())

	mustLive(player, "player deal")
	mustLive(dealer, "dealer deal")
	if player.Sum < MinDecisionSum {
		panic(fmt.Sprintf("BUG: player deal ended below %d: %+v", MinDecisionSum, player))
	}

	state := State{UsableAce: player.Usable(), PlayerSum: player.Sum, DealerCard: int(showing)}
	episode := Episode{InitState: state}
	forced := start.Action

	for {
		var action Action
		if forced != nil {
			action = *forced
			forced = nil
		} else {
			var err error
			action, err = actor.Act(state, rng)
			if err != nil {
				return Episode{}, err
			}
		}
		if !action.IsValid() {
			return Episode{}, fmt.Errorf("%w: %v", ErrInvalidAction, action)
		}

		episode.Trajectory = append(episode.Trajectory, Step{State: state, Action: action})
		if action == Stick {
			break
		}

		player = player.Add(deck.Draw())
		if player.Bust() {
			episode.Reward = -1
			episode.Player, episode.Dealer = player, dealer
			return episode, nil
		}
		state = State{UsableAce: player.Usable(), PlayerSum: player.Sum, DealerCard: int(showing)}
	}

	for e.DealerPolicy.Action(dealer.Sum) == Hit {
		dealer = dealer.Add(deck.Draw())
		if dealer.Bust() {
			episode.Reward = 1
			episode.Player, episode.Dealer = player, dealer
			return episode, nil
		}
	}

	mustLive(player, "showdown")
	mustLive(dealer, "showdown")
	episode.Player, episode.Dealer = player, dealer

	switch {
	case player.Sum > dealer.Sum:
		episode.Reward = 1
	case player.Sum == dealer.Sum:
		episode.Reward = 0
	default:
		episode.Reward = -1
	}
	return episode, nil
}

func mustLive(h Hand, phase string) {
	if h.Bust() {
		panic(fmt.Sprintf("BUG: %s: hand is over %d: %+v", phase, Blackjack, h))
	}
	if h.UsableAces > 1 {
		panic(fmt.Sprintf("BUG: %s: more than one Ace counted as 11: %+v", phase, h))
	}
}
