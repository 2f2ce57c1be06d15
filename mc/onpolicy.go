package mc

import (
	bj "github.com/sw965/blackjack/game/blackjack"
)

// PredictOnPolicy estimates the value of every state under PlayerPolicy. Every visit of a
// state within an episode adds the episode's reward once.
//
// PredictOnPolicyはPlayerPolicyの下での各状態の価値を推定します（every-visit）。
func (e *Estimator) PredictOnPolicy(episodes int) (StateValues, error) {
	const method = "on-policy"
	if err := validateEpisodes(episodes); err != nil {
		return StateValues{}, err
	}
	e.setDefaults()
	began := e.logStart(method, episodes)

	eps, err := e.playEpisodes(method, episodes, e.TargetActor(), bj.Start{})
	if err != nil {
		return StateValues{}, err
	}

	acc := newStateAccumulator()
	for _, ep := range eps {
		for _, step := range ep.Trajectory {
			acc.add(step.State, ep.Reward)
		}
	}

	e.logDone(method, episodes, began)
	return acc.mean(), nil
}
