package mc

import (
	"fmt"

	"github.com/sw965/blackjack/game"
	bj "github.com/sw965/blackjack/game/blackjack"
	"gonum.org/v1/gonum/floats"
)

// ImportanceSampling holds one estimate per episode count: element k uses episodes 0..k.
type ImportanceSampling struct {
	Ordinary []float64
	Weighted []float64
}

// ImportanceRatio returns the product over the trajectory of the target probability of the
// taken action divided by its behavior probability. It is 0 as soon as one action is one
// PlayerPolicy would not take.
//
// ImportanceRatioは重点サンプリング比を返します。目標方策が選ばない行動が1つでもあれば0です。
func (e *Estimator) ImportanceRatio(traj bj.Trajectory) (float64, error) {
	e.setDefaults()
	rho := 1.0
	for i, step := range traj {
		target := game.Deterministic(e.PlayerPolicy.Action(step.State.PlayerSum), bj.Actions).Prob(step.Action)
		if target == 0 {
			return 0, nil
		}
		behavior := e.Behavior.PolicyFunc(step.State).Prob(step.Action)
		if behavior == 0 {
			return 0, fmt.Errorf("%w: step=%d %v action=%v", ErrZeroBehaviorProb, i, step.State, step.Action)
		}
		rho *= target / behavior
	}
	return rho, nil
}

// NewImportanceSampling builds the ordinary and weighted estimates from per-episode ratios
// and rewards. A weighted estimate whose cumulative ratio is still 0 is reported as 0.
func NewImportanceSampling(rhos, rewards []float64) ImportanceSampling {
	n := len(rhos)
	products := make([]float64, n)
	floats.MulTo(products, rhos, rewards)
	weightedReturns := make([]float64, n)
	floats.CumSum(weightedReturns, products)

	cumRhos := make([]float64, n)
	floats.CumSum(cumRhos, rhos)

	counts := make([]float64, n)
	for i := range counts {
		counts[i] = float64(i + 1)
	}

	ordinary := make([]float64, n)
	floats.DivTo(ordinary, weightedReturns, counts)

	weighted := make([]float64, n)
	for i, r := range cumRhos {
		if r != 0 {
			weighted[i] = weightedReturns[i] / r
		}
	}
	return ImportanceSampling{Ordinary: ordinary, Weighted: weighted}
}

// PredictOffPolicy estimates the value of OffPolicyStart under PlayerPolicy from episodes
// generated by Behavior.
//
// PredictOffPolicyはBehaviorで生成したエピソードから、PlayerPolicyの下でのOffPolicyStartの価値を推定します。
func (e *Estimator) PredictOffPolicy(episodes int) (ImportanceSampling, error) {
	const method = "off-policy"
	if err := validateEpisodes(episodes); err != nil {
		return ImportanceSampling{}, err
	}
	e.setDefaults()
	began := e.logStart(method, episodes)

	start := OffPolicyStart
	eps, err := e.playEpisodes(method, episodes, e.Behavior, bj.Start{State: &start})
	if err != nil {
		return ImportanceSampling{}, err
	}

	rhos := make([]float64, episodes)
	rewards := make([]float64, episodes)
	for i, ep := range eps {
		rho, err := e.ImportanceRatio(ep.Trajectory)
		if err != nil {
			return ImportanceSampling{}, fmt.Errorf("episode %d: %w", i, err)
		}
		rhos[i] = rho
		rewards[i] = ep.Reward
	}

	e.logDone(method, episodes, began)
	return NewImportanceSampling(rhos, rewards), nil
}

// OffPolicyMSE repeats PredictOffPolicy runs times and returns, per episode count, the mean
// squared error of both estimates against trueValue.
func (e *Estimator) OffPolicyMSE(episodes, runs int, trueValue float64) (ImportanceSampling, error) {
	if err := validateEpisodes(episodes); err != nil {
		return ImportanceSampling{}, err
	}
	if runs < 1 {
		return ImportanceSampling{}, fmt.Errorf("%w: got %d", ErrInvalidRuns, runs)
	}

	mse := ImportanceSampling{
		Ordinary: make([]float64, episodes),
		Weighted: make([]float64, episodes),
	}
	diff := make([]float64, episodes)
	addSquaredError := func(dst, estimate []float64) {
		copy(diff, estimate)
		floats.AddConst(-trueValue, diff)
		floats.Mul(diff, diff)
		floats.Add(dst, diff)
	}

	for r := 0; r < runs; r++ {
		is, err := e.PredictOffPolicy(episodes)
		if err != nil {
			return ImportanceSampling{}, fmt.Errorf("run %d: %w", r, err)
		}
		addSquaredError(mse.Ordinary, is.Ordinary)
		addSquaredError(mse.Weighted, is.Weighted)
	}

	floats.Scale(1/float64(runs), mse.Ordinary)
	floats.Scale(1/float64(runs), mse.Weighted)
	return mse, nil
}
