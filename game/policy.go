// Package game provides the action distributions and action selectors shared by the game engines.
//
// Package game はゲームエンジン間で共有する行動分布と行動選択関数を提供します。
package game

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/chewxy/math32"
	"github.com/sw965/omw/mathx/randx"
)

var (
	ErrEmptyLegalMoves        = errors.New("legalMovesエラー: 要素数が0です")
	ErrPolicySizeMismatch     = errors.New("Policyエラー: legalMoves と同じ要素数である必要があります")
	ErrPolicyMissingLegalMove = errors.New("Policyエラー: 全ての合法手を含む必要があります")
	ErrPolicyBadValue         = errors.New("Policyエラー: 値が不正です（負数/NaN/Inf）")
	ErrPolicyZeroSum          = errors.New("Policyエラー: 合計値が0です")
	ErrEmptyPolicy            = errors.New("Policyエラー: 要素数が0です")
)

// Policy maps each move to its selection probability (or unnormalized weight).
//
// Policyは各行動をその選択確率（または正規化されていない重み）に対応付けます。
type Policy[M comparable] map[M]float32

// ValidateForLegalMoves checks that the policy covers exactly the legal moves with finite,
// non-negative weights that do not sum to zero.
//
// ValidateForLegalMovesは、Policyが合法手だけを過不足なく含み、重みが有限かつ非負で、合計が0でない事を確認します。
func (p Policy[M]) ValidateForLegalMoves(legalMoves []M) error {
	if len(legalMoves) == 0 {
		return ErrEmptyLegalMoves
	}
	if len(p) != len(legalMoves) {
		return fmt.Errorf("%w: policy=%d legalMoves=%d", ErrPolicySizeMismatch, len(p), len(legalMoves))
	}

	var sum float32
	for i, m := range legalMoves {
		v, ok := p[m]
		if !ok {
			return fmt.Errorf("%w: idx=%d move=%v", ErrPolicyMissingLegalMove, i, m)
		}
		if v < 0 || math32.IsNaN(v) || math32.IsInf(v, 0) {
			return fmt.Errorf("%w: idx=%d move=%v value=%v", ErrPolicyBadValue, i, m, v)
		}
		sum += v
	}

	if sum == 0 {
		return ErrPolicyZeroSum
	}
	return nil
}

// Prob returns the normalized probability of m.
func (p Policy[M]) Prob(m M) float64 {
	var sum float32
	for _, v := range p {
		sum += v
	}
	if sum == 0 {
		return 0
	}
	return float64(p[m]) / float64(sum)
}

// Deterministic returns a policy which puts all of its mass on m.
func Deterministic[M comparable](m M, legalMoves []M) Policy[M] {
	p := make(Policy[M], len(legalMoves))
	for _, lm := range legalMoves {
		p[lm] = 0
	}
	p[m] = 1
	return p
}

// Uniform returns a policy with equal weight on every legal move.
func Uniform[M comparable](legalMoves []M) Policy[M] {
	n := len(legalMoves)
	if n == 0 {
		panic("BUG: len(legalMoves) == 0 である為、Uniformが実行出来ません")
	}

	v := 1.0 / float32(n)
	p := make(Policy[M], n)
	for _, m := range legalMoves {
		p[m] = v
	}
	return p
}

// SelectFunc picks one move out of a policy.
//
// SelectFuncはPolicyから行動を1つ選択します。
type SelectFunc[M comparable] func(Policy[M], *rand.Rand) (M, error)

// MaxSelectFunc picks uniformly at random among the moves that share the maximum weight.
// Keys are visited in ascending order so a seeded rng reproduces the same pick.
//
// MaxSelectFuncは最大の重みを持つ行動の中から一様ランダムに選択します。
func MaxSelectFunc[M cmp.Ordered](policy Policy[M], rng *rand.Rand) (M, error) {
	if len(policy) == 0 {
		var zero M
		return zero, ErrEmptyPolicy
	}

	keys := slices.Sorted(maps.Keys(policy))
	max := policy[keys[0]]
	moves := []M{keys[0]}

	for _, k := range keys[1:] {
		v := policy[k]
		switch {
		case v > max:
			max = v
			moves = []M{k}
		case v == max:
			moves = append(moves, k)
		}
	}
	return randx.Choice(moves, rng)
}

// WeightedRandomSelectFunc picks a move with probability proportional to its weight.
//
// WeightedRandomSelectFuncは重みに比例した確率で行動を選択します。
func WeightedRandomSelectFunc[M cmp.Ordered](policy Policy[M], rng *rand.Rand) (M, error) {
	if len(policy) == 0 {
		var zero M
		return zero, ErrEmptyPolicy
	}

	moves := slices.Sorted(maps.Keys(policy))
	ws := make([]float32, len(moves))
	for i, m := range moves {
		ws[i] = policy[m]
	}

	idx, err := randx.IntByWeight(ws, rng)
	if err != nil {
		var zero M
		return zero, err
	}
	return moves[idx], nil
}
