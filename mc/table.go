package mc

import (
	bj "github.com/sw965/blackjack/game/blackjack"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// StateValues holds two 10x10 tables: rows are player sums 12..21, columns dealer cards 1..10.
//
// StateValuesは10x10のテーブルを2つ持ちます。行はプレイヤーの合計12..21、列はディーラーのカード1..10です。
type StateValues struct {
	UsableAce   *mat.Dense
	NoUsableAce *mat.Dense
}

func (v StateValues) At(s bj.State) float64 {
	r, c, ace := s.Index()
	if ace == 1 {
		return v.UsableAce.At(r, c)
	}
	return v.NoUsableAce.At(r, c)
}

func newOnes(r, c int) *mat.Dense {
	data := make([]float64, r*c)
	floats.AddConst(1, data)
	return mat.NewDense(r, c, data)
}

// stateAccumulator sums rewards and counts visits per state, counts starting at 1.
type stateAccumulator struct {
	sums   [bj.AceSize]*mat.Dense
	counts [bj.AceSize]*mat.Dense
}

func newStateAccumulator() *stateAccumulator {
	a := &stateAccumulator{}
	for i := range a.sums {
		a.sums[i] = mat.NewDense(bj.SumSize, bj.DealerSize, nil)
		a.counts[i] = newOnes(bj.SumSize, bj.DealerSize)
	}
	return a
}

func (a *stateAccumulator) add(s bj.State, reward float64) {
	r, c, ace := s.Index()
	a.sums[ace].Set(r, c, a.sums[ace].At(r, c)+reward)
	a.counts[ace].Set(r, c, a.counts[ace].At(r, c)+1)
}

func (a *stateAccumulator) mean() StateValues {
	var means [bj.AceSize]*mat.Dense
	for i := range means {
		means[i] = mat.NewDense(bj.SumSize, bj.DealerSize, nil)
		means[i].DivElem(a.sums[i], a.counts[i])
	}
	return StateValues{UsableAce: means[1], NoUsableAce: means[0]}
}

// ActionValues is indexed [player sum - 12][dealer card - 1][usable ace][action].
//
// ActionValuesは[プレイヤーの合計 - 12][ディーラーのカード - 1][使えるエース][行動]で参照します。
type ActionValues [bj.SumSize][bj.DealerSize][bj.AceSize][bj.ActionSize]float64

func (q *ActionValues) Value(s bj.State, a bj.Action) float64 {
	r, c, ace := s.Index()
	return q[r][c][ace][a]
}

// Greedy returns the greedy action of every state as a table of action indices, for
// reporting. Ties go to the lowest action index.
func (q *ActionValues) Greedy() StateValues {
	var tables [bj.AceSize]*mat.Dense
	for ace := range tables {
		tables[ace] = mat.NewDense(bj.SumSize, bj.DealerSize, nil)
		for r := 0; r < bj.SumSize; r++ {
			for c := 0; c < bj.DealerSize; c++ {
				tables[ace].Set(r, c, float64(floats.MaxIdx(q[r][c][ace][:])))
			}
		}
	}
	return StateValues{UsableAce: tables[1], NoUsableAce: tables[0]}
}

// StateValues returns the value of the greedy action of every state.
func (q *ActionValues) StateValues() StateValues {
	var tables [bj.AceSize]*mat.Dense
	for ace := range tables {
		tables[ace] = mat.NewDense(bj.SumSize, bj.DealerSize, nil)
		for r := 0; r < bj.SumSize; r++ {
			for c := 0; c < bj.DealerSize; c++ {
				tables[ace].Set(r, c, floats.Max(q[r][c][ace][:]))
			}
		}
	}
	return StateValues{UsableAce: tables[1], NoUsableAce: tables[0]}
}

type actionAccumulator struct {
	sums   ActionValues
	counts ActionValues
}

func newActionAccumulator() *actionAccumulator {
	a := &actionAccumulator{}
	for r := range a.counts {
		for c := range a.counts[r] {
			for ace := range a.counts[r][c] {
				for act := range a.counts[r][c][ace] {
					a.counts[r][c][ace][act] = 1
				}
			}
		}
	}
	return a
}

func (a *actionAccumulator) add(step bj.Step, reward float64) {
	r, c, ace := step.State.Index()
	a.sums[r][c][ace][step.Action] += reward
	a.counts[r][c][ace][step.Action]++
}

// addFirstVisits adds the reward of ep once per distinct state-action pair of its trajectory.
func (a *actionAccumulator) addFirstVisits(ep bj.Episode) {
	visited := make(map[bj.Step]struct{}, len(ep.Trajectory))
	for _, step := range ep.Trajectory {
		if _, ok := visited[step]; ok {
			continue
		}
		visited[step] = struct{}{}
		a.add(step, ep.Reward)
	}
}

// averages returns the running average return of both actions at s.
func (a *actionAccumulator) averages(s bj.State) [bj.ActionSize]float64 {
	r, c, ace := s.Index()
	var avg [bj.ActionSize]float64
	for act := range avg {
		avg[act] = a.sums[r][c][ace][act] / a.counts[r][c][ace][act]
	}
	return avg
}

func (a *actionAccumulator) mean() ActionValues {
	var q ActionValues
	for r := range q {
		for c := range q[r] {
			for ace := range q[r][c] {
				for act := range q[r][c][ace] {
					q[r][c][ace][act] = a.sums[r][c][ace][act] / a.counts[r][c][ace][act]
				}
			}
		}
	}
	return q
}
