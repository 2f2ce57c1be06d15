// Package mc estimates blackjack state values and state-action values with Monte Carlo methods:
// every-visit on-policy prediction, first-visit control with exploring starts, and off-policy
// prediction with ordinary and weighted importance sampling.
//
// Value tables are indexed (player sum - 12, dealer card - 1). Count tables start at 1 instead
// of 0, so a cell that was never visited reports 0 and rarely visited cells are pulled towards 0.
//
// Package mc はモンテカルロ法でブラックジャックの状態価値と行動価値を推定します。
// 訪問回数のテーブルは0ではなく1から始まる為、一度も訪問していないセルは0になります。
package mc

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sw965/blackjack/game"
	bj "github.com/sw965/blackjack/game/blackjack"
	"github.com/sw965/blackjack/mathx/randx"
	"github.com/sw965/omw/parallel"
)

var (
	ErrInvalidEpisodes  = errors.New("episodesエラー: 1以上である必要があります")
	ErrInvalidRuns      = errors.New("runsエラー: 1以上である必要があります")
	ErrZeroBehaviorProb = errors.New("挙動方策エラー: 選択された行動の確率が0です")
)

// OffPolicyStart is the single state evaluated by off-policy prediction.
var OffPolicyStart = bj.State{UsableAce: true, PlayerSum: 13, DealerCard: 2}

// TrueOffPolicyValue is the reference value of OffPolicyStart under PlayerStick20
// against DealerStick17.
const TrueOffPolicyValue = -0.27726

// Estimator owns the policies, the random source and the options shared by all estimators.
// An Estimator is not safe for concurrent use; Workers only parallelizes episodes inside one call.
//
// Estimatorは方策、乱数生成器、各推定法で共通の設定を保持します。
type Estimator struct {
	Engine       bj.Engine
	PlayerPolicy bj.TablePolicy

	// Behavior generates off-policy episodes. RandomActor when unset.
	Behavior bj.Actor

	// TieBreak picks among the greedy maximizers during exploring starts.
	// game.MaxSelectFunc when unset.
	TieBreak game.SelectFunc[bj.Action]

	// NewDeck builds the deck of one worker. An infinite deck when unset.
	NewDeck func(*rand.Rand) bj.Deck

	// Workers is the number of goroutines used by the prediction estimators.
	Workers int

	Logger zerolog.Logger

	rng *rand.Rand
}

func NewEstimator(player, dealer bj.TablePolicy, seed uint64) *Estimator {
	e := &Estimator{
		Engine:       bj.NewEngine(dealer),
		PlayerPolicy: player,
		Workers:      1,
		Logger:       zerolog.Nop(),
		rng:          randx.New(seed),
	}
	e.setDefaults()
	return e
}

func (e *Estimator) setDefaults() {
	if e.rng == nil {
		e.rng = randx.New(0)
	}
	if e.Behavior.PolicyFunc == nil && e.Behavior.SelectFunc == nil {
		e.Behavior = bj.RandomActor()
	}
	if e.TieBreak == nil {
		e.TieBreak = game.MaxSelectFunc[bj.Action]
	}
	if e.NewDeck == nil {
		e.NewDeck = func(rng *rand.Rand) bj.Deck {
			return bj.NewInfiniteDeck(rng)
		}
	}
	if e.Workers < 1 {
		e.Workers = 1
	}
}

// TargetActor follows PlayerPolicy.
func (e *Estimator) TargetActor() bj.Actor {
	return bj.TableActor(e.PlayerPolicy)
}

func validateEpisodes(episodes int) error {
	if episodes < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidEpisodes, episodes)
	}
	return nil
}

// playEpisodes runs n independent episodes on e.Workers goroutines. Every worker owns
// its rng and deck; the episodes are returned in index order for a sequential fold.
func (e *Estimator) playEpisodes(method string, n int, actor bj.Actor, start bj.Start) ([]bj.Episode, error) {
	p := e.Workers
	rngs := randx.Split(e.rng, p)
	decks := make([]bj.Deck, p)
	for i, rng := range rngs {
		decks[i] = e.NewDeck(rng)
	}

	episodes := make([]bj.Episode, n)
	progress := newProgress(e.Logger, method, n)

	err := parallel.For(n, p, func(workerId, idx int) error {
		ep, err := e.Engine.Play(actor, decks[workerId], rngs[workerId], start)
		if err != nil {
			return fmt.Errorf("episode %d: %w", idx, err)
		}
		episodes[idx] = ep
		progress.tick()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return episodes, nil
}

type progress struct {
	logger zerolog.Logger
	method string
	total  int64
	step   int64
	done   atomic.Int64
}

func newProgress(logger zerolog.Logger, method string, total int) *progress {
	return &progress{
		logger: logger,
		method: method,
		total:  int64(total),
		step:   max(int64(total)/10, 1),
	}
}

func (p *progress) tick() {
	d := p.done.Add(1)
	if d%p.step == 0 {
		p.logger.Debug().Str("method", p.method).Int64("done", d).Int64("total", p.total).Msg("progress")
	}
}

func (e *Estimator) logStart(method string, episodes int) time.Time {
	e.Logger.Info().Str("method", method).Int("episodes", episodes).Int("workers", e.Workers).Msg("start")
	return time.Now()
}

func (e *Estimator) logDone(method string, episodes int, began time.Time) {
	e.Logger.Info().Str("method", method).Int("episodes", episodes).Dur("elapsed", time.Since(began)).Msg("done")
}
