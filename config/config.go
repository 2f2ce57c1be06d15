// Package config loads experiment settings from YAML and builds the estimators they describe.
//
// Package config はYAMLから実験設定を読み込み、推定器を構築します。
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	bj "github.com/sw965/blackjack/game/blackjack"
	"github.com/sw965/blackjack/mc"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("設定エラー")

// PolicyConfig describes a table policy either by threshold or by an explicit table of
// 22 "hit"/"stick" entries. Table wins when both are set.
type PolicyConfig struct {
	StickAt int      `yaml:"stick_at,omitempty"`
	Table   []string `yaml:"table,omitempty"`
}

func (p PolicyConfig) IsZero() bool {
	return p.StickAt == 0 && len(p.Table) == 0
}

func (p PolicyConfig) TablePolicy() (bj.TablePolicy, error) {
	if len(p.Table) != 0 {
		actions := make([]bj.Action, len(p.Table))
		for i, s := range p.Table {
			a, err := bj.ParseAction(s)
			if err != nil {
				return bj.TablePolicy{}, fmt.Errorf("%w: table[%d]: %w", ErrInvalidConfig, i, err)
			}
			actions[i] = a
		}
		tp, err := bj.NewTablePolicy(actions)
		if err != nil {
			return bj.TablePolicy{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return tp, nil
	}

	// 22は常にHit
	if p.StickAt < bj.MinDecisionSum || p.StickAt > bj.TableSize {
		return bj.TablePolicy{}, fmt.Errorf("%w: stick_at must be in [%d, %d], got %d",
			ErrInvalidConfig, bj.MinDecisionSum, bj.TableSize, p.StickAt)
	}
	return bj.NewThresholdPolicy(p.StickAt), nil
}

type Section struct {
	Episodes int `yaml:"episodes"`
	// PlayerPolicy overrides Experiment.PlayerPolicy when set.
	PlayerPolicy PolicyConfig `yaml:"player_policy,omitempty"`
}

type OffPolicySection struct {
	Section   `yaml:",inline"`
	Runs      int     `yaml:"runs"`
	TrueValue float64 `yaml:"true_value"`
}

type Experiment struct {
	Seed            uint64           `yaml:"seed"`
	Workers         int              `yaml:"workers"`
	PlayerPolicy    PolicyConfig     `yaml:"player_policy"`
	DealerPolicy    PolicyConfig     `yaml:"dealer_policy"`
	OnPolicy        Section          `yaml:"on_policy"`
	ExploringStarts Section          `yaml:"exploring_starts"`
	OffPolicy       OffPolicySection `yaml:"off_policy"`
}

// Default mirrors the classic experiment: the on-policy run evaluates "stick at 18",
// control and off-policy evaluation start from "stick at 20", and the dealer sticks at 17.
func Default() Experiment {
	return Experiment{
		Seed:         1,
		Workers:      1,
		PlayerPolicy: PolicyConfig{StickAt: 20},
		DealerPolicy: PolicyConfig{StickAt: 17},
		OnPolicy: Section{
			Episodes:     500000,
			PlayerPolicy: PolicyConfig{StickAt: 18},
		},
		ExploringStarts: Section{Episodes: 500000},
		OffPolicy: OffPolicySection{
			Section:   Section{Episodes: 10000},
			Runs:      100,
			TrueValue: mc.TrueOffPolicyValue,
		},
	}
}

func Load(path string) (Experiment, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Experiment{}, err
	}
	return Parse(b)
}

// Parse decodes b on top of Default and validates the result. Unknown keys are rejected.
func Parse(b []byte) (Experiment, error) {
	x := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&x); err != nil && !errors.Is(err, io.EOF) {
		return Experiment{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := x.Validate(); err != nil {
		return Experiment{}, err
	}
	return x, nil
}

func (x Experiment) Validate() error {
	if x.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidConfig, x.Workers)
	}

	sections := []struct {
		name    string
		section Section
	}{
		{"on_policy", x.OnPolicy},
		{"exploring_starts", x.ExploringStarts},
		{"off_policy", x.OffPolicy.Section},
	}
	for _, s := range sections {
		if s.section.Episodes < 1 {
			return fmt.Errorf("%w: %s.episodes must be >= 1, got %d", ErrInvalidConfig, s.name, s.section.Episodes)
		}
		if _, err := x.playerPolicy(s.section).TablePolicy(); err != nil {
			return fmt.Errorf("%s.player_policy: %w", s.name, err)
		}
	}
	if x.OffPolicy.Runs < 1 {
		return fmt.Errorf("%w: off_policy.runs must be >= 1, got %d", ErrInvalidConfig, x.OffPolicy.Runs)
	}
	if _, err := x.DealerPolicy.TablePolicy(); err != nil {
		return fmt.Errorf("dealer_policy: %w", err)
	}
	return nil
}

func (x Experiment) playerPolicy(s Section) PolicyConfig {
	if s.PlayerPolicy.IsZero() {
		return x.PlayerPolicy
	}
	return s.PlayerPolicy
}

// Estimators holds one estimator per experiment section. Each gets its own seed.
type Estimators struct {
	OnPolicy        *mc.Estimator
	ExploringStarts *mc.Estimator
	OffPolicy       *mc.Estimator
}

func (x Experiment) NewEstimators(logger zerolog.Logger) (Estimators, error) {
	if err := x.Validate(); err != nil {
		return Estimators{}, err
	}

	dealer, err := x.DealerPolicy.TablePolicy()
	if err != nil {
		return Estimators{}, err
	}

	build := func(s Section, offset uint64, name string) (*mc.Estimator, error) {
		player, err := x.playerPolicy(s).TablePolicy()
		if err != nil {
			return nil, err
		}
		seed := x.Seed
		if seed != 0 {
			seed += offset
		}
		e := mc.NewEstimator(player, dealer, seed)
		e.Workers = x.Workers
		e.Logger = logger.With().Str("section", name).Logger()
		return e, nil
	}

	var ests Estimators
	if ests.OnPolicy, err = build(x.OnPolicy, 0, "on_policy"); err != nil {
		return Estimators{}, err
	}
	if ests.ExploringStarts, err = build(x.ExploringStarts, 1, "exploring_starts"); err != nil {
		return Estimators{}, err
	}
	if ests.OffPolicy, err = build(x.OffPolicy.Section, 2, "off_policy"); err != nil {
		return Estimators{}, err
	}
	return ests, nil
}
