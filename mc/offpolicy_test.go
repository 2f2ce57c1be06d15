package mc_test

import (
	"errors"
	"math"
	"testing"

	bj "github.com/sw965/blackjack/game/blackjack"
	"github.com/sw965/blackjack/mc"
)

func TestImportanceRatio(t *testing.T) {
	e := mc.NewEstimator(bj.PlayerStick18, bj.DealerStick17, 1)
	s13 := bj.State{UsableAce: true, PlayerSum: 13, DealerCard: 2}
	s19 := bj.State{UsableAce: true, PlayerSum: 19, DealerCard: 2}

	tests := []struct {
		name string
		traj bj.Trajectory
		want float64
	}{
		{
			name: "正常_1手一致",
			traj: bj.Trajectory{{State: s13, Action: bj.Hit}},
			want: 2,
		},
		{
			name: "正常_2手一致",
			traj: bj.Trajectory{{State: s13, Action: bj.Hit}, {State: s19, Action: bj.Stick}},
			want: 4,
		},
		{
			name: "正常_最初の手が不一致",
			traj: bj.Trajectory{{State: s13, Action: bj.Stick}},
			want: 0,
		},
		{
			name: "正常_最後の手が不一致",
			traj: bj.Trajectory{{State: s13, Action: bj.Hit}, {State: s19, Action: bj.Hit}},
			want: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.ImportanceRatio(tc.traj)
			if err != nil {
				t.Fatalf("want: nil, got: %v", err)
			}
			if got != tc.want {
				t.Errorf("want: %v, got: %v", tc.want, got)
			}
		})
	}
}

func TestImportanceRatioZeroBehaviorProb(t *testing.T) {
	e := mc.NewEstimator(bj.PlayerStick18, bj.DealerStick17, 1)
	e.Behavior = bj.TableActor(bj.NewThresholdPolicy(12))
	traj := bj.Trajectory{{State: bj.State{PlayerSum: 13, DealerCard: 2}, Action: bj.Hit}}
	if _, err := e.ImportanceRatio(traj); !errors.Is(err, mc.ErrZeroBehaviorProb) {
		t.Errorf("want: %v, got: %v", mc.ErrZeroBehaviorProb, err)
	}
}

func TestNewImportanceSampling(t *testing.T) {
	tests := []struct {
		name         string
		rhos         []float64
		rewards      []float64
		wantOrdinary []float64
		wantWeighted []float64
	}{
		{
			name:         "正常_全て0",
			rhos:         []float64{0, 0, 0},
			rewards:      []float64{1, -1, 0},
			wantOrdinary: []float64{0, 0, 0},
			wantWeighted: []float64{0, 0, 0},
		},
		{
			name:         "正常_途中から非0",
			rhos:         []float64{0, 4, 2},
			rewards:      []float64{-1, -1, 1},
			wantOrdinary: []float64{0, -2, -2.0 / 3.0},
			wantWeighted: []float64{0, -1, -2.0 / 6.0},
		},
		{
			name:         "正常_1エピソード",
			rhos:         []float64{4},
			rewards:      []float64{-1},
			wantOrdinary: []float64{-4},
			wantWeighted: []float64{-1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mc.NewImportanceSampling(tc.rhos, tc.rewards)
			for i := range tc.rhos {
				if math.Abs(got.Ordinary[i]-tc.wantOrdinary[i]) > 1e-12 {
					t.Errorf("Ordinary[%d] want: %v, got: %v", i, tc.wantOrdinary[i], got.Ordinary[i])
				}
				if math.Abs(got.Weighted[i]-tc.wantWeighted[i]) > 1e-12 {
					t.Errorf("Weighted[%d] want: %v, got: %v", i, tc.wantWeighted[i], got.Weighted[i])
				}
			}
		})
	}
}

func TestPredictOffPolicyScripted(t *testing.T) {
	e := mc.NewEstimator(bj.PlayerStick18, bj.DealerStick17, 1)
	// 挙動方策: ソフト13でHit -> ソフト19でStick
	e.Behavior = cyclicActor(bj.Hit, bj.Stick)
	// ディーラーの伏せ札: 8 (2 + 8 = 10) / プレイヤー: 6 -> 19 / ディーラー: 10 -> 20
	e.NewDeck = scriptedDecks(8, 6, 10)

	got, err := e.PredictOffPolicy(1)
	if err != nil {
		t.Fatalf("want: nil, got: %v", err)
	}
	if len(got.Ordinary) != 1 || len(got.Weighted) != 1 {
		t.Fatalf("want: 長さ1, got: %d %d", len(got.Ordinary), len(got.Weighted))
	}
	// rho = 0.5^-2 = 4, 報酬 = -1
	if got.Ordinary[0] != -4 {
		t.Errorf("Ordinary want: -4, got: %v", got.Ordinary[0])
	}
	if got.Weighted[0] != -1 {
		t.Errorf("Weighted want: -1, got: %v", got.Weighted[0])
	}
}

func TestPredictOffPolicyDivergentBehavior(t *testing.T) {
	e := mc.NewEstimator(bj.PlayerStick18, bj.DealerStick17, 1)
	// ソフト13でStickは目標方策と不一致
	e.Behavior = cyclicActor(bj.Stick)
	e.NewDeck = scriptedDecks(8, 10)

	got, err := e.PredictOffPolicy(5)
	if err != nil {
		t.Fatalf("want: nil, got: %v", err)
	}
	for i := range got.Weighted {
		if got.Ordinary[i] != 0 || got.Weighted[i] != 0 {
			t.Errorf("[%d] want: 0, got: %v %v", i, got.Ordinary[i], got.Weighted[i])
		}
	}
}

func TestPredictOffPolicy(t *testing.T) {
	episodes := 20000
	e := mc.NewEstimator(bj.PlayerStick20, bj.DealerStick17, 2024)
	e.Workers = 4
	got, err := e.PredictOffPolicy(episodes)
	if err != nil {
		t.Fatalf("want: nil, got: %v", err)
	}
	if len(got.Ordinary) != episodes || len(got.Weighted) != episodes {
		t.Fatalf("want: 長さ%d, got: %d %d", episodes, len(got.Ordinary), len(got.Weighted))
	}
	for i := range got.Weighted {
		for _, v := range []float64{got.Ordinary[i], got.Weighted[i]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("[%d] NaN/Infが含まれる: %v", i, v)
			}
		}
	}
	if last := got.Weighted[episodes-1]; math.Abs(last-mc.TrueOffPolicyValue) > 0.15 {
		t.Errorf("加重重点サンプリングの推定値が真の値から離れすぎている: %v", last)
	}
}

func TestOffPolicyMSE(t *testing.T) {
	e := mc.NewEstimator(bj.PlayerStick18, bj.DealerStick17, 1)
	e.Behavior = cyclicActor(bj.Hit, bj.Stick)
	e.NewDeck = scriptedDecks(8, 6, 10)

	got, err := e.OffPolicyMSE(1, 3, 0)
	if err != nil {
		t.Fatalf("want: nil, got: %v", err)
	}
	if got.Ordinary[0] != 16 {
		t.Errorf("Ordinary want: 16, got: %v", got.Ordinary[0])
	}
	if got.Weighted[0] != 1 {
		t.Errorf("Weighted want: 1, got: %v", got.Weighted[0])
	}
}

func TestOffPolicyMSERandom(t *testing.T) {
	e := mc.NewEstimator(bj.PlayerStick20, bj.DealerStick17, 3)
	got, err := e.OffPolicyMSE(200, 5, mc.TrueOffPolicyValue)
	if err != nil {
		t.Fatalf("want: nil, got: %v", err)
	}
	for i := range got.Ordinary {
		if got.Ordinary[i] < 0 || got.Weighted[i] < 0 {
			t.Fatalf("[%d] 二乗誤差が負: %v %v", i, got.Ordinary[i], got.Weighted[i])
		}
	}
}
