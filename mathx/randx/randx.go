package randx

import (
	"math/rand/v2"

	"github.com/sw965/omw/mathx/randx"
)

// New returns a PCG generator for seed. A zero seed draws from the global seed.
func New(seed uint64) *rand.Rand {
	if seed == 0 {
		return randx.NewPCGFromGlobalSeed()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Split derives n independent generators from master, one per worker.
//
// Splitはmasterから独立した乱数生成器をn個作ります。ワーカー毎に1つ持たせる為に使います。
func Split(master *rand.Rand, n int) []*rand.Rand {
	rngs := make([]*rand.Rand, n)
	for i := range rngs {
		rngs[i] = rand.New(rand.NewPCG(master.Uint64(), master.Uint64()))
	}
	return rngs
}

// IntRange returns a uniform integer in [lo, hi].
func IntRange(lo, hi int, rng *rand.Rand) int {
	return lo + rng.IntN(hi-lo+1)
}

func Bool(rng *rand.Rand) bool {
	return randx.Bool(rng)
}
