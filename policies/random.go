package policies

import (
	"github.com/fleet-rl/amod/amod"
	"github.com/fleet-rl/amod/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// RandomPolicy rebalances to a uniformly random point of the simplex and
// never touches prices. Exponential draws normalized by their sum give
// the uniform simplex sample.
type RandomPolicy struct {
	nregion int
	rng     *rand.Rand
	exp     distuv.Exponential
}

var _ types.Policy = &RandomPolicy{}

func NewRandomPolicy(nregion int, seed uint64) *RandomPolicy {
	rng := rand.New(rand.NewSource(seed))
	return &RandomPolicy{
		nregion: nregion,
		rng:     rng,
		exp:     distuv.Exponential{Rate: 1, Src: rng},
	}
}

func (p *RandomPolicy) NextAction(_ int, state types.State) (types.Action, bool) {
	obs, ok := state.(*amod.Observation)
	if !ok {
		return nil, false
	}
	if obs.Phase == amod.PhaseMatch {
		return &amod.PriceAction{Signal: make([]float64, p.nregion)}, true
	}
	return &amod.RebAction{Desired: p.simplex()}, true
}

func (p *RandomPolicy) simplex() []float64 {
	v := make([]float64, p.nregion)
	total := 0.0
	for i := range v {
		v[i] = p.exp.Rand()
		total += v[i]
	}
	for i := range v {
		v[i] /= total
	}
	return v
}

func (p *RandomPolicy) Update(_ int, _ types.State, _ types.Action, _ *types.StepResult) {
}

func (p *RandomPolicy) UpdateIteration(_ int, _ *types.Trace) {
}

func (p *RandomPolicy) Reset() {
}
