package policies

import (
	"github.com/fleet-rl/amod/amod"
	"github.com/fleet-rl/amod/types"
)

// demandFloor keeps the desired distribution strictly positive when a
// region sees no departures at all
const demandFloor = 1e-3

// ProportionalPolicy rebalances the fleet towards the current departure
// demand: regions expecting more requests get a proportionally larger
// share of the fleet. Prices stay untouched.
type ProportionalPolicy struct {
	nregion int
}

var _ types.Policy = &ProportionalPolicy{}

func NewProportionalPolicy(nregion int) *ProportionalPolicy {
	return &ProportionalPolicy{nregion: nregion}
}

func (p *ProportionalPolicy) NextAction(_ int, state types.State) (types.Action, bool) {
	obs, ok := state.(*amod.Observation)
	if !ok {
		return nil, false
	}
	if obs.Phase == amod.PhaseMatch {
		return &amod.PriceAction{Signal: make([]float64, p.nregion)}, true
	}
	desired := obs.DepartureDemand()
	total := 0.0
	for i := range desired {
		desired[i] += demandFloor
		total += desired[i]
	}
	for i := range desired {
		desired[i] /= total
	}
	return &amod.RebAction{Desired: desired}, true
}

func (p *ProportionalPolicy) Update(_ int, _ types.State, _ types.Action, _ *types.StepResult) {
}

func (p *ProportionalPolicy) UpdateIteration(_ int, _ *types.Trace) {
}

func (p *ProportionalPolicy) Reset() {
}
