package policies

import (
	"math"

	"github.com/fleet-rl/amod/amod"
	"github.com/fleet-rl/amod/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// QueueWeightedPolicy reacts to waiting passengers. Each rebalancing step
// it samples a focus region with probability proportional to its queue
// length and shifts fleet share towards it; each matching step it surges
// prices on congested regions.
type QueueWeightedPolicy struct {
	nregion int
	// Boost is the extra fleet share granted to the focus region
	Boost float64
	rng   *rand.Rand
}

var _ types.Policy = &QueueWeightedPolicy{}

func NewQueueWeightedPolicy(nregion int, seed uint64) *QueueWeightedPolicy {
	return &QueueWeightedPolicy{
		nregion: nregion,
		Boost:   0.5,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (p *QueueWeightedPolicy) NextAction(_ int, state types.State) (types.Action, bool) {
	obs, ok := state.(*amod.Observation)
	if !ok {
		return nil, false
	}
	if obs.Phase == amod.PhaseMatch {
		return &amod.PriceAction{Signal: p.surgeSignal(obs)}, true
	}
	return &amod.RebAction{Desired: p.desired(obs)}, true
}

// surgeSignal raises prices in proportion to each region's share of the
// longest queue
func (p *QueueWeightedPolicy) surgeSignal(obs *amod.Observation) []float64 {
	signal := make([]float64, p.nregion)
	longest := 0
	for _, q := range obs.QueueLens {
		if q > longest {
			longest = q
		}
	}
	if longest == 0 {
		return signal
	}
	for n, q := range obs.QueueLens {
		signal[n] = float64(q) / float64(longest)
	}
	return signal
}

func (p *QueueWeightedPolicy) desired(obs *amod.Observation) []float64 {
	desired := make([]float64, p.nregion)
	uniform := 1.0 / float64(p.nregion)
	for n := range desired {
		desired[n] = uniform
	}

	weights := make([]float64, p.nregion)
	total := 0.0
	for n, q := range obs.QueueLens {
		weights[n] = float64(q)
		total += weights[n]
	}
	if total == 0 {
		return desired
	}
	w := sampleuv.NewWeighted(weights, p.rng)
	focus, ok := w.Take()
	if !ok {
		return desired
	}
	desired[focus] += p.Boost
	norm := 1.0 + p.Boost
	for n := range desired {
		desired[n] /= norm
	}
	// guard against accumulated float drift before handing the simplex on
	sum := 0.0
	for _, v := range desired {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		for n := range desired {
			desired[n] /= sum
		}
	}
	return desired
}

func (p *QueueWeightedPolicy) Update(_ int, _ types.State, _ types.Action, _ *types.StepResult) {
}

func (p *QueueWeightedPolicy) UpdateIteration(_ int, _ *types.Trace) {
}

func (p *QueueWeightedPolicy) Reset() {
}
