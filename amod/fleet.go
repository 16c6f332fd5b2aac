package amod

import "fmt"

const accEpsilon = 1e-9

// FleetState tracks per-region vehicle inventories over the whole episode
// plus the in-flight flow ledgers. All arrays are arena style: fixed size,
// indexed by absolute time step, allocated once per episode.
//
// Conservation contract: every unit debited from Acc[i][t+1] is credited
// to exactly one flow ledger entry with a strictly later arrival stamp,
// and FoldArrivals moves it into Acc[j] when it lands. Vehicles are only
// created by Seed at t=0.
type FleetState struct {
	nregion int
	arena   int

	// Acc[n][t] vehicles present at region n at the start of step t
	Acc [][]float64
	// Dacc[n][t] vehicles scheduled to arrive at region n at step t.
	// Accumulator only; authoritative counts live in Acc.
	Dacc [][]float64
	// RebFlow[e][t], PaxFlow[e][t]: vehicles on edge e arriving at t
	RebFlow map[Edge][]float64
	PaxFlow map[Edge][]float64
}

// NewFleetState sizes the arenas from the scenario: ledger horizon plus
// the longest possible in-flight arrival
func NewFleetState(s *Scenario) *FleetState {
	arena := s.LedgerHorizon() + s.MaxTravelTime() + 2
	f := &FleetState{
		nregion: s.NRegion,
		arena:   arena,
		Acc:     make([][]float64, s.NRegion),
		Dacc:    make([][]float64, s.NRegion),
		RebFlow: make(map[Edge][]float64, len(s.Edges)),
		PaxFlow: make(map[Edge][]float64, len(s.Edges)),
	}
	for n := 0; n < s.NRegion; n++ {
		f.Acc[n] = make([]float64, arena)
		f.Dacc[n] = make([]float64, arena)
	}
	for _, e := range s.Edges {
		f.RebFlow[e] = make([]float64, arena)
		f.PaxFlow[e] = make([]float64, arena)
	}
	f.Seed(s.AccInit)
	return f
}

// Seed places the initial vehicles, the only creation the ledger allows
func (f *FleetState) Seed(accInit []float64) {
	for n, v := range accInit {
		f.Acc[n][0] = v
	}
}

// Debit removes vehicles departing region n during step t (they leave the
// t+1 inventory). Underflow is a contract violation.
func (f *FleetState) Debit(n, t int, amount float64) {
	f.Acc[n][t+1] -= amount
	if f.Acc[n][t+1] < -accEpsilon {
		panic(fmt.Sprintf("vehicle count underflow at region %d step %d: %f", n, t+1, f.Acc[n][t+1]))
	}
	if f.Acc[n][t+1] < 0 {
		f.Acc[n][t+1] = 0
	}
}

// SchedulePax books vehicles onto a passenger-serving edge arriving at
// the given step
func (f *FleetState) SchedulePax(e Edge, arrival int, amount float64) {
	f.checkArrival(e, arrival)
	f.PaxFlow[e][arrival] += amount
	f.Dacc[e.J][arrival] += amount
}

// ScheduleReb books vehicles onto a rebalancing edge arriving at the
// given step
func (f *FleetState) ScheduleReb(e Edge, arrival int, amount float64) {
	f.checkArrival(e, arrival)
	f.RebFlow[e][arrival] += amount
	f.Dacc[e.J][arrival] += amount
}

func (f *FleetState) checkArrival(e Edge, arrival int) {
	if arrival < 0 || arrival >= f.arena {
		panic(fmt.Sprintf("arrival step %d for edge (%d,%d) outside the episode arena [0,%d)", arrival, e.I, e.J, f.arena))
	}
}

// FoldArrivals credits every flow stamped with arrival step t into the
// destination inventories for step t+1. Vehicles arriving during step t
// become available only at the next step.
func (f *FleetState) FoldArrivals(t int) {
	for e, flows := range f.RebFlow {
		f.Acc[e.J][t+1] += flows[t]
	}
	for e, flows := range f.PaxFlow {
		f.Acc[e.J][t+1] += flows[t]
	}
}

// InFlight sums the vehicles on flow ledgers with arrival stamps strictly
// after t
func (f *FleetState) InFlight(t int) float64 {
	total := 0.0
	for _, flows := range f.RebFlow {
		for tt := t + 1; tt < f.arena; tt++ {
			total += flows[tt]
		}
	}
	for _, flows := range f.PaxFlow {
		for tt := t + 1; tt < f.arena; tt++ {
			total += flows[tt]
		}
	}
	return total
}

// TotalAt sums the inventories present at step t
func (f *FleetState) TotalAt(t int) float64 {
	total := 0.0
	for n := 0; n < f.nregion; n++ {
		total += f.Acc[n][t]
	}
	return total
}
