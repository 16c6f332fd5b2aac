package solver

import "sort"

// GreedyOptimizer is a deterministic in-process fallback used in tests and
// in setups without a mathematical-programming engine.
type GreedyOptimizer struct{}

var _ FlowOptimizer = &GreedyOptimizer{}

func NewGreedyOptimizer() *GreedyOptimizer {
	return &GreedyOptimizer{}
}

// MatchingFlows serves demand first-come-first-serve per origin, highest
// price first, never exceeding the available vehicles.
func (g *GreedyOptimizer) MatchingFlows(p *MatchingProblem) (map[Edge]float64, error) {
	remaining := make(map[int]float64, len(p.Acc))
	for _, a := range p.Acc {
		remaining[a.Region] = a.Count
	}

	entries := make([]DemandEntry, len(p.Demand))
	copy(entries, p.Demand)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Price != entries[j].Price {
			return entries[i].Price > entries[j].Price
		}
		if entries[i].Origin != entries[j].Origin {
			return entries[i].Origin < entries[j].Origin
		}
		return entries[i].Destination < entries[j].Destination
	})

	flows := make(map[Edge]float64, len(entries))
	for _, d := range entries {
		avail := remaining[d.Origin]
		if avail <= 0 || d.Demand <= 0 {
			continue
		}
		flow := d.Demand
		if flow > avail {
			flow = avail
		}
		remaining[d.Origin] = avail - flow
		flows[Edge{d.Origin, d.Destination}] = flow
	}
	return flows, nil
}

// RebalancingFlows moves surplus vehicles toward deficit regions, nearest
// deficit (by rebalancing time) first. It is not optimal but respects the
// same contract: flows leave only regions that hold vehicles.
func (g *GreedyOptimizer) RebalancingFlows(p *RebalancingProblem) (map[Edge]float64, error) {
	acc := make(map[int]float64, len(p.Acc))
	for _, a := range p.Acc {
		acc[a.Region] = a.Count
	}
	deficit := make(map[int]float64, len(p.Desired))
	surplus := make(map[int]float64, len(p.Desired))
	for _, d := range p.Desired {
		diff := acc[d.Region] - d.Count
		if diff > 0 {
			surplus[d.Region] = diff
		} else if diff < 0 {
			deficit[d.Region] = -diff
		}
	}

	// edges sorted by travel time so short repositioning trips win
	order := make([]int, len(p.Edges))
	for k := range p.Edges {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool {
		if p.Times[order[a]] != p.Times[order[b]] {
			return p.Times[order[a]] < p.Times[order[b]]
		}
		if p.Edges[order[a]].I != p.Edges[order[b]].I {
			return p.Edges[order[a]].I < p.Edges[order[b]].I
		}
		return p.Edges[order[a]].J < p.Edges[order[b]].J
	})

	flows := make(map[Edge]float64)
	for _, k := range order {
		e := p.Edges[k]
		if e.I == e.J {
			continue
		}
		s, d := surplus[e.I], deficit[e.J]
		if s <= 0 || d <= 0 {
			continue
		}
		flow := s
		if flow > d {
			flow = d
		}
		surplus[e.I] -= flow
		deficit[e.J] -= flow
		flows[e] += flow
	}
	return flows, nil
}
