// Package solver integrates external flow optimizers behind a narrow
// synchronous interface: a flow-network problem in, an edge flow
// assignment out. The concrete engine (a mathematical-programming
// subprocess or an in-process greedy fallback) is swappable without
// touching the environment core.
package solver

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "solver")

// Edge is a directed region pair
type Edge struct {
	I int
	J int
}

// DemandEntry is one (origin, destination, demand, price) tuple of the
// matching problem
type DemandEntry struct {
	Origin      int
	Destination int
	Demand      float64
	Price       float64
}

// AccEntry is the vehicle count available at a region
type AccEntry struct {
	Region int
	Count  float64
}

// MatchingProblem asks for passenger-serving flows given the demand and
// the available vehicles per region
type MatchingProblem struct {
	Demand []DemandEntry
	Acc    []AccEntry
}

// RebalancingProblem asks for repositioning flows that move the available
// vehicles toward a desired per-region distribution
type RebalancingProblem struct {
	Edges   []Edge
	Times   []int // rebalancing travel time per edge, same order as Edges
	Acc     []AccEntry
	Desired []AccEntry
}

// FlowOptimizer resolves flow-network problems for the environment.
// Both calls are synchronous; a failure is fatal for the step that
// issued it and must not be retried.
type FlowOptimizer interface {
	MatchingFlows(*MatchingProblem) (map[Edge]float64, error)
	RebalancingFlows(*RebalancingProblem) (map[Edge]float64, error)
}
