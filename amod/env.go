package amod

import (
	"fmt"
	"math"

	"github.com/fleet-rl/amod/solver"
	"github.com/fleet-rl/amod/types"
	"github.com/samber/lo"
	"golang.org/x/exp/rand"
)

const (
	// demand below this threshold is treated as zero by the flow variant
	demandEps = 1e-3
	// batchShuffleSeed drives the per-step shuffle of newly requested
	// passengers. The fixed seed keeps the shuffle reproducible: it only
	// exists to break destination-order bias, not to randomize runs.
	batchShuffleSeed = 42
)

// AMoD is the fleet simulator. It owns every ledger exclusively for the
// lifetime of one episode; all mutation happens through the single
// match/rebalance step sequence, never concurrently.
type AMoD struct {
	scenario *Scenario
	beta     float64 // per-step operating cost coefficient, scaled by tstep

	time     int
	fleet    *FleetState
	queues   [][]*Passenger
	demand   map[Edge][]float64
	price    map[Edge][]float64
	served   map[Edge][]float64
	unserved map[Edge][]float64
	edgeTime map[Edge]int // current rebalancing time per edge, refreshed every step

	arrivals  int // total passengers generated this episode
	info      types.Info
	rng       *rand.Rand
	optimizer solver.FlowOptimizer
}

// Option configures the environment at construction
type Option func(*AMoD)

// WithOptimizer replaces the default in-process greedy flow optimizer
func WithOptimizer(opt solver.FlowOptimizer) Option {
	return func(e *AMoD) {
		e.optimizer = opt
	}
}

// NewAMoD deep-copies the scenario and seeds the first episode. beta is
// the per-unit-time operating/rebalancing cost coefficient.
func NewAMoD(scenario *Scenario, beta float64, opts ...Option) (*AMoD, error) {
	if scenario == nil {
		return nil, fmt.Errorf("nil scenario")
	}
	e := &AMoD{
		scenario: scenario.Copy(),
		beta:     beta * float64(scenario.TStep),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.optimizer == nil {
		e.optimizer = solver.NewGreedyOptimizer()
	}
	e.Reset()
	return e, nil
}

// Edges returns the environment's edge order, the indexing contract for
// flow-vector actions
func (e *AMoD) Edges() []Edge {
	return e.scenario.Edges
}

func (e *AMoD) NRegion() int {
	return e.scenario.NRegion
}

func (e *AMoD) Time() int {
	return e.time
}

// Reset reinitializes every ledger and re-samples the demand realization
// from the scenario's static rates, then returns the initial observation
func (e *AMoD) Reset() *Observation {
	s := e.scenario
	e.time = 0
	e.fleet = NewFleetState(s)
	e.rng = s.rng
	e.arrivals = 0
	e.info = types.Info{}

	e.queues = make([][]*Passenger, s.NRegion)
	for n := range e.queues {
		e.queues[n] = make([]*Passenger, 0)
	}

	horizon := s.LedgerHorizon()
	e.demand = make(map[Edge][]float64, len(s.Edges))
	e.price = make(map[Edge][]float64, len(s.Edges))
	e.served = make(map[Edge][]float64, len(s.Edges))
	e.unserved = make(map[Edge][]float64, len(s.Edges))
	e.edgeTime = make(map[Edge]int, len(s.Edges))
	for _, edge := range s.Edges {
		e.demand[edge] = make([]float64, horizon)
		e.price[edge] = make([]float64, horizon)
		e.served[edge] = make([]float64, horizon)
		e.unserved[edge] = make([]float64, horizon)
		e.edgeTime[edge] = s.RebTime[edge][0]
	}
	for _, trip := range s.GenerateTripAttr() {
		edge := Edge{trip.Origin, trip.Destination}
		e.demand[edge][trip.Time] = trip.Demand
		e.price[edge][trip.Time] = trip.Price
	}

	log.WithField("vehicles", e.fleet.TotalAt(0)).Debug("episode reset")
	return e.observe(PhaseMatch)
}

func (e *AMoD) observe(phase Phase) *Observation {
	return &Observation{
		Time:    e.time,
		Phase:   phase,
		NRegion: e.scenario.NRegion,
		Acc:     e.fleet.Acc,
		Dacc:    e.fleet.Dacc,
		Demand:  e.demand,
		QueueLens: lo.Map(e.queues, func(q []*Passenger, _ int) int {
			return len(q)
		}),
	}
}

// MatchStep runs the greedy first-come-first-serve matching phase.
// signal optionally carries a per-region price signal; nil or zero-sum
// leaves the scenario prices untouched. The returned reward is floored
// at zero; the per-region rewards floor each match's contribution.
func (e *AMoD) MatchStep(signal []float64) (*types.StepResult, error) {
	s := e.scenario
	t := e.time
	if t >= s.LedgerHorizon() {
		return nil, fmt.Errorf("matching past the demand horizon at t=%d", t)
	}
	if signal != nil && len(signal) != s.NRegion {
		return nil, fmt.Errorf("price signal holds %d values for %d regions", len(signal), s.NRegion)
	}
	reprice := signal != nil && lo.Sum(signal) != 0

	reward := 0.0
	regionRewards := make([]float64, s.NRegion)
	for n := 0; n < s.NRegion; n++ {
		accCurrent := e.fleet.Acc[n][t]

		// materialize this step's requests on every outgoing edge
		batch := make([]*Passenger, 0)
		for _, j := range s.OutEdges[n] {
			edge := Edge{n, j}
			d := e.demand[edge][t]
			p := e.price[edge][t]
			if reprice {
				p, d = e.reprice(edge, signal[n])
				e.demand[edge][t] = d
				e.price[edge][t] = p
			}
			for k := 0; k < int(math.Round(d)); k++ {
				e.arrivals += 1
				batch = append(batch, &Passenger{
					ID:          e.arrivals,
					Origin:      n,
					Destination: j,
					RequestTime: t,
					Price:       p,
				})
			}
		}
		// shuffle only the incoming batch so earlier requests keep their
		// temporal priority while destination order stops mattering
		shuffleRng := rand.New(rand.NewSource(batchShuffleSeed))
		shuffleRng.Shuffle(len(batch), func(a, b int) {
			batch[a], batch[b] = batch[b], batch[a]
		})
		for _, pax := range batch {
			pax.Enter()
		}

		queue := append(e.queues[n], batch...)
		kept := make([]*Passenger, 0, len(queue))
		for _, pax := range queue {
			if accCurrent > 0 && pax.Match(e.rng) {
				edge := Edge{pax.Origin, pax.Destination}
				tt := s.DemandTime[edge][t]
				accCurrent -= 1
				e.fleet.SchedulePax(edge, t+tt, 1)
				e.served[edge][t] += 1

				fare := pax.Price - float64(tt)*e.beta
				reward += fare
				regionRewards[n] += math.Max(0, fare)

				e.info.Revenue += pax.Price
				e.info.ServedDemand += 1
				e.info.OperatingCost += float64(tt) * e.beta
				e.info.ServedWaiting += float64(pax.WaitTime)
			} else if pax.UnmatchedUpdate() {
				// abandoned: counted once, at the original request time
				e.unserved[Edge{pax.Origin, pax.Destination}][pax.RequestTime] += 1
				e.info.UnservedDemand += 1
			} else {
				kept = append(kept, pax)
			}
		}
		e.queues[n] = kept
		// arrivals from in-flight vehicles fold in during the
		// rebalancing phase
		e.fleet.Acc[n][t+1] = accCurrent
	}

	return &types.StepResult{
		State:         e.observe(PhaseRebalance),
		Reward:        math.Max(0, reward),
		Done:          false,
		Info:          e.info,
		RegionRewards: regionRewards,
		RegionDone:    make([]bool, s.NRegion),
	}, nil
}

// PaxStep is the optimal-flow matching variant: passenger-serving flows
// come from the flow optimizer (or are passed in directly, indexed like
// Edges). Flows are clipped to the vehicles actually available, then the
// same accounting as MatchStep applies.
func (e *AMoD) PaxStep(paxAction []float64) (*types.StepResult, error) {
	s := e.scenario
	t := e.time
	if t >= s.LedgerHorizon() {
		return nil, fmt.Errorf("matching past the demand horizon at t=%d", t)
	}
	for n := 0; n < s.NRegion; n++ {
		e.fleet.Acc[n][t+1] = e.fleet.Acc[n][t]
	}

	if paxAction == nil {
		flows, err := e.optimizer.MatchingFlows(e.matchingProblem())
		if err != nil {
			return nil, fmt.Errorf("matching flows: %w", err)
		}
		paxAction = make([]float64, len(s.Edges))
		for k, edge := range s.Edges {
			paxAction[k] = flows[solver.Edge{I: edge.I, J: edge.J}]
		}
	}
	if len(paxAction) != len(s.Edges) {
		return nil, fmt.Errorf("pax action holds %d flows for %d edges", len(paxAction), len(s.Edges))
	}

	reward := 0.0
	regionRewards := make([]float64, s.NRegion)
	for k, edge := range s.Edges {
		if e.demand[edge][t] < demandEps || paxAction[k] < demandEps {
			continue
		}
		flow := math.Min(e.fleet.Acc[edge.I][t+1], paxAction[k])
		tt := s.DemandTime[edge][t]
		e.fleet.Debit(edge.I, t, flow)
		e.fleet.SchedulePax(edge, t+tt, flow)
		e.served[edge][t] = flow

		cost := float64(tt) * e.beta * flow
		fare := flow*e.price[edge][t] - cost
		reward += fare
		regionRewards[edge.I] += math.Max(0, fare)

		e.info.Revenue += flow * e.price[edge][t]
		e.info.ServedDemand += flow
		e.info.OperatingCost += cost
	}

	return &types.StepResult{
		State:         e.observe(PhaseRebalance),
		Reward:        math.Max(0, reward),
		Done:          false,
		Info:          e.info,
		RegionRewards: regionRewards,
		RegionDone:    make([]bool, s.NRegion),
	}, nil
}

func (e *AMoD) matchingProblem() *solver.MatchingProblem {
	s := e.scenario
	t := e.time
	p := &solver.MatchingProblem{}
	for _, edge := range s.Edges {
		if e.demand[edge][t] > demandEps {
			p.Demand = append(p.Demand, solver.DemandEntry{
				Origin:      edge.I,
				Destination: edge.J,
				Demand:      e.demand[edge][t],
				Price:       e.price[edge][t],
			})
		}
	}
	for n := 0; n < s.NRegion; n++ {
		p.Acc = append(p.Acc, solver.AccEntry{Region: n, Count: e.fleet.Acc[n][t+1]})
	}
	return p
}

// RebStep applies a per-edge rebalancing flow action (indexed like
// Edges), folds in the arrivals due this step, and advances time. The
// returned reward is the true, unclipped net contribution of the phase.
func (e *AMoD) RebStep(rebAction []float64) (*types.StepResult, error) {
	s := e.scenario
	t := e.time
	if len(rebAction) != len(s.Edges) {
		return nil, fmt.Errorf("reb action holds %d flows for %d edges", len(rebAction), len(s.Edges))
	}

	reward := 0.0
	regionRewards := make([]float64, s.NRegion)
	for k, edge := range s.Edges {
		if rebAction[k] <= 0 {
			continue
		}
		// never send more vehicles than the region holds
		flow := math.Min(e.fleet.Acc[edge.I][t+1], rebAction[k])
		if flow <= 0 {
			continue
		}
		rt := s.RebTime[edge][t]
		e.fleet.Debit(edge.I, t, flow)
		e.fleet.ScheduleReb(edge, t+rt, flow)

		cost := float64(rt) * e.beta * flow
		e.info.RebalancingCost += cost
		e.info.OperatingCost += cost
		reward -= cost
		regionRewards[edge.I] -= cost
	}

	e.fleet.FoldArrivals(t)
	e.time += 1
	for _, edge := range s.Edges {
		idx := e.time
		if idx >= s.LedgerHorizon() {
			idx = s.LedgerHorizon() - 1
		}
		e.edgeTime[edge] = s.RebTime[edge][idx]
	}

	done := e.time == s.TF
	regionDone := make([]bool, s.NRegion)
	for n := range regionDone {
		regionDone[n] = done
	}
	return &types.StepResult{
		State:         e.observe(PhaseMatch),
		Reward:        reward,
		Done:          done,
		Info:          e.info,
		RegionRewards: regionRewards,
		RegionDone:    regionDone,
	}, nil
}

// FlowsForDesired converts a desired per-region fleet distribution into
// per-edge rebalancing flows through the flow optimizer. A degenerate
// (zero-sum) distribution yields zero flows.
func (e *AMoD) FlowsForDesired(desired []float64) ([]float64, error) {
	s := e.scenario
	if len(desired) != s.NRegion {
		return nil, fmt.Errorf("desired distribution holds %d values for %d regions", len(desired), s.NRegion)
	}
	out := make([]float64, len(s.Edges))
	total := lo.Sum(desired)
	if total <= 0 {
		return out, nil
	}

	t := e.time
	available := 0.0
	for n := 0; n < s.NRegion; n++ {
		available += e.fleet.Acc[n][t+1]
	}

	prob := &solver.RebalancingProblem{}
	for _, edge := range s.Edges {
		prob.Edges = append(prob.Edges, solver.Edge{I: edge.I, J: edge.J})
		prob.Times = append(prob.Times, e.edgeTime[edge])
	}
	for n := 0; n < s.NRegion; n++ {
		prob.Acc = append(prob.Acc, solver.AccEntry{Region: n, Count: e.fleet.Acc[n][t+1]})
		prob.Desired = append(prob.Desired, solver.AccEntry{Region: n, Count: desired[n] / total * available})
	}
	flows, err := e.optimizer.RebalancingFlows(prob)
	if err != nil {
		return nil, fmt.Errorf("rebalancing flows: %w", err)
	}
	for k, edge := range s.Edges {
		out[k] = flows[solver.Edge{I: edge.I, J: edge.J}]
	}
	return out, nil
}
