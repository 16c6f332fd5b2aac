package amod

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Edge is a directed connection between two regions. Self loops (i,i)
// always exist and act as the idle rebalancing link.
type Edge struct {
	I int
	J int
}

// TripAttr is one generated demand record: volume requested on an edge at
// a time step, at a price
type TripAttr struct {
	Origin      int
	Destination int
	Time        int
	Demand      float64
	Price       float64
}

// Scenario holds the per-episode-immutable topology and the static demand
// structure trips are sampled from. A scenario is a template: the
// environment deep-copies it at construction so training never mutates
// shared state.
//
// Travel times are precomputed arenas indexed by time step over the
// ledger horizon (2*TF), one slice per edge.
type Scenario struct {
	NRegion int
	TF      int
	TStep   int

	Edges      []Edge
	OutEdges   [][]int // destination regions per origin, self included
	DemandTime map[Edge][]int
	RebTime    map[Edge][]int
	AccInit    []float64

	// synthetic-grid demand structure
	demandInput          []float64 // mean outgoing demand per region
	alpha                float64
	tripLengthPreference float64
	demandRatio          map[Edge][]float64
	fixPrice             bool
	fixedPrice           map[Edge]float64

	// replay demand structure
	isReplay    bool
	replayMean  map[Edge][]float64
	replayPrice map[Edge][]float64

	seed uint64
	rng  *rand.Rand
}

// LedgerHorizon is the number of time steps demand ledgers span. Demand
// exists past TF so vehicles keep arriving while the episode winds down.
func (s *Scenario) LedgerHorizon() int {
	return 2 * s.TF
}

// MaxTravelTime over both travel-time tables, used to size arrival arenas
func (s *Scenario) MaxTravelTime() int {
	max := 0
	for _, e := range s.Edges {
		for _, tt := range s.DemandTime[e] {
			if tt > max {
				max = tt
			}
		}
		for _, tt := range s.RebTime[e] {
			if tt > max {
				max = tt
			}
		}
	}
	return max
}

// GridConfig configures a synthetic N1 x N2 grid scenario
type GridConfig struct {
	N1 int
	N2 int
	// TF is the episode horizon in steps
	TF int
	// NInit vehicles seeded at every region at t=0
	NInit int
	// GridTravelTime converts manhattan grid distance into steps
	GridTravelTime int
	// DemandInput is the mean outgoing demand: one value for all regions
	// or one per region
	DemandInput []float64
	// Alpha spreads a per-episode random multiplier over [1-a, 1+a]
	Alpha float64
	// TripLengthPreference exponentially down-weights longer trips
	// (positive favors short trips)
	TripLengthPreference float64
	// DemandRatio control points, linearly interpolated over the horizon.
	// Empty means a flat curve.
	DemandRatio []float64
	// FixPrice draws one price per edge for the whole scenario instead of
	// re-drawing per time step
	FixPrice bool
	TStep    int
	Seed     uint64
}

// NewGridScenario builds a complete directed graph over an N1 x N2 grid
// with manhattan travel times
func NewGridScenario(cfg GridConfig) (*Scenario, error) {
	if cfg.N1 <= 0 || cfg.N2 <= 0 {
		return nil, fmt.Errorf("grid scenario needs positive dimensions, got %dx%d", cfg.N1, cfg.N2)
	}
	if cfg.TF <= 0 {
		return nil, fmt.Errorf("grid scenario needs a positive horizon, got %d", cfg.TF)
	}
	n := cfg.N1 * cfg.N2
	switch len(cfg.DemandInput) {
	case 1, n:
	default:
		return nil, fmt.Errorf("demand input must hold 1 or %d values, got %d", n, len(cfg.DemandInput))
	}
	if cfg.TStep == 0 {
		cfg.TStep = 1
	}
	if cfg.GridTravelTime == 0 {
		cfg.GridTravelTime = 1
	}

	s := &Scenario{
		NRegion:              n,
		TF:                   cfg.TF,
		TStep:                cfg.TStep,
		DemandTime:           make(map[Edge][]int),
		RebTime:              make(map[Edge][]int),
		AccInit:              make([]float64, n),
		alpha:                cfg.Alpha,
		tripLengthPreference: cfg.TripLengthPreference,
		demandRatio:          make(map[Edge][]float64),
		fixPrice:             cfg.FixPrice,
		fixedPrice:           make(map[Edge]float64),
		seed:                 cfg.Seed,
		rng:                  rand.New(rand.NewSource(cfg.Seed)),
	}

	s.demandInput = make([]float64, n)
	for i := 0; i < n; i++ {
		if len(cfg.DemandInput) == 1 {
			s.demandInput[i] = cfg.DemandInput[0]
		} else {
			s.demandInput[i] = cfg.DemandInput[i]
		}
		s.AccInit[i] = float64(cfg.NInit)
	}

	// complete digraph with self loops; manhattan distance on the grid
	ratio := interpolateRatio(cfg.TF, cfg.DemandRatio)
	s.OutEdges = make([][]int, n)
	horizon := s.LedgerHorizon()
	for i := 0; i < n; i++ {
		s.OutEdges[i] = make([]int, 0, n)
		for j := 0; j < n; j++ {
			e := Edge{i, j}
			s.Edges = append(s.Edges, e)
			s.OutEdges[i] = append(s.OutEdges[i], j)
			dist := (abs(i/cfg.N1-j/cfg.N1) + abs(i%cfg.N1-j%cfg.N1)) * cfg.GridTravelTime
			dt := make([]int, horizon)
			rt := make([]int, horizon)
			for t := range dt {
				dt[t] = dist
				rt[t] = dist
			}
			s.DemandTime[e] = dt
			s.RebTime[e] = rt
			s.demandRatio[e] = ratio
		}
	}

	if cfg.FixPrice {
		for _, e := range s.Edges {
			s.fixedPrice[e] = (s.rng.Float64()*2 + 1) * float64(s.DemandTime[e][0]+1)
		}
	}
	return s, nil
}

// GenerateTripAttr draws a fresh Poisson realization of the scenario's
// static demand for every (edge, t). Called once per episode reset:
// episodes decorrelate while the structural mean demand stays put.
func (s *Scenario) GenerateTripAttr() []TripAttr {
	if s.isReplay {
		return s.generateReplayTrips()
	}
	return s.generateGridTrips()
}

func (s *Scenario) generateGridTrips() []TripAttr {
	// per-episode random demand multiplier per region
	staticDemand := make(map[Edge]float64, len(s.Edges))
	for i := 0; i < s.NRegion; i++ {
		regionDemand := (s.rng.Float64()*s.alpha*2 + 1 - s.alpha) * s.demandInput[i]
		probs := make([]float64, len(s.OutEdges[i]))
		total := 0.0
		for k, j := range s.OutEdges[i] {
			probs[k] = math.Exp(-float64(s.RebTime[Edge{i, j}][0]) * s.tripLengthPreference)
			total += probs[k]
		}
		for k, j := range s.OutEdges[i] {
			staticDemand[Edge{i, j}] = regionDemand * probs[k] / total
		}
	}

	trips := make([]TripAttr, 0, len(s.Edges)*s.LedgerHorizon())
	for t := 0; t < s.LedgerHorizon(); t++ {
		for _, e := range s.Edges {
			d := s.poisson(staticDemand[e] * s.demandRatio[e][t])
			var p float64
			if s.fixPrice {
				p = s.fixedPrice[e]
			} else {
				draw := distuv.Exponential{Rate: 0.5, Src: s.rng}.Rand() + 1
				p = math.Min(3, draw) * float64(s.DemandTime[e][t])
			}
			trips = append(trips, TripAttr{Origin: e.I, Destination: e.J, Time: t, Demand: d, Price: p})
		}
	}
	return trips
}

func (s *Scenario) generateReplayTrips() []TripAttr {
	trips := make([]TripAttr, 0, len(s.Edges)*s.LedgerHorizon())
	for t := 0; t < s.LedgerHorizon(); t++ {
		for _, e := range s.Edges {
			var d, p float64
			if means, ok := s.replayMean[e]; ok && t < len(means) {
				d = s.poisson(means[t])
				p = s.replayPrice[e][t]
			}
			trips = append(trips, TripAttr{Origin: e.I, Destination: e.J, Time: t, Demand: d, Price: p})
		}
	}
	return trips
}

func (s *Scenario) poisson(mean float64) float64 {
	if mean <= 0 {
		return 0
	}
	return distuv.Poisson{Lambda: mean, Src: s.rng}.Rand()
}

// Copy returns a deep copy owned by the caller
func (s *Scenario) Copy() *Scenario {
	c := *s
	c.Edges = append([]Edge(nil), s.Edges...)
	c.AccInit = append([]float64(nil), s.AccInit...)
	c.demandInput = append([]float64(nil), s.demandInput...)
	c.OutEdges = make([][]int, len(s.OutEdges))
	for i := range s.OutEdges {
		c.OutEdges[i] = append([]int(nil), s.OutEdges[i]...)
	}
	c.DemandTime = copyIntArena(s.DemandTime)
	c.RebTime = copyIntArena(s.RebTime)
	c.demandRatio = copyFloatArena(s.demandRatio)
	c.replayMean = copyFloatArena(s.replayMean)
	c.replayPrice = copyFloatArena(s.replayPrice)
	c.fixedPrice = make(map[Edge]float64, len(s.fixedPrice))
	for e, p := range s.fixedPrice {
		c.fixedPrice[e] = p
	}
	// the copy owns an equally-seeded generator so identically-seeded
	// scenarios reproduce identical episodes
	c.rng = rand.New(rand.NewSource(s.seed))
	return &c
}

func copyIntArena(m map[Edge][]int) map[Edge][]int {
	out := make(map[Edge][]int, len(m))
	for e, v := range m {
		out[e] = append([]int(nil), v...)
	}
	return out
}

func copyFloatArena(m map[Edge][]float64) map[Edge][]float64 {
	out := make(map[Edge][]float64, len(m))
	for e, v := range m {
		out[e] = append([]float64(nil), v...)
	}
	return out
}

// interpolateRatio expands the control points into a per-step demand
// multiplier curve spanning the ledger horizon. The curve covers [0, tf)
// and holds the last control value afterwards.
func interpolateRatio(tf int, points []float64) []float64 {
	out := make([]float64, 2*tf)
	if len(points) == 0 {
		for t := range out {
			out[t] = 1
		}
		return out
	}
	if len(points) == 1 {
		for t := range out {
			out[t] = points[0]
		}
		return out
	}
	span := float64(tf) / float64(len(points)-1)
	for t := 0; t < tf; t++ {
		pos := float64(t) / span
		k := int(pos)
		if k >= len(points)-1 {
			out[t] = points[len(points)-1]
			continue
		}
		frac := pos - float64(k)
		out[t] = points[k]*(1-frac) + points[k+1]*frac
	}
	for t := tf; t < 2*tf; t++ {
		out[t] = points[len(points)-1]
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
