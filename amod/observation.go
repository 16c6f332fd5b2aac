package amod

import (
	"fmt"
	"strings"

	"github.com/fleet-rl/amod/types"
)

// Phase of the per-step cycle the environment is waiting on
type Phase int

const (
	PhaseMatch Phase = iota
	PhaseRebalance
)

func (p Phase) String() string {
	if p == PhaseMatch {
		return "match"
	}
	return "rebalance"
}

// Observation is the state policies observe: live references into the
// environment's inventory, arrival and demand ledgers, plus the current
// time and awaited phase. The ledgers are owned by the environment;
// policies must treat them as read only.
type Observation struct {
	Time      int
	Phase     Phase
	NRegion   int
	Acc       [][]float64
	Dacc      [][]float64
	Demand    map[Edge][]float64
	QueueLens []int
}

var _ types.State = &Observation{}

// CurrentAcc returns the inventory column for the observed time
func (o *Observation) CurrentAcc() []float64 {
	out := make([]float64, o.NRegion)
	for n := 0; n < o.NRegion; n++ {
		out[n] = o.Acc[n][o.Time]
	}
	return out
}

// DepartureDemand sums the demand leaving each region at the observed time
func (o *Observation) DepartureDemand() []float64 {
	out := make([]float64, o.NRegion)
	for e, d := range o.Demand {
		if o.Time < len(d) {
			out[e.I] += d[o.Time]
		}
	}
	return out
}

func (o *Observation) Hash() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "t=%d %s acc=[", o.Time, o.Phase)
	for n := 0; n < o.NRegion; n++ {
		if n > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%.0f", o.Acc[n][o.Time])
	}
	sb.WriteString("] q=[")
	for n, l := range o.QueueLens {
		if n > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%d", l)
	}
	sb.WriteString("]")
	return sb.String()
}
