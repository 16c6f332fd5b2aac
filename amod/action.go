package amod

import (
	"fmt"
	"strings"

	"github.com/fleet-rl/amod/types"
)

// PriceAction is the matching-phase action: a per-region price signal.
// A nil or zero-sum signal leaves the scenario prices untouched.
type PriceAction struct {
	Signal []float64
}

var _ types.Action = &PriceAction{}

func (a *PriceAction) Hash() string {
	return "price" + vecHash(a.Signal)
}

// RebAction is the rebalancing-phase action: the desired share of the
// fleet per region (a simplex vector). The environment turns it into
// per-edge flows through the flow optimizer.
type RebAction struct {
	Desired []float64
}

var _ types.Action = &RebAction{}

func (a *RebAction) Hash() string {
	return "reb" + vecHash(a.Desired)
}

// FlowAction carries explicit per-edge rebalancing flows, indexed like
// the environment's edge list. Used when the policy (or the optimizer)
// decides flows directly.
type FlowAction struct {
	Flows []float64
}

var _ types.Action = &FlowAction{}

func (a *FlowAction) Hash() string {
	return "flow" + vecHash(a.Flows)
}

// JointAction carries both phases for the single-call control scheme
type JointAction struct {
	Price     *PriceAction
	Rebalance *RebAction
}

var _ types.Action = &JointAction{}

func (a *JointAction) Hash() string {
	return a.Price.Hash() + "|" + a.Rebalance.Hash()
}

func vecHash(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.3f", x)
	}
	return "(" + strings.Join(parts, ",") + ")"
}
