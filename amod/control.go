package amod

import (
	"fmt"

	"github.com/fleet-rl/amod/types"
)

// Mode selects the control scheme a policy drives the simulator through
type Mode int

const (
	// ModeSequential alternates a matching action and a rebalancing
	// action on consecutive Step calls
	ModeSequential Mode = iota
	// ModePricing takes only price signals; the fleet never rebalances
	ModePricing
	// ModeJoint takes a price signal and a desired distribution together
	ModeJoint
)

func (m Mode) String() string {
	switch m {
	case ModeSequential:
		return "sequential"
	case ModePricing:
		return "pricing"
	case ModeJoint:
		return "joint"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode maps a command line name to a control mode
func ParseMode(s string) (Mode, error) {
	switch s {
	case "sequential":
		return ModeSequential, nil
	case "pricing":
		return ModePricing, nil
	case "joint":
		return ModeJoint, nil
	}
	return 0, fmt.Errorf("unknown control mode %q", s)
}

// NewControl wraps the simulator in the control scheme for mode
func NewControl(mode Mode, env *AMoD) (types.Environment, error) {
	switch mode {
	case ModeSequential:
		return &SequentialControl{env: env}, nil
	case ModePricing:
		return &PricingControl{env: env}, nil
	case ModeJoint:
		return &JointControl{env: env}, nil
	}
	return nil, fmt.Errorf("unsupported control mode %q", mode)
}

// SequentialControl exposes the two phases as alternating Step calls:
// a matching step driven by a price action, then a rebalancing step
// driven by a desired distribution or explicit flows.
type SequentialControl struct {
	env   *AMoD
	phase Phase
}

var _ types.Environment = &SequentialControl{}

func (c *SequentialControl) Reset() (types.State, error) {
	c.phase = PhaseMatch
	return c.env.Reset(), nil
}

func (c *SequentialControl) Step(action types.Action) (*types.StepResult, error) {
	if c.phase == PhaseMatch {
		price, ok := action.(*PriceAction)
		if !ok {
			return nil, fmt.Errorf("matching phase expects a price action, got %T", action)
		}
		res, err := c.env.MatchStep(price.Signal)
		if err != nil {
			return nil, err
		}
		c.phase = PhaseRebalance
		return res, nil
	}
	flows, err := c.rebFlows(action)
	if err != nil {
		return nil, err
	}
	res, err := c.env.RebStep(flows)
	if err != nil {
		return nil, err
	}
	c.phase = PhaseMatch
	return res, nil
}

func (c *SequentialControl) rebFlows(action types.Action) ([]float64, error) {
	switch a := action.(type) {
	case *RebAction:
		return c.env.FlowsForDesired(a.Desired)
	case *FlowAction:
		return a.Flows, nil
	}
	return nil, fmt.Errorf("rebalancing phase expects a desired distribution or explicit flows, got %T", action)
}

// PricingControl runs one full simulator step per call: the price action
// drives matching and the fleet stays where it is. The result folds both
// phases together.
type PricingControl struct {
	env     *AMoD
	zeroReb []float64
}

var _ types.Environment = &PricingControl{}

func (c *PricingControl) Reset() (types.State, error) {
	obs := c.env.Reset()
	c.zeroReb = make([]float64, len(c.env.Edges()))
	return obs, nil
}

func (c *PricingControl) Step(action types.Action) (*types.StepResult, error) {
	price, ok := action.(*PriceAction)
	if !ok {
		return nil, fmt.Errorf("pricing control expects a price action, got %T", action)
	}
	match, err := c.env.MatchStep(price.Signal)
	if err != nil {
		return nil, err
	}
	reb, err := c.env.RebStep(c.zeroReb)
	if err != nil {
		return nil, err
	}
	return combine(match, reb), nil
}

// JointControl runs one full simulator step per call from a joint action
// carrying both the price signal and the desired fleet distribution
type JointControl struct {
	env *AMoD
}

var _ types.Environment = &JointControl{}

func (c *JointControl) Reset() (types.State, error) {
	return c.env.Reset(), nil
}

func (c *JointControl) Step(action types.Action) (*types.StepResult, error) {
	joint, ok := action.(*JointAction)
	if !ok || joint.Price == nil || joint.Rebalance == nil {
		return nil, fmt.Errorf("joint control expects a joint action with both phases, got %T", action)
	}
	match, err := c.env.MatchStep(joint.Price.Signal)
	if err != nil {
		return nil, err
	}
	flows, err := c.env.FlowsForDesired(joint.Rebalance.Desired)
	if err != nil {
		return nil, err
	}
	reb, err := c.env.RebStep(flows)
	if err != nil {
		return nil, err
	}
	return combine(match, reb), nil
}

// combine folds a matching result and the rebalancing result that follows
// it into the single result a one-call-per-step scheme returns. Per-step
// rewards add up; state, done and the cumulative info come from the later
// phase.
func combine(match, reb *types.StepResult) *types.StepResult {
	out := &types.StepResult{
		State:         reb.State,
		Reward:        match.Reward + reb.Reward,
		Done:          reb.Done,
		Info:          reb.Info,
		RegionRewards: make([]float64, len(match.RegionRewards)),
		RegionDone:    reb.RegionDone,
	}
	for n := range out.RegionRewards {
		out.RegionRewards[n] = match.RegionRewards[n] + reb.RegionRewards[n]
	}
	return out
}
