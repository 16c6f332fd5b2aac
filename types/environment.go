package types

// Environment is a discrete-time simulator that RL policies act against.
type Environment interface {
	// Reset is called at the start of each episode and returns the initial observation
	Reset() (State, error)
	// Step applies the action for the current phase and advances the simulator
	Step(Action) (*StepResult, error)
}

// State of the system that RL policies observe
type State interface {
	// Indexed by the Hash
	// Should be deterministic
	Hash() string
}

// An Action that the RL policy can take
type Action interface {
	// Index of the action
	// Should be deterministic
	Hash() string
}

// Info aggregates the cumulative diagnostic counters of an episode
type Info struct {
	Revenue         float64 `json:"revenue"`
	ServedDemand    float64 `json:"served_demand"`
	UnservedDemand  float64 `json:"unserved_demand"`
	RebalancingCost float64 `json:"rebalancing_cost"`
	OperatingCost   float64 `json:"operating_cost"`
	ServedWaiting   float64 `json:"served_waiting"`
}

// StepResult is what a single phase transition returns to the caller
type StepResult struct {
	State  State
	Reward float64
	Done   bool
	Info   Info
	// per-region contributions, same accounting split as Reward
	RegionRewards []float64
	RegionDone    []bool
}
