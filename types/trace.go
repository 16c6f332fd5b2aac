package types

import "encoding/json"

// Trace of an episode as triplets (state, action, result)
type Trace struct {
	states  []State
	actions []Action
	results []*StepResult
}

func NewTrace() *Trace {
	return &Trace{
		states:  make([]State, 0),
		actions: make([]Action, 0),
		results: make([]*StepResult, 0),
	}
}

func (t *Trace) Append(step int, state State, action Action, result *StepResult) {
	t.states = append(t.states, state)
	t.actions = append(t.actions, action)
	t.results = append(t.results, result)
}

func (t *Trace) Len() int {
	return len(t.states)
}

func (t *Trace) Get(i int) (State, Action, *StepResult, bool) {
	if i >= len(t.states) {
		return nil, nil, nil, false
	}
	return t.states[i], t.actions[i], t.results[i], true
}

func (t *Trace) Last() (State, Action, *StepResult, bool) {
	if len(t.states) < 1 {
		return nil, nil, nil, false
	}
	lastIndex := len(t.states) - 1
	return t.states[lastIndex], t.actions[lastIndex], t.results[lastIndex], true
}

// TotalReward accumulated over the episode
func (t *Trace) TotalReward() float64 {
	total := 0.0
	for _, r := range t.results {
		total += r.Reward
	}
	return total
}

// FinalInfo returns the cumulative counters at the end of the episode
func (t *Trace) FinalInfo() Info {
	if len(t.results) == 0 {
		return Info{}
	}
	return t.results[len(t.results)-1].Info
}

type traceEntry struct {
	State  string  `json:"state"`
	Action string  `json:"action"`
	Reward float64 `json:"reward"`
	Done   bool    `json:"done"`
}

// MarshalJSON records the trace as hashes and rewards, one entry per step
func (t *Trace) MarshalJSON() ([]byte, error) {
	entries := make([]traceEntry, len(t.states))
	for i := range t.states {
		entries[i] = traceEntry{
			State:  t.states[i].Hash(),
			Action: t.actions[i].Hash(),
			Reward: t.results[i].Reward,
			Done:   t.results[i].Done,
		}
	}
	return json.Marshal(map[string]interface{}{
		"entries": entries,
		"info":    t.FinalInfo(),
	})
}
