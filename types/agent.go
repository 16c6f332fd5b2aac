package types

import "fmt"

type AgentConfig struct {
	Episodes    int
	Horizon     int
	Policy      Policy
	Environment Environment
}

// RL Agent configured with the corresponding
// policy and environment
type Agent struct {
	config      *AgentConfig
	policy      Policy
	environment Environment
}

// Instantiates a new Agent
func NewAgent(config *AgentConfig) *Agent {
	return &Agent{
		config:      config,
		policy:      config.Policy,
		environment: config.Environment,
	}
}

// RunEpisode runs a single episode and returns the resulting trace.
// An environment error aborts the episode; the partial trace is returned
// along with the error since a failed step leaves the episode corrupted.
func (a *Agent) RunEpisode(episode int) (*Trace, error) {
	trace := NewTrace()
	state, err := a.environment.Reset()
	if err != nil {
		return trace, fmt.Errorf("reset episode %d: %w", episode, err)
	}

	for i := 0; i < a.config.Horizon; i++ {
		action, ok := a.policy.NextAction(i, state)
		if !ok {
			break
		}
		result, err := a.environment.Step(action)
		if err != nil {
			return trace, fmt.Errorf("step %d of episode %d: %w", i, episode, err)
		}
		a.policy.Update(i, state, action, result)

		trace.Append(i, state, action, result)
		state = result.State
		if result.Done {
			break
		}
	}
	a.policy.UpdateIteration(episode, trace)

	return trace, nil
}
