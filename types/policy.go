package types

// Policy maps observations to actions and learns from step results
type Policy interface {
	// NextAction returns the action for the current observation, or false
	// if the policy cannot act (degenerate observation)
	NextAction(int, State) (Action, bool)
	// Update is called after every environment step
	Update(int, State, Action, *StepResult)
	// UpdateIteration is called at the end of every episode with its trace
	UpdateIteration(int, *Trace)
	Reset()
}
