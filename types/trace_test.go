package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testState string

func (s testState) Hash() string { return string(s) }

type testAction string

func (a testAction) Hash() string { return string(a) }

func TestTraceTotals(t *testing.T) {
	trace := NewTrace()
	assert.Equal(t, 0.0, trace.TotalReward())
	assert.Equal(t, Info{}, trace.FinalInfo())

	trace.Append(0, testState("s0"), testAction("a0"), &StepResult{
		State:  testState("s1"),
		Reward: 2,
		Info:   Info{ServedDemand: 3},
	})
	trace.Append(1, testState("s1"), testAction("a1"), &StepResult{
		State:  testState("s2"),
		Reward: -0.5,
		Done:   true,
		Info:   Info{ServedDemand: 5, Revenue: 12},
	})

	assert.Equal(t, 2, trace.Len())
	assert.Equal(t, 1.5, trace.TotalReward())
	assert.Equal(t, 5.0, trace.FinalInfo().ServedDemand)
	assert.Equal(t, 12.0, trace.FinalInfo().Revenue)

	state, action, result, ok := trace.Last()
	require.True(t, ok)
	assert.Equal(t, "s1", state.Hash())
	assert.Equal(t, "a1", action.Hash())
	assert.True(t, result.Done)

	_, _, _, ok = trace.Get(5)
	assert.False(t, ok)
}

func TestTraceMarshalJSON(t *testing.T) {
	trace := NewTrace()
	trace.Append(0, testState("s0"), testAction("a0"), &StepResult{
		State:  testState("s1"),
		Reward: 1,
		Done:   true,
		Info:   Info{UnservedDemand: 2},
	})

	bs, err := json.Marshal(trace)
	require.NoError(t, err)

	var out struct {
		Entries []struct {
			State  string  `json:"state"`
			Action string  `json:"action"`
			Reward float64 `json:"reward"`
			Done   bool    `json:"done"`
		} `json:"entries"`
		Info Info `json:"info"`
	}
	require.NoError(t, json.Unmarshal(bs, &out))
	require.Len(t, out.Entries, 1)
	assert.Equal(t, "s0", out.Entries[0].State)
	assert.Equal(t, "a0", out.Entries[0].Action)
	assert.Equal(t, 1.0, out.Entries[0].Reward)
	assert.True(t, out.Entries[0].Done)
	assert.Equal(t, 2.0, out.Info.UnservedDemand)
}
