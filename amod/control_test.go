package amod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for label, want := range map[string]Mode{
		"sequential": ModeSequential,
		"pricing":    ModePricing,
		"joint":      ModeJoint,
	} {
		mode, err := ParseMode(label)
		require.NoError(t, err)
		assert.Equal(t, want, mode)
		assert.Equal(t, label, mode.String())
	}
	_, err := ParseMode("optimal")
	assert.Error(t, err)
}

func TestNewControlRejectsUnknownMode(t *testing.T) {
	env := newTestEnv(t, GridConfig{
		N1: 2, N2: 1, TF: 2, NInit: 5,
		DemandInput: []float64{0},
		Seed:        3,
	}, 0.2)
	_, err := NewControl(Mode(42), env)
	assert.Error(t, err)
}

func TestSequentialControlAlternatesPhases(t *testing.T) {
	env := newTestEnv(t, GridConfig{
		N1: 2, N2: 1, TF: 2, NInit: 5,
		DemandInput: []float64{0},
		Seed:        3,
	}, 0.2)
	ctrl, err := NewControl(ModeSequential, env)
	require.NoError(t, err)

	state, err := ctrl.Reset()
	require.NoError(t, err)
	assert.Equal(t, PhaseMatch, state.(*Observation).Phase)

	// a rebalancing action out of turn is rejected
	_, err = ctrl.Step(&RebAction{Desired: []float64{0.5, 0.5}})
	assert.Error(t, err)

	res, err := ctrl.Step(&PriceAction{})
	require.NoError(t, err)
	assert.Equal(t, PhaseRebalance, res.State.(*Observation).Phase)

	// and so is a price action during rebalancing
	_, err = ctrl.Step(&PriceAction{})
	assert.Error(t, err)

	res, err = ctrl.Step(&FlowAction{Flows: make([]float64, len(env.Edges()))})
	require.NoError(t, err)
	assert.Equal(t, PhaseMatch, res.State.(*Observation).Phase)
	assert.Equal(t, 1, env.Time())
}

func TestPricingControlRunsWholeSteps(t *testing.T) {
	env := newTestEnv(t, GridConfig{
		N1: 2, N2: 1, TF: 2, NInit: 5,
		DemandInput: []float64{0},
		Seed:        3,
	}, 0.2)
	ctrl, err := NewControl(ModePricing, env)
	require.NoError(t, err)

	_, err = ctrl.Reset()
	require.NoError(t, err)

	res, err := ctrl.Step(&PriceAction{})
	require.NoError(t, err)
	assert.False(t, res.Done)
	assert.Equal(t, 0.0, res.Reward)

	res, err = ctrl.Step(&PriceAction{})
	require.NoError(t, err)
	assert.True(t, res.Done)
	// the fleet never moved
	assert.Equal(t, 0.0, res.Info.RebalancingCost)

	_, err = ctrl.Step(&RebAction{Desired: []float64{1, 0}})
	assert.Error(t, err)
}

func TestJointControlCombinesPhases(t *testing.T) {
	env := newTestEnv(t, GridConfig{
		N1: 2, N2: 1, TF: 2, NInit: 6,
		DemandInput: []float64{0},
		Seed:        3,
	}, 0.5)
	ctrl, err := NewControl(ModeJoint, env)
	require.NoError(t, err)

	_, err = ctrl.Reset()
	require.NoError(t, err)

	_, err = ctrl.Step(&PriceAction{})
	assert.Error(t, err)

	// all weight on region 1 moves region 0's six vehicles at cost 3
	res, err := ctrl.Step(&JointAction{
		Price:     &PriceAction{},
		Rebalance: &RebAction{Desired: []float64{0, 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, -3.0, res.Reward)
	assert.Equal(t, 3.0, res.Info.RebalancingCost)
	assert.Equal(t, 1, env.Time())

	res, err = ctrl.Step(&JointAction{
		Price:     &PriceAction{},
		Rebalance: &RebAction{Desired: []float64{0.5, 0.5}},
	})
	require.NoError(t, err)
	assert.True(t, res.Done)
}
