package amod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(t *testing.T, cfg GridConfig, beta float64) *AMoD {
	scenario, err := NewGridScenario(cfg)
	require.NoError(t, err)
	env, err := NewAMoD(scenario, beta)
	require.NoError(t, err)
	return env
}

func TestMatchStepWithoutDemand(t *testing.T) {
	env := newTestEnv(t, GridConfig{
		N1: 2, N2: 1, TF: 2, NInit: 5,
		DemandInput: []float64{0},
		Seed:        3,
	}, 0.2)

	res, err := env.MatchStep(nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Reward)
	assert.False(t, res.Done)
	for n := 0; n < env.NRegion(); n++ {
		assert.Equal(t, 5.0, env.fleet.Acc[n][1], "region %d lost vehicles without demand", n)
	}
	obs := res.State.(*Observation)
	assert.Equal(t, PhaseRebalance, obs.Phase)
}

func TestMatchStepServesQueuedPassengers(t *testing.T) {
	env := newTestEnv(t, GridConfig{
		N1: 2, N2: 1, TF: 4, NInit: 20,
		DemandInput: []float64{4},
		FixPrice:    true,
		Seed:        5,
	}, 0.2)

	res, err := env.MatchStep(nil)
	require.NoError(t, err)

	assert.Greater(t, res.Info.ServedDemand, 0.0)
	assert.Greater(t, res.Info.Revenue, 0.0)
	assert.GreaterOrEqual(t, res.Reward, 0.0)
	// 20 vehicles per region cover every request immediately
	obs := res.State.(*Observation)
	for n, q := range obs.QueueLens {
		assert.Zero(t, q, "region %d kept a queue despite spare vehicles", n)
	}
}

func TestStarvedPassengersAbandon(t *testing.T) {
	env := newTestEnv(t, GridConfig{
		N1: 2, N2: 1, TF: 15, NInit: 0,
		DemandInput: []float64{5},
		FixPrice:    true,
		Seed:        5,
	}, 0.2)

	zero := make([]float64, len(env.Edges()))
	var last *Observation
	for {
		m, err := env.MatchStep(nil)
		require.NoError(t, err)
		assert.Equal(t, 0.0, m.Reward)

		r, err := env.RebStep(zero)
		require.NoError(t, err)
		last = r.State.(*Observation)
		if r.Done {
			assert.Equal(t, 0.0, r.Info.ServedDemand)
			assert.Equal(t, 0.0, r.Info.Revenue)
			assert.Greater(t, r.Info.UnservedDemand, 0.0)
			break
		}
	}
	assert.Equal(t, env.scenario.TF, last.Time)
}

func TestEpisodeConservesVehicles(t *testing.T) {
	env := newTestEnv(t, GridConfig{
		N1: 2, N2: 2, TF: 6, NInit: 10,
		DemandInput: []float64{3},
		FixPrice:    true,
		Seed:        13,
	}, 0.2)
	initial := env.fleet.TotalAt(0)
	require.Equal(t, 40.0, initial)

	zero := make([]float64, len(env.Edges()))
	for {
		_, err := env.MatchStep(nil)
		require.NoError(t, err)
		res, err := env.RebStep(zero)
		require.NoError(t, err)

		present := env.fleet.TotalAt(env.Time())
		inFlight := env.fleet.InFlight(env.Time() - 1)
		assert.InDelta(t, initial, present+inFlight, 1e-6, "fleet leaked at step %d", env.Time())

		if res.Done {
			break
		}
	}
	assert.Equal(t, env.scenario.TF, env.Time())
}

func TestRebStepClipsToAvailableVehicles(t *testing.T) {
	env := newTestEnv(t, GridConfig{
		N1: 2, N2: 1, TF: 3, NInit: 2,
		DemandInput: []float64{0},
		Seed:        3,
	}, 0.5)

	_, err := env.MatchStep(nil)
	require.NoError(t, err)

	flows := make([]float64, len(env.Edges()))
	for k, e := range env.Edges() {
		if e.I == 0 && e.J == 1 {
			flows[k] = 1000
		}
	}
	res, err := env.RebStep(flows)
	require.NoError(t, err)

	// only the two vehicles actually present may move
	assert.Equal(t, 0.0, env.fleet.Acc[0][1])
	assert.Equal(t, 1.0, res.Info.RebalancingCost)
	assert.Equal(t, -1.0, res.Reward)
	assert.InDelta(t, 4.0, env.fleet.TotalAt(1)+env.fleet.InFlight(0), 1e-9)
}

func TestPaxStepWithOptimizerFlows(t *testing.T) {
	env := newTestEnv(t, GridConfig{
		N1: 2, N2: 1, TF: 4, NInit: 20,
		DemandInput: []float64{4},
		FixPrice:    true,
		Seed:        5,
	}, 0.2)

	res, err := env.PaxStep(nil)
	require.NoError(t, err)

	assert.Greater(t, res.Info.ServedDemand, 0.0)
	assert.GreaterOrEqual(t, res.Reward, 0.0)
	for n := 0; n < env.NRegion(); n++ {
		assert.GreaterOrEqual(t, env.fleet.Acc[n][1], 0.0)
	}
}

func TestEpisodesAreDeterministic(t *testing.T) {
	scenario, err := NewGridScenario(GridConfig{
		N1: 2, N2: 2, TF: 5, NInit: 8,
		DemandInput: []float64{3},
		Alpha:       0.2,
		FixPrice:    true,
		Seed:        9,
	})
	require.NoError(t, err)

	env1, err := NewAMoD(scenario, 0.2)
	require.NoError(t, err)
	env2, err := NewAMoD(scenario, 0.2)
	require.NoError(t, err)

	zero := make([]float64, len(env1.Edges()))
	for {
		m1, err := env1.MatchStep(nil)
		require.NoError(t, err)
		m2, err := env2.MatchStep(nil)
		require.NoError(t, err)
		assert.Equal(t, m1.Reward, m2.Reward)
		assert.Equal(t, m1.State.Hash(), m2.State.Hash())

		r1, err := env1.RebStep(zero)
		require.NoError(t, err)
		r2, err := env2.RebStep(zero)
		require.NoError(t, err)
		assert.Equal(t, r1.State.Hash(), r2.State.Hash())

		if r1.Done {
			assert.True(t, r2.Done)
			break
		}
	}
}

func TestStepActionSizeErrors(t *testing.T) {
	env := newTestEnv(t, GridConfig{
		N1: 2, N2: 1, TF: 2, NInit: 5,
		DemandInput: []float64{0},
		Seed:        3,
	}, 0.2)

	_, err := env.MatchStep([]float64{1})
	assert.Error(t, err)

	_, err = env.MatchStep(nil)
	require.NoError(t, err)
	_, err = env.RebStep([]float64{1, 2})
	assert.Error(t, err)
}

func TestFlowsForDesired(t *testing.T) {
	env := newTestEnv(t, GridConfig{
		N1: 2, N2: 1, TF: 3, NInit: 4,
		DemandInput: []float64{0},
		Seed:        3,
	}, 0.2)
	_, err := env.MatchStep(nil)
	require.NoError(t, err)

	// a degenerate distribution requests no movement
	flows, err := env.FlowsForDesired([]float64{0, 0})
	require.NoError(t, err)
	for _, f := range flows {
		assert.Zero(t, f)
	}

	// all weight on region 1 pulls region 0's vehicles over
	flows, err = env.FlowsForDesired([]float64{0, 1})
	require.NoError(t, err)
	moved := 0.0
	for k, e := range env.Edges() {
		if e.I == 0 && e.J == 1 {
			moved = flows[k]
		}
	}
	assert.Equal(t, 4.0, moved)

	_, err = env.FlowsForDesired([]float64{1})
	assert.Error(t, err)
}
