package amod

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const replayFixture = `{
	"nlat": 1, "nlon": 2,
	"region": [0, 1],
	"demand": [
		{"time_stamp": 0, "origin": 0, "destination": 1, "demand": 2, "travel_time": 6, "price": 12},
		{"time_stamp": 3, "origin": 1, "destination": 0, "demand": 4, "travel_time": 3, "price": 9}
	],
	"rebTime": [
		{"time_stamp": 0, "origin": 0, "destination": 0, "reb_time": 3},
		{"time_stamp": 0, "origin": 0, "destination": 1, "reb_time": 3},
		{"time_stamp": 0, "origin": 1, "destination": 0, "reb_time": 3},
		{"time_stamp": 0, "origin": 1, "destination": 1, "reb_time": 3}
	],
	"totalAcc": [{"hour": 0, "acc": 10}]
}`

func writeReplayFixture(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func TestNewReplayScenario(t *testing.T) {
	s, err := NewReplayScenario(ReplayConfig{
		File:  writeReplayFixture(t, replayFixture),
		TF:    4,
		TStep: 3,
		Seed:  7,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, s.NRegion)
	assert.Equal(t, []float64{5, 5}, s.AccInit)

	// first record lands in bin 0 with travel time 6/3 = 2
	assert.Equal(t, 2.0, s.replayMean[Edge{0, 1}][0])
	assert.Equal(t, 12.0, s.replayPrice[Edge{0, 1}][0])
	assert.Equal(t, 2, s.DemandTime[Edge{0, 1}][0])

	// second record lands in bin 1
	assert.Equal(t, 4.0, s.replayMean[Edge{1, 0}][1])
	assert.Equal(t, 9.0, s.replayPrice[Edge{1, 0}][1])
	assert.Equal(t, 1, s.DemandTime[Edge{1, 0}][1])

	// rebalancing time frozen at the starting hour
	for tt := 0; tt < s.LedgerHorizon(); tt++ {
		assert.Equal(t, 1, s.RebTime[Edge{0, 1}][tt])
	}
}

func TestNewReplayScenarioErrors(t *testing.T) {
	_, err := NewReplayScenario(ReplayConfig{File: "does-not-exist.json", TF: 4, TStep: 3})
	assert.Error(t, err)

	// no fleet count for the episode's hour
	noFleet := `{"region": [0, 1], "demand": [], "rebTime": [], "totalAcc": []}`
	_, err = NewReplayScenario(ReplayConfig{
		File:  writeReplayFixture(t, noFleet),
		TF:    4,
		TStep: 3,
	})
	assert.Error(t, err)

	_, err = NewReplayScenario(ReplayConfig{
		File: writeReplayFixture(t, replayFixture),
		TF:   0, TStep: 3,
	})
	assert.Error(t, err)
}

func TestReplayEnvironmentRunsEpisode(t *testing.T) {
	s, err := NewReplayScenario(ReplayConfig{
		File:  writeReplayFixture(t, replayFixture),
		TF:    4,
		TStep: 3,
		Seed:  7,
	})
	require.NoError(t, err)

	env, err := NewAMoD(s, 0.2)
	require.NoError(t, err)

	zero := make([]float64, len(env.Edges()))
	for {
		_, err := env.MatchStep(nil)
		require.NoError(t, err)
		res, err := env.RebStep(zero)
		require.NoError(t, err)
		if res.Done {
			break
		}
	}
	assert.Equal(t, 4, env.Time())
}
