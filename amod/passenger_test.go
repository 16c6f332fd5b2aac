package amod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestPassengerMatchesWithoutWaiting(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := &Passenger{ID: 1}
	p.Enter()
	// acceptance probability is exp(0) = 1 before any waiting
	assert.True(t, p.Match(rng))
	assert.True(t, p.Matched())
}

func TestPassengerAbandonsAfterMaxWait(t *testing.T) {
	p := &Passenger{ID: 1}
	p.Enter()
	for i := 0; i < MaxWaitSteps-1; i++ {
		require.False(t, p.UnmatchedUpdate(), "gave up after only %d updates", i+1)
	}
	assert.True(t, p.UnmatchedUpdate())
	assert.Equal(t, MaxWaitSteps, p.WaitTime)
}

func TestPassengerDoubleEnterPanics(t *testing.T) {
	p := &Passenger{ID: 1}
	p.Enter()
	assert.Panics(t, func() { p.Enter() })
}

func TestPassengerDoubleMatchPanics(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := &Passenger{ID: 1}
	p.Enter()
	require.True(t, p.Match(rng))
	assert.Panics(t, func() { p.Match(rng) })
}
