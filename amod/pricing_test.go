package amod

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDemandUpdate(t *testing.T) {
	// unchanged at the reference price
	assert.Equal(t, 5.0, demandUpdate(5, 10, 10))

	// non-positive prices leave demand untouched
	assert.Equal(t, 5.0, demandUpdate(5, 0, 10))
	assert.Equal(t, 5.0, demandUpdate(5, -1, 10))
	assert.Equal(t, 5.0, demandUpdate(5, 10, 0))

	// quartering the price doubles demand at elasticity -0.5
	assert.InDelta(t, 8.0, demandUpdate(4, 5, 20), 1e-9)

	// raising prices sheds demand
	assert.Less(t, demandUpdate(4, 40, 20), 4.0)
}

func TestRepriceAppliesSignal(t *testing.T) {
	env := newTestEnv(t, GridConfig{
		N1: 2, N2: 1, TF: 4, NInit: 10,
		DemandInput: []float64{4},
		FixPrice:    true,
		Seed:        5,
	}, 0.2)

	var edge Edge
	for _, e := range env.Edges() {
		if e.I != e.J {
			edge = e
			break
		}
	}
	before := env.demand[edge][0]

	price, demand := env.reprice(edge, 1)
	// trips on the 2x1 grid are under the 6 minute metering threshold,
	// so the signal only resets the fare to the base of 10
	assert.Equal(t, 10.0, price)
	assert.Equal(t, demandUpdate(before, price, 2*env.price[edge][0]), demand)
}
