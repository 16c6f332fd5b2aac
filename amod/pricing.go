package amod

import "math"

// demandElasticity of the constant-elasticity price response
const demandElasticity = -0.5

// demandUpdate rescales demand for a new price against a reference price
// with a constant elasticity curve. Non-positive prices leave demand
// unchanged.
func demandUpdate(demand, price, refPrice float64) float64 {
	if price <= 0 || refPrice <= 0 {
		return demand
	}
	return math.Max(0, demand*math.Pow(price/refPrice, demandElasticity))
}

// reprice maps a per-region price signal to a concrete trip price on one
// edge and rescales the edge's demand accordingly. The fare is a base of
// 10 plus the signal metered over trip minutes beyond the first 6; the
// elasticity anchors on twice the scenario price.
func (e *AMoD) reprice(edge Edge, signal float64) (price, demand float64) {
	t := e.time
	base := e.price[edge][t]
	tripMinutes := float64(e.scenario.DemandTime[edge][t] * e.scenario.TStep)
	price = 10 + math.Max(tripMinutes-6, 0)*signal
	demand = demandUpdate(e.demand[edge][t], price, 2*base)
	return price, demand
}
