package amod

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

const (
	// MaxWaitSteps is the number of unmatched updates after which a
	// passenger abandons the queue for good
	MaxWaitSteps = 12
	// matchScale controls how fast the acceptance probability
	// exp(-wait/matchScale) decays while a passenger waits
	matchScale = 4.0
)

// Passenger is the atomic demand unit. It is owned exclusively by the
// per-region queue from the moment it enters until it is matched or
// abandons.
type Passenger struct {
	ID          int
	Origin      int
	Destination int
	RequestTime int
	Price       float64
	WaitTime    int

	entered bool
	matched bool
}

// Enter marks the passenger as queued. Entering twice is a contract
// violation.
func (p *Passenger) Enter() {
	if p.entered {
		panic(fmt.Sprintf("passenger %d entered the queue twice", p.ID))
	}
	p.entered = true
}

func (p *Passenger) Matched() bool {
	return p.matched
}

// Match attempts to board the passenger onto an available vehicle. The
// acceptance probability decays with the accumulated waiting time. The
// matched flag transitions false to true at most once; matching an
// already matched passenger is a contract violation.
func (p *Passenger) Match(rng *rand.Rand) bool {
	if p.matched {
		panic(fmt.Sprintf("passenger %d matched twice", p.ID))
	}
	if rng.Float64() < math.Exp(-float64(p.WaitTime)/matchScale) {
		p.matched = true
		return true
	}
	return false
}

// UnmatchedUpdate increments the waiting time of a passenger that found
// no vehicle this step and reports whether the passenger gives up.
func (p *Passenger) UnmatchedUpdate() bool {
	p.WaitTime += 1
	return p.WaitTime >= MaxWaitSteps
}
