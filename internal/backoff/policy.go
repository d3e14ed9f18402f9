// Package backoff provides exponential backoff with jitter and a generic
// retry helper used for model stream transport failures.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Policy defines the parameters for exponential backoff calculation.
type Policy struct {
	// Base is the delay before the first retry.
	Base time.Duration
	// Max caps the computed delay.
	Max time.Duration
	// Multiplier is the exponential factor applied per attempt.
	Multiplier float64
	// Jitter is the randomization factor (0.0 to 1.0) added to the delay
	// to avoid synchronized retry storms.
	Jitter float64
}

// DefaultPolicy returns the policy used for stream transport retries:
// 1s base, 10s cap, factor 2, 10% jitter.
func DefaultPolicy() Policy {
	return Policy{
		Base:       time.Second,
		Max:        10 * time.Second,
		Multiplier: 2,
		Jitter:     0.1,
	}
}

// Delay computes the backoff duration for a given attempt. Attempts are
// 1-indexed: Delay(1) is the wait after the first failure.
func (p Policy) Delay(attempt int) time.Duration {
	return p.delayWithRand(attempt, rand.Float64()) // #nosec G404 -- jitter does not need crypto randomness
}

// delayWithRand computes the delay using a provided random value in [0, 1),
// which lets tests assert exact durations.
func (p Policy) delayWithRand(attempt int, randomValue float64) time.Duration {
	exp := math.Max(float64(attempt-1), 0)
	base := float64(p.Base) * math.Pow(p.Multiplier, exp)
	jitter := base * p.Jitter * randomValue
	total := math.Min(float64(p.Max), base+jitter)
	return time.Duration(total)
}
