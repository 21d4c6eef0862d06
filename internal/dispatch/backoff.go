package dispatch

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff computes retry delays: Base * 2^(attempt-1) spread by ±Jitter as a
// fraction of the delay, never exceeding Cap.
type Backoff struct {
	Base   time.Duration
	Cap    time.Duration
	Jitter float64

	rand func() float64
}

// NewBackoff returns a Backoff with the given base, cap, and jitter fraction.
func NewBackoff(base, maxDelay time.Duration, jitter float64) Backoff {
	return Backoff{Base: base, Cap: maxDelay, Jitter: jitter}
}

// Delay returns the wait before retrying after the given failed send.
// attempt counts sends, so the first retry uses attempt 1.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := float64(b.Base) * math.Pow(2, float64(attempt-1))
	if b.Cap > 0 && d > float64(b.Cap) {
		d = float64(b.Cap)
	}

	if j := min(max(b.Jitter, 0), 1); j > 0 {
		r := rand.Float64
		if b.rand != nil {
			r = b.rand
		}
		d += d * j * (2*r() - 1)
	}

	if b.Cap > 0 && d > float64(b.Cap) {
		d = float64(b.Cap)
	}
	if d < 0 {
		return 0
	}
	return time.Duration(d)
}
