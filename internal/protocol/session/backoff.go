package session

import (
	"math"
	"math/rand"
	"time"
)

// NextBackoffDelay returns the wait before redial attempt+1, where attempt
// counts the failures so far. The first delay is exactly InitialDelay;
// later ones grow by Multiplier up to MaxDelay, and Jitter scales them
// into [0.5, 1.5). A nil rng applies the low end of the jitter range.
func NextBackoffDelay(cfg BackoffConfig, attempt int, rng *rand.Rand) time.Duration {
	if cfg.InitialDelay <= 0 {
		return 0
	}
	if attempt <= 1 {
		return cfg.InitialDelay
	}
	mult := max(cfg.Multiplier, 1.0)
	limit := float64(cfg.MaxDelay)
	if limit <= 0 {
		limit = math.MaxInt64 / 2
	}
	delay := float64(cfg.InitialDelay)
	for i := 1; i < attempt && delay < limit; i++ {
		delay *= mult
	}
	delay = min(delay, limit)
	if cfg.Jitter {
		f := 0.5
		if rng != nil {
			f += rng.Float64()
		}
		delay *= f
	}
	return time.Duration(delay)
}
