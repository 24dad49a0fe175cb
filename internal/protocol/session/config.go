package session

import "time"

// BackoffConfig defines redial backoff behavior for callers that retry.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines connection defaults. Zero timeouts mean none.
type Config struct {
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ReadBufferSize  int
	WriteBufferSize int
	Backoff         BackoffConfig

	// Observer, when set, sees every frame the connection moves.
	Observer Observer
}

const defaultBufferSize = 4096

// DefaultConfig returns the defaults used by Connect: no per-call
// deadlines, 4 KiB buffers.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:  5 * time.Second,
		ReadBufferSize:  defaultBufferSize,
		WriteBufferSize: defaultBufferSize,
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		},
	}
}

func (c Config) normalized() Config {
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = defaultBufferSize
	}
	if c.WriteBufferSize <= 0 {
		c.WriteBufferSize = defaultBufferSize
	}
	if c.ReadTimeout < 0 {
		c.ReadTimeout = 0
	}
	if c.WriteTimeout < 0 {
		c.WriteTimeout = 0
	}
	return c
}
