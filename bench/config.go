package bench

import (
	"fmt"
	"time"
)

// Config holds the configuration for the benchmark harness.
type Config struct {
	bufferSize int
	iterations int
	warmup     time.Duration
	runs       int
	settle     time.Duration
}

// Option is a functional option for configuring the harness.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	return &Config{
		bufferSize: 64,
		iterations: 1000,
		warmup:     500 * time.Millisecond,
		runs:       5,
		settle:     100 * time.Millisecond,
	}
}

// WithBufferSize sets the size of the hot and cold buffers in bytes.
func WithBufferSize(n int) Option {
	return func(c *Config) {
		c.bufferSize = n
	}
}

// WithIterations sets how many times the hot buffer is compared before
// measuring.
func WithIterations(n int) Option {
	return func(c *Config) {
		c.iterations = n
	}
}

// WithWarmup sets the pause between warming and measuring, letting clocks
// settle after the warm-up burst.
func WithWarmup(d time.Duration) Option {
	return func(c *Config) {
		c.warmup = d
	}
}

// WithRuns sets how many measurements Run reports.
func WithRuns(n int) Option {
	return func(c *Config) {
		c.runs = n
	}
}

// WithSettle sets the pause between runs.
func WithSettle(d time.Duration) Option {
	return func(c *Config) {
		c.settle = d
	}
}

func (c *Config) validate() error {
	if c.bufferSize <= 0 {
		return fmt.Errorf("%w: buffer size %d", ErrInvalidConfig, c.bufferSize)
	}
	if c.iterations < 0 {
		return fmt.Errorf("%w: iterations %d", ErrInvalidConfig, c.iterations)
	}
	if c.runs <= 0 {
		return fmt.Errorf("%w: runs %d", ErrInvalidConfig, c.runs)
	}
	if c.warmup < 0 || c.settle < 0 {
		return fmt.Errorf("%w: negative pause", ErrInvalidConfig)
	}
	return nil
}
