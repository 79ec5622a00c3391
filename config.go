package ctmemcmp

import "fmt"

const (
	// DefaultHitThreshold is the cache-hit boundary in load-timer ticks.
	DefaultHitThreshold = 80

	// DefaultStressRegions is the number of noise regions per probe.
	DefaultStressRegions = 4

	// MinStressRegionSize is the smallest stress region accepted.
	MinStressRegionSize = 1 << 20
)

// Config holds the configuration for the oracle engine.
type Config struct {
	hitThreshold     uint64
	stressRegions    int
	stressRegionSize int
}

// Option is a functional option for configuring the engine.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	return &Config{
		hitThreshold:     DefaultHitThreshold,
		stressRegions:    DefaultStressRegions,
		stressRegionSize: MinStressRegionSize,
	}
}

// WithHitThreshold sets the latency, in load-timer ticks, below which a
// reload counts as a cache hit. Use CalibrateHitThreshold to measure one
// for the current machine.
func WithHitThreshold(ticks uint64) Option {
	return func(c *Config) {
		c.hitThreshold = ticks
	}
}

// WithStressRegions sets how many noise regions are mapped, flushed and
// decommitted before each probe. Zero disables noise suppression.
func WithStressRegions(n int) Option {
	return func(c *Config) {
		c.stressRegions = n
	}
}

// WithStressRegionSize sets the size of each noise region in bytes.
// Must be at least MinStressRegionSize.
func WithStressRegionSize(size int) Option {
	return func(c *Config) {
		c.stressRegionSize = size
	}
}

func (c *Config) validate() error {
	if c.hitThreshold == 0 {
		return fmt.Errorf("%w: hit threshold must be positive", ErrInvalidConfig)
	}
	if c.stressRegions < 0 {
		return fmt.Errorf("%w: negative stress region count %d", ErrInvalidConfig, c.stressRegions)
	}
	if c.stressRegionSize < MinStressRegionSize {
		return fmt.Errorf("%w: stress region size %d below %d", ErrInvalidConfig, c.stressRegionSize, MinStressRegionSize)
	}
	return nil
}
