package ctmemcmp

import (
	"errors"
	"testing"
)

// TestConfigOptions verifies configuration options work.
func TestConfigOptions(t *testing.T) {
	cfg := defaultConfig()

	// Default values
	if cfg.hitThreshold != DefaultHitThreshold {
		t.Errorf("Expected threshold %d, got %d", DefaultHitThreshold, cfg.hitThreshold)
	}
	if cfg.stressRegions != DefaultStressRegions {
		t.Errorf("Expected %d stress regions, got %d", DefaultStressRegions, cfg.stressRegions)
	}
	if cfg.stressRegionSize != MinStressRegionSize {
		t.Errorf("Expected 1 MiB stress regions, got %d", cfg.stressRegionSize)
	}

	// Apply options
	WithHitThreshold(120)(cfg)
	WithStressRegions(2)(cfg)
	WithStressRegionSize(4 << 20)(cfg)

	if cfg.hitThreshold != 120 {
		t.Errorf("Expected threshold 120, got %d", cfg.hitThreshold)
	}
	if cfg.stressRegions != 2 {
		t.Errorf("Expected 2 stress regions, got %d", cfg.stressRegions)
	}
	if cfg.stressRegionSize != 4<<20 {
		t.Errorf("Expected 4 MiB stress regions, got %d", cfg.stressRegionSize)
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero threshold", WithHitThreshold(0)},
		{"negative regions", WithStressRegions(-1)},
		{"small regions", WithStressRegionSize(MinStressRegionSize - 1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewEngine(tc.opt); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("NewEngine error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
