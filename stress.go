package ctmemcmp

import (
	"errors"
	"fmt"

	"github.com/r3tima/ct-memcmp/internal/cacheops"
	"github.com/r3tima/ct-memcmp/internal/mem"
)

// mapStress maps the configured stress regions and writes one byte per page
// so each page has its own frame instead of the shared zero page. If any
// mapping fails the ones already mapped are released and the probe must not
// continue.
func (e *Engine) mapStress() ([]*mem.Region, error) {
	ps := mem.PageSize()
	regions := make([]*mem.Region, 0, e.cfg.stressRegions)
	for i := 0; i < e.cfg.stressRegions; i++ {
		r, err := e.mapRegion(e.cfg.stressRegionSize)
		if err != nil {
			releaseStress(regions)
			return nil, fmt.Errorf("%w: stress region %d: %v", ErrAllocation, i, err)
		}
		buf := r.Bytes()
		for off := 0; off < len(buf); off += ps {
			buf[off] = 1
		}
		regions = append(regions, r)
	}
	return regions, nil
}

// suppress flushes every line of each region and hands the backing pages
// back to the OS, so nothing they held competes with the oracle lines.
func (e *Engine) suppress(regions []*mem.Region) error {
	for i, r := range regions {
		buf := r.Bytes()
		for off := 0; off < len(buf); off += cacheops.LineSize {
			e.hw.flush(&buf[off])
		}
		if err := r.Decommit(); err != nil {
			return fmt.Errorf("%w: stress region %d: %v", ErrNoiseSuppression, i, err)
		}
	}
	return nil
}

func releaseStress(regions []*mem.Region) error {
	var errs []error
	for _, r := range regions {
		if err := r.Unmap(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
