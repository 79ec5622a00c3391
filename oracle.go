package ctmemcmp

import (
	"fmt"

	"github.com/r3tima/ct-memcmp/internal/cacheops"
	"github.com/r3tima/ct-memcmp/internal/mem"
)

// Candidates is the number of oracle pages, one per possible byte value.
const Candidates = 256

// Oracle is the 256-page probe array. Page i is the hot location for
// candidate byte value i.
//
// The caller owns the oracle: the engine reads and flushes it but never
// closes it. An oracle must not be shared between concurrent probes.
type Oracle struct {
	region   *mem.Region
	pageSize int
}

// NewOracle maps a page-aligned oracle of Candidates pages of pageSize bytes.
// A pageSize of zero selects the OS page size. pageSize must be a power of
// two and at least one cache line.
//
// Every page is written once so that each candidate is backed by its own
// physical frame. Untouched anonymous pages all alias the shared zero page,
// which would make one touch warm every candidate at once.
func NewOracle(pageSize int) (*Oracle, error) {
	if pageSize == 0 {
		pageSize = mem.PageSize()
	}
	if pageSize < cacheops.LineSize || pageSize&(pageSize-1) != 0 {
		return nil, fmt.Errorf("%w: oracle page size %d", ErrInvalidConfig, pageSize)
	}

	region, err := mem.Map(Candidates * pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: oracle: %v", ErrAllocation, err)
	}

	buf := region.Bytes()
	for i := 0; i < Candidates; i++ {
		buf[i*pageSize] = byte(i)
	}

	return &Oracle{region: region, pageSize: pageSize}, nil
}

// PageSize returns the stride between candidate pages.
func (o *Oracle) PageSize() int {
	return o.pageSize
}

// Page returns the page for candidate value b, or nil once the oracle is
// closed.
func (o *Oracle) Page(b byte) []byte {
	if o.closed() {
		return nil
	}
	off := int(b) * o.pageSize
	return o.region.Bytes()[off : off+o.pageSize]
}

// line returns the first byte of the page for b, the address that is
// flushed, touched and timed.
func (o *Oracle) line(b byte) *byte {
	return &o.region.Bytes()[int(b)*o.pageSize]
}

func (o *Oracle) closed() bool {
	return o.region.Bytes() == nil
}

// Close unmaps the oracle.
func (o *Oracle) Close() error {
	return o.region.Unmap()
}
