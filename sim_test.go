package ctmemcmp

import (
	"github.com/r3tima/ct-memcmp/internal/rtm"
)

const (
	simHitLatency  = 40
	simMissLatency = 300
)

// simCache is a hardware stand-in with a perfect cache: a line is warm
// after a touch or timed load until it is flushed.
type simCache struct {
	warm    map[*byte]bool
	abort   bool
	flushes int
	fences  int
	touched []*byte
	txBody  int

	// flat, when non-zero, is returned for every timed load.
	flat uint64
}

func newSimCache() *simCache {
	return &simCache{warm: make(map[*byte]bool)}
}

func (c *simCache) flush(p *byte) {
	c.flushes++
	delete(c.warm, p)
}

func (c *simCache) fence() { c.fences++ }

func (c *simCache) touch(p *byte) {
	c.touched = append(c.touched, p)
	c.warm[p] = true
}

func (c *simCache) timeLoad(p *byte) uint64 {
	if c.flat != 0 {
		return c.flat
	}
	if c.warm[p] {
		return simHitLatency
	}
	c.warm[p] = true
	return simMissLatency
}

func (c *simCache) transact(body func()) rtm.Result {
	if c.abort {
		return rtm.Result{Status: rtm.Aborted, Cause: rtm.CauseConflict | rtm.CauseRetry}
	}
	c.txBody++
	body()
	return rtm.Result{Status: rtm.Entered}
}

// newSimEngine returns an engine driving a simulated cache.
func newSimEngine(opts ...Option) (*Engine, *simCache, error) {
	e, err := NewEngine(opts...)
	if err != nil {
		return nil, nil, err
	}
	sim := newSimCache()
	e.hw = sim
	return e, sim, nil
}
