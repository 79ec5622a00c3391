package ctmemcmp

import (
	"github.com/r3tima/ct-memcmp/internal/cacheops"
	"github.com/r3tima/ct-memcmp/internal/rtm"
)

// hardware is the set of CPU operations the engine drives. The native
// implementation maps each method onto one instruction sequence; tests
// substitute a simulated cache.
type hardware interface {
	flush(p *byte)
	fence()
	touch(p *byte)
	timeLoad(p *byte) uint64
	transact(body func()) rtm.Result
}

type native struct{}

func (native) flush(p *byte) { cacheops.Flush(p) }
func (native) fence() { cacheops.MFence() }
func (native) touch(p *byte) { cacheops.Touch(p) }
func (native) timeLoad(p *byte) uint64 { return cacheops.TimeLoad(p) }
func (native) transact(body func()) rtm.Result { return rtm.Run(body) }

// TransactionsSupported reports whether the CPU can run the transactional
// probe. Without it every probe reports Aborted and no page is touched.
func TransactionsSupported() bool {
	return rtm.Supported()
}

// LoadTimerName returns the timer behind Sample latencies.
func LoadTimerName() string {
	return cacheops.Name()
}
