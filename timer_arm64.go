//go:build arm64

package ctmemcmp

// cntvct is ISB; MRS CNTVCT_EL0. cntfrq reads CNTFRQ_EL0, which firmware
// sets once at boot. Both implemented in timer_arm64.s.
func cntvct() uint64
func cntfrq() uint64

var platformTimer = timerSource{
	name:      "cntvct_el0",
	read:      cntvct,
	frequency: cntfrq,
}
