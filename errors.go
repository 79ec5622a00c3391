package ctmemcmp

import "errors"

// Errors that can be returned by the oracle engine.
var (
	// ErrInvalidConfig is returned when an engine option is out of range.
	ErrInvalidConfig = errors.New("ctmemcmp: invalid configuration")

	// ErrAllocation is returned when the oracle or a stress region cannot be
	// mapped. The probe does not run partially in that case.
	ErrAllocation = errors.New("ctmemcmp: memory allocation failed")

	// ErrNoiseSuppression is returned when a stress region cannot be
	// decommitted before the transaction.
	ErrNoiseSuppression = errors.New("ctmemcmp: noise suppression failed")

	// ErrShortBuffer is returned when secret or input is shorter than the
	// comparison length.
	ErrShortBuffer = errors.New("ctmemcmp: buffer shorter than comparison length")

	// ErrNilArgument is returned when the oracle or result buffer is nil.
	ErrNilArgument = errors.New("ctmemcmp: nil oracle or result buffer")

	// ErrClosed is returned when probing an oracle after Close.
	ErrClosed = errors.New("ctmemcmp: oracle is closed")

	// ErrNoSignal is returned by Guess.Byte when no sample fell below the
	// cache-hit threshold.
	ErrNoSignal = errors.New("ctmemcmp: no signal recovered")
)
