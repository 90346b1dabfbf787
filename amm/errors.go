package amm

import "errors"

// Kernel errors. The edge cost model recovers from all of them by falling
// back to the edge's nominal rate, or by marking the edge unusable when no
// fallback exists; they never reach the solver's caller.
var (
	// ErrTradeTooLarge is returned when the input meets or exceeds the
	// configured fraction of the input-side reserve.
	ErrTradeTooLarge = errors.New("amm: trade too large for pool")
	// ErrNonPositiveReserve is returned for a pool with an empty or
	// negative reserve.
	ErrNonPositiveReserve = errors.New("amm: non-positive reserve")
	// ErrNonPositiveInput is returned for a zero or negative input amount.
	ErrNonPositiveInput = errors.New("amm: non-positive input")
	// ErrUnknownPoolKind is returned for a pool family the kernel does not
	// price.
	ErrUnknownPoolKind = errors.New("amm: unknown pool kind")
	// ErrNilPool is returned when quoting a nil pool.
	ErrNilPool = errors.New("amm: nil pool")
)
