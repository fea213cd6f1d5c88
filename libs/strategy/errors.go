package strategy

import "errors"

// Sentinel errors. Callers compare with errors.Is; call sites wrap these
// with fmt.Errorf("...: %w", ...) to attach a descriptive message, the same
// pattern libs/database/errors.go and libs/risk/policy.go use.
var (
	// ErrInvalidStrategy covers misuse of the strategy contract: reading an
	// accessor before its backing intent is set, calling a hook the
	// strategy doesn't implement, etc.
	ErrInvalidStrategy = errors.New("invalid strategy")

	// ErrInvalidShape is returned by Normalize when a value can't be
	// coerced into a (qty, price) table.
	ErrInvalidShape = errors.New("invalid intent shape")

	// ErrConflictingRules is returned when should_long and should_short
	// both report true on the same tick. Stop-loss equal to take-profit and
	// SL/TP on the wrong side of the entry price are ErrInvalidStrategy; a
	// cancel attempted with a position open is ErrInternalInvariant.
	ErrConflictingRules = errors.New("conflicting strategy rules")

	// ErrExchangeNotResponding is returned when a live-mode cancellation is
	// still not confirmed by the order store after the bounded wait.
	ErrExchangeNotResponding = errors.New("exchange not responding")

	// ErrInternalInvariant marks a state the lifecycle state machine should
	// never reach if the rest of this package is correct.
	ErrInternalInvariant = errors.New("internal invariant violated")
)
