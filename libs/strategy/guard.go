package strategy

import "fmt"

// validateEntryShape checks the required intent (buy for a long entry,
// sell for a short entry) is present after the GoLong/GoShort hook ran.
func validateEntryShape(table Table, name string) error {
	if table == nil {
		return fmt.Errorf("you forgot to set self.%s: %w", name, ErrInvalidStrategy)
	}
	return nil
}

// validateStopLossShape/validateTakeProfitShape mirror the original's
// _validate_stop_loss/_validate_take_profit: only checked when the
// strategy actually set the field (both are optional).
func validateStopLossShape(table Table) error {
	if table == nil {
		return fmt.Errorf("you forgot to set self.stop_loss: %w", ErrInvalidStrategy)
	}
	return nil
}

func validateTakeProfitShape(table Table) error {
	if table == nil {
		return fmt.Errorf("you forgot to set self.take_profit: %w", ErrInvalidStrategy)
	}
	return nil
}

// validateConflictingDirection rejects should_long and should_short both
// reporting true on the same tick.
func validateConflictingDirection(shouldLong, shouldShort bool) error {
	if shouldLong && shouldShort {
		return fmt.Errorf("should_short and should_long must not both be true at the same time: %w", ErrConflictingRules)
	}
	return nil
}

// validateStopLossNotTakeProfit rejects a stop-loss table that is
// structurally identical to the take-profit table: using both to express
// the same exit is almost certainly a mistake.
func validateStopLossNotTakeProfit(stopLoss, takeProfit Table) error {
	if stopLoss != nil && takeProfit != nil && Equal(stopLoss, takeProfit) {
		return fmt.Errorf("stop-loss and take-profit must not be exactly the same, use either one: %w", ErrInvalidStrategy)
	}
	return nil
}

// validateTakeProfitDirection checks every take-profit row exits with
// profit relative to the position's entry price, per direction.
func validateTakeProfitDirection(table Table, isLong bool, entryPrice float64) error {
	for _, row := range table {
		price := row.Price()
		if isLong && price <= entryPrice {
			return fmt.Errorf("take-profit(%v) must be above entry-price(%v) in a long position: %w", price, entryPrice, ErrInvalidStrategy)
		}
		if !isLong && price >= entryPrice {
			return fmt.Errorf("take-profit(%v) must be below entry-price(%v) in a short position: %w", price, entryPrice, ErrInvalidStrategy)
		}
	}
	return nil
}

// validateStopLossDirection checks every stop-loss row is on the loss
// side of the position's entry price, per direction.
func validateStopLossDirection(table Table, isLong bool, entryPrice float64) error {
	for _, row := range table {
		price := row.Price()
		if isLong && price >= entryPrice {
			return fmt.Errorf("stop-loss(%v) must be below entry-price(%v) in a long position: %w", price, entryPrice, ErrInvalidStrategy)
		}
		if !isLong && price <= entryPrice {
			return fmt.Errorf("stop-loss(%v) must be above entry-price(%v) in a short position: %w", price, entryPrice, ErrInvalidStrategy)
		}
	}
	return nil
}

// validateCancelAllowed enforces that orders can only be bulk-cancelled
// while flat; a cancel with an open position signals a bug elsewhere in
// the lifecycle, since the reconciler — not the canceller — is the one
// responsible for mutating an open position's orders.
func validateCancelAllowed(position Position) error {
	if position.IsOpen() {
		return fmt.Errorf("cannot cancel orders while a position is open: %w", ErrInternalInvariant)
	}
	return nil
}
