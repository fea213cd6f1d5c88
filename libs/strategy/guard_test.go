package strategy

import (
	"errors"
	"testing"
)

func TestValidateEntryShapeRejectsUnset(t *testing.T) {
	if err := validateEntryShape(nil, "buy"); !errors.Is(err, ErrInvalidStrategy) {
		t.Errorf("expected ErrInvalidStrategy, got %v", err)
	}
	if err := validateEntryShape(Table{{1, 100}}, "buy"); err != nil {
		t.Errorf("unexpected error for set table: %v", err)
	}
}

func TestValidateConflictingDirection(t *testing.T) {
	if err := validateConflictingDirection(true, true); !errors.Is(err, ErrConflictingRules) {
		t.Errorf("expected ErrConflictingRules when both true, got %v", err)
	}
	if err := validateConflictingDirection(true, false); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validateConflictingDirection(false, false); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateStopLossNotTakeProfitRejectsIdenticalTables(t *testing.T) {
	sl := Table{{1, 110}}
	tp := Table{{1, 110}}
	if err := validateStopLossNotTakeProfit(sl, tp); !errors.Is(err, ErrInvalidStrategy) {
		t.Errorf("expected ErrInvalidStrategy for identical stop-loss/take-profit, got %v", err)
	}
}

func TestValidateStopLossNotTakeProfitAllowsDistinctTables(t *testing.T) {
	sl := Table{{1, 90}}
	tp := Table{{1, 110}}
	if err := validateStopLossNotTakeProfit(sl, tp); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateTakeProfitDirectionLong(t *testing.T) {
	if err := validateTakeProfitDirection(Table{{1, 110}}, true, 100); err != nil {
		t.Errorf("unexpected error for profitable long take-profit: %v", err)
	}
	if err := validateTakeProfitDirection(Table{{1, 90}}, true, 100); err == nil {
		t.Error("expected error for take-profit below entry in a long position")
	}
}

func TestValidateStopLossDirectionShort(t *testing.T) {
	if err := validateStopLossDirection(Table{{1, 110}}, false, 100); err != nil {
		t.Errorf("unexpected error for valid short stop-loss: %v", err)
	}
	if err := validateStopLossDirection(Table{{1, 90}}, false, 100); err == nil {
		t.Error("expected error for stop-loss below entry in a short position")
	}
}

func TestValidateCancelAllowedRejectsWhileOpen(t *testing.T) {
	open := &fakePosition{typ: Long, qty: 1}
	if err := validateCancelAllowed(open); !errors.Is(err, ErrInternalInvariant) {
		t.Errorf("expected ErrInternalInvariant while open, got %v", err)
	}
	flat := &fakePosition{typ: Flat}
	if err := validateCancelAllowed(flat); err != nil {
		t.Errorf("unexpected error while flat: %v", err)
	}
}
