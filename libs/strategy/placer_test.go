package strategy

import "testing"

func TestSubmitEntryOrderLongBranches(t *testing.T) {
	broker := &fakeBroker{}

	// price below mark -> limit buy
	order, err := submitEntryOrder(broker, Buy, 1, 95, 100, RoleOpenPosition)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Side() != Buy || order.Price() != 95 {
		t.Errorf("expected limit buy at 95, got side=%v price=%v", order.Side(), order.Price())
	}

	// price above mark -> stop entry
	order, err = submitEntryOrder(broker, Buy, 1, 105, 100, RoleOpenPosition)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Side() != Buy {
		t.Errorf("expected a buy-side stop entry, got %v", order.Side())
	}

	// price at mark -> market
	order, err = submitEntryOrder(broker, Buy, 1, 100, 100, RoleOpenPosition)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Price() != 0 {
		t.Errorf("market order should report the fill price the broker assigns, got %v", order.Price())
	}
}

func TestSubmitEntryOrderShortStopUsesSellNotHardcodedBuy(t *testing.T) {
	broker := &fakeBroker{}

	// A short stop-entry (price below mark, in the short's own profitable
	// direction) must resubmit as SELL. The original hardcoded BUY here in
	// its reconciliation branch; submitEntryOrder takes side explicitly so
	// every call site, including reconcileEntry, gets this right.
	order, err := submitEntryOrder(broker, Sell, 1, 95, 100, RoleOpenPosition)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Side() != Sell {
		t.Errorf("short stop-entry must be SELL, got %v", order.Side())
	}
}

func TestSubmitInitialTakeProfitAlwaysReduces(t *testing.T) {
	broker := &fakeBroker{}
	order, err := submitInitialTakeProfit(broker, 1, 110)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Role() != RoleClosePosition {
		t.Errorf("role = %v, want RoleClosePosition", order.Role())
	}
}

func TestSubmitInitialStopLossAlwaysStops(t *testing.T) {
	broker := &fakeBroker{}
	order, err := submitInitialStopLoss(broker, 1, 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Role() != RoleClosePosition {
		t.Errorf("role = %v, want RoleClosePosition", order.Role())
	}
}
