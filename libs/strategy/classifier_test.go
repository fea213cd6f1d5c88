package strategy

import "testing"

func TestReclassifyPromotesMismatchedOpenFillToIncrease(t *testing.T) {
	order := &fakeOrder{qty: 0.6, role: RoleOpenPosition}
	position := &fakePosition{typ: Long, qty: 1.0}

	role := reclassify(order, position)

	if role != RoleIncreasePosition {
		t.Errorf("role = %v, want RoleIncreasePosition", role)
	}
	if order.Role() != RoleIncreasePosition {
		t.Error("reclassify must mutate the order's role in place")
	}
}

func TestReclassifyLeavesMatchingOpenFillAlone(t *testing.T) {
	order := &fakeOrder{qty: 1.0, role: RoleOpenPosition}
	position := &fakePosition{typ: Long, qty: 1.0}

	if role := reclassify(order, position); role != RoleOpenPosition {
		t.Errorf("role = %v, want RoleOpenPosition", role)
	}
}

func TestReclassifyDemotesCloseFillToReduceWhileStillOpen(t *testing.T) {
	order := &fakeOrder{qty: -0.4, role: RoleClosePosition}
	position := &fakePosition{typ: Long, qty: 0.6}

	if role := reclassify(order, position); role != RoleReducePosition {
		t.Errorf("role = %v, want RoleReducePosition", role)
	}
}

func TestReclassifyLeavesFinalCloseFillAlone(t *testing.T) {
	order := &fakeOrder{qty: -1.0, role: RoleClosePosition}
	position := &fakePosition{typ: Flat}

	if role := reclassify(order, position); role != RoleClosePosition {
		t.Errorf("role = %v, want RoleClosePosition", role)
	}
}

func TestInBasketMatchesByID(t *testing.T) {
	basket := []Order{&fakeOrder{id: "a"}, &fakeOrder{id: "b"}}
	if !inBasket(&fakeOrder{id: "a"}, basket) {
		t.Error("expected order \"a\" to be found in basket")
	}
	if inBasket(&fakeOrder{id: "c"}, basket) {
		t.Error("did not expect order \"c\" to be found in basket")
	}
}
