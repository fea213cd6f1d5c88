package strategy

// reclassify resolves an order's submission-time role against the
// post-execution position state, per the original's three-rule
// _on_updated_position preamble:
//
//  1. an OPEN_POSITION fill whose size doesn't match the resulting
//     position size was really an increase of an already-open position
//     (the fill landed on top of one opened by an earlier, still-pending
//     order);
//  2. a CLOSE_POSITION fill while the position is still open was a
//     partial close, i.e. a reduce, not the final close.
//
// The order's Role is mutated in place, matching the original's
// order.role = ... reassignment; the resolved role is also returned so
// the caller doesn't need to re-read it.
func reclassify(order Order, position Position) Role {
	role := order.Role()

	if role == RoleOpenPosition {
		posQty, orderQty := position.Qty(), order.Qty()
		if posQty < 0 {
			posQty = -posQty
		}
		if orderQty < 0 {
			orderQty = -orderQty
		}
		if posQty != orderQty {
			role = RoleIncreasePosition
			order.SetRole(role)
		}
	}

	if role == RoleClosePosition && position.IsOpen() {
		role = RoleReducePosition
		order.SetRole(role)
	}

	return role
}

// inBasket reports whether order belongs to basket, used to distinguish a
// take-profit close from a stop-loss close once both have been
// reclassified to the same CLOSE_POSITION role.
func inBasket(order Order, basket []Order) bool {
	for _, o := range basket {
		if o.ID() == order.ID() {
			return true
		}
	}
	return false
}
