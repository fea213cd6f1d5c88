package strategy

// submitEntryOrder places one (qty, price) entry row via the broker,
// choosing MARKET / LIMIT / STOP the way the original's _execute_long and
// _execute_short did: a price past the current mark in the position's own
// direction is a stop-entry, a price behind it is a limit, and an exact
// match is a market order.
//
// side is the direction of the entry itself (BUY for a long, SELL for a
// short) and is also the side used for the STOP branch. The original's
// reconciliation branch for short entries hardcoded sides.BUY in that
// branch — a bug, since a short stop-entry must re-enter with a SELL, not
// a BUY. Taking side as a parameter here and using it uniformly for every
// branch means that bug has no way to reappear: every call site, initial
// or reconciled, funnels through the same function.
func submitEntryOrder(broker Broker, side Side, qty, price, markPrice float64, role Role) (Order, error) {
	switch {
	case (side == Buy && price > markPrice) || (side == Sell && price < markPrice):
		return broker.StartProfitAt(side, qty, price, role)
	case side == Buy && price < markPrice:
		return broker.BuyAt(qty, price, role)
	case side == Sell && price > markPrice:
		return broker.SellAt(qty, price, role)
	case price == markPrice:
		if side == Buy {
			return broker.BuyAtMarket(qty, role)
		}
		return broker.SellAtMarket(qty, role)
	default:
		// only reached when no comparison above holds (a NaN price or
		// mark): submitted as a stop-entry.
		return broker.StartProfitAt(side, qty, price, role)
	}
}

// submitInitialTakeProfit places a take-profit row the way
// _on_open_position does right after an entry fills: unconditionally as a
// reduce-position order, with no price-relative branching (unlike the
// reconciliation path in reconcile.go, which does branch on price — this
// asymmetry is carried over from the original on purpose, see the design
// notes on reconciliation).
func submitInitialTakeProfit(broker Broker, qty, price float64) (Order, error) {
	return broker.ReducePositionAt(qty, price, RoleClosePosition)
}

// submitInitialStopLoss places a stop-loss row the way _on_open_position
// does: unconditionally as a stop order.
func submitInitialStopLoss(broker Broker, qty, price float64) (Order, error) {
	return broker.StopLossAt(qty, price, RoleClosePosition)
}
