package strategy

// detectAndHandleModifications is the reconciler (C5): on every tick
// while a position is open (or about to be), it compares each intent
// table against its effective snapshot, and if the user mutated one
// between ticks, cancels the orders it produced and resubmits from
// scratch — cancelling only active/queued orders and retaining ones that
// already executed, exactly as the original's
// _detect_and_handle_entry_and_exit_modifications does.
//
// It runs after every tick (from check(), via updatePosition) and after
// every lifecycle callback and every broadcast a peer strategy receives,
// since any of those can be where user code mutates an intent.
func (s *Strategy) detectAndHandleModifications() error {
	if s.position.IsClose() {
		return nil
	}

	mark := s.Price()

	switch {
	case s.IsLong():
		s.reconcileEntry(Buy, s.buy, &s.effBuy)
	case s.IsShort():
		s.reconcileEntry(Sell, s.sell, &s.effSell)
	}

	if s.position.IsOpen() && s.takeProfit != nil {
		s.reconcileTakeProfit(mark)
	}

	if s.position.IsOpen() && s.stopLoss != nil {
		s.reconcileStopLoss(mark)
	}

	if s.position.IsOpen() {
		if err := validateStopLossNotTakeProfit(s.stopLoss, s.takeProfit); err != nil {
			return err
		}
	}

	if s.metrics != nil {
		s.metrics.ReconciliationsTotal.Inc()
	}
	return nil
}

// reconcileEntry handles a modified buy (long) or sell (short) intent:
// cancel the active/queued open-position orders, keep the executed ones,
// and resubmit from the new table. side is used uniformly for every row,
// including the STOP branch — this is the fix for the original's
// hardcoded sides.BUY bug in its short-entry reconciliation branch.
func (s *Strategy) reconcileEntry(side Side, current Table, effective *Table) {
	if Equal(current, *effective) {
		return
	}
	*effective = current

	var retained []Order
	for _, o := range s.openOrders {
		if o.IsActive() || o.IsQueued() {
			_ = s.broker.CancelOrder(o.ID())
			continue
		}
		retained = append(retained, o)
	}
	s.openOrders = retained

	mark := s.Price()
	for _, row := range current {
		order, err := submitEntryOrder(s.broker, side, row.Qty(), row.Price(), mark, RoleOpenPosition)
		if err != nil {
			continue
		}
		s.openOrders = append(s.openOrders, order)
	}
}

// reconcileTakeProfit handles a modified take-profit table. Unlike the
// initial submission in onOpenPosition (always a plain reduce-position
// order), reconciliation dispatches by price relative to the mark: exact
// match closes at market, a price still ahead of the mark in the
// profitable direction is a limit reduce, and a price already past the
// mark (the position would already be profitable enough to fill as a
// stop) is submitted as a stop. This asymmetry between initial placement
// and reconciled placement is carried over from the original on purpose;
// see the design notes.
func (s *Strategy) reconcileTakeProfit(mark float64) {
	if Equal(s.takeProfit, s.effTakeProfit) {
		return
	}
	s.effTakeProfit = s.takeProfit

	var retained []Order
	log := Table{}
	for _, o := range s.takeProfitOrders {
		if o.IsActive() || o.IsQueued() {
			_ = s.broker.CancelOrder(o.ID())
			continue
		}
		retained = append(retained, o)
		qty := o.Qty()
		if qty < 0 {
			qty = -qty
		}
		log = append(log, Row{qty, o.Price()})
	}
	s.takeProfitOrders = retained

	isLong := s.IsLong()
	for _, row := range s.takeProfit {
		log = append(log, row)

		var order Order
		var err error
		switch {
		case row.Price() == mark:
			if isLong {
				order, err = s.broker.SellAtMarket(row.Qty(), RoleClosePosition)
			} else {
				order, err = s.broker.BuyAtMarket(row.Qty(), RoleClosePosition)
			}
		case (isLong && row.Price() > mark) || (!isLong && row.Price() < mark):
			order, err = s.broker.ReducePositionAt(row.Qty(), row.Price(), RoleClosePosition)
		case (isLong && row.Price() < mark) || (!isLong && row.Price() > mark):
			order, err = s.broker.StopLossAt(row.Qty(), row.Price(), RoleClosePosition)
		}
		if err == nil && order != nil {
			s.takeProfitOrders = append(s.takeProfitOrders, order)
		}
	}
	s.logTakeProfit = log
}

// reconcileStopLoss mirrors reconcileTakeProfit, but every non-market row
// is always submitted as a stop order, never a reduce-limit — a
// protective stop doesn't have a "still ahead of the mark" case the way a
// take-profit's limit-reduce branch does.
func (s *Strategy) reconcileStopLoss(mark float64) {
	if Equal(s.stopLoss, s.effStopLoss) {
		return
	}
	s.effStopLoss = s.stopLoss

	var retained []Order
	log := Table{}
	for _, o := range s.stopLossOrders {
		if o.IsActive() || o.IsQueued() {
			_ = s.broker.CancelOrder(o.ID())
			continue
		}
		retained = append(retained, o)
		qty := o.Qty()
		if qty < 0 {
			qty = -qty
		}
		log = append(log, Row{qty, o.Price()})
	}
	s.stopLossOrders = retained

	isLong := s.IsLong()
	for _, row := range s.stopLoss {
		log = append(log, row)

		var order Order
		var err error
		if row.Price() == mark {
			if isLong {
				order, err = s.broker.SellAtMarket(row.Qty(), RoleClosePosition)
			} else {
				order, err = s.broker.BuyAtMarket(row.Qty(), RoleClosePosition)
			}
		} else {
			order, err = s.broker.StopLossAt(row.Qty(), row.Price(), RoleClosePosition)
		}
		if err == nil && order != nil {
			s.stopLossOrders = append(s.stopLossOrders, order)
		}
	}
	s.logStopLoss = log
}
