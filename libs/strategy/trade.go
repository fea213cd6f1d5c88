package strategy

import "time"

// TradeType mirrors PositionType for a completed trade's direction.
type TradeType = PositionType

// CompletedTrade accumulates one full OPEN -> (INCREASE*/REDUCE*)* -> CLOSE
// cycle for a route. It is built incrementally by logStep as orders are
// classified, and handed to the TradeStore the moment it closes.
type CompletedTrade struct {
	ID        string
	Orders    []Order
	Type      TradeType
	Qty       float64
	EntryPrice float64
	ExitPrice  float64
	StopLossAt float64
	// HasStopLossAt/HasTakeProfitAt distinguish "no stop-loss/take-profit
	// was ever set" (NaN in the original) from a legitimately computed 0.
	HasStopLossAt   bool
	TakeProfitAt    float64
	HasTakeProfitAt bool
	OpenedAt        time.Time
	ClosedAt        time.Time
	EntryCandleTimestamp int64
	ExitCandleTimestamp  int64
	StrategyName string
	Timeframe    string
	Exchange     string
	Symbol       string
}

// logStep folds one classified order into the strategy's in-flight trade,
// closing and publishing it to the trade store when role is
// RoleClosePosition. This is C7, grounded on the original's
// _log_position_update: open creates the record, increase/reduce append
// and adjust the running qty (advisory only — see the final recompute
// below), and close computes the VWAP entry/exit/stop-loss/take-profit
// prices before handing the trade to the store.
func (s *Strategy) logStep(order Order, role Role) {
	switch role {
	case RoleOpenPosition:
		s.trade = &CompletedTrade{
			ID:                   order.ID(),
			Orders:               []Order{order},
			Type:                 s.runtime.SideToType(order.Side()),
			Qty:                  order.Qty(),
			StrategyName:         s.Name,
			Exchange:             order.Exchange(),
			Symbol:               order.Symbol(),
			Timeframe:            s.Timeframe,
			OpenedAt:             s.runtime.Now(),
			EntryCandleTimestamp: s.CurrentCandle().Timestamp,
		}

	case RoleIncreasePosition, RoleReducePosition:
		s.trade.Orders = append(s.trade.Orders, order)
		s.trade.Qty += order.Qty()

	case RoleClosePosition:
		t := s.trade
		t.ExitCandleTimestamp = s.CurrentCandle().Timestamp
		t.Orders = append(t.Orders, order)

		if s.logStopLoss != nil {
			t.StopLossAt = VWAP(s.logStopLoss)
			t.HasStopLossAt = true
		}
		if s.logTakeProfit != nil {
			t.TakeProfitAt = VWAP(s.logTakeProfit)
			t.HasTakeProfitAt = true
		}

		var entrySumQty, entrySumPrice, exitSumQty, exitSumPrice float64
		for _, o := range t.Orders {
			if !o.IsExecuted() {
				continue
			}
			qty := o.Qty()
			if qty < 0 {
				qty = -qty
			}
			if s.runtime.SideToType(o.Side()) == t.Type {
				entrySumQty += qty
				entrySumPrice += qty * o.Price()
			} else {
				exitSumQty += qty
				exitSumPrice += qty * o.Price()
			}
		}
		if entrySumQty != 0 {
			t.EntryPrice = entrySumPrice / entrySumQty
		}
		if exitSumQty != 0 {
			t.ExitPrice = exitSumPrice / exitSumQty
		}

		t.ClosedAt = s.runtime.Now()

		entrySide := s.runtime.TypeToSide(t.Type)
		var finalQty float64
		for _, o := range t.Orders {
			if o.Side() != entrySide {
				continue
			}
			qty := o.Qty()
			if qty < 0 {
				qty = -qty
			}
			finalQty += qty
		}
		t.Qty = finalQty

		s.tradeStore.AddTrade(t)
		s.trade = nil
		s.tradesCount++
	}
}
