package strategy

// NewMACrossoverHooks builds the Hooks for a moving-average crossover
// strategy: go long on a golden cross (fast SMA above slow SMA), go short
// on a death cross, sized by a fixed risk-per-trade multiple of the ATR for
// its stop-loss distance. It is a worked example of the Hooks contract, the
// Go analogue of the signal-generation shape the teacher's own
// MACrossoverStrategy uses, adapted here to set intents through a route
// instead of returning a standalone Signal value.
func NewMACrossoverHooks(fastSMA, slowSMA func(s *Strategy) float64, atr func(s *Strategy) float64, riskMultiple float64) Hooks {
	wantLong := func(s *Strategy) bool { return fastSMA(s) > slowSMA(s) }
	wantShort := func(s *Strategy) bool { return fastSMA(s) < slowSMA(s) }

	return Hooks{
		GoLong: func(s *Strategy) {
			price := s.Price()
			stopDistance := riskMultiple * atr(s)
			_ = s.SetBuy(Row{1, price})
			_ = s.SetStopLoss(Row{1, price - stopDistance})
			_ = s.SetTakeProfit(Row{1, price + 2*stopDistance})
		},
		GoShort: func(s *Strategy) {
			price := s.Price()
			stopDistance := riskMultiple * atr(s)
			_ = s.SetSell(Row{1, price})
			_ = s.SetStopLoss(Row{1, price + stopDistance})
			_ = s.SetTakeProfit(Row{1, price - 2*stopDistance})
		},
		ShouldLong:   func(s *Strategy) bool { return wantLong(s) },
		ShouldShort:  func(s *Strategy) bool { return wantShort(s) },
		ShouldCancel: func(s *Strategy) bool { return false },
	}
}
