package strategy

import "testing"

func newTestStrategy(t *testing.T, name string, position *fakePosition, broker *fakeBroker) *Strategy {
	t.Helper()
	s, err := New(Config{
		Name:        name,
		Exchange:    "binance",
		Symbol:      "BTC-USDT",
		Timeframe:   "1h",
		Position:    position,
		Broker:      broker,
		OrderStore:  &fakeOrderStore{},
		TradeStore:  &fakeTradeStore{},
		CandleStore: &fakeCandleStore{current: Candle{Close: 100}},
		Runtime:     unitTestRuntime(),
	}, Hooks{
		GoLong:       func(s *Strategy) {},
		GoShort:      func(s *Strategy) {},
		ShouldLong:   func(s *Strategy) bool { return false },
		ShouldShort:  func(s *Strategy) bool { return false },
		ShouldCancel: func(s *Strategy) bool { return false },
	})
	if err != nil {
		t.Fatalf("New(%q) returned error: %v", name, err)
	}
	return s
}

func TestBroadcastSkipsSenderAndVisitsPeersInRegistrationOrder(t *testing.T) {
	router := NewRouter()
	a := newTestStrategy(t, "a", &fakePosition{typ: Flat}, &fakeBroker{})
	b := newTestStrategy(t, "b", &fakePosition{typ: Flat}, &fakeBroker{})
	c := newTestStrategy(t, "c", &fakePosition{typ: Flat}, &fakeBroker{})
	router.Register(a)
	router.Register(b)
	router.Register(c)

	var visited []string
	a.hooks.OnRouteOpenPosition = func(self, peer *Strategy) { visited = append(visited, self.Name) }
	b.hooks.OnRouteOpenPosition = func(self, peer *Strategy) { visited = append(visited, self.Name) }
	c.hooks.OnRouteOpenPosition = func(self, peer *Strategy) { visited = append(visited, self.Name) }

	if err := router.broadcast(a, EventOpenPosition); err != nil {
		t.Fatalf("broadcast returned error: %v", err)
	}

	if len(visited) != 2 || visited[0] != "b" || visited[1] != "c" {
		t.Errorf("visited = %v, want [b c]; broadcaster must never receive its own event", visited)
	}
}

func TestBroadcastRunsPeerReconcilerForEveryEventType(t *testing.T) {
	router := NewRouter()
	a := newTestStrategy(t, "a", &fakePosition{typ: Flat}, &fakeBroker{})
	b := newTestStrategy(t, "b", &fakePosition{typ: Long, qty: 1, entryPrice: 100, currentPrice: 100}, &fakeBroker{})
	router.Register(a)
	router.Register(b)

	for _, event := range []RouteEvent{
		EventOpenPosition, EventStopLoss, EventTakeProfit,
		EventIncreasedPosition, EventReducedPosition, EventCanceled,
	} {
		reconciled := false
		b.hooks.UpdatePosition = nil
		b.buy = Table{{1, 100}}
		b.effBuy = Table{{1, 99}} // force a mismatch so reconcileEntry does work
		_ = reconciled

		if err := router.broadcast(a, event); err != nil {
			t.Fatalf("broadcast(%v) returned error: %v", event, err)
		}
		if Equal(b.effBuy, Table{{1, 99}}) {
			t.Errorf("broadcast(%v) did not run the peer's reconciler", event)
		}
	}
}
