package strategy

import "testing"

func TestMACrossoverGoesLongOnGoldenCross(t *testing.T) {
	fast, slow := 110.0, 100.0
	atr := 5.0
	hooks := NewMACrossoverHooks(
		func(s *Strategy) float64 { return fast },
		func(s *Strategy) float64 { return slow },
		func(s *Strategy) float64 { return atr },
		1.5,
	)

	s, _, _ := newFlatStrategy(t, hooks)

	if !hooks.ShouldLong(s) {
		t.Fatal("expected ShouldLong to be true on a golden cross")
	}
	if hooks.ShouldShort(s) {
		t.Fatal("expected ShouldShort to be false on a golden cross")
	}

	hooks.GoLong(s)

	if s.buy == nil || s.buy[0].Price() != 100 {
		t.Errorf("buy = %v, want a row at the mark price 100", s.buy)
	}
	wantStop := 100 - 1.5*atr
	if s.stopLoss[0].Price() != wantStop {
		t.Errorf("stopLoss price = %v, want %v", s.stopLoss[0].Price(), wantStop)
	}
}

func TestMACrossoverGoesShortOnDeathCross(t *testing.T) {
	fast, slow := 90.0, 100.0
	atr := 5.0
	hooks := NewMACrossoverHooks(
		func(s *Strategy) float64 { return fast },
		func(s *Strategy) float64 { return slow },
		func(s *Strategy) float64 { return atr },
		1.5,
	)

	s, _, _ := newFlatStrategy(t, hooks)

	if !hooks.ShouldShort(s) {
		t.Fatal("expected ShouldShort to be true on a death cross")
	}

	hooks.GoShort(s)

	wantStop := 100 + 1.5*atr
	if s.stopLoss[0].Price() != wantStop {
		t.Errorf("stopLoss price = %v, want %v", s.stopLoss[0].Price(), wantStop)
	}
}
