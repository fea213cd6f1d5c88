package main

import (
	"fmt"
	"math"
	"sync"
	"time"

	"jax-strategy-core/libs/strategy"
)

// paperOrder is the in-memory Order implementation for the demo's
// synchronous paper broker: every order fills immediately at submission
// time, matching backtest/unit-test semantics.
type paperOrder struct {
	id       string
	side     strategy.Side
	qty      float64
	price    float64
	role     strategy.Role
	exchange string
	symbol   string
}

func (o *paperOrder) ID() string               { return o.id }
func (o *paperOrder) Side() strategy.Side      { return o.side }
func (o *paperOrder) Qty() float64             { return o.qty }
func (o *paperOrder) Price() float64           { return o.price }
func (o *paperOrder) Role() strategy.Role      { return o.role }
func (o *paperOrder) SetRole(r strategy.Role)  { o.role = r }
func (o *paperOrder) Exchange() string         { return o.exchange }
func (o *paperOrder) Symbol() string           { return o.symbol }
func (o *paperOrder) IsActive() bool           { return false }
func (o *paperOrder) IsQueued() bool           { return false }
func (o *paperOrder) IsExecuted() bool         { return true }

// paperPosition is the in-memory Position ledger for one route.
type paperPosition struct {
	mu           sync.Mutex
	qty          float64
	typ          strategy.PositionType
	entryPrice   float64
	currentPrice float64
}

func (p *paperPosition) Qty() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.qty
}
func (p *paperPosition) Type() strategy.PositionType {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.typ
}
func (p *paperPosition) IsOpen() bool  { return p.Type() != strategy.Flat }
func (p *paperPosition) IsClose() bool { return p.Type() == strategy.Flat }
func (p *paperPosition) EntryPrice() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entryPrice
}
func (p *paperPosition) CurrentPrice() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentPrice
}
func (p *paperPosition) PnL() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.typ {
	case strategy.Long:
		return (p.currentPrice - p.entryPrice) * p.qty
	case strategy.Short:
		return (p.entryPrice - p.currentPrice) * p.qty
	default:
		return 0
	}
}
func (p *paperPosition) PnLPercentage() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.entryPrice == 0 {
		return 0
	}
	pnl := (p.currentPrice - p.entryPrice) * p.qty
	if p.typ == strategy.Short {
		pnl = (p.entryPrice - p.currentPrice) * p.qty
	}
	return pnl / (p.entryPrice * p.qty) * 100
}
func (p *paperPosition) Close(price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentPrice = price
	p.typ = strategy.Flat
	p.qty = 0
	p.entryPrice = 0
}
func (p *paperPosition) setMark(price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentPrice = price
}
// markFilled applies a fill to the position ledger. p.qty is always a
// magnitude (never negative), matching how Position.Qty() is read
// elsewhere in the route (TP/SL row sizing, increase/reduce detection);
// direction lives in p.typ. qty arrives already signed by the caller
// (place's callers negate qty for sells); only its magnitude is applied,
// and comparing side against p.typ decides whether the fill adds to or
// works against the current position.
func (p *paperPosition) markFilled(side strategy.Side, qty, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	magnitude := math.Abs(qty)
	if p.typ == strategy.Flat {
		p.typ = strategy.Long
		if side == strategy.Sell {
			p.typ = strategy.Short
		}
		p.entryPrice = price
		p.qty = magnitude
		return
	}
	sameDirection := (p.typ == strategy.Long && side == strategy.Buy) || (p.typ == strategy.Short && side == strategy.Sell)
	if sameDirection {
		p.qty += magnitude
		return
	}
	p.qty -= magnitude
	if p.qty <= 0 {
		p.qty = 0
		p.typ = strategy.Flat
		p.entryPrice = 0
	}
}

// paperBroker fills every order at submission time (market orders at the
// route's current mark price, all others at their own price), recording
// the fill onto position and queuing it for the run loop to hand to
// OnUpdatedPosition.
type paperBroker struct {
	mu       sync.Mutex
	route    string
	position *paperPosition
	nextID   int
	filled   []strategy.Order
}

func (b *paperBroker) place(side strategy.Side, qty, price float64, role strategy.Role) (strategy.Order, error) {
	b.mu.Lock()
	b.nextID++
	o := &paperOrder{
		id:       fmt.Sprintf("%s-%d", b.route, b.nextID),
		side:     side,
		qty:      qty,
		price:    price,
		role:     role,
		exchange: "paper",
		symbol:   b.route,
	}
	b.filled = append(b.filled, o)
	b.mu.Unlock()

	b.position.markFilled(side, qty, price)
	return o, nil
}

// drainFilled returns every order filled since the last drain, in fill
// order, and clears the queue.
func (b *paperBroker) drainFilled() []strategy.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.filled
	b.filled = nil
	return out
}

func (b *paperBroker) BuyAt(qty, price float64, role strategy.Role) (strategy.Order, error) {
	return b.place(strategy.Buy, qty, price, role)
}
func (b *paperBroker) SellAt(qty, price float64, role strategy.Role) (strategy.Order, error) {
	return b.place(strategy.Sell, -qty, price, role)
}
func (b *paperBroker) BuyAtMarket(qty float64, role strategy.Role) (strategy.Order, error) {
	return b.place(strategy.Buy, qty, b.position.CurrentPrice(), role)
}
func (b *paperBroker) SellAtMarket(qty float64, role strategy.Role) (strategy.Order, error) {
	return b.place(strategy.Sell, -qty, b.position.CurrentPrice(), role)
}
func (b *paperBroker) StartProfitAt(side strategy.Side, qty, price float64, role strategy.Role) (strategy.Order, error) {
	if side == strategy.Sell {
		qty = -qty
	}
	return b.place(side, qty, price, role)
}
func (b *paperBroker) StopLossAt(qty, price float64, role strategy.Role) (strategy.Order, error) {
	return b.place(strategy.Sell, -qty, price, role)
}
func (b *paperBroker) ReducePositionAt(qty, price float64, role strategy.Role) (strategy.Order, error) {
	return b.place(strategy.Sell, -qty, price, role)
}
func (b *paperBroker) CancelOrder(id string) error { return nil }
func (b *paperBroker) CancelAllOrders() error      { return nil }
func (b *paperBroker) RoundPrice(ref, price float64) float64 { return price }
func (b *paperBroker) RoundQty(ref, qty float64) float64     { return qty }

// paperOrderStore, paperTradeStore, paperCandleStore back the remaining
// collaborator interfaces for the demo run.
type paperOrderStore struct{}

func (paperOrderStore) CountActiveOrders(exchange, symbol string) int { return 0 }
func (paperOrderStore) GetOrders(exchange, symbol string) []strategy.Order { return nil }
func (paperOrderStore) ExecutePendingMarketOrders()                  {}
func (paperOrderStore) ClearRoute(exchange, symbol string)           {}

type paperTradeStore struct {
	mu     sync.Mutex
	trades []*strategy.CompletedTrade
}

func (s *paperTradeStore) AddTrade(trade *strategy.CompletedTrade) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, trade)
}
func (s *paperTradeStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trades)
}

type paperCandleStore struct {
	mu      sync.Mutex
	history []strategy.Candle
}

func (s *paperCandleStore) push(c strategy.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, c)
}
func (s *paperCandleStore) CurrentCandle(exchange, symbol, timeframe string) strategy.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return strategy.Candle{}
	}
	return s.history[len(s.history)-1]
}
func (s *paperCandleStore) Candles(exchange, symbol, timeframe string) []strategy.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]strategy.Candle, len(s.history))
	copy(out, s.history)
	return out
}

// paperRuntime is the demo Runtime: unit-testing mode, a real wall clock,
// and sequential IDs.
type paperRuntime struct {
	nextID int
}

func (r *paperRuntime) Mode() strategy.Mode { return strategy.Mode{UnitTesting: true} }
func (r *paperRuntime) Now() time.Time      { return time.Now() }
func (r *paperRuntime) GenerateID() string {
	r.nextID++
	return fmt.Sprintf("run-%d", r.nextID)
}
func (r *paperRuntime) SideToType(s strategy.Side) strategy.PositionType {
	if s == strategy.Buy {
		return strategy.Long
	}
	return strategy.Short
}
func (r *paperRuntime) TypeToSide(t strategy.PositionType) strategy.Side {
	if t == strategy.Long {
		return strategy.Buy
	}
	return strategy.Sell
}
