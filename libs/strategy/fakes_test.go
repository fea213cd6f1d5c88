package strategy

import (
	"fmt"
	"time"
)

// fakeOrder is a minimal in-memory Order used by the test suite.
type fakeOrder struct {
	id       string
	side     Side
	qty      float64
	price    float64
	role     Role
	exchange string
	symbol   string
	active   bool
	queued   bool
	executed bool
}

func (o *fakeOrder) ID() string         { return o.id }
func (o *fakeOrder) Side() Side         { return o.side }
func (o *fakeOrder) Qty() float64       { return o.qty }
func (o *fakeOrder) Price() float64     { return o.price }
func (o *fakeOrder) Role() Role         { return o.role }
func (o *fakeOrder) SetRole(r Role)     { o.role = r }
func (o *fakeOrder) Exchange() string   { return o.exchange }
func (o *fakeOrder) Symbol() string     { return o.symbol }
func (o *fakeOrder) IsActive() bool     { return o.active }
func (o *fakeOrder) IsQueued() bool     { return o.queued }
func (o *fakeOrder) IsExecuted() bool   { return o.executed }

// fakePosition is a minimal in-memory Position.
type fakePosition struct {
	qty          float64
	typ          PositionType
	entryPrice   float64
	currentPrice float64
}

func (p *fakePosition) Qty() float64        { return p.qty }
func (p *fakePosition) Type() PositionType   { return p.typ }
func (p *fakePosition) IsOpen() bool         { return p.typ != Flat }
func (p *fakePosition) IsClose() bool        { return p.typ == Flat }
func (p *fakePosition) EntryPrice() float64  { return p.entryPrice }
func (p *fakePosition) CurrentPrice() float64 { return p.currentPrice }
func (p *fakePosition) PnL() float64 {
	if p.typ == Long {
		return (p.currentPrice - p.entryPrice) * p.qty
	}
	if p.typ == Short {
		return (p.entryPrice - p.currentPrice) * p.qty
	}
	return 0
}
func (p *fakePosition) PnLPercentage() float64 {
	if p.entryPrice == 0 {
		return 0
	}
	return p.PnL() / (p.entryPrice * p.qty) * 100
}
func (p *fakePosition) Close(price float64) {
	p.currentPrice = price
	p.typ = Flat
	p.qty = 0
}

// fakeBroker records every call it receives and hands back a fakeOrder
// filled immediately (IsExecuted true), matching unit-test/backtest mode
// semantics where orders resolve synchronously.
type fakeBroker struct {
	orders    []*fakeOrder
	nextID    int
	cancelled []string
	cancelAll int
	failNext  bool
}

func (b *fakeBroker) newOrder(side Side, qty, price float64, role Role) *fakeOrder {
	b.nextID++
	o := &fakeOrder{
		id:       fmt.Sprintf("order-%d", b.nextID),
		side:     side,
		qty:      qty,
		price:    price,
		role:     role,
		exchange: "binance",
		symbol:   "BTC-USDT",
		executed: true,
	}
	b.orders = append(b.orders, o)
	return o
}

func (b *fakeBroker) maybeFail() error {
	if b.failNext {
		b.failNext = false
		return fmt.Errorf("broker unavailable")
	}
	return nil
}

func (b *fakeBroker) BuyAt(qty, price float64, role Role) (Order, error) {
	if err := b.maybeFail(); err != nil {
		return nil, err
	}
	return b.newOrder(Buy, qty, price, role), nil
}
func (b *fakeBroker) SellAt(qty, price float64, role Role) (Order, error) {
	if err := b.maybeFail(); err != nil {
		return nil, err
	}
	return b.newOrder(Sell, -qty, price, role), nil
}
func (b *fakeBroker) BuyAtMarket(qty float64, role Role) (Order, error) {
	if err := b.maybeFail(); err != nil {
		return nil, err
	}
	return b.newOrder(Buy, qty, 0, role), nil
}
func (b *fakeBroker) SellAtMarket(qty float64, role Role) (Order, error) {
	if err := b.maybeFail(); err != nil {
		return nil, err
	}
	return b.newOrder(Sell, -qty, 0, role), nil
}
func (b *fakeBroker) StartProfitAt(side Side, qty, price float64, role Role) (Order, error) {
	if err := b.maybeFail(); err != nil {
		return nil, err
	}
	if side == Sell {
		qty = -qty
	}
	return b.newOrder(side, qty, price, role), nil
}
func (b *fakeBroker) StopLossAt(qty, price float64, role Role) (Order, error) {
	if err := b.maybeFail(); err != nil {
		return nil, err
	}
	return b.newOrder(Sell, -qty, price, role), nil
}
func (b *fakeBroker) ReducePositionAt(qty, price float64, role Role) (Order, error) {
	if err := b.maybeFail(); err != nil {
		return nil, err
	}
	return b.newOrder(Sell, -qty, price, role), nil
}
func (b *fakeBroker) CancelOrder(id string) error {
	b.cancelled = append(b.cancelled, id)
	return nil
}
func (b *fakeBroker) CancelAllOrders() error {
	b.cancelAll++
	return nil
}
func (b *fakeBroker) RoundPrice(ref, price float64) float64 { return price }
func (b *fakeBroker) RoundQty(ref, qty float64) float64     { return qty }

// fakeOrderStore is a minimal in-memory OrderStore.
type fakeOrderStore struct {
	activeCount int
	orders      []Order
	cleared     int
}

func (s *fakeOrderStore) CountActiveOrders(exchange, symbol string) int { return s.activeCount }
func (s *fakeOrderStore) GetOrders(exchange, symbol string) []Order     { return s.orders }
func (s *fakeOrderStore) ExecutePendingMarketOrders()                   {}
func (s *fakeOrderStore) ClearRoute(exchange, symbol string)            { s.cleared++ }

// fakeTradeStore is a minimal in-memory TradeStore.
type fakeTradeStore struct {
	trades []*CompletedTrade
}

func (s *fakeTradeStore) AddTrade(trade *CompletedTrade) { s.trades = append(s.trades, trade) }
func (s *fakeTradeStore) Count() int                     { return len(s.trades) }

// fakeCandleStore is a minimal in-memory CandleStore.
type fakeCandleStore struct {
	current Candle
	history []Candle
}

func (s *fakeCandleStore) CurrentCandle(exchange, symbol, timeframe string) Candle { return s.current }
func (s *fakeCandleStore) Candles(exchange, symbol, timeframe string) []Candle     { return s.history }

// fakeRuntime is a minimal Runtime backed by a fixed clock and deterministic
// sequential IDs.
type fakeRuntime struct {
	mode   Mode
	now    time.Time
	nextID int
}

func (r *fakeRuntime) Mode() Mode { return r.mode }
func (r *fakeRuntime) Now() time.Time { return r.now }
func (r *fakeRuntime) GenerateID() string {
	r.nextID++
	return fmt.Sprintf("id-%d", r.nextID)
}
func (r *fakeRuntime) SideToType(s Side) PositionType {
	if s == Buy {
		return Long
	}
	return Short
}
func (r *fakeRuntime) TypeToSide(t PositionType) Side {
	if t == Long {
		return Buy
	}
	return Sell
}

func unitTestRuntime() *fakeRuntime {
	return &fakeRuntime{mode: Mode{UnitTesting: true}, now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}
