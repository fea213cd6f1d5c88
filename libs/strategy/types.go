// Package strategy implements the per-route strategy execution core: the
// lifecycle state machine that drives a user-supplied trading strategy
// through entry evaluation, order placement, stop-loss/take-profit
// management, reconciliation of user-mutated intents, and completed-trade
// accounting.
//
// Indicator computation, candle storage, the broker's order-placement
// mechanics, exchange connectivity, and persistence are all external
// collaborators; only their interfaces live here.
package strategy

import "time"

// Side is the direction of an order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// PositionType is the directional stance of a position.
type PositionType string

const (
	Long  PositionType = "long"
	Short PositionType = "short"
	Flat  PositionType = "close"
)

// Role is the semantic classification of an order, assigned by the
// submitter at placement time and possibly reassigned by the classifier
// (C2) once the fill is known.
type Role string

const (
	RoleOpenPosition     Role = "open_position"
	RoleIncreasePosition Role = "increase_position"
	RoleReducePosition   Role = "reduce_position"
	RoleClosePosition    Role = "close_position"
)

// Order is the broker's read contract for a submitted order. Role is the
// only mutable field; everything else reflects what was submitted or filled.
type Order interface {
	ID() string
	Side() Side
	// Qty is signed: positive for BUY fills, negative for SELL fills.
	Qty() float64
	Price() float64
	Role() Role
	SetRole(Role)
	Exchange() string
	Symbol() string
	IsActive() bool
	IsQueued() bool
	IsExecuted() bool
}

// Position is the position ledger's read contract for one route. A
// Strategy observes it but never owns or mutates it directly, except via
// Close for an end-of-run liquidation.
type Position interface {
	Qty() float64
	Type() PositionType
	IsOpen() bool
	IsClose() bool
	EntryPrice() float64
	CurrentPrice() float64
	PnL() float64
	PnLPercentage() float64
	Close(price float64)
}

// Broker is the order-submission collaborator. Every call is tagged with
// the role the submitter intends (OPEN_POSITION or CLOSE_POSITION); the
// classifier (C2) may reassign that role once the fill is observed.
type Broker interface {
	BuyAt(qty, price float64, role Role) (Order, error)
	SellAt(qty, price float64, role Role) (Order, error)
	BuyAtMarket(qty float64, role Role) (Order, error)
	SellAtMarket(qty float64, role Role) (Order, error)
	// StartProfitAt submits a stop-entry order (a "stop" intended to start
	// a new position once price reaches it, not a protective stop on an
	// existing one).
	StartProfitAt(side Side, qty, price float64, role Role) (Order, error)
	StopLossAt(qty, price float64, role Role) (Order, error)
	ReducePositionAt(qty, price float64, role Role) (Order, error)
	CancelOrder(id string) error
	CancelAllOrders() error
	// RoundPrice/RoundQty apply exchange tick/lot-size rounding in live
	// mode, using ref (conventionally the first row's price in the table
	// being normalized) to pick the correct tick size.
	RoundPrice(ref, price float64) float64
	RoundQty(ref, qty float64) float64
}

// OrderStore is the shared, process-wide order book the strategy consults
// and mutates.
type OrderStore interface {
	CountActiveOrders(exchange, symbol string) int
	GetOrders(exchange, symbol string) []Order
	ExecutePendingMarketOrders()
	ClearRoute(exchange, symbol string)
}

// TradeStore accumulates completed trades across the whole run.
type TradeStore interface {
	AddTrade(trade *CompletedTrade)
	Count() int
}

// Candle is one OHLCV bar. The field order mirrors the original
// [timestamp, open, close, high, low, volume] layout exactly, since the
// distilled spec calls that layout out by index.
type Candle struct {
	Timestamp int64
	Open      float64
	Close     float64
	High      float64
	Low       float64
	Volume    float64
}

// CandleStore is the shared candle collaborator.
type CandleStore interface {
	CurrentCandle(exchange, symbol, timeframe string) Candle
	Candles(exchange, symbol, timeframe string) []Candle
}

// Mode carries the runtime's mode flags. Exactly one of Live/Backtesting/
// UnitTesting is normally true; TestDriving and Debugging can combine with
// Live.
type Mode struct {
	Live             bool
	Backtesting      bool
	UnitTesting      bool
	TestDriving      bool
	Debugging        bool
	ExecuteSilently  bool
}

// Runtime bundles the mode flags, clock, and id/side conversion helpers the
// original consumed as free functions on its `jh` helper module.
type Runtime interface {
	Mode() Mode
	Now() time.Time
	GenerateID() string
	SideToType(Side) PositionType
	TypeToSide(PositionType) Side
}
