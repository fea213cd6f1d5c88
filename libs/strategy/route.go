package strategy

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"jax-strategy-core/libs/metrics"
	"jax-strategy-core/libs/observability"
	"jax-strategy-core/libs/resilience"
)

// Config bundles a Strategy's identity and external collaborators. All
// fields except HP, Metrics, and Sleeper are required.
type Config struct {
	Name      string
	Exchange  string
	Symbol    string
	Timeframe string
	HP        any

	Position    Position
	Broker      Broker
	OrderStore  OrderStore
	TradeStore  TradeStore
	CandleStore CandleStore
	Runtime     Runtime

	// Metrics is optional; when nil, no counters are incremented.
	Metrics *metrics.Collector

	// Sleeper overrides the live-mode cancellation wait's sleep function.
	// Production code leaves it nil; tests inject a no-op to avoid
	// burning wall-clock time.
	Sleeper resilience.Sleeper
}

// Strategy is the per-route lifecycle state machine: C1-C8 of the
// execution core, operating on one struct because the components share
// mutable state and cannot be usefully versioned apart (intents, their
// effective snapshots, and the order baskets that connect them all mutate
// together on every tick).
type Strategy struct {
	ID        string
	Name      string
	Exchange  string
	Symbol    string
	Timeframe string
	HP        any

	index int
	vars  map[string]any

	// Desired intents, user-writable via SetBuy/SetSell/SetStopLoss/
	// SetTakeProfit from within hooks.
	buy, sell, stopLoss, takeProfit Table

	// Effective snapshots: the last normalized value the lifecycle has
	// acted on. Used by the reconciler to detect a user mutation between
	// ticks. nil means "not yet set", distinct from Table{}.
	effBuy, effSell, effStopLoss, effTakeProfit Table

	// Running logs used to compute the VWAP stop-loss/take-profit prices
	// on trade close; rebuilt whenever the reconciler resubmits a basket.
	logStopLoss, logTakeProfit Table

	openOrders       []Order
	stopLossOrders   []Order
	takeProfitOrders []Order

	initialQty    float64
	hasInitialQty bool

	executing sync.Mutex
	isInitiated bool

	trade       *CompletedTrade
	tradesCount int

	position    Position
	broker      Broker
	brokerCB    *resilience.BrokerWrapper
	orderStore  OrderStore
	tradeStore  TradeStore
	candleStore CandleStore
	runtime     Runtime
	router      *Router
	hooks       Hooks
	metrics     *metrics.Collector
	sleeper     resilience.Sleeper
}

// New constructs a Strategy. Required hooks (GoLong, GoShort, ShouldLong,
// ShouldShort, ShouldCancel) are validated immediately.
func New(cfg Config, hooks Hooks) (*Strategy, error) {
	if err := hooks.validate(); err != nil {
		return nil, fmt.Errorf("constructing strategy %q: %w", cfg.Name, err)
	}

	s := &Strategy{
		ID:          cfg.Runtime.GenerateID(),
		Name:        cfg.Name,
		Exchange:    cfg.Exchange,
		Symbol:      cfg.Symbol,
		Timeframe:   cfg.Timeframe,
		HP:          cfg.HP,
		vars:        make(map[string]any),
		position:    cfg.Position,
		broker:      cfg.Broker,
		brokerCB:    resilience.NewBrokerWrapper(fmt.Sprintf("%s-%s-%s", cfg.Exchange, cfg.Symbol, cfg.Timeframe)),
		orderStore:  cfg.OrderStore,
		tradeStore:  cfg.TradeStore,
		candleStore: cfg.CandleStore,
		runtime:     cfg.Runtime,
		hooks:       hooks,
		metrics:     cfg.Metrics,
		sleeper:     cfg.Sleeper,
	}
	return s, nil
}

// SetBuy/SetSell/SetStopLoss/SetTakeProfit normalize and assign an intent.
// Called from within GoLong/GoShort/UpdatePosition hooks; accept a single
// Row, a []Row, a [2]float64, a [][2]float64, or an already-normalized
// Table.
func (s *Strategy) SetBuy(value any) error        { return s.setIntent(&s.buy, value, "buy") }
func (s *Strategy) SetSell(value any) error       { return s.setIntent(&s.sell, value, "sell") }
func (s *Strategy) SetStopLoss(value any) error   { return s.setIntent(&s.stopLoss, value, "stop_loss") }
func (s *Strategy) SetTakeProfit(value any) error { return s.setIntent(&s.takeProfit, value, "take_profit") }

func (s *Strategy) setIntent(field *Table, value any, name string) error {
	table, err := Normalize(value, name)
	if err != nil {
		return err
	}
	if s.runtime.Mode().Live && len(table) > 0 {
		table = roundedFor(table, s.broker, table[0].Price())
	}
	*field = table
	return nil
}

func (s *Strategy) Buy() Table        { return s.buy }
func (s *Strategy) Sell() Table        { return s.sell }
func (s *Strategy) StopLoss() Table   { return s.stopLoss }
func (s *Strategy) TakeProfit() Table { return s.takeProfit }

// Execute runs one tick: Prepare hook, then check(). Re-entrant calls
// (e.g. the host driving Execute from a timer while a previous tick is
// still running) are no-ops, matching the original's _is_executing flag
// but expressed with a mutex TryLock so the same guarantee holds if the
// host ever drives routes from multiple goroutines.
func (s *Strategy) Execute(ctx context.Context) error {
	if !s.executing.TryLock() {
		return nil
	}
	defer s.executing.Unlock()

	if s.hooks.Prepare != nil {
		s.hooks.Prepare(s)
	}

	if err := s.check(ctx); err != nil {
		return err
	}

	s.index++
	if s.metrics != nil {
		s.metrics.TicksTotal.Inc()
	}
	return nil
}

func (s *Strategy) check(ctx context.Context) error {
	s.isInitiated = true

	if s.runtime.Mode().TestDriving && s.tradeStore.Count() >= 2 {
		observability.LogEvent(ctx, "info", "test-drive-limit-reached", nil)
		return nil
	}

	if len(s.openOrders) != 0 && s.hooks.ShouldCancel(s) {
		if err := s.executeCancel(ctx); err != nil {
			return err
		}

		if s.runtime.Mode().Live {
			if err := s.awaitCancellation(ctx); err != nil {
				return err
			}
		}
	}

	if s.position.IsOpen() {
		if err := s.updatePosition(); err != nil {
			return err
		}
	}

	if s.runtime.Mode().Backtesting || s.runtime.Mode().UnitTesting {
		s.orderStore.ExecutePendingMarketOrders()
	}

	if s.position.IsClose() && len(s.openOrders) == 0 {
		shouldLong := s.hooks.ShouldLong(s)
		shouldShort := s.hooks.ShouldShort(s)
		if err := validateConflictingDirection(shouldLong, shouldShort); err != nil {
			return err
		}

		if shouldLong {
			if err := s.executeLong(ctx); err != nil {
				return err
			}
		}
		if shouldShort {
			if err := s.executeShort(ctx); err != nil {
				return err
			}
		}
	}

	return nil
}

// awaitCancellation waits for the exchange to confirm a cancellation in
// live mode: an initial 100ms delay, then up to 20 polls 200ms apart. The
// constants live here, at the call site, rather than inside
// resilience.AwaitUntil, per the design note on keeping wait policy
// visible to the component that owns the SLA.
func (s *Strategy) awaitCancellation(ctx context.Context) error {
	confirmed := resilience.AwaitUntil(ctx, func() bool {
		return s.orderStore.CountActiveOrders(s.Exchange, s.Symbol) == 0
	}, 100*time.Millisecond, 200*time.Millisecond, 20, s.sleeper)

	if !confirmed {
		return fmt.Errorf("cancellation not confirmed for %s-%s: %w", s.Exchange, s.Symbol, ErrExchangeNotResponding)
	}
	return nil
}

func (s *Strategy) updatePosition() error {
	if s.hooks.UpdatePosition != nil {
		s.hooks.UpdatePosition(s)
	}
	return s.detectAndHandleModifications()
}

// executeLong runs the GoLong hook, validates the resulting buy intent,
// normalizes it and the optional stop-loss/take-profit, runs filters, and
// submits the entry orders.
func (s *Strategy) executeLong(ctx context.Context) error {
	s.hooks.GoLong(s)

	if err := validateEntryShape(s.buy, "buy"); err != nil {
		return err
	}

	s.effBuy = s.buy

	if s.takeProfit != nil {
		if err := validateTakeProfitShape(s.takeProfit); err != nil {
			return err
		}
		s.effTakeProfit = s.takeProfit
		s.logTakeProfit = s.takeProfit
	}
	if s.stopLoss != nil {
		if err := validateStopLossShape(s.stopLoss); err != nil {
			return err
		}
		s.effStopLoss = s.stopLoss
		s.logStopLoss = s.stopLoss
	}

	if rejected := s.runFilters(ctx); rejected {
		s.reset()
		return nil
	}

	return s.submitEntry(ctx, Buy, s.buy)
}

// executeShort mirrors executeLong for a short entry.
func (s *Strategy) executeShort(ctx context.Context) error {
	s.hooks.GoShort(s)

	if err := validateEntryShape(s.sell, "sell"); err != nil {
		return err
	}

	s.effSell = s.sell

	if s.takeProfit != nil {
		if err := validateTakeProfitShape(s.takeProfit); err != nil {
			return err
		}
		s.effTakeProfit = s.takeProfit
		s.logTakeProfit = s.takeProfit
	}
	if s.stopLoss != nil {
		if err := validateStopLossShape(s.stopLoss); err != nil {
			return err
		}
		s.effStopLoss = s.stopLoss
		s.logStopLoss = s.stopLoss
	}

	if rejected := s.runFilters(ctx); rejected {
		s.reset()
		return nil
	}

	return s.submitEntry(ctx, Sell, s.sell)
}

func (s *Strategy) runFilters(ctx context.Context) (rejected bool) {
	for _, f := range s.hooks.Filters {
		if !f.Run(s) {
			observability.LogFilterRejected(ctx, f.Name)
			if s.metrics != nil {
				s.metrics.FilterRejectionsTotal.WithLabelValues(f.Name).Inc()
			}
			return true
		}
	}
	return false
}

func (s *Strategy) submitEntry(ctx context.Context, side Side, table Table) error {
	mark := s.Price()
	for _, row := range table {
		order, err := s.withBreaker(ctx, func() (Order, error) {
			return submitEntryOrder(s.broker, side, row.Qty(), row.Price(), mark, RoleOpenPosition)
		})
		if err != nil {
			return fmt.Errorf("submitting entry order: %w", err)
		}
		s.openOrders = append(s.openOrders, order)
	}
	return nil
}

// withBreaker routes one broker call through the route's circuit breaker
// so a failing exchange connection trips the breaker instead of the
// strategy retrying into it tick after tick.
func (s *Strategy) withBreaker(ctx context.Context, fn func() (Order, error)) (Order, error) {
	result, err := s.brokerCB.Execute(ctx, func() (any, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return result.(Order), nil
}

// executeCancel cancels every active/queued order and resets the
// strategy's intent state so it can keep looking for fresh entries. Per
// the original, it is an invariant violation to call this while a
// position is open — the reconciler, not the canceller, owns mutating an
// open position's orders.
func (s *Strategy) executeCancel(ctx context.Context) error {
	if err := validateCancelAllowed(s.position); err != nil {
		return err
	}

	if _, err := s.brokerCB.Execute(ctx, func() (any, error) {
		return nil, s.broker.CancelAllOrders()
	}); err != nil {
		return fmt.Errorf("cancelling all orders: %w", err)
	}

	s.reset()
	observability.LogEvent(ctx, "info", "orders-cancelled", nil)

	if s.router != nil {
		if err := s.router.broadcast(s, EventCanceled); err != nil {
			return err
		}
	}
	if s.hooks.OnCancel != nil {
		s.hooks.OnCancel(s)
	}
	if s.metrics != nil {
		s.metrics.CancellationsTotal.Inc()
	}

	if !s.runtime.Mode().UnitTesting && !s.runtime.Mode().Live {
		s.orderStore.ClearRoute(s.Exchange, s.Symbol)
	}

	return nil
}

func (s *Strategy) reset() {
	s.buy, s.sell, s.stopLoss, s.takeProfit = nil, nil, nil, nil
	s.effBuy, s.effSell, s.effStopLoss, s.effTakeProfit = nil, nil, nil, nil
	s.logStopLoss, s.logTakeProfit = nil, nil
	s.openOrders = nil
	s.stopLossOrders = nil
	s.takeProfitOrders = nil
	s.hasInitialQty = false
}

// OnUpdatedPosition handles one executed order: reclassifies its role
// against the current position state (C2), logs it onto the in-flight
// trade (C7), and dispatches the matching lifecycle callback. It assumes
// the position has already been updated by the fill.
func (s *Strategy) OnUpdatedPosition(ctx context.Context, order Order) error {
	role := reclassify(order, s.position)

	s.logStep(order, role)
	observability.LogLifecycle(ctx, string(role), order.ID(), order.Qty(), order.Price())

	switch {
	case role == RoleOpenPosition:
		return s.onOpenPosition(ctx)
	case role == RoleClosePosition && inBasket(order, s.takeProfitOrders):
		return s.onTakeProfit(ctx)
	case role == RoleClosePosition && inBasket(order, s.stopLossOrders):
		return s.onStopLoss(ctx)
	case role == RoleIncreasePosition:
		return s.onIncreasedPosition(ctx)
	case role == RoleReducePosition:
		return s.onReducedPosition(ctx)
	}
	return nil
}

func (s *Strategy) onOpenPosition(ctx context.Context) error {
	observability.LogEvent(ctx, "info", "position-opened", nil)

	if s.router != nil {
		if err := s.router.broadcast(s, EventOpenPosition); err != nil {
			return err
		}
	}

	isLong := s.IsLong()
	entryPrice := s.position.EntryPrice()

	for _, row := range s.takeProfit {
		if err := validateTakeProfitDirection(Table{row}, isLong, entryPrice); err != nil {
			return err
		}
		order, err := submitInitialTakeProfit(s.broker, row.Qty(), row.Price())
		if err != nil {
			return fmt.Errorf("submitting take-profit order: %w", err)
		}
		s.takeProfitOrders = append(s.takeProfitOrders, order)
	}

	for _, row := range s.stopLoss {
		if err := validateStopLossDirection(Table{row}, isLong, entryPrice); err != nil {
			return err
		}
		order, err := submitInitialStopLoss(s.broker, row.Qty(), row.Price())
		if err != nil {
			return fmt.Errorf("submitting stop-loss order: %w", err)
		}
		s.stopLossOrders = append(s.stopLossOrders, order)
	}

	s.openOrders = nil
	s.initialQty = s.position.Qty()
	s.hasInitialQty = true

	if s.hooks.OnOpenPosition != nil {
		s.hooks.OnOpenPosition(s)
	}
	if s.metrics != nil {
		s.metrics.OrdersSubmittedTotal.WithLabelValues(string(RoleOpenPosition)).Inc()
	}
	if err := s.detectAndHandleModifications(); err != nil {
		return err
	}
	return nil
}

func (s *Strategy) onStopLoss(ctx context.Context) error {
	if !s.runtime.Mode().ExecuteSilently || s.runtime.Mode().Debugging {
		observability.LogEvent(ctx, "info", "stop-loss-executed", nil)
	}

	if s.router != nil {
		if err := s.router.broadcast(s, EventStopLoss); err != nil {
			return err
		}
	}
	if err := s.executeCancel(ctx); err != nil {
		return err
	}
	if s.hooks.OnStopLoss != nil {
		s.hooks.OnStopLoss(s)
	}
	if s.metrics != nil {
		s.metrics.TradesClosedTotal.Inc()
	}
	if err := s.detectAndHandleModifications(); err != nil {
		return err
	}
	return nil
}

func (s *Strategy) onTakeProfit(ctx context.Context) error {
	if !s.runtime.Mode().ExecuteSilently || s.runtime.Mode().Debugging {
		observability.LogEvent(ctx, "info", "take-profit-executed", nil)
	}

	if s.router != nil {
		if err := s.router.broadcast(s, EventTakeProfit); err != nil {
			return err
		}
	}
	if err := s.executeCancel(ctx); err != nil {
		return err
	}
	if s.hooks.OnTakeProfit != nil {
		s.hooks.OnTakeProfit(s)
	}
	if s.metrics != nil {
		s.metrics.TradesClosedTotal.Inc()
	}
	if err := s.detectAndHandleModifications(); err != nil {
		return err
	}
	return nil
}

func (s *Strategy) onIncreasedPosition(ctx context.Context) error {
	if !s.runtime.Mode().ExecuteSilently || s.runtime.Mode().Debugging {
		observability.LogEvent(ctx, "info", "position-increased", nil)
	}

	s.openOrders = nil

	if s.router != nil {
		if err := s.router.broadcast(s, EventIncreasedPosition); err != nil {
			return err
		}
	}
	if s.hooks.OnIncreasedPosition != nil {
		s.hooks.OnIncreasedPosition(s)
	}
	if err := s.detectAndHandleModifications(); err != nil {
		return err
	}
	return nil
}

func (s *Strategy) onReducedPosition(ctx context.Context) error {
	if !s.runtime.Mode().ExecuteSilently || s.runtime.Mode().Debugging {
		observability.LogEvent(ctx, "info", "position-reduced", nil)
	}

	s.openOrders = nil

	if s.router != nil {
		if err := s.router.broadcast(s, EventReducedPosition); err != nil {
			return err
		}
	}
	if s.hooks.OnReducedPosition != nil {
		s.hooks.OnReducedPosition(s)
	}
	if err := s.detectAndHandleModifications(); err != nil {
		return err
	}
	return nil
}

// Terminate runs end-of-run cleanup: the user Terminate hook, a final
// reconciliation pass, and (outside live mode) a mark-to-market close of
// any still-open position or cancellation of any still-pending entry
// orders, matching the original's _terminate wind-down for a finished
// backtest.
func (s *Strategy) Terminate(ctx context.Context) error {
	if !s.runtime.Mode().ExecuteSilently || s.runtime.Mode().Debugging {
		observability.LogEvent(ctx, "info", "terminating-strategy", nil)
	}

	if s.hooks.Terminate != nil {
		s.hooks.Terminate(s)
	}

	if err := s.detectAndHandleModifications(); err != nil {
		return err
	}

	if !s.runtime.Mode().Live {
		s.orderStore.ExecutePendingMarketOrders()
	}

	if s.runtime.Mode().Live {
		return nil
	}

	if s.position.IsOpen() {
		s.position.Close(s.position.CurrentPrice())
		return s.executeCancel(ctx)
	}

	if len(s.openOrders) != 0 {
		return s.executeCancel(ctx)
	}

	return nil
}

// Liquidate closes the open position at market by routing through the
// take-profit or stop-loss field, whichever currently applies: a
// profitable position is closed as if its take-profit had been hit, a
// losing one as if its stop-loss had.
func (s *Strategy) Liquidate() error {
	if s.position.IsClose() {
		return nil
	}

	if s.position.PnL() > 0 {
		return s.SetTakeProfit(Row{s.position.Qty(), s.Price()})
	}
	return s.SetStopLoss(Row{s.position.Qty(), s.Price()})
}

// --- read-only accessors (§6) ---

func (s *Strategy) CurrentCandle() Candle {
	return s.candleStore.CurrentCandle(s.Exchange, s.Symbol, s.Timeframe)
}

func (s *Strategy) Candles() []Candle {
	return s.candleStore.Candles(s.Exchange, s.Symbol, s.Timeframe)
}

func (s *Strategy) Open() float64  { return s.CurrentCandle().Open }
func (s *Strategy) Close() float64 { return s.CurrentCandle().Close }
func (s *Strategy) High() float64  { return s.CurrentCandle().High }
func (s *Strategy) Low() float64   { return s.CurrentCandle().Low }

// Price is the position's current mark price as reported by the Position
// ledger's CurrentPrice; no rounding is applied here.
func (s *Strategy) Price() float64 { return s.position.CurrentPrice() }

func (s *Strategy) Orders() []Order {
	return s.orderStore.GetOrders(s.Exchange, s.Symbol)
}

func (s *Strategy) Time() time.Time { return s.runtime.Now() }

func (s *Strategy) IsLong() bool  { return s.position.Type() == Long }
func (s *Strategy) IsShort() bool { return s.position.Type() == Short }
func (s *Strategy) IsOpen() bool  { return s.position.IsOpen() }
func (s *Strategy) IsClose() bool { return s.position.IsClose() }

// IsReduced/IsIncreased report whether the position's size has moved
// since it was opened, comparing absolute quantities so a signed short
// position is handled the same as a long one. Neither is meaningful while
// flat.
func (s *Strategy) IsReduced() (bool, bool) {
	if s.position.IsClose() || !s.hasInitialQty {
		return false, false
	}
	return math.Abs(s.position.Qty()) < math.Abs(s.initialQty), true
}

func (s *Strategy) IsIncreased() (bool, bool) {
	if s.position.IsClose() || !s.hasInitialQty {
		return false, false
	}
	return math.Abs(s.position.Qty()) > math.Abs(s.initialQty), true
}

// AverageStopLoss/AverageTakeProfit/AverageEntryPrice read VWAP over the
// effective tables, erroring if accessed before the corresponding intent
// was set, mirroring the original's average_* properties. While flat,
// AverageEntryPrice reads the desired buy/sell table of whichever
// direction ShouldLong/ShouldShort currently reports.
func (s *Strategy) AverageStopLoss() (float64, error) {
	if s.effStopLoss == nil {
		return 0, fmt.Errorf("cannot access average stop-loss before setting stop_loss: %w", ErrInvalidStrategy)
	}
	return VWAP(s.effStopLoss), nil
}

func (s *Strategy) AverageTakeProfit() (float64, error) {
	if s.effTakeProfit == nil {
		return 0, fmt.Errorf("cannot access average take-profit before setting take_profit: %w", ErrInvalidStrategy)
	}
	return VWAP(s.effTakeProfit), nil
}

func (s *Strategy) AverageEntryPrice() (float64, error) {
	var table Table
	switch {
	case s.IsLong():
		table = s.effBuy
	case s.IsShort():
		table = s.effSell
	case s.hooks.ShouldLong(s):
		table = s.buy
	case s.hooks.ShouldShort(s):
		table = s.sell
	default:
		return 0, fmt.Errorf("no active or pending entry direction: %w", ErrInvalidStrategy)
	}
	if table == nil {
		return 0, fmt.Errorf("entry intent not set: %w", ErrInvalidStrategy)
	}
	return VWAP(table), nil
}

func (s *Strategy) SharedVars() map[string]any { return s.vars }

func (s *Strategy) WatchList() []WatchItem {
	if s.hooks.WatchList == nil {
		return nil
	}
	return s.hooks.WatchList(s)
}

func (s *Strategy) TradesCount() int { return s.tradesCount }
func (s *Strategy) Index() int       { return s.index }

// HyperParameters returns this strategy's tunable parameter descriptors,
// or nil if it doesn't declare any.
func (s *Strategy) HyperParameters() []HyperParameter {
	if s.hooks.HyperParameters == nil {
		return nil
	}
	return s.hooks.HyperParameters()
}
