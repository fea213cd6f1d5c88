package strategy

// Hooks is the capability record a concrete strategy implementation
// provides to New. It replaces the abstract-method subclassing the
// original Python base class used: required hooks are validated non-nil
// at construction, optional ones are nil-checked before being called so a
// strategy can leave them out entirely.
//
// GoLong/GoShort/ShouldLong/ShouldShort/ShouldCancel are required; every
// other field is optional and defaults to a no-op.
type Hooks struct {
	// GoLong/GoShort set the Buy/Sell (and optionally StopLoss/
	// TakeProfit) intents on the strategy when an entry is being
	// evaluated. Required.
	GoLong  func(s *Strategy)
	GoShort func(s *Strategy)

	// ShouldLong/ShouldShort/ShouldCancel gate entry and cancellation.
	// Required.
	ShouldLong   func(s *Strategy) bool
	ShouldShort  func(s *Strategy) bool
	ShouldCancel func(s *Strategy) bool

	// Filters run after GoLong/GoShort set the entry intents and before
	// any order is submitted; a filter returning false aborts the entry
	// silently (the candidate resets, no error). Optional.
	Filters []Filter

	// Prepare runs at the top of every Execute() call. Optional.
	Prepare func(s *Strategy)

	// UpdatePosition runs once per tick while the position is open, before
	// reconciliation. Optional.
	UpdatePosition func(s *Strategy)

	// Lifecycle callbacks. All optional.
	OnOpenPosition       func(s *Strategy)
	OnCancel             func(s *Strategy)
	OnStopLoss           func(s *Strategy)
	OnTakeProfit         func(s *Strategy)
	OnIncreasedPosition  func(s *Strategy)
	OnReducedPosition    func(s *Strategy)

	// Multi-route broadcast listeners. All optional.
	OnRouteOpenPosition      func(s *Strategy, peer *Strategy)
	OnRouteStopLoss          func(s *Strategy, peer *Strategy)
	OnRouteTakeProfit        func(s *Strategy, peer *Strategy)
	OnRouteIncreasedPosition func(s *Strategy, peer *Strategy)
	OnRouteReducedPosition   func(s *Strategy, peer *Strategy)
	OnRouteCanceled          func(s *Strategy, peer *Strategy)

	// Terminate runs once at the end of a run (backtest wind-down).
	// Optional.
	Terminate func(s *Strategy)

	// WatchList returns key/value pairs for host-side display. Optional.
	WatchList func(s *Strategy) []WatchItem

	// HyperParameters returns the tunable parameter descriptors for this
	// strategy. Optional.
	HyperParameters func() []HyperParameter
}

// Filter is a named pre-flight gate checked right before order submission
// on entry. Name is used in rejection logging and the filter-rejections
// metric.
type Filter struct {
	Name string
	Run  func(s *Strategy) bool
}

// WatchItem is one key/value pair returned by a strategy's WatchList hook.
type WatchItem struct {
	Key   string
	Value any
}

// HyperParameter describes one tunable strategy parameter.
type HyperParameter struct {
	Name    string
	Default any
}

func (h Hooks) validate() error {
	if h.GoLong == nil || h.GoShort == nil {
		return ErrInvalidStrategy
	}
	if h.ShouldLong == nil || h.ShouldShort == nil || h.ShouldCancel == nil {
		return ErrInvalidStrategy
	}
	return nil
}
