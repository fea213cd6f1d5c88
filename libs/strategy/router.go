package strategy

// RouteEvent is one of the lifecycle events a strategy broadcasts to its
// peers over the Router.
type RouteEvent string

const (
	EventOpenPosition      RouteEvent = "route-open-position"
	EventStopLoss          RouteEvent = "route-stop-loss"
	EventTakeProfit        RouteEvent = "route-take-profit"
	EventIncreasedPosition RouteEvent = "route-increased-position"
	EventReducedPosition   RouteEvent = "route-reduced-position"
	EventCanceled          RouteEvent = "route-canceled"
)

// Router fans lifecycle events out to every registered strategy other
// than the one that fired it. It is the multi-route bus (C6): strategies
// trading correlated routes (e.g. a hedge pair) register on the same
// Router and react to each other's entries/exits via the On Route* hooks.
type Router struct {
	routes []*Strategy
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{}
}

// Register adds s to the router in call order. Broadcast fan-out visits
// routes in this same order, skipping s itself.
func (r *Router) Register(s *Strategy) {
	r.routes = append(r.routes, s)
	s.router = r
}

// broadcast is synchronous, serial, and runs in registration order,
// skipping the strategy that raised msg. Critically, every peer's
// reconciler runs after every message it receives — not just some message
// types — matching the original's _broadcast loop, which calls
// _detect_and_handle_entry_and_exit_modifications unconditionally at the
// end of each iteration regardless of which branch fired.
func (r *Router) broadcast(self *Strategy, event RouteEvent) error {
	for _, peer := range r.routes {
		if peer == self {
			continue
		}

		switch event {
		case EventOpenPosition:
			if peer.hooks.OnRouteOpenPosition != nil {
				peer.hooks.OnRouteOpenPosition(peer, self)
			}
		case EventStopLoss:
			if peer.hooks.OnRouteStopLoss != nil {
				peer.hooks.OnRouteStopLoss(peer, self)
			}
		case EventTakeProfit:
			if peer.hooks.OnRouteTakeProfit != nil {
				peer.hooks.OnRouteTakeProfit(peer, self)
			}
		case EventIncreasedPosition:
			if peer.hooks.OnRouteIncreasedPosition != nil {
				peer.hooks.OnRouteIncreasedPosition(peer, self)
			}
		case EventReducedPosition:
			if peer.hooks.OnRouteReducedPosition != nil {
				peer.hooks.OnRouteReducedPosition(peer, self)
			}
		case EventCanceled:
			if peer.hooks.OnRouteCanceled != nil {
				peer.hooks.OnRouteCanceled(peer, self)
			}
		}

		if err := peer.detectAndHandleModifications(); err != nil {
			return err
		}
	}
	return nil
}
