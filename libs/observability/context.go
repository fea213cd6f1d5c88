package observability

import "context"

type contextKey string

const (
	routeIDKey    contextKey = "route_id"
	strategyIDKey contextKey = "strategy_id"
	symbolKey     contextKey = "symbol"
	tradeIDKey    contextKey = "trade_id"
)

// RunInfo carries route identity through a context so LogEvent can tag every
// line without every call site threading the route's fields by hand.
// RouteID identifies the (exchange, symbol, timeframe) route. StrategyID is
// the strategy instance bound to that route. TradeID is the in-flight
// CompletedTrade's id, set once a position opens and cleared on close.
type RunInfo struct {
	RouteID    string
	StrategyID string
	Symbol     string
	TradeID    string
}

func WithRunInfo(ctx context.Context, info RunInfo) context.Context {
	if info.RouteID != "" {
		ctx = context.WithValue(ctx, routeIDKey, info.RouteID)
	}
	if info.StrategyID != "" {
		ctx = context.WithValue(ctx, strategyIDKey, info.StrategyID)
	}
	if info.Symbol != "" {
		ctx = context.WithValue(ctx, symbolKey, info.Symbol)
	}
	if info.TradeID != "" {
		ctx = context.WithValue(ctx, tradeIDKey, info.TradeID)
	}
	return ctx
}

func RunInfoFromContext(ctx context.Context) RunInfo {
	info := RunInfo{}
	if value := ctx.Value(routeIDKey); value != nil {
		if v, ok := value.(string); ok {
			info.RouteID = v
		}
	}
	if value := ctx.Value(strategyIDKey); value != nil {
		if v, ok := value.(string); ok {
			info.StrategyID = v
		}
	}
	if value := ctx.Value(symbolKey); value != nil {
		if v, ok := value.(string); ok {
			info.Symbol = v
		}
	}
	if value := ctx.Value(tradeIDKey); value != nil {
		if v, ok := value.(string); ok {
			info.TradeID = v
		}
	}
	return info
}

// WithTradeID attaches a trade_id to the context for the duration of a
// position's lifetime (OPEN through CLOSE).
func WithTradeID(ctx context.Context, tradeID string) context.Context {
	if tradeID == "" {
		return ctx
	}
	return context.WithValue(ctx, tradeIDKey, tradeID)
}

// TradeIDFromContext retrieves the trade_id set by WithTradeID.
func TradeIDFromContext(ctx context.Context) string {
	if v := ctx.Value(tradeIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
