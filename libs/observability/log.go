package observability

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"
)

var logger = log.New(os.Stdout, "", 0)

// LogEvent writes one structured JSON line to stdout, enriched with whatever
// route identity has been attached to ctx via WithRunInfo.
func LogEvent(ctx context.Context, level string, event string, fields map[string]any) {
	payload := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339),
		"level": level,
		"event": event,
	}

	info := RunInfoFromContext(ctx)
	if info.RouteID != "" {
		payload["route_id"] = info.RouteID
	}
	if info.StrategyID != "" {
		payload["strategy_id"] = info.StrategyID
	}
	if info.Symbol != "" {
		payload["symbol"] = info.Symbol
	}
	if info.TradeID != "" {
		payload["trade_id"] = info.TradeID
	}

	for key, value := range normalizeFields(fields) {
		payload[key] = value
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Printf("{\"level\":\"error\",\"event\":\"log_marshal_failed\",\"error\":%q}", err.Error())
		return
	}
	logger.Print(string(raw))
}

// LogLifecycle logs one executed order's lifecycle role (open/increase/
// reduce/close) together with the order that triggered it.
func LogLifecycle(ctx context.Context, event string, orderID string, qty, price float64) {
	LogEvent(ctx, "info", event, map[string]any{
		"order_id": orderID,
		"qty":      qty,
		"price":    price,
	})
}

// LogFilterRejected records a filter() rejection. Not an error: the candidate
// entry is silently abandoned for this tick.
func LogFilterRejected(ctx context.Context, filterName string) {
	LogEvent(ctx, "info", "filter_rejected", map[string]any{
		"filter": filterName,
	})
}

func normalizeFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if err, ok := value.(error); ok {
			out[key] = err.Error()
			continue
		}
		out[key] = value
	}
	return out
}
