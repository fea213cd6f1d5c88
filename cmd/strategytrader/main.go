package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jax-strategy-core/libs/metrics"
	"jax-strategy-core/libs/strategy"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	version   = "0.1.0"
	startTime = time.Now()
)

type config struct {
	Port         string
	Symbol       string
	Timeframe    string
	Ticks        int
	FastPeriod   int
	SlowPeriod   int
	RiskMultiple float64
	Seed         int64
}

func main() {
	portFlag := flag.String("port", "", "HTTP port for /health and /metrics (defaults to PORT env or 8090)")
	ticksFlag := flag.Int("ticks", 0, "number of synthetic candles to run (defaults to TICKS env or 500)")
	flag.Parse()

	cfg := loadConfig(*portFlag, *ticksFlag)

	log.Printf("starting strategytrader v%s", version)
	log.Printf("symbol=%s timeframe=%s ticks=%d fast=%d slow=%d risk=%.2fx",
		cfg.Symbol, cfg.Timeframe, cfg.Ticks, cfg.FastPeriod, cfg.SlowPeriod, cfg.RiskMultiple)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)

	route, broker, candles, trades := newPaperRoute(cfg, collector)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth())
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		log.Printf("HTTP server listening on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	go runBacktest(ctx, cfg, route, broker, candles)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("shutdown signal received, gracefully stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	log.Printf("strategytrader stopped after %d trades", trades.Count())
}

func loadConfig(portFlag string, ticksFlag int) config {
	cfg := config{
		Port:         getEnv("PORT", "8090"),
		Symbol:       getEnv("SYMBOL", "BTC-USDT"),
		Timeframe:    getEnv("TIMEFRAME", "1h"),
		Ticks:        parseIntEnv("TICKS", 500),
		FastPeriod:   parseIntEnv("FAST_PERIOD", 10),
		SlowPeriod:   parseIntEnv("SLOW_PERIOD", 30),
		RiskMultiple: parseFloatEnv("RISK_MULTIPLE", 1.5),
		Seed:         int64(parseIntEnv("SEED", 42)),
	}
	if portFlag != "" {
		cfg.Port = portFlag
	}
	if ticksFlag != 0 {
		cfg.Ticks = ticksFlag
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		log.Printf("warning: invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func parseFloatEnv(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var f float64
	if _, err := fmt.Sscanf(v, "%f", &f); err != nil {
		log.Printf("warning: invalid %s=%q, using default %.2f", key, v, fallback)
		return fallback
	}
	return f
}

func handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","uptime_seconds":%.0f}`, time.Since(startTime).Seconds())
	}
}

// newPaperRoute wires a Strategy running the moving-average crossover
// worked example against an in-memory paper broker.
func newPaperRoute(cfg config, collector *metrics.Collector) (*strategy.Strategy, *paperBroker, *paperCandleStore, *paperTradeStore) {
	position := &paperPosition{typ: strategy.Flat}
	candles := &paperCandleStore{}
	trades := &paperTradeStore{}
	broker := &paperBroker{route: cfg.Symbol, position: position}
	runtime := &paperRuntime{}

	fastSMA := func(s *strategy.Strategy) float64 { return sma(s.Candles(), cfg.FastPeriod) }
	slowSMA := func(s *strategy.Strategy) float64 { return sma(s.Candles(), cfg.SlowPeriod) }
	atr := func(s *strategy.Strategy) float64 { return averageTrueRange(s.Candles(), 14) }

	hooks := strategy.NewMACrossoverHooks(fastSMA, slowSMA, atr, cfg.RiskMultiple)

	route, err := strategy.New(strategy.Config{
		Name:        "ma-crossover-demo",
		Exchange:    "paper",
		Symbol:      cfg.Symbol,
		Timeframe:   cfg.Timeframe,
		Position:    position,
		Broker:      broker,
		OrderStore:  paperOrderStore{},
		TradeStore:  trades,
		CandleStore: candles,
		Runtime:     runtime,
		Metrics:     collector,
	}, hooks)
	if err != nil {
		log.Fatalf("constructing strategy: %v", err)
	}
	return route, broker, candles, trades
}

// runBacktest feeds a synthetic random-walk candle series through the
// route, ticking it once per candle until cfg.Ticks is reached or ctx is
// cancelled.
func runBacktest(ctx context.Context, cfg config, route *strategy.Strategy, broker *paperBroker, candles *paperCandleStore) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	price := 100.0

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		price = nextPrice(rng, price)
		candles.push(strategy.Candle{
			Timestamp: time.Now().UnixMilli(),
			Open:      price,
			Close:     price,
			High:      price * 1.001,
			Low:       price * 0.999,
			Volume:    1000,
		})

		broker.position.setMark(price)

		if err := route.Execute(ctx); err != nil {
			log.Printf("tick %d: execute error: %v", i, err)
			continue
		}

		for _, order := range broker.drainFilled() {
			if err := route.OnUpdatedPosition(ctx, order); err != nil {
				log.Printf("tick %d: on-updated-position error: %v", i, err)
			}
		}
	}

	if err := route.Terminate(ctx); err != nil {
		log.Printf("terminate error: %v", err)
	}
}

func sma(candles []strategy.Candle, period int) float64 {
	if len(candles) == 0 {
		return 0
	}
	if period > len(candles) {
		period = len(candles)
	}
	window := candles[len(candles)-period:]
	var sum float64
	for _, c := range window {
		sum += c.Close
	}
	return sum / float64(len(window))
}

func averageTrueRange(candles []strategy.Candle, period int) float64 {
	if len(candles) < 2 {
		return 1
	}
	if period > len(candles)-1 {
		period = len(candles) - 1
	}
	window := candles[len(candles)-period-1:]
	var sum float64
	for i := 1; i < len(window); i++ {
		high, low, prevClose := window[i].High, window[i].Low, window[i-1].Close
		tr := math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
		sum += tr
	}
	if period == 0 {
		return 1
	}
	return sum / float64(period)
}

func nextPrice(rng *rand.Rand, price float64) float64 {
	drift := (rng.Float64() - 0.5) * 2
	return price + drift
}
