// Package main runs the fee-forecast HTTP service: a forecast endpoint over
// open limit orders, forecast history, and Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"solana-fee-forecast/internal/domain"
	"solana-fee-forecast/internal/forecast"
	"solana-fee-forecast/internal/limitorder"
	"solana-fee-forecast/internal/metadata"
	"solana-fee-forecast/internal/observability"
	"solana-fee-forecast/internal/snapshot"
	"solana-fee-forecast/internal/solana"
	"solana-fee-forecast/internal/storage"
	"solana-fee-forecast/internal/storage/memory"
	"solana-fee-forecast/internal/storage/migrations"
	pgstore "solana-fee-forecast/internal/storage/postgres"
)

// Server holds the wired components behind the HTTP handlers.
type Server struct {
	svc      *forecast.Service
	resolver *metadata.RPCResolver
	store    storage.ForecastStore
	metrics  *observability.Metrics
	logger   *log.Logger
}

func main() {
	loadEnvFile()

	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	metricsAddr := flag.String("metrics-addr", envOr("METRICS_ADDR", ":9090"), "Prometheus metrics HTTP address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string for forecast history (optional)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage for forecast history")
	programID := flag.String("program", "", "Limit-order program ID override")
	snapshotTTL := flag.Duration("snapshot-ttl", snapshot.DefaultTTL, "Order snapshot freshness window")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics("")

	rpc := solana.NewHTTPClient(*rpcEndpoint, solana.WithCallObserver(func(method string, d time.Duration) {
		metrics.RPCCallLatency.WithLabelValues(method).Observe(d.Seconds())
	}))
	fetcher := limitorder.NewFetcher(rpc, *programID, log.New(os.Stdout, "[fetcher] ", log.LstdFlags),
		limitorder.WithMetrics(metrics))
	resolver := metadata.NewRPCResolver(rpc)
	cache := snapshot.NewTTLCache(*snapshotTTL)

	var store storage.ForecastStore
	switch {
	case *useMemory:
		store = memory.NewForecastStore()
		logger.Println("using in-memory forecast history")
	case *postgresDSN != "":
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("run migrations: %v", err)
		}
		store = pgstore.NewForecastStore(pool)
		logger.Println("using postgres forecast history")
	default:
		logger.Println("forecast history persistence disabled")
	}

	opts := []forecast.Option{forecast.WithMetrics(metrics)}
	if store != nil {
		opts = append(opts, forecast.WithStore(store))
	}
	svc := forecast.NewService(fetcher, resolver, cache, logger, opts...)

	srv := &Server{svc: svc, resolver: resolver, store: store, metrics: metrics, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/forecast", srv.handleForecast)
	mux.HandleFunc("/history", srv.handleHistory)
	mux.HandleFunc("/history/latest", srv.handleLatestHistory)
	mux.HandleFunc("/health", srv.handleHealth)

	httpServer := &http.Server{
		Addr:         *listenAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	metricsServer := &http.Server{
		Addr:    *metricsAddr,
		Handler: observability.Handler(),
	}

	go func() {
		logger.Printf("metrics listening on %s", *metricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("metrics server: %v", err)
		}
	}()

	go func() {
		logger.Printf("listening on %s", *listenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("metrics shutdown: %v", err)
	}
}

// forecastResponse decorates the forecast with best-effort token metadata.
type forecastResponse struct {
	*domain.Forecast
	Token *tokenInfo `json:"token,omitempty"`
}

type tokenInfo struct {
	Name     *string `json:"name,omitempty"`
	Symbol   *string `json:"symbol,omitempty"`
	Decimals int     `json:"decimals"`
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mint := r.URL.Query().Get("mint")
	priceStr := r.URL.Query().Get("price")

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		s.metrics.ForecastRequests.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "price must be a number")
		return
	}

	fc, err := s.svc.Forecast(r.Context(), mint, price)
	if err != nil {
		if errors.Is(err, forecast.ErrInvalidMint) || errors.Is(err, forecast.ErrInvalidPrice) {
			s.metrics.ForecastRequests.WithLabelValues("bad_request").Inc()
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.metrics.ForecastRequests.WithLabelValues("upstream_error").Inc()
		s.logger.Printf("forecast %s: %v", mint, err)
		writeError(w, http.StatusBadGateway, "upstream fetch failed")
		return
	}
	s.metrics.ForecastRequests.WithLabelValues("ok").Inc()

	resp := forecastResponse{Forecast: fc}
	if meta, err := s.resolver.FetchMetadata(r.Context(), mint); err == nil {
		resp.Token = &tokenInfo{Name: meta.Name, Symbol: meta.Symbol, Decimals: meta.Decimals}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.store == nil {
		writeError(w, http.StatusNotFound, "forecast history not configured")
		return
	}

	mint := r.URL.Query().Get("mint")
	if err := forecast.ValidateMint(mint); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.store.GetByMint(r.Context(), mint, limit)
	if err != nil {
		s.logger.Printf("history %s: %v", mint, err)
		writeError(w, http.StatusInternalServerError, "history lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tokenMint": mint,
		"forecasts": records,
	})
}

func (s *Server) handleLatestHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.store == nil {
		writeError(w, http.StatusNotFound, "forecast history not configured")
		return
	}

	mint := r.URL.Query().Get("mint")
	if err := forecast.ValidateMint(mint); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := s.store.GetLatestByMint(r.Context(), mint)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no forecast recorded for mint")
			return
		}
		s.logger.Printf("latest history %s: %v", mint, err)
		writeError(w, http.StatusInternalServerError, "history lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers already sent; an encode failure has nowhere to go.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// envOr returns the env var value or a default.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// loadEnvFile loads KEY=VALUE pairs from .env without overriding existing
// env vars.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
