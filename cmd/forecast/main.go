// Package main computes a one-shot fee-potential forecast for a token mint
// and prints it as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"solana-fee-forecast/internal/forecast"
	"solana-fee-forecast/internal/limitorder"
	"solana-fee-forecast/internal/metadata"
	"solana-fee-forecast/internal/snapshot"
	"solana-fee-forecast/internal/solana"
)

func main() {
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	mint := flag.String("mint", "", "Target token mint address")
	price := flag.Float64("price", 0, "Current USD price of the target token")
	programID := flag.String("program", "", "Limit-order program ID override")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall request timeout")

	flag.Parse()

	logger := log.New(os.Stderr, "[forecast] ", log.LstdFlags)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *mint == "" {
		logger.Fatal("--mint is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rpc := solana.NewHTTPClient(*rpcEndpoint)
	fetcher := limitorder.NewFetcher(rpc, *programID, logger)
	resolver := metadata.NewRPCResolver(rpc)

	// One-shot run: no snapshot reuse across invocations.
	svc := forecast.NewService(fetcher, resolver, snapshot.Noop{}, logger)

	fc, err := svc.Forecast(ctx, *mint, *price)
	if err != nil {
		logger.Fatalf("forecast: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		logger.Fatalf("encode forecast: %v", err)
	}
}
