package metadata

import (
	"context"
	"log"
	"sync"
)

// prefetchWorkers bounds concurrent decimal lookups during ResolveAll.
const prefetchWorkers = 8

// RequestResolver memoizes decimal lookups for the lifetime of one
// request-processing pass. It must not be shared across concurrent requests;
// create one per request.
//
// A lookup failure falls back to DefaultDecimals; a single bad mint must not
// abort processing of every other order.
type RequestResolver struct {
	resolver Resolver
	logger   *log.Logger

	// Optional hooks invoked per lookup and per fallback, typically backed
	// by metrics counters.
	onLookup   func()
	onFallback func()

	mu       sync.Mutex
	decimals map[string]int
}

// RequestOption configures a RequestResolver.
type RequestOption func(*RequestResolver)

// WithResolveHooks registers callbacks fired on every upstream lookup and on
// every fallback to DefaultDecimals. Either may be nil.
func WithResolveHooks(onLookup, onFallback func()) RequestOption {
	return func(r *RequestResolver) {
		r.onLookup = onLookup
		r.onFallback = onFallback
	}
}

// NewRequestResolver creates a per-request memoizing resolver.
func NewRequestResolver(resolver Resolver, logger *log.Logger, opts ...RequestOption) *RequestResolver {
	r := &RequestResolver{
		resolver: resolver,
		logger:   logger,
		decimals: make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveAll eagerly resolves all distinct unresolved mints in parallel so
// normalization never blocks per-order on a slow lookup. Failures are
// absorbed: the failing mint is memoized at DefaultDecimals.
func (r *RequestResolver) ResolveAll(ctx context.Context, mints []string) {
	pending := r.unresolved(mints)
	if len(pending) == 0 {
		return
	}

	work := make(chan string)
	var wg sync.WaitGroup

	workers := prefetchWorkers
	if len(pending) < workers {
		workers = len(pending)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for mint := range work {
				r.resolveOne(ctx, mint)
			}
		}()
	}

	for _, mint := range pending {
		work <- mint
	}
	close(work)
	wg.Wait()
}

// Decimals returns the memoized decimals for mint, resolving synchronously
// if it was not prefetched.
func (r *RequestResolver) Decimals(ctx context.Context, mint string) int {
	r.mu.Lock()
	d, ok := r.decimals[mint]
	r.mu.Unlock()
	if ok {
		return d
	}
	return r.resolveOne(ctx, mint)
}

// unresolved filters mints down to distinct entries not yet memoized.
func (r *RequestResolver) unresolved(mints []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(mints))
	var pending []string
	for _, mint := range mints {
		if mint == "" {
			continue
		}
		if _, dup := seen[mint]; dup {
			continue
		}
		seen[mint] = struct{}{}
		if _, ok := r.decimals[mint]; !ok {
			pending = append(pending, mint)
		}
	}
	return pending
}

func (r *RequestResolver) resolveOne(ctx context.Context, mint string) int {
	if r.onLookup != nil {
		r.onLookup()
	}
	d, err := r.resolver.ResolveDecimals(ctx, mint)
	if err != nil {
		if r.logger != nil {
			r.logger.Printf("decimals for %s unavailable, using default %d: %v", mint, DefaultDecimals, err)
		}
		if r.onFallback != nil {
			r.onFallback()
		}
		d = DefaultDecimals
	}

	r.mu.Lock()
	r.decimals[mint] = d
	r.mu.Unlock()
	return d
}
