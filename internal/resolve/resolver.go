package resolve

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadclean/internal/resilience"
	"github.com/sells-group/leadclean/pkg/mxdns"
)

const (
	defaultBatchSize = 15
	defaultTimeout   = 5 * time.Second
)

// Resolver classifies domains by MX lookup, memoized in a Cache so each
// domain is resolved at most once per run.
type Resolver struct {
	client    mxdns.Client
	cache     *Cache
	batchSize int
	timeout   time.Duration
	retry     resilience.RetryConfig
}

// Option configures the resolver.
type Option func(*Resolver)

// WithBatchSize bounds how many lookups run concurrently. Batches execute
// sequentially relative to one another; this is the backpressure knob that
// respects the DoH service's rate limits.
func WithBatchSize(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithTimeout bounds each individual lookup so an unresponsive resolver
// cannot stall the run.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRetry overrides the per-lookup retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(r *Resolver) {
		r.retry = cfg
	}
}

// NewResolver creates a resolver over the given lookup client and cache.
// A nil cache gets a fresh memory-only cache.
func NewResolver(client mxdns.Client, cache *Cache, opts ...Option) *Resolver {
	if cache == nil {
		cache = NewCache()
	}
	r := &Resolver{
		client:    client,
		cache:     cache,
		batchSize: defaultBatchSize,
		timeout:   defaultTimeout,
		retry:     resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve classifies a single domain, consulting the cache first. Lookup
// failure is not an error: the domain resolves to ProviderOther.
func (r *Resolver) Resolve(ctx context.Context, domain string) Provider {
	if domain == "" {
		return ProviderOther
	}
	if p, ok := r.cache.Get(domain); ok {
		return p
	}

	p := r.lookup(ctx, domain)
	r.cache.Put(domain, p)
	return p
}

// ResolveAll classifies a set of domains. Unseen domains are partitioned
// into fixed-size batches; lookups within a batch fan out concurrently and
// batches run sequentially, so outstanding lookups stay bounded. One
// domain's failure never fails the batch. onProgress (optional) receives
// completed counts over the unique unseen domain total.
func (r *Resolver) ResolveAll(ctx context.Context, domains []string, onProgress func(done, total int)) map[string]Provider {
	out := make(map[string]Provider, len(domains))
	var pending []string
	seen := make(map[string]struct{}, len(domains))

	for _, d := range domains {
		if d == "" {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		if p, ok := r.cache.Get(d); ok {
			out[d] = p
			continue
		}
		pending = append(pending, d)
	}

	total := len(pending)
	if onProgress != nil {
		onProgress(0, total)
	}

	var mu sync.Mutex
	done := 0
	for start := 0; start < len(pending); start += r.batchSize {
		end := start + r.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		g, gCtx := errgroup.WithContext(ctx)
		for _, domain := range batch {
			g.Go(func() error {
				p := r.lookup(gCtx, domain)
				r.cache.Put(domain, p)

				mu.Lock()
				out[domain] = p
				done++
				completed := done
				mu.Unlock()

				if onProgress != nil {
					onProgress(completed, total)
				}
				return nil
			})
		}
		// Workers never return errors; lookups degrade to ProviderOther.
		_ = g.Wait()

		if ctx.Err() != nil {
			break
		}
	}

	// Anything not resolved (cancellation) defaults to other.
	for _, d := range pending {
		if _, ok := out[d]; !ok {
			out[d] = ProviderOther
		}
	}
	return out
}

// lookup performs one bounded, retried MX lookup and classifies it.
func (r *Resolver) lookup(ctx context.Context, domain string) Provider {
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	records, err := resilience.DoVal(lookupCtx, r.retry, func(ctx context.Context) ([]string, error) {
		return r.client.LookupMX(ctx, domain)
	})
	if err != nil {
		zap.L().Debug("resolve: mx lookup failed, defaulting to other",
			zap.String("domain", domain),
			zap.Error(err),
		)
		return ProviderOther
	}
	return Classify(records)
}
