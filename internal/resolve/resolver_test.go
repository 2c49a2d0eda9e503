package resolve

import (
	"context"
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMX is a scripted mxdns.Client that records lookup counts.
type fakeMX struct {
	mu      sync.Mutex
	records map[string][]string
	fail    map[string]bool
	calls   map[string]int
	active  int
	maxSeen int
}

func newFakeMX() *fakeMX {
	return &fakeMX{
		records: make(map[string][]string),
		fail:    make(map[string]bool),
		calls:   make(map[string]int),
	}
}

func (f *fakeMX) LookupMX(_ context.Context, domain string) ([]string, error) {
	f.mu.Lock()
	f.calls[domain]++
	f.active++
	if f.active > f.maxSeen {
		f.maxSeen = f.active
	}
	failing := f.fail[domain]
	recs := f.records[domain]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if failing {
		return nil, eris.New("mxdns: resolver returned status 404")
	}
	return recs, nil
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		mx   []string
		want Provider
	}{
		{"google", []string{"1 aspmx.l.google.com."}, ProviderGoogle},
		{"gmail", []string{"5 gmail-smtp-in.l.gmail.com."}, ProviderGoogle},
		{"microsoft", []string{"0 acme-com.mail.protection.outlook.com."}, ProviderMicrosoft},
		{"hotmail", []string{"10 mx.hotmail.com."}, ProviderMicrosoft},
		{"case insensitive", []string{"1 ASPMX.L.GOOGLE.COM."}, ProviderGoogle},
		{"other", []string{"10 mail.fastmail.com."}, ProviderOther},
		{"empty", nil, ProviderOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.mx))
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	fake := newFakeMX()
	fake.records["x.com"] = []string{"1 aspmx.l.google.com."}
	r := NewResolver(fake, nil)

	assert.Equal(t, ProviderGoogle, r.Resolve(context.Background(), "x.com"))
	assert.Equal(t, ProviderOther, r.Resolve(context.Background(), ""))
}

func TestResolver_CacheDeterminism(t *testing.T) {
	fake := newFakeMX()
	fake.records["x.com"] = []string{"1 aspmx.l.google.com."}
	r := NewResolver(fake, nil)

	first := r.Resolve(context.Background(), "x.com")
	second := r.Resolve(context.Background(), "x.com")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.calls["x.com"], "same domain must hit the resolver at most once per run")
}

func TestResolver_FailureDefaultsToOther(t *testing.T) {
	fake := newFakeMX()
	fake.fail["bad.com"] = true
	fake.records["good.com"] = []string{"1 mx.outlook.com."}
	r := NewResolver(fake, nil)

	out := r.ResolveAll(context.Background(), []string{"bad.com", "good.com"}, nil)

	assert.Equal(t, ProviderOther, out["bad.com"])
	assert.Equal(t, ProviderMicrosoft, out["good.com"])
}

func TestResolveAll_DedupesAndSkipsBlank(t *testing.T) {
	fake := newFakeMX()
	fake.records["x.com"] = []string{"1 aspmx.l.google.com."}
	r := NewResolver(fake, nil)

	out := r.ResolveAll(context.Background(), []string{"x.com", "x.com", "", "x.com"}, nil)

	assert.Len(t, out, 1)
	assert.Equal(t, 1, fake.calls["x.com"])
}

func TestResolveAll_BatchBoundsConcurrency(t *testing.T) {
	fake := newFakeMX()
	domains := make([]string, 0, 40)
	for _, d := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		for _, s := range []string{"1", "2", "3", "4"} {
			domain := d + s + ".com"
			fake.records[domain] = []string{"10 mail." + domain + "."}
			domains = append(domains, domain)
		}
	}

	r := NewResolver(fake, nil, WithBatchSize(10))
	out := r.ResolveAll(context.Background(), domains, nil)

	assert.Len(t, out, 40)
	assert.LessOrEqual(t, fake.maxSeen, 10, "concurrent lookups must stay within one batch")
}

func TestResolveAll_ProgressMonotonicAndTerminal(t *testing.T) {
	fake := newFakeMX()
	domains := []string{"a.com", "b.com", "c.com"}
	for _, d := range domains {
		fake.records[d] = nil
	}

	var mu sync.Mutex
	var events [][2]int
	r := NewResolver(fake, nil, WithBatchSize(1))
	r.ResolveAll(context.Background(), domains, func(done, total int) {
		mu.Lock()
		events = append(events, [2]int{done, total})
		mu.Unlock()
	})

	require.NotEmpty(t, events)
	prev := -1
	for _, e := range events {
		assert.Equal(t, 3, e[1])
		assert.GreaterOrEqual(t, e[0], prev)
		prev = e[0]
	}
	assert.Equal(t, 3, events[len(events)-1][0])
}

func TestResolveAll_UsesWarmCache(t *testing.T) {
	fake := newFakeMX()
	cache := NewCache()
	cache.Put("warm.com", ProviderGoogle)
	r := NewResolver(fake, cache)

	out := r.ResolveAll(context.Background(), []string{"warm.com"}, nil)

	assert.Equal(t, ProviderGoogle, out["warm.com"])
	assert.Zero(t, fake.calls["warm.com"])
}
