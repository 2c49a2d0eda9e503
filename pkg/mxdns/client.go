// Package mxdns queries MX records through a DNS-over-HTTPS resolver.
// Any endpoint speaking the Google/Cloudflare JSON resolution format
// (dns.google/resolve, cloudflare-dns.com/dns-query) satisfies the contract.
package mxdns

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://dns.google/resolve"

// Client looks up MX records for a domain.
type Client interface {
	// LookupMX returns the MX record strings for a domain. An empty slice
	// with no error means the domain has no MX records.
	LookupMX(ctx context.Context, domain string) ([]string, error)
}

// Option configures the client.
type Option func(*client)

// WithBaseURL points the client at a different DoH resolver endpoint.
func WithBaseURL(base string) Option {
	return func(c *client) {
		c.baseURL = base
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for resolver calls.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a DoH MX lookup client.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(20, 20),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// dohResponse is the JSON shape of a DoH resolution answer.
type dohResponse struct {
	Status int `json:"Status"`
	Answer []struct {
		Type int    `json:"type"`
		Data string `json:"data"`
	} `json:"Answer"`
}

// dnsTypeMX is the DNS record type code for MX.
const dnsTypeMX = 15

func (c *client) LookupMX(ctx context.Context, domain string) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "mxdns: rate limit")
	}

	params := url.Values{
		"name": {domain},
		"type": {"MX"},
	}
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "mxdns: build request")
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "mxdns: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("mxdns: resolver returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "mxdns: read body")
	}

	var parsed dohResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "mxdns: parse response")
	}

	var records []string
	for _, ans := range parsed.Answer {
		if ans.Type != dnsTypeMX {
			continue
		}
		records = append(records, ans.Data)
	}
	return records, nil
}
