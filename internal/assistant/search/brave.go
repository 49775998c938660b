package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const braveDefaultBaseURL = "https://api.search.brave.com/res/v1/web/search"

type BraveConfig struct {
	APIKey      string
	BaseURL     string
	MinInterval time.Duration
	MaxQueries  int
	PerQuery    int
	HTTPClient  *http.Client
}

// Brave retrieves documents from the Brave web search API. Requests from one
// instance are spaced at least MinInterval apart.
type Brave struct {
	cfg  BraveConfig
	hc   *http.Client
	gate gate
}

func NewBrave(cfg BraveConfig) (*Brave, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("brave: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = braveDefaultBaseURL
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = time.Second
	}
	if cfg.MaxQueries <= 0 {
		cfg.MaxQueries = 3
	}
	if cfg.PerQuery <= 0 {
		cfg.PerQuery = 5
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Brave{cfg: cfg, hc: hc, gate: gate{interval: cfg.MinInterval}}, nil
}

// Retrieve runs the first MaxQueries queries and keeps results hosted on a
// trusted domain, deduplicated by URL.
func (b *Brave) Retrieve(ctx context.Context, queries []string, domains []string) ([]Document, error) {
	if len(queries) > b.cfg.MaxQueries {
		queries = queries[:b.cfg.MaxQueries]
	}
	seen := map[string]bool{}
	var out []Document
	var errs []error
	for _, q := range queries {
		docs, err := b.search(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			errs = append(errs, err)
			continue
		}
		for _, d := range docs {
			if seen[d.URL] || !trustedHost(d.URL, domains) {
				continue
			}
			seen[d.URL] = true
			out = append(out, d)
		}
	}
	if len(out) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (b *Brave) search(ctx context.Context, query string) ([]Document, error) {
	if err := b.gate.wait(ctx); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s?q=%s&count=%d", b.cfg.BaseURL, url.QueryEscape(query), b.cfg.PerQuery)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.cfg.APIKey)

	resp, err := b.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave http %d", resp.StatusCode)
	}

	var payload struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("brave decode: %w", err)
	}
	docs := make([]Document, 0, len(payload.Web.Results))
	for _, r := range payload.Web.Results {
		docs = append(docs, Document{Title: r.Title, URL: r.URL, Snippet: r.Description})
	}
	return docs, nil
}

func trustedHost(raw string, domains []string) bool {
	if len(domains) == 0 {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range domains {
		d = strings.ToLower(d)
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// gate spaces calls at least interval apart.
type gate struct {
	mu       sync.Mutex
	interval time.Duration
	readyAt  time.Time
}

func (g *gate) wait(ctx context.Context) error {
	g.mu.Lock()
	now := time.Now()
	start := now
	if g.readyAt.After(now) {
		start = g.readyAt
	}
	g.readyAt = start.Add(g.interval)
	g.mu.Unlock()

	d := start.Sub(now)
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
