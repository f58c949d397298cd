package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/citewatch/citewatch/internal/model"
	"github.com/citewatch/citewatch/internal/util"
)

// searchRows caps how many candidates a search strategy requests
const searchRows = 5

// ErrNotFound reports that a provider has no record for the query.
// A not-found is a normal outcome, distinct from a transport error.
var ErrNotFound = errors.New("record not found")

// Provider is a bibliographic database that can resolve DOIs directly
// and search by title/author/year
type Provider interface {
	Name() string
	LookupDOI(ctx context.Context, doi string) (*model.BibRecord, error)
	Search(ctx context.Context, query model.VerificationQuery) ([]model.BibRecord, error)
}

// clientConfig carries the shared HTTP settings for provider clients
type clientConfig struct {
	baseURL   string
	userAgent string
	mailto    string
	client    *http.Client
}

func newClientConfig(baseURL string, http_ model.HTTPConfig) clientConfig {
	timeout := http_.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return clientConfig{
		baseURL:   baseURL,
		userAgent: http_.UserAgent,
		mailto:    http_.Mailto,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(http_.HTTPProxy, http_.HTTPSProxy, http_.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
	}
}

// getJSON performs a GET with polite-pool identification headers and
// returns the raw body. A 404 maps to ErrNotFound.
func (c *clientConfig) getJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	ua := c.userAgent
	if c.mailto != "" {
		ua = fmt.Sprintf("%s (mailto:%s)", c.userAgent, c.mailto)
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4_000_000))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}
