package verify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/citewatch/citewatch/internal/model"
	"github.com/citewatch/citewatch/internal/util"
	"github.com/temoto/robotstxt"
)

const linkCheckMaxRetries = 3

// linkCheckSleepFunc is the sleep function used between retries (injectable for tests)
var linkCheckSleepFunc = time.Sleep

// LinkResult is the accessibility finding for one cited URL. URL health
// is independent from bibliographic verification and never changes a
// VerificationResult.
type LinkResult struct {
	URL          string `json:"url"`
	IsAccessible bool   `json:"is_accessible"`
	StatusCode   int    `json:"status_code,omitempty"`
	IsDead       bool   `json:"is_dead"` // 404, 410, or network failure
	RedirectURL  string `json:"redirect_url,omitempty"`
	Disallowed   bool   `json:"disallowed,omitempty"` // robots.txt forbids probing
	Error        string `json:"error,omitempty"`
}

// LinkChecker probes citation URLs concurrently with HEAD requests,
// honoring robots.txt before touching a host
type LinkChecker struct {
	httpClient *http.Client
	userAgent  string
	maxWorkers int

	robotsMu    sync.RWMutex
	robotsCache map[string]*robotstxt.RobotsData
}

// NewLinkChecker creates a link checker
func NewLinkChecker(httpCfg model.HTTPConfig, timeout time.Duration, maxWorkers int) *LinkChecker {
	if maxWorkers <= 0 {
		maxWorkers = 10
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &LinkChecker{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:   httpCfg.UserAgent,
		maxWorkers:  maxWorkers,
		robotsCache: make(map[string]*robotstxt.RobotsData),
	}
}

// CheckAll probes all URLs concurrently, bounded by maxWorkers
func (c *LinkChecker) CheckAll(ctx context.Context, urls []string) []LinkResult {
	if len(urls) == 0 {
		return []LinkResult{}
	}

	results := make([]LinkResult, len(urls))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, c.maxWorkers)

	for i, u := range urls {
		wg.Add(1)
		go func(idx int, rawURL string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = LinkResult{URL: rawURL, Error: "context cancelled"}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = c.checkWithRetry(ctx, rawURL)
		}(i, u)
	}

	wg.Wait()
	return results
}

// checkSingle probes one URL with a HEAD request
func (c *LinkChecker) checkSingle(ctx context.Context, rawURL string) LinkResult {
	result := LinkResult{URL: rawURL}

	if allowed := c.robotsAllowed(ctx, rawURL); !allowed {
		result.Disallowed = true
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("create request: %v", err)
		result.IsDead = true
		return result
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.IsDead = true
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.IsAccessible = true
	} else if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		result.IsDead = true
	}

	if resp.Request.URL.String() != rawURL {
		result.RedirectURL = resp.Request.URL.String()
	}

	return result
}

// checkWithRetry retries transient failures with exponential backoff
func (c *LinkChecker) checkWithRetry(ctx context.Context, rawURL string) LinkResult {
	var result LinkResult
	for attempt := 0; attempt < linkCheckMaxRetries; attempt++ {
		result = c.checkSingle(ctx, rawURL)
		if !isRetryableLinkResult(result) {
			return result
		}
		if attempt < linkCheckMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			linkCheckSleepFunc(backoff)
		}
	}
	return result
}

// robotsAllowed checks robots.txt for the URL's host. Unreachable or
// missing robots.txt allows by default.
func (c *LinkChecker) robotsAllowed(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return true
	}

	data := c.robotsData(ctx, parsed)
	if data == nil {
		return true
	}
	return data.TestAgent(parsed.Path, c.userAgent)
}

func (c *LinkChecker) robotsData(ctx context.Context, parsed *url.URL) *robotstxt.RobotsData {
	c.robotsMu.RLock()
	data, cached := c.robotsCache[parsed.Host]
	c.robotsMu.RUnlock()
	if cached {
		return data
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", parsed.Scheme, parsed.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err == nil {
		defer func() { _ = resp.Body.Close() }()
		data, _ = robotstxt.FromResponse(resp)
	}

	c.robotsMu.Lock()
	c.robotsCache[parsed.Host] = data
	c.robotsMu.Unlock()

	return data
}

func isRetryableLinkResult(result LinkResult) bool {
	if result.StatusCode >= 500 && result.StatusCode < 600 {
		return true
	}
	if result.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if result.Error != "" {
		s := strings.ToLower(result.Error)
		return strings.Contains(s, "timeout") ||
			strings.Contains(s, "connection refused") ||
			strings.Contains(s, "connection reset")
	}
	return false
}
