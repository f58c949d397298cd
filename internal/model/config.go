package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the full runtime configuration
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Cache     CacheConfig     `yaml:"cache"`
	Providers ProvidersConfig `yaml:"providers"`
	Review    ReviewConfig    `yaml:"review"`
	LinkCheck LinkCheckConfig `yaml:"linkcheck"`
	LLM       LLMConfig       `yaml:"llm"`
	Output    OutputConfig    `yaml:"output"`
}

// HTTPConfig controls outbound HTTP behavior
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	UserAgent  string        `yaml:"user_agent"`
	Mailto     string        `yaml:"mailto"` // Contact address for polite-pool access
	HTTPProxy  string        `yaml:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy"`
	NoProxy    string        `yaml:"no_proxy"`
}

// CacheConfig controls the verification cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	DOITTL    time.Duration `yaml:"doi_ttl"`
	SearchTTL time.Duration `yaml:"search_ttl"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
}

// ProviderConfig controls one bibliographic provider
type ProviderConfig struct {
	BaseURL           string  `yaml:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// ProvidersConfig holds settings for both bibliographic providers
type ProvidersConfig struct {
	Crossref ProviderConfig `yaml:"crossref"`
	OpenAlex ProviderConfig `yaml:"openalex"`
}

// ReviewConfig controls review triage behavior
type ReviewConfig struct {
	ConfidenceThreshold     float64 `yaml:"confidence_threshold"`
	IncludePartialCitations bool    `yaml:"include_partial_citations"`
	MaxItems                int     `yaml:"max_items"`
}

// LinkCheckConfig controls the cited-URL accessibility checker
type LinkCheckConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxWorkers int           `yaml:"max_workers"`
}

// LLMConfig controls the optional review-summary generator
type LLMConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"-"` // Never written to disk
	BaseURL string `yaml:"base_url,omitempty"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	cacheDir := ".citewatch-cache"
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".citewatch", "cache")
	}

	return &Config{
		HTTP: HTTPConfig{
			Timeout:   15 * time.Second,
			UserAgent: "citewatch/0.1 (+https://github.com/citewatch/citewatch)",
			Mailto:    "citewatch@users.noreply.github.com",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       cacheDir,
			DOITTL:    7 * 24 * time.Hour,
			SearchTTL: time.Hour,
			MemoryTTL: 10 * time.Minute,
		},
		Providers: ProvidersConfig{
			Crossref: ProviderConfig{
				BaseURL:           "https://api.crossref.org",
				RequestsPerSecond: 2,
				Burst:             5,
			},
			OpenAlex: ProviderConfig{
				BaseURL:           "https://api.openalex.org",
				RequestsPerSecond: 5,
				Burst:             10,
			},
		},
		Review: ReviewConfig{
			ConfidenceThreshold:     0.6,
			IncludePartialCitations: true,
			MaxItems:                100,
		},
		LinkCheck: LinkCheckConfig{
			Enabled:    true,
			Timeout:    10 * time.Second,
			MaxWorkers: 10,
		},
		LLM: LLMConfig{
			Enabled: false,
			Model:   "gpt-4o-mini",
		},
		Output: OutputConfig{},
	}
}
