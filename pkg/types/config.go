package types

import "time"

// HTTPConfig holds shared HTTP settings used by every backend request.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero leaves the platform default.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "trendscope/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// APIConfig locates the analytics backend.
type APIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the REST root, e.g. "http://localhost:8000/api".
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// MaxRetries is the number of retries on HTTP 429. Zero disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// CacheConfig controls the in-memory response cache.
type CacheConfig struct {
	// StaleTime is how long a snapshot is served without refetching (default 30s).
	StaleTime time.Duration `json:"stale_time" yaml:"stale_time" mapstructure:"stale_time"`

	// GCTime is how long an unused snapshot is kept at all (default 5m).
	GCTime time.Duration `json:"gc_time" yaml:"gc_time" mapstructure:"gc_time"`
}

// PollConfig controls live-update polling and search throttling.
type PollConfig struct {
	// IngestInterval re-fetches ingest events while a job is still running (default 5s).
	IngestInterval time.Duration `json:"ingest_interval" yaml:"ingest_interval" mapstructure:"ingest_interval"`

	// DocumentsInterval re-fetches documents while some are unprocessed (default 5s).
	DocumentsInterval time.Duration `json:"documents_interval" yaml:"documents_interval" mapstructure:"documents_interval"`

	// SearchDebounce is the quiet period before a typed query is sent (default 300ms).
	SearchDebounce time.Duration `json:"search_debounce" yaml:"search_debounce" mapstructure:"search_debounce"`

	// SearchRate caps search requests per second (default 2).
	SearchRate float64 `json:"search_rate" yaml:"search_rate" mapstructure:"search_rate"`
}

// SessionConfig locates the persisted session.
type SessionConfig struct {
	// Path is the SQLite file holding sessions, one per base URL.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// Token is a bearer token adopted for this run without being persisted.
	Token string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`
}

// LogConfig controls the rotated log file.
type LogConfig struct {
	File       string `json:"file" yaml:"file" mapstructure:"file"`
	Level      string `json:"level" yaml:"level" mapstructure:"level"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `json:"compress" yaml:"compress" mapstructure:"compress"`
}

// Config groups every section read from trendscope.yaml and the environment.
type Config struct {
	API     APIConfig     `json:"api" yaml:"api" mapstructure:"api"`
	Cache   CacheConfig   `json:"cache" yaml:"cache" mapstructure:"cache"`
	Poll    PollConfig    `json:"poll" yaml:"poll" mapstructure:"poll"`
	Session SessionConfig `json:"session" yaml:"session" mapstructure:"session"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

const (
	DefaultBaseURL   = "http://localhost:8000/api"
	DefaultUserAgent = "trendscope/0.1"
	DefaultPageSize  = 50
)

// ApplyDefaults fills every zero-valued setting with its default.
// Paths under the user's home are left to the caller.
func (c *Config) ApplyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = DefaultUserAgent
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.Cache.StaleTime == 0 {
		c.Cache.StaleTime = 30 * time.Second
	}
	if c.Cache.GCTime == 0 {
		c.Cache.GCTime = 5 * time.Minute
	}
	if c.Poll.IngestInterval == 0 {
		c.Poll.IngestInterval = 5 * time.Second
	}
	if c.Poll.DocumentsInterval == 0 {
		c.Poll.DocumentsInterval = 5 * time.Second
	}
	if c.Poll.SearchDebounce == 0 {
		c.Poll.SearchDebounce = 300 * time.Millisecond
	}
	if c.Poll.SearchRate <= 0 {
		c.Poll.SearchRate = 2
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 30
	}
}
