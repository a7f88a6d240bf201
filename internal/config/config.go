// Package config defines service configuration and its loading.
//
// Conventions:
//   - New returns a Config holding every default.
//   - Load layers defaults, an optional YAML file, TRAINER_* environment
//     variables and command-line flags, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBDriver selects the ledger backend: sqlite, postgres or memory.
	DBDriver string `koanf:"db_driver"`
	DBDSN    string `koanf:"db_dsn"`

	// SessionSecret signs session cookies. A random secret is generated at
	// startup when empty, which logs everybody out on restart.
	SessionSecret       string `koanf:"session_secret"`
	SessionTTLHours     int    `koanf:"session_ttl_hours"`
	SessionCookieSecure bool   `koanf:"session_cookie_secure"`

	// Locales is a comma-separated list of page languages, preferred first.
	Locales string `koanf:"locales"`

	// LexiconPath and GermanWordsPath replace the embedded word lists.
	LexiconPath     string `koanf:"lexicon_path"`
	GermanWordsPath string `koanf:"german_words_path"`

	ThesaurusURL    string `koanf:"thesaurus_url"`
	EncyclopediaURL string `koanf:"encyclopedia_url"`
	GeocoderURL     string `koanf:"geocoder_url"`
	UserAgent       string `koanf:"user_agent"`

	// LookupTimeoutMS bounds each external call.
	LookupTimeoutMS int `koanf:"lookup_timeout_ms"`
	// LookupCacheTTLSeconds enables the Redis response cache when RedisAddr is set.
	LookupCacheTTLSeconds int    `koanf:"lookup_cache_ttl_seconds"`
	RedisAddr             string `koanf:"redis_addr"`

	// GenerationAttempts bounds retries of history and geography lookups.
	GenerationAttempts int `koanf:"generation_attempts"`

	// DedupeSize sets the size of the duplicate-submission cache.
	DedupeSize int `koanf:"dedupe_size"`

	// CORSOrigins is a comma-separated allow list for /api.
	CORSOrigins string `koanf:"cors_origins"`

	// RecentResultsLimit caps the events listed on the parent page.
	RecentResultsLimit int `koanf:"recent_results_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":5000",
		DBDriver:              "sqlite",
		DBDSN:                 "",
		SessionTTLHours:       5 * 24,
		Locales:               "de,en",
		UserAgent:             "trainer/1.0 (+https://github.com/okian/trainer)",
		LookupTimeoutMS:       5000,
		LookupCacheTTLSeconds: 3600,
		GenerationAttempts:    3,
		DedupeSize:            50_000,
		CORSOrigins:           "*",
		RecentResultsLimit:    50,
	}
}

// SessionTTL returns the sliding session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// LookupTimeout returns the per-call lookup timeout.
func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.LookupTimeoutMS) * time.Millisecond
}

// LookupCacheTTL returns how long lookup responses are cached.
func (c *Config) LookupCacheTTL() time.Duration {
	return time.Duration(c.LookupCacheTTLSeconds) * time.Second
}

// LocaleList splits Locales.
func (c *Config) LocaleList() []string { return splitList(c.Locales) }

// CORSOriginList splits CORSOrigins.
func (c *Config) CORSOriginList() []string { return splitList(c.CORSOrigins) }

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var problems []string
	if c.Addr == "" {
		problems = append(problems, "addr must not be empty")
	}
	switch c.DBDriver {
	case "sqlite", "postgres", "memory":
	default:
		problems = append(problems, fmt.Sprintf("unknown db_driver %q", c.DBDriver))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("unknown log_format %q", c.LogFormat))
	}
	if c.SessionTTLHours <= 0 {
		problems = append(problems, "session_ttl_hours must be positive")
	}
	if c.LookupTimeoutMS <= 0 {
		problems = append(problems, "lookup_timeout_ms must be positive")
	}
	if c.GenerationAttempts <= 0 {
		problems = append(problems, "generation_attempts must be positive")
	}
	if c.RecentResultsLimit <= 0 {
		problems = append(problems, "recent_results_limit must be positive")
	}
	if len(c.LocaleList()) == 0 {
		problems = append(problems, "locales must name at least one language")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
