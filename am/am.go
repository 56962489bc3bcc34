// Package am ("am" as in "I am") holds wdlint's configuration: which caches
// to keep, how politely to talk to the wikis, and how strict the checks are.
//
// Values are merged from /etc/wdlint/am.toml, ~/.wdlint/am.toml, the nearest
// am.toml found walking up from the working directory, and WDLINT_* environment
// variables, in increasing precedence.
package am

import "time"

// Config represents the wdlint configuration
type Config struct {
	Cache  CacheConfig  `mapstructure:"cache"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	Check  CheckConfig  `mapstructure:"check"`
	Tables TablesConfig `mapstructure:"tables"`
}

// CacheConfig configures the knowledge-base cache
type CacheConfig struct {
	Path     string `mapstructure:"path"`      // SQLite file; empty keeps the cache in memory only
	LRUSize  int    `mapstructure:"lru_size"`  // in-memory entries per kind (0 = default 4096)
	TTLHours int    `mapstructure:"ttl_hours"` // 0 = cached answers never expire
}

// HTTPConfig configures access to the Wikidata and Wikipedia APIs
type HTTPConfig struct {
	TimeoutSeconds       int     `mapstructure:"timeout_seconds"`
	RequestsPerSecond    float64 `mapstructure:"requests_per_second"` // 0 = unlimited
	Burst                int     `mapstructure:"burst"`
	UserAgent            string  `mapstructure:"user_agent"`
	WikidataAPI          string  `mapstructure:"wikidata_api"`
	WikipediaAPITemplate string  `mapstructure:"wikipedia_api_template"` // "{lang}" is replaced by the language code
	AllowPrivate         bool    `mapstructure:"allow_private"`          // allow API hosts on private networks (testing mirrors)
}

// CheckConfig configures the checks
type CheckConfig struct {
	Languages        []string `mapstructure:"languages"`         // preferred link languages
	ExpectedLanguage string   `mapstructure:"expected_language"` // overrides the language derived from country
	Country          string   `mapstructure:"country"`           // ISO 3166-1 alpha-2, lower case
	ProposeMissing   bool     `mapstructure:"propose_missing"`   // propose adding a missing wikidata or wikipedia tag
	PrefetchWorkers  int      `mapstructure:"prefetch_workers"`  // concurrent entity fetches per ancestry layer
	MaxAncestors     int      `mapstructure:"max_ancestors"`     // types visited per classification
	Allow            []string `mapstructure:"allow"`             // items that are always acceptable primary links
}

// TablesConfig points at an override file for the built-in reference tables
type TablesConfig struct {
	Path string `mapstructure:"path"`
}

// CacheTTL returns the cache entry lifetime, 0 for unlimited
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// HTTPTimeout returns the per-request timeout
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)
