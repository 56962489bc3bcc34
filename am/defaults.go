package am

import (
	"github.com/spf13/viper"

	"github.com/teranos/wdlint/internal/httpclient"
	"github.com/teranos/wdlint/ontology"
	"github.com/teranos/wdlint/wiki"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Cache defaults
	v.SetDefault("cache.path", "wdlint.db")
	v.SetDefault("cache.lru_size", wiki.DefaultLRUSize)
	v.SetDefault("cache.ttl_hours", 24*30) // Wikidata moves slowly

	// HTTP defaults
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.requests_per_second", 5.0) // well under the API etiquette limits
	v.SetDefault("http.burst", 5)
	v.SetDefault("http.user_agent", httpclient.DefaultUserAgent)
	v.SetDefault("http.wikidata_api", wiki.DefaultWikidataAPI)
	v.SetDefault("http.wikipedia_api_template", wiki.DefaultWikipediaAPITemplate)
	v.SetDefault("http.allow_private", false)

	// Check defaults
	v.SetDefault("check.languages", []string{})
	v.SetDefault("check.expected_language", "")
	v.SetDefault("check.country", "")
	v.SetDefault("check.propose_missing", true)
	v.SetDefault("check.prefetch_workers", 8)
	v.SetDefault("check.max_ancestors", ontology.DefaultMaxAncestors)
	v.SetDefault("check.allow", []string{})

	// Tables defaults
	v.SetDefault("tables.path", "")
}

// BindSensitiveEnvVars explicitly binds configuration commonly set per machine
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("cache.path", "WDLINT_CACHE_PATH")
	v.BindEnv("http.user_agent", "WDLINT_USER_AGENT")
	v.BindEnv("check.country", "WDLINT_COUNTRY")
}
