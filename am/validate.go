package am

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/wiki"
)

var (
	languageCode = regexp.MustCompile(`^[a-z]{2,3}$`)
	countryCode  = regexp.MustCompile(`^[a-z]{2}$`)
)

// Validate checks that the configuration is valid. Every problem is
// reported, not just the first.
func (c *Config) Validate() error {
	var errs []error

	// Cache: 0 = default size / never expire, negative = invalid
	if c.Cache.LRUSize < 0 {
		errs = append(errs, errors.Newf("cache.lru_size must be >= 0, got %d", c.Cache.LRUSize))
	}
	if c.Cache.TTLHours < 0 {
		errs = append(errs, errors.Newf("cache.ttl_hours must be >= 0, got %d", c.Cache.TTLHours))
	}

	if c.HTTP.TimeoutSeconds <= 0 {
		errs = append(errs, errors.Newf("http.timeout_seconds must be > 0, got %d", c.HTTP.TimeoutSeconds))
	}
	if c.HTTP.RequestsPerSecond < 0 {
		errs = append(errs, errors.Newf("http.requests_per_second must be >= 0, got %g", c.HTTP.RequestsPerSecond))
	}
	if c.HTTP.Burst < 0 {
		errs = append(errs, errors.Newf("http.burst must be >= 0, got %d", c.HTTP.Burst))
	}
	if err := validateAPIURL("http.wikidata_api", c.HTTP.WikidataAPI); err != nil {
		errs = append(errs, err)
	}
	if !strings.Contains(c.HTTP.WikipediaAPITemplate, "{lang}") {
		errs = append(errs, errors.Newf("http.wikipedia_api_template must contain {lang}, got %q", c.HTTP.WikipediaAPITemplate))
	} else if err := validateAPIURL("http.wikipedia_api_template", strings.ReplaceAll(c.HTTP.WikipediaAPITemplate, "{lang}", "en")); err != nil {
		errs = append(errs, err)
	}

	for _, lang := range c.Check.Languages {
		if !languageCode.MatchString(lang) {
			errs = append(errs, errors.Newf("check.languages: %q is not a language code", lang))
		}
	}
	if c.Check.ExpectedLanguage != "" && !languageCode.MatchString(c.Check.ExpectedLanguage) {
		errs = append(errs, errors.Newf("check.expected_language: %q is not a language code", c.Check.ExpectedLanguage))
	}
	if c.Check.Country != "" && !countryCode.MatchString(c.Check.Country) {
		errs = append(errs, errors.Newf("check.country: %q is not a lower-case ISO 3166-1 alpha-2 code", c.Check.Country))
	}
	if c.Check.PrefetchWorkers < 0 {
		errs = append(errs, errors.Newf("check.prefetch_workers must be >= 0, got %d", c.Check.PrefetchWorkers))
	}
	if c.Check.MaxAncestors < 0 {
		errs = append(errs, errors.Newf("check.max_ancestors must be >= 0, got %d", c.Check.MaxAncestors))
	}
	for _, id := range c.Check.Allow {
		if !wiki.IsEntityID(id) {
			errs = append(errs, errors.Newf("check.allow: %q is not a Wikidata item id", id))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

func validateAPIURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrapf(err, "%s", key)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Newf("%s must be an http(s) URL, got %q", key, raw)
	}
	return nil
}
