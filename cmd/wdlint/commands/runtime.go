package commands

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/teranos/wdlint/am"
	"github.com/teranos/wdlint/db"
	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/internal/httpclient"
	"github.com/teranos/wdlint/logger"
	"github.com/teranos/wdlint/ontology"
	"github.com/teranos/wdlint/tables"
	"github.com/teranos/wdlint/wiki"
)

// runtime is everything a command needs to talk to the knowledge base
type runtime struct {
	cfg        *am.Config
	database   *sql.DB
	cache      *wiki.Cache
	resolver   wiki.Resolver
	tables     *tables.Tables
	classifier *ontology.Classifier
}

// loadConfig loads and validates the configuration
func loadConfig() (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "invalid configuration"), "run 'wdlint am show' to see where each value comes from")
	}
	return cfg, nil
}

// openRuntime wires the HTTP client, cache, tables and classifier from cfg
func openRuntime(cfg *am.Config) (*runtime, error) {
	log := logger.Logger

	hc := httpclient.New(httpclient.Options{
		Timeout:           cfg.HTTPTimeout(),
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
		Burst:             cfg.HTTP.Burst,
		UserAgent:         cfg.HTTP.UserAgent,
		AllowPrivate:      cfg.HTTP.AllowPrivate,
	})
	client := wiki.NewClient(hc, cfg.HTTP.WikidataAPI, cfg.HTTP.WikipediaAPITemplate, log)

	rt := &runtime{cfg: cfg}
	if cfg.Cache.Path != "" {
		database, err := db.OpenWithMigrations(cfg.Cache.Path, log)
		if err != nil {
			return nil, errors.WithHint(err, "set cache.path = \"\" to run without a disk cache")
		}
		rt.database = database
	}

	cache, err := wiki.NewCache(client, rt.database, wiki.CacheOptions{
		LRUSize: cfg.Cache.LRUSize,
		TTL:     cfg.CacheTTL(),
	}, log)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.cache = cache
	rt.resolver = wiki.NewResolver(cache)

	rt.tables = tables.Default()
	if cfg.Tables.Path != "" {
		t, err := tables.LoadFile(cfg.Tables.Path, rt.tables)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.tables = t
	}

	tax := ontology.DefaultTaxonomy()
	if cfg.Check.MaxAncestors > 0 {
		tax.MaxAncestors = cfg.Check.MaxAncestors
	}
	for _, id := range cfg.Check.Allow {
		tax.Allowed[id] = true
	}
	rt.classifier = ontology.New(rt.resolver, tax,
		ontology.WithPrefetch(cfg.Check.PrefetchWorkers),
		ontology.WithLogger(log))

	return rt, nil
}

// Close releases the disk cache
func (rt *runtime) Close() error {
	if rt.database == nil {
		return nil
	}
	return rt.database.Close()
}

// formatFlag registers the shared --format flag
func formatFlag(cmd *cobra.Command, def string) {
	cmd.Flags().String("format", def, "Output format: pretty, json, yaml")
}
