package wiki

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/teranos/wdlint/db"
	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/logger"
)

// DefaultLRUSize is the number of entities and of articles kept in memory.
const DefaultLRUSize = 4096

// CacheOptions configures a Cache.
type CacheOptions struct {
	LRUSize int
	TTL     time.Duration // 0 keeps disk entries forever
}

// Cache is a read-through Source decorator with an in-memory LRU in front
// of an optional SQLite store. Misses are cached as well as hits.
type Cache struct {
	src      Source
	db       *sql.DB
	ttl      time.Duration
	entities *lru.Cache
	articles *lru.Cache
	flight   singleflight.Group
	logger   *zap.SugaredLogger
	now      func() time.Time

	hits       atomic.Int64
	misses     atomic.Int64
	diskClosed atomic.Bool
}

// entry wraps a cached value so absence can be cached.
type entityEntry struct{ entity *Entity }
type articleEntry struct{ article *Article }

// NewCache decorates src. conn may be nil for a memory-only cache; otherwise
// it must already carry the entities and articles tables (db.Migrate).
func NewCache(src Source, conn *sql.DB, opts CacheOptions, log *zap.SugaredLogger) (*Cache, error) {
	size := opts.LRUSize
	if size <= 0 {
		size = DefaultLRUSize
	}
	entities, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "create entity lru")
	}
	articles, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "create article lru")
	}
	return &Cache{
		src:      src,
		db:       conn,
		ttl:      opts.TTL,
		entities: entities,
		articles: articles,
		logger:   logger.OrNop(log).With(logger.FieldComponent, "wiki.cache"),
		now:      time.Now,
	}, nil
}

// Entity implements Source.
func (c *Cache) Entity(ctx context.Context, id string, forceRefresh bool) (*Entity, error) {
	if !forceRefresh {
		if v, ok := c.entities.Get(id); ok {
			c.hits.Add(1)
			return v.(entityEntry).entity, nil
		}
		var e *Entity
		if found := c.loadDisk(ctx, "SELECT body, fetched_at FROM entities WHERE requested_id = ?", &e, id); found {
			c.hits.Add(1)
			c.entities.Add(id, entityEntry{e})
			return e, nil
		}
	}
	c.misses.Add(1)

	v, err, _ := c.flight.Do("entity:"+id, func() (interface{}, error) {
		e, err := c.src.Entity(ctx, id, forceRefresh)
		if err != nil {
			return nil, err
		}
		c.entities.Add(id, entityEntry{e})
		c.storeDisk(ctx, `INSERT INTO entities (requested_id, body, fetched_at) VALUES (?, ?, ?)
			ON CONFLICT(requested_id) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
			e, id)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entity), nil
}

// Article implements Source. Titles are keyed in normalized form.
func (c *Cache) Article(ctx context.Context, lang, title string, forceRefresh bool) (*Article, error) {
	norm := NormalizeTitle(title)
	key := lang + ":" + norm
	if !forceRefresh {
		if v, ok := c.articles.Get(key); ok {
			c.hits.Add(1)
			return v.(articleEntry).article, nil
		}
		var a *Article
		if found := c.loadDisk(ctx, "SELECT body, fetched_at FROM articles WHERE lang = ? AND title = ?", &a, lang, norm); found {
			c.hits.Add(1)
			c.articles.Add(key, articleEntry{a})
			return a, nil
		}
	}
	c.misses.Add(1)

	v, err, _ := c.flight.Do("article:"+key, func() (interface{}, error) {
		a, err := c.src.Article(ctx, lang, title, forceRefresh)
		if err != nil {
			return nil, err
		}
		c.articles.Add(key, articleEntry{a})
		c.storeDisk(ctx, `INSERT INTO articles (lang, title, body, fetched_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(lang, title) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
			a, lang, norm)
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Article), nil
}

// loadDisk reads one row into out (a **Entity or **Article). Disk failures
// are logged and treated as misses.
func (c *Cache) loadDisk(ctx context.Context, query string, out interface{}, args ...interface{}) bool {
	if c.db == nil || c.diskClosed.Load() {
		return false
	}
	var body sql.NullString
	var fetchedAt int64
	err := c.db.QueryRowContext(ctx, query, args...).Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		c.diskFailed("read", err)
		return false
	}
	if c.ttl > 0 && c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		return false
	}
	if !body.Valid {
		return true
	}
	if err := json.Unmarshal([]byte(body.String), out); err != nil {
		c.logger.Warnw("cache entry corrupt", logger.FieldError, err)
		return false
	}
	return true
}

// storeDisk upserts value (nil records absence). key args come first in the
// statement, then body and timestamp.
func (c *Cache) storeDisk(ctx context.Context, stmt string, value interface{}, keys ...interface{}) {
	if c.db == nil || c.diskClosed.Load() {
		return
	}
	var body sql.NullString
	if !isNil(value) {
		raw, err := json.Marshal(value)
		if err != nil {
			c.logger.Warnw("cache encode failed", logger.FieldError, err)
			return
		}
		body = sql.NullString{String: string(raw), Valid: true}
	}
	args := append(keys, body, c.now().Unix())
	if _, err := c.db.ExecContext(ctx, stmt, args...); err != nil {
		c.diskFailed("write", err)
	}
}

// diskFailed logs a disk layer error. A closed database switches the disk
// layer off for the rest of the cache's life.
func (c *Cache) diskFailed(op string, err error) {
	if db.IsDatabaseClosed(err) {
		if !c.diskClosed.Swap(true) {
			c.logger.Debugw("cache database closed, using memory only", logger.FieldOperation, op)
		}
		return
	}
	c.logger.Warnw("cache "+op+" failed", logger.FieldOperation, op, logger.FieldError, err)
}

func isNil(v interface{}) bool {
	switch t := v.(type) {
	case *Entity:
		return t == nil
	case *Article:
		return t == nil
	}
	return v == nil
}

// CacheStats summarises both cache layers.
type CacheStats struct {
	MemoryEntities int   `json:"memory_entities" yaml:"memory_entities"`
	MemoryArticles int   `json:"memory_articles" yaml:"memory_articles"`
	DiskEntities   int   `json:"disk_entities" yaml:"disk_entities"`
	DiskArticles   int   `json:"disk_articles" yaml:"disk_articles"`
	DiskMissing    int   `json:"disk_missing" yaml:"disk_missing"`
	Hits           int64 `json:"hits" yaml:"hits"`
	Misses         int64 `json:"misses" yaml:"misses"`
}

// Stats counts cached records.
func (c *Cache) Stats(ctx context.Context) (CacheStats, error) {
	s := CacheStats{
		MemoryEntities: c.entities.Len(),
		MemoryArticles: c.articles.Len(),
		Hits:           c.hits.Load(),
		Misses:         c.misses.Load(),
	}
	if c.db == nil {
		return s, nil
	}
	err := c.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM entities),
		(SELECT COUNT(*) FROM articles),
		(SELECT COUNT(*) FROM entities WHERE body IS NULL) + (SELECT COUNT(*) FROM articles WHERE body IS NULL)`).
		Scan(&s.DiskEntities, &s.DiskArticles, &s.DiskMissing)
	if err != nil {
		return s, errors.Wrap(err, "count cache rows")
	}
	return s, nil
}

// Clear drops every cached record from both layers.
func (c *Cache) Clear(ctx context.Context) error {
	c.entities.Purge()
	c.articles.Purge()
	if c.db == nil {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin clear")
	}
	for _, stmt := range []string{"DELETE FROM entities", "DELETE FROM articles"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "clear cache: %s", stmt)
		}
	}
	return errors.Wrap(tx.Commit(), "commit clear")
}
