package wiki_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/wdlint/db"
	"github.com/teranos/wdlint/errors"
	qtest "github.com/teranos/wdlint/internal/testing"
	"github.com/teranos/wdlint/wiki"
	"github.com/teranos/wdlint/wiki/wikitest"
)

func newDiskCache(t *testing.T, src wiki.Source) *wiki.Cache {
	t.Helper()
	conn := qtest.CreateTestDB(t)
	require.NoError(t, db.Migrate(conn, nil))
	c, err := wiki.NewCache(src, conn, wiki.CacheOptions{LRUSize: 16}, nil)
	require.NoError(t, err)
	return c
}

func TestCacheMemoizesHitsAndMisses(t *testing.T) {
	kb := wikitest.New().InstanceOf("Q42", "Q5").Sitelink("Q42", "en", "Douglas Adams")
	c := newDiskCache(t, kb)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		e, err := c.Entity(ctx, "Q42", false)
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.Equal(t, []string{"Q5"}, e.Values(wiki.PropInstanceOf))

		missing, err := c.Entity(ctx, "Q999", false)
		require.NoError(t, err)
		assert.Nil(t, missing)

		a, err := c.Article(ctx, "en", "douglas_Adams", false)
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, "Q42", a.EntityID)
	}

	assert.Equal(t, 1, kb.EntityCalls("Q42"))
	assert.Equal(t, 1, kb.EntityCalls("Q999"), "absence is cached too")
	assert.Equal(t, 1, kb.ArticleCalls("en", "Douglas Adams"))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DiskEntities)
	assert.Equal(t, 1, stats.DiskArticles)
	assert.Equal(t, 1, stats.DiskMissing)
	assert.Equal(t, int64(3), stats.Misses)
	assert.Equal(t, int64(6), stats.Hits)
}

func TestCacheForceRefresh(t *testing.T) {
	kb := wikitest.New().InstanceOf("Q42", "Q5")
	c := newDiskCache(t, kb)
	ctx := context.Background()

	_, err := c.Entity(ctx, "Q42", false)
	require.NoError(t, err)

	kb.InstanceOf("Q42", "Q36180")
	e, err := c.Entity(ctx, "Q42", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q5"}, e.Values(wiki.PropInstanceOf), "cached entries are immutable")

	e, err = c.Entity(ctx, "Q42", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q5", "Q36180"}, e.Values(wiki.PropInstanceOf))
	assert.Equal(t, 2, kb.EntityCalls("Q42"))

	e, err = c.Entity(ctx, "Q42", false)
	require.NoError(t, err)
	assert.Len(t, e.Values(wiki.PropInstanceOf), 2, "refresh overwrites the cached entry")
}

func TestCacheDiskSurvivesMemory(t *testing.T) {
	conn := qtest.CreateTestDB(t)
	require.NoError(t, db.Migrate(conn, nil))
	kb := wikitest.New().InstanceOf("Q42", "Q5")
	ctx := context.Background()

	first, err := wiki.NewCache(kb, conn, wiki.CacheOptions{}, nil)
	require.NoError(t, err)
	_, err = first.Entity(ctx, "Q42", false)
	require.NoError(t, err)
	_, err = first.Entity(ctx, "Q7", false)
	require.NoError(t, err)

	second, err := wiki.NewCache(kb, conn, wiki.CacheOptions{}, nil)
	require.NoError(t, err)
	e, err := second.Entity(ctx, "Q42", false)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "Q42", e.ID)
	missing, err := second.Entity(ctx, "Q7", false)
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.Equal(t, 1, kb.EntityCalls("Q42"))
	assert.Equal(t, 1, kb.EntityCalls("Q7"))
}

func TestCacheDoesNotStoreErrors(t *testing.T) {
	kb := wikitest.New().Fail("Q1", errors.ErrServiceUnavailable)
	c := newDiskCache(t, kb)
	ctx := context.Background()

	_, err := c.Entity(ctx, "Q1", false)
	require.Error(t, err)
	_, err = c.Entity(ctx, "Q1", false)
	require.Error(t, err)
	assert.Equal(t, 2, kb.EntityCalls("Q1"))
}

func TestCacheClear(t *testing.T) {
	kb := wikitest.New().InstanceOf("Q42", "Q5")
	c := newDiskCache(t, kb)
	ctx := context.Background()

	_, err := c.Entity(ctx, "Q42", false)
	require.NoError(t, err)
	require.NoError(t, c.Clear(ctx))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.DiskEntities)
	assert.Zero(t, stats.MemoryEntities)

	_, err = c.Entity(ctx, "Q42", false)
	require.NoError(t, err)
	assert.Equal(t, 2, kb.EntityCalls("Q42"))
}

func TestCacheMemoryOnly(t *testing.T) {
	kb := wikitest.New().InstanceOf("Q42", "Q5")
	c, err := wiki.NewCache(kb, nil, wiki.CacheOptions{LRUSize: 1}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Entity(ctx, "Q42", false)
	require.NoError(t, err)
	_, err = c.Entity(ctx, "Q43", false)
	require.NoError(t, err)
	_, err = c.Entity(ctx, "Q42", false)
	require.NoError(t, err)
	assert.Equal(t, 2, kb.EntityCalls("Q42"), "size one evicts the older entry")

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MemoryEntities)
}

func TestCacheDiskFailuresFallThrough(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery("SELECT body, fetched_at FROM entities").
		WithArgs("Q42").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectExec("INSERT INTO entities").
		WithArgs("Q42", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("database or disk is full"))

	kb := wikitest.New().InstanceOf("Q42", "Q5")
	c, err := wiki.NewCache(kb, conn, wiki.CacheOptions{}, nil)
	require.NoError(t, err)

	e, err := c.Entity(context.Background(), "Q42", false)
	require.NoError(t, err, "disk errors never surface to the caller")
	require.NotNil(t, e)
	assert.Equal(t, 1, kb.EntityCalls("Q42"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheClosedDatabaseFallsBackToMemory(t *testing.T) {
	conn := qtest.CreateTestDB(t)
	require.NoError(t, db.Migrate(conn, nil))
	core, logs := observer.New(zap.DebugLevel)

	kb := wikitest.New().InstanceOf("Q42", "Q5").InstanceOf("Q64", "Q515")
	c, err := wiki.NewCache(kb, conn, wiki.CacheOptions{}, zap.New(core).Sugar())
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	ctx := context.Background()
	for _, id := range []string{"Q42", "Q64", "Q42"} {
		e, err := c.Entity(ctx, id, false)
		require.NoError(t, err)
		require.NotNil(t, e)
	}
	assert.Equal(t, 1, kb.EntityCalls("Q42"), "memory layer still serves hits")
	assert.Equal(t, 1, logs.FilterMessage("cache database closed, using memory only").Len())
	assert.Zero(t, logs.FilterLevelExact(zap.WarnLevel).Len(), "a closed database is not a failure")
}

func TestCacheExpiredDiskEntry(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	stale := time.Now().Add(-48 * time.Hour).Unix()
	mock.ExpectQuery("SELECT body, fetched_at FROM entities").
		WithArgs("Q42").
		WillReturnRows(sqlmock.NewRows([]string{"body", "fetched_at"}).AddRow(`{"id":"Q42"}`, stale))
	mock.ExpectExec("INSERT INTO entities").
		WithArgs("Q42", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	kb := wikitest.New().InstanceOf("Q42", "Q5")
	c, err := wiki.NewCache(kb, conn, wiki.CacheOptions{TTL: 24 * time.Hour}, nil)
	require.NoError(t, err)

	e, err := c.Entity(context.Background(), "Q42", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q5"}, e.Values(wiki.PropInstanceOf))
	assert.Equal(t, 1, kb.EntityCalls("Q42"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
