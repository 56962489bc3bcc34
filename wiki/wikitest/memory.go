// Package wikitest provides an in-memory knowledge base for tests.
package wikitest

import (
	"context"
	"sync"

	"github.com/teranos/wdlint/wiki"
)

// Memory is an in-memory wiki.Source. It is safe for concurrent use and
// counts fetches so tests can assert on caching and traversal behavior.
type Memory struct {
	mu              sync.Mutex
	entities        map[string]*wiki.Entity
	entityRedirects map[string]string
	articles        map[string]*wiki.Article
	articleRedirect map[string]string
	failures        map[string]error
	entityCalls     map[string]int
	articleCalls    map[string]int
}

// New creates an empty knowledge base.
func New() *Memory {
	return &Memory{
		entities:        make(map[string]*wiki.Entity),
		entityRedirects: make(map[string]string),
		articles:        make(map[string]*wiki.Article),
		articleRedirect: make(map[string]string),
		failures:        make(map[string]error),
		entityCalls:     make(map[string]int),
		articleCalls:    make(map[string]int),
	}
}

// Resolver wraps the fixture in the derived wiki.Resolver.
func (m *Memory) Resolver() wiki.Resolver {
	return wiki.NewResolver(m)
}

// Item adds (or extends) an entity with claims.
func (m *Memory) Item(id string, claims map[string][]string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entityLocked(id)
	for p, vs := range claims {
		e.Claims[p] = append(e.Claims[p], vs...)
	}
	return m
}

// Label sets the English label of an entity.
func (m *Memory) Label(id, label string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entityLocked(id).Labels["en"] = label
	return m
}

// InstanceOf records P31 claims.
func (m *Memory) InstanceOf(id string, types ...string) *Memory {
	return m.Item(id, map[string][]string{wiki.PropInstanceOf: types})
}

// SubclassOf records P279 claims.
func (m *Memory) SubclassOf(id string, parents ...string) *Memory {
	return m.Item(id, map[string][]string{wiki.PropSubclassOf: parents})
}

// Sitelink connects an entity and an article in both directions.
func (m *Memory) Sitelink(id, lang, title string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entityLocked(id).Sitelinks[lang] = title
	m.articles[key(lang, title)] = &wiki.Article{Lang: lang, Title: wiki.NormalizeTitle(title), EntityID: id}
	return m
}

// Page adds an article that exists with no Wikidata item, or with a given one,
// without adding a sitelink on the entity.
func (m *Memory) Page(lang, title, entityID string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articles[key(lang, title)] = &wiki.Article{Lang: lang, Title: wiki.NormalizeTitle(title), EntityID: entityID}
	return m
}

// RedirectEntity makes from resolve to the entity to.
func (m *Memory) RedirectEntity(from, to string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entityRedirects[from] = to
	return m
}

// RedirectArticle makes lang:from a redirect to lang:to.
func (m *Memory) RedirectArticle(lang, from, to string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articleRedirect[key(lang, from)] = key(lang, to)
	return m
}

// Fail makes fetches of an entity id (or "lang:Title") return err.
func (m *Memory) Fail(idOrLink string, err error) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[idOrLink] = err
	return m
}

// EntityCalls returns how many times id was fetched.
func (m *Memory) EntityCalls(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entityCalls[id]
}

// ArticleCalls returns how many times lang:title was fetched.
func (m *Memory) ArticleCalls(lang, title string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.articleCalls[key(lang, title)]
}

// Entity implements wiki.Source.
func (m *Memory) Entity(_ context.Context, id string, _ bool) (*wiki.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entityCalls[id]++
	if err, ok := m.failures[id]; ok {
		return nil, err
	}
	target := id
	if to, ok := m.entityRedirects[id]; ok {
		target = to
	}
	e, ok := m.entities[target]
	if !ok {
		return nil, nil
	}
	return copyEntity(e), nil
}

// Article implements wiki.Source.
func (m *Memory) Article(_ context.Context, lang, title string, _ bool) (*wiki.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(lang, title)
	m.articleCalls[k]++
	if err, ok := m.failures[k]; ok {
		return nil, err
	}
	var redirectedFrom string
	if to, ok := m.articleRedirect[k]; ok {
		redirectedFrom = wiki.NormalizeTitle(title)
		k = to
	}
	a, ok := m.articles[k]
	if !ok {
		return nil, nil
	}
	out := *a
	out.RedirectedFrom = redirectedFrom
	return &out, nil
}

func (m *Memory) entityLocked(id string) *wiki.Entity {
	e, ok := m.entities[id]
	if !ok {
		e = &wiki.Entity{
			ID:        id,
			Labels:    make(map[string]string),
			Claims:    make(map[string][]string),
			Sitelinks: make(map[string]string),
		}
		m.entities[id] = e
	}
	return e
}

func key(lang, title string) string {
	return lang + ":" + wiki.NormalizeTitle(title)
}

func copyEntity(e *wiki.Entity) *wiki.Entity {
	out := &wiki.Entity{
		ID:        e.ID,
		Labels:    make(map[string]string, len(e.Labels)),
		Claims:    make(map[string][]string, len(e.Claims)),
		Sitelinks: make(map[string]string, len(e.Sitelinks)),
	}
	for k, v := range e.Labels {
		out.Labels[k] = v
	}
	for k, v := range e.Claims {
		out.Claims[k] = append([]string(nil), v...)
	}
	for k, v := range e.Sitelinks {
		out.Sitelinks[k] = v
	}
	return out
}
