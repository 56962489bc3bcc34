package wiki

import (
	"context"
)

// Source is the minimal fetch surface: one entity or one article at a time.
// Absence is reported as a nil result with a nil error.
type Source interface {
	Entity(ctx context.Context, id string, forceRefresh bool) (*Entity, error)
	Article(ctx context.Context, lang, title string, forceRefresh bool) (*Article, error)
}

// Resolver is everything the checks need from the knowledge base.
// Every method reports absence as a zero value with a nil error; errors mean
// the answer is unknown and callers treat them like absence.
type Resolver interface {
	Source
	Property(ctx context.Context, id, property string) ([]string, error)
	EntityIDForArticle(ctx context.Context, lang, title string) (string, error)
	InterwikiTitle(ctx context.Context, langFrom, title, langTo string) (string, error)
	InterwikiTitleByID(ctx context.Context, id, lang string) (string, error)
}

// derived builds the Resolver surface on top of a Source.
type derived struct {
	Source
}

// NewResolver derives a full Resolver from src.
func NewResolver(src Source) Resolver {
	if r, ok := src.(Resolver); ok {
		return r
	}
	return derived{Source: src}
}

func (d derived) Property(ctx context.Context, id, property string) ([]string, error) {
	e, err := d.Entity(ctx, id, false)
	if err != nil || e == nil {
		return nil, err
	}
	return e.Values(property), nil
}

func (d derived) EntityIDForArticle(ctx context.Context, lang, title string) (string, error) {
	a, err := d.Article(ctx, lang, title, false)
	if err != nil || a == nil {
		return "", err
	}
	return a.EntityID, nil
}

func (d derived) InterwikiTitle(ctx context.Context, langFrom, title, langTo string) (string, error) {
	id, err := d.EntityIDForArticle(ctx, langFrom, title)
	if err != nil || id == "" {
		return "", err
	}
	return d.InterwikiTitleByID(ctx, id, langTo)
}

func (d derived) InterwikiTitleByID(ctx context.Context, id, lang string) (string, error) {
	e, err := d.Entity(ctx, id, false)
	if err != nil || e == nil {
		return "", err
	}
	return e.Sitelink(lang), nil
}
