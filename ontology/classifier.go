package ontology

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/wdlint/logger"
	"github.com/teranos/wdlint/wiki"
)

// Classifier answers ontology questions about items through a resolver.
// Resolver failures are logged and treated as missing data.
type Classifier struct {
	resolver wiki.Resolver
	tax      Taxonomy
	workers  int
	logger   *zap.SugaredLogger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithPrefetch fetches each ancestry layer with up to n concurrent requests.
// Traversal order is unaffected.
func WithPrefetch(n int) Option {
	return func(c *Classifier) { c.workers = n }
}

// WithLogger sets the logger; nil keeps it silent.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Classifier) { c.logger = logger.OrNop(l) }
}

// New creates a Classifier over tax.
func New(r wiki.Resolver, tax Taxonomy, opts ...Option) *Classifier {
	if tax.MaxAncestors <= 0 {
		tax.MaxAncestors = DefaultMaxAncestors
	}
	c := &Classifier{resolver: r, tax: tax, workers: 1, logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.FieldComponent, "ontology")
	return c
}

// Taxonomy returns the data the classifier was built with.
func (c *Classifier) Taxonomy() Taxonomy {
	return c.tax
}

// IsAllowed reports whether id is explicitly linkable. Callers consult it
// before Classify and PropertyDisqualification.
func (c *Classifier) IsAllowed(id string) bool {
	return c.tax.Allowed[id]
}

// Ancestry returns every type reachable from id through instance of and then
// subclass of, in breadth-first discovery order. Cutoff types are neither
// included nor expanded, and each type appears once.
func (c *Classifier) Ancestry(ctx context.Context, id string) []string {
	var out []string
	c.walk(ctx, id, func(t string) bool {
		out = append(out, t)
		return false
	})
	return out
}

// Classify returns the disqualifying category of the first categorised
// ancestry member, or nil. An unknown item or an unreachable resolver yields
// nil.
func (c *Classifier) Classify(ctx context.Context, id string) *Category {
	var found *Category
	c.walk(ctx, id, func(t string) bool {
		if cat, ok := c.tax.Categories[t]; ok {
			cat.ID = t
			found = &cat
			return true
		}
		return false
	})
	return found
}

// PropertyDisqualification returns the first property rule, in rule order,
// whose property the item carries.
func (c *Classifier) PropertyDisqualification(ctx context.Context, id string) *Category {
	e, err := c.resolver.Entity(ctx, id, false)
	if err != nil {
		c.logger.Warnw("entity lookup failed", logger.FieldEntityID, id, logger.FieldError, err)
		return nil
	}
	for _, rule := range c.tax.PropertyRules {
		if e.Has(rule.Property) {
			return &Category{ID: rule.Property, Label: rule.Label, Prefix: rule.Prefix}
		}
	}
	return nil
}

// Unlinkable reports whether id is directly an instance of a page kind that
// is never a link target (disambiguation pages, lists), with its description.
func (c *Classifier) Unlinkable(ctx context.Context, id string) (string, bool) {
	for _, t := range c.instanceOf(ctx, id) {
		if desc, ok := c.tax.Unlinkable[t]; ok {
			return desc, true
		}
	}
	return "", false
}

// Explanation is everything the classifier knows about one item.
type Explanation struct {
	ID         string    `json:"id" yaml:"id"`
	Allowed    bool      `json:"allowed" yaml:"allowed"`
	Ancestry   []string  `json:"ancestry" yaml:"ancestry"`
	Category   *Category `json:"category,omitempty" yaml:"category,omitempty"`
	ByProperty *Category `json:"by_property,omitempty" yaml:"by_property,omitempty"`
	Unlinkable string    `json:"unlinkable,omitempty" yaml:"unlinkable,omitempty"`
	Truncated  bool      `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

// Explain runs every classification and records the full ancestry.
func (c *Classifier) Explain(ctx context.Context, id string) Explanation {
	ex := Explanation{
		ID:         id,
		Allowed:    c.IsAllowed(id),
		Ancestry:   c.Ancestry(ctx, id),
		Category:   c.Classify(ctx, id),
		ByProperty: c.PropertyDisqualification(ctx, id),
	}
	ex.Truncated = len(ex.Ancestry) >= c.tax.MaxAncestors
	ex.Unlinkable, _ = c.Unlinkable(ctx, id)
	return ex
}

// walk visits ancestry members in breadth-first discovery order until visit
// returns true. Layers are fetched together so a prefetching resolver can
// run them concurrently; members are still visited one by one in order.
func (c *Classifier) walk(ctx context.Context, id string, visit func(string) bool) {
	seen := make(map[string]bool)
	count := 0
	stop := false

	// add records t and reports whether it joins the next layer
	add := func(t string) bool {
		if stop || seen[t] || c.tax.Cutoffs[t] {
			return false
		}
		seen[t] = true
		count++
		if visit(t) || count >= c.tax.MaxAncestors {
			stop = true
		}
		return true
	}

	var frontier []string
	for _, t := range c.instanceOf(ctx, id) {
		if add(t) {
			frontier = append(frontier, t)
		}
	}
	for len(frontier) > 0 && !stop && ctx.Err() == nil {
		parents := c.fetchLayer(ctx, frontier)
		var next []string
		for i := range frontier {
			for _, p := range parents[i] {
				if add(p) {
					next = append(next, p)
				}
			}
		}
		frontier = next
	}
}

func (c *Classifier) instanceOf(ctx context.Context, id string) []string {
	return c.property(ctx, id, wiki.PropInstanceOf)
}

func (c *Classifier) property(ctx context.Context, id, prop string) []string {
	values, err := c.resolver.Property(ctx, id, prop)
	if err != nil {
		c.logger.Debugw("property lookup failed",
			logger.FieldEntityID, id,
			logger.FieldProperty, prop,
			logger.FieldError, err,
		)
		return nil
	}
	return values
}

// fetchLayer returns the subclass-of targets of every frontier member,
// aligned with frontier.
func (c *Classifier) fetchLayer(ctx context.Context, frontier []string) [][]string {
	parents := make([][]string, len(frontier))
	if c.workers <= 1 || len(frontier) == 1 {
		for i, t := range frontier {
			parents[i] = c.property(ctx, t, wiki.PropSubclassOf)
		}
		return parents
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, t := range frontier {
		g.Go(func() error {
			parents[i] = c.property(gctx, t, wiki.PropSubclassOf)
			return nil
		})
	}
	_ = g.Wait()
	return parents
}
