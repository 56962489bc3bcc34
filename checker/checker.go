// Package checker runs the link checks for one feature and picks the single
// most important problem.
//
// Checks run in three stages. Critical checks look at the raw tags. The
// reorderable checks each test the effective wikidata id and link. The
// inference stage proposes a missing link. The first report wins.
package checker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/feature"
	"github.com/teranos/wdlint/logger"
	"github.com/teranos/wdlint/ontology"
	"github.com/teranos/wdlint/report"
	"github.com/teranos/wdlint/tables"
	"github.com/teranos/wdlint/validate"
	"github.com/teranos/wdlint/wiki"
)

// Options tunes a Checker.
type Options struct {
	Languages        []string // preferred link languages, before the importance order
	ExpectedLanguage string   // language links should use; overrides Country
	Country          string   // ISO 3166-1 alpha-2 code used to look up the expected language
	ProposeMissing   bool     // run the inference stage
}

// Checker evaluates features one at a time. It is safe to reuse across
// features; the only state shared between them is the resolver's cache.
type Checker struct {
	resolver   wiki.Resolver
	tables     *tables.Tables
	classifier *ontology.Classifier
	validator  *validate.Validator
	opts       Options
	logger     *zap.SugaredLogger
}

// New wires a Checker.
func New(r wiki.Resolver, t *tables.Tables, c *ontology.Classifier, opts Options, log *zap.SugaredLogger) (*Checker, error) {
	v, err := validate.New(r, t, opts.Languages, log)
	if err != nil {
		return nil, err
	}
	return &Checker{
		resolver:   r,
		tables:     t,
		classifier: c,
		validator:  v,
		opts:       opts,
		logger:     logger.OrNop(log).With(logger.FieldComponent, "checker"),
	}, nil
}

// Validator exposes the underlying resolver-backed checks.
func (c *Checker) Validator() *validate.Validator {
	return c.validator
}

// expectedLanguage resolves the language links are expected in, or "".
func (c *Checker) expectedLanguage() string {
	if c.opts.ExpectedLanguage != "" {
		return c.opts.ExpectedLanguage
	}
	return c.tables.ExpectedLanguage(c.opts.Country)
}

// subject is what the reorderable checks look at.
type subject struct {
	tags    feature.Tags
	id      string
	link    wiki.Link
	hasLink bool
}

type check struct {
	name string
	run  func(ctx context.Context, s *subject) *report.Report
}

// Check returns the most important problem with f, bound to f, or nil.
// The error is non-nil only when ctx is done.
func (c *Checker) Check(ctx context.Context, f feature.Feature) (*report.Report, error) {
	start := time.Now()
	tags := f.Tags()
	log := c.logger.With(logger.FieldFeature, f.Link())

	s := &subject{tags: tags}
	stages := []struct {
		name   string
		checks []check
		before func(ctx context.Context)
	}{
		{name: "critical", checks: c.criticalChecks()},
		{name: "reorderable", checks: c.reorderableChecks(), before: func(ctx context.Context) {
			s.id = c.validator.EffectiveWikidata(ctx, tags)
			s.link, s.hasLink = c.validator.EffectiveLink(ctx, tags, s.id)
		}},
		{name: "inference", checks: c.inferenceChecks()},
	}

	for _, stage := range stages {
		if stage.name == "inference" && !c.opts.ProposeMissing {
			continue
		}
		if stage.before != nil {
			stage.before(ctx)
		}
		for _, chk := range stage.checks {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrapf(err, "check %s", f.Link())
			}
			if r := chk.run(ctx, s); r != nil {
				log.Debugw("problem found",
					logger.FieldStage, stage.name,
					logger.FieldOperation, chk.name,
					logger.FieldErrorID, r.ErrorID,
					logger.FieldDurationMS, time.Since(start).Milliseconds(),
				)
				return r.Bind(f), nil
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "check %s", f.Link())
	}
	log.Debugw("no problem found", logger.FieldDurationMS, time.Since(start).Milliseconds())
	return nil, nil
}

// CheckAll checks features in order and returns the reports found.
func (c *Checker) CheckAll(ctx context.Context, features []feature.Feature) ([]*report.Report, error) {
	var reports []*report.Report
	for _, f := range features {
		r, err := c.Check(ctx, f)
		if err != nil {
			return reports, err
		}
		if r != nil {
			reports = append(reports, r)
		}
	}
	c.logger.Infow("batch checked",
		logger.FieldCount, len(features),
		"problems", len(reports),
	)
	return reports, nil
}

func (c *Checker) criticalChecks() []check {
	return []check{
		{"malformed wikidata", func(_ context.Context, s *subject) *report.Report {
			return validate.MalformedWikidata(s.tags)
		}},
		{"malformed secondary wikidata", func(_ context.Context, s *subject) *report.Report {
			for _, key := range validate.SecondaryWikidataKeys(s.tags) {
				if r := validate.MalformedSecondaryWikidata(key, s.tags[key]); r != nil {
					return r
				}
			}
			return nil
		}},
		{"malformed wikipedia", func(_ context.Context, s *subject) *report.Report {
			return validate.MalformedWikipedia(s.tags, c.tables)
		}},
		{"malformed legacy", func(_ context.Context, s *subject) *report.Report {
			return validate.UnknownLegacyLanguage(s.tags, c.tables)
		}},
		{"legacy form", func(ctx context.Context, s *subject) *report.Report {
			return c.validator.LegacyForm(ctx, s.tags)
		}},
		{"wikidata exists", func(ctx context.Context, s *subject) *report.Report {
			return c.validator.WikidataExists(ctx, s.tags)
		}},
		{"wikipedia exists", func(ctx context.Context, s *subject) *report.Report {
			return c.validator.WikipediaExists(ctx, s.tags)
		}},
		{"mismatch", func(ctx context.Context, s *subject) *report.Report {
			return c.validator.Mismatch(ctx, s.tags)
		}},
	}
}

func (c *Checker) reorderableChecks() []check {
	return []check{
		{"blacklist", c.blacklisted},
		{"unlinkable", c.unlinkable},
		{"secondary tag", c.secondaryTag},
		{"language", c.unexpectedLanguage},
		{"no longer exists", c.noLongerExists},
	}
}

func (c *Checker) inferenceChecks() []check {
	return []check{
		{"wikipedia from wikidata", c.wikipediaFromWikidata},
		{"wikidata from wikipedia", c.wikidataFromWikipedia},
	}
}
