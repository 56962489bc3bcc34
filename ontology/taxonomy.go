// Package ontology decides whether a Wikidata item is the kind of thing
// that can be the primary subject of a map feature.
//
// The classifier walks the item's type ancestry (instance of, then
// recursively subclass of) breadth first and reports the first
// disqualifying category it meets, in discovery order.
package ontology

// Category is a disqualifying kind of item.
type Category struct {
	ID     string `json:"id" yaml:"id"`         // type (or property) that matched
	Label  string `json:"label" yaml:"label"`   // "a human", "an event", ...
	Prefix string `json:"prefix" yaml:"prefix"` // suggested secondary tag prefix, "" for none
}

// PropertyRule disqualifies any item that carries Property.
type PropertyRule struct {
	Property string
	Label    string
	Prefix   string
}

// Taxonomy is the data the classifier reasons with.
type Taxonomy struct {
	Categories    map[string]Category // keyed by type id
	Cutoffs       map[string]bool     // types too abstract to expand
	PropertyRules []PropertyRule      // checked in order
	Allowed       map[string]bool     // items linkable regardless of classification
	Unlinkable    map[string]string   // direct types of pages that are never a link target
	MaxAncestors  int
}

// DefaultMaxAncestors bounds the ancestry of one item.
const DefaultMaxAncestors = 500

func cat(label, prefix string, ids ...string) []Category {
	out := make([]Category, 0, len(ids))
	for _, id := range ids {
		out = append(out, Category{ID: id, Label: label, Prefix: prefix})
	}
	return out
}

func set(ids ...string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// NewCategories indexes categories by type id. Later duplicates win.
func NewCategories(groups ...[]Category) map[string]Category {
	m := make(map[string]Category)
	for _, g := range groups {
		for _, c := range g {
			m[c.ID] = c
		}
	}
	return m
}

// DefaultTaxonomy returns the built-in taxonomy. Every call returns fresh maps.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Categories: NewCategories(
			cat("a human", "subject:", "Q5", "Q215627"),
			cat("a fictional character", "subject:", "Q95074", "Q15632617"),
			cat("an event", "subject:", "Q1656682", "Q178561", "Q198", "Q132241"),
			cat("an animal or plant", "species:", "Q16521", "Q729", "Q756", "Q10884"),
			cat("a process", "", "Q3249551"),
			cat("an activity", "", "Q1914636"),
			cat("an organization", "operator:", "Q43229"),
			cat("a company", "operator:", "Q4830453", "Q783794"),
			cat("a brand", "brand:", "Q431289", "Q167270"),
			cat("a product", "brand:", "Q2424752"),
			cat("a literary work", "subject:", "Q7725634", "Q571"),
			cat("a film", "subject:", "Q11424"),
			cat("a music album", "subject:", "Q482994"),
			cat("a song", "subject:", "Q7366"),
			cat("a creative work", "subject:", "Q17537576"),
			cat("a software", "", "Q7397"),
			cat("a sport", "", "Q349"),
			cat("a language", "", "Q34770"),
			cat("a food", "", "Q2095"),
			cat("an academic discipline", "", "Q11862829"),
			cat("an occupation", "", "Q12737077", "Q28640"),
			cat("a position", "", "Q4164871"),
		),
		Cutoffs: set(
			"Q35120",    // entity
			"Q151885",   // concept
			"Q488383",   // object
			"Q7184903",  // abstract object
			"Q223557",   // physical object
			"Q16686448", // artificial object
			"Q830077",   // subject
			"Q937228",   // property
			"Q24229398", // agent
			"Q99527517", // collection entity
			"Q23958946", // individual entity
			"Q58778",    // system
			"Q4406616",  // concrete object
			"Q16887380", // group
			"Q1190554",  // occurrence
			"Q26907166", // temporal entity
		),
		PropertyRules: []PropertyRule{
			{Property: "P247", Label: "a spacecraft", Prefix: "subject:"},
			{Property: "P61", Label: "an invention or a discovery", Prefix: "subject:"},
			{Property: "P279", Label: "an uncoordinable generic object", Prefix: ""},
			{Property: "P1552", Label: "an uncoordinable generic object", Prefix: ""},
		},
		Allowed: map[string]bool{},
		Unlinkable: map[string]string{
			"Q4167410":  "a disambiguation page",
			"Q13406463": "a list article",
			"Q4167836":  "a category page",
			"Q11266439": "a template page",
		},
		MaxAncestors: DefaultMaxAncestors,
	}
}
