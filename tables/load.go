package tables

import (
	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"github.com/teranos/wdlint/errors"
)

// SupportedFormat is the range of override file format versions LoadFile accepts.
const SupportedFormat = ">= 1.0.0, < 2.0.0"

// overrideFile is the on-disk shape of a tables override:
//
//	format_version = "1.0.0"
//	importance = ["pl", "en"]
//	extra_languages = ["xx"]
//	unblacklist = ["Q37158"]
//	[country_languages]
//	ch = "de"
//	[[blacklist]]
//	id = "Q123"
//	prefix = "brand:"
//	expected_tags = { shop = "bakery" }
type overrideFile struct {
	FormatVersion    string            `toml:"format_version"`
	Importance       []string          `toml:"importance"`
	ExtraLanguages   []string          `toml:"extra_languages"`
	Unblacklist      []string          `toml:"unblacklist"`
	CountryLanguages map[string]string `toml:"country_languages"`
	Blacklist        []BlacklistEntry  `toml:"blacklist"`
}

// LoadFile reads overrides from path and merges them over a copy of base.
// The merged tables are validated before being returned.
func LoadFile(path string, base *Tables) (*Tables, error) {
	var f overrideFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, errors.Wrapf(err, "read tables file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Newf("tables file %s: unknown key %q", path, undecoded[0].String())
	}
	if err := checkFormat(f.FormatVersion); err != nil {
		return nil, errors.Wrapf(err, "tables file %s", path)
	}

	t := base.clone()
	for _, l := range f.ExtraLanguages {
		t.Languages[l] = true
	}
	if len(f.Importance) > 0 {
		t.Importance = append([]string(nil), f.Importance...)
	}
	for _, id := range f.Unblacklist {
		delete(t.Blacklist, id)
	}
	for _, e := range f.Blacklist {
		t.Blacklist[e.ID] = e
	}
	for k, v := range f.CountryLanguages {
		t.CountryLanguages[k] = v
	}

	if err := t.Validate(); err != nil {
		return nil, errors.WithHintf(errors.Wrapf(err, "tables file %s", path),
			"blacklist keys must look like Q123 and prefixes like \"brand:\"")
	}
	return t, nil
}

func checkFormat(version string) error {
	if version == "" {
		return errors.New("format_version is required")
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(err, "invalid format_version %q", version)
	}
	c, err := semver.NewConstraint(SupportedFormat)
	if err != nil {
		return errors.Wrap(err, "invalid supported format constraint")
	}
	if !c.Check(v) {
		return errors.Newf("format_version %s is not supported (want %s)", version, SupportedFormat)
	}
	return nil
}

func (t *Tables) clone() *Tables {
	out := &Tables{
		Languages:        make(map[string]bool, len(t.Languages)),
		Importance:       append([]string(nil), t.Importance...),
		Blacklist:        make(map[string]BlacklistEntry, len(t.Blacklist)),
		CountryLanguages: make(map[string]string, len(t.CountryLanguages)),
	}
	for k, v := range t.Languages {
		out.Languages[k] = v
	}
	for k, v := range t.Blacklist {
		out.Blacklist[k] = v
	}
	for k, v := range t.CountryLanguages {
		out.CountryLanguages[k] = v
	}
	return out
}
