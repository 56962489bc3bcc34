package feature

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/wdlint/errors"
)

func TestTagsHelpers(t *testing.T) {
	tags := Tags{
		"wikidata":       "Q42",
		"brand:wikidata": "Q37158",
		"wikipedia:de":   "Berlin",
		"wikipedia":      "en:Berlin",
		"name":           "Foo",
	}

	assert.Equal(t, []string{"brand:wikidata"}, tags.WithSuffix("wikidata"))
	assert.Equal(t, []string{"wikipedia", "wikipedia:de"}, tags.WithPrefix("wikipedia"))
	assert.True(t, tags.Has("name"))
	assert.Equal(t, "", tags.Get("missing"))

	clone := tags.Clone()
	clone["name"] = "Bar"
	assert.Equal(t, "Foo", tags["name"])
}

func TestURL(t *testing.T) {
	assert.Equal(t, "https://www.openstreetmap.org/node/123", URL("node/123"))
	assert.Equal(t, "https://www.openstreetmap.org/relation/9", URL("relation/9"))
	assert.Equal(t, "feature/0", URL("feature/0"))
	assert.Equal(t, "", URL(""))
}

func TestParseTagArgs(t *testing.T) {
	tags, err := ParseTagArgs(`wikidata=Q42 'name=Douglas Adams' "wikipedia=en:Douglas Adams" note=`)
	require.NoError(t, err)
	assert.Equal(t, Tags{
		"wikidata":  "Q42",
		"name":      "Douglas Adams",
		"wikipedia": "en:Douglas Adams",
		"note":      "",
	}, tags)

	_, err = ParseTagArgs(`wikidata`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = ParseTagArgs(`name='unterminated`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

const sample = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": "node/240109189",
      "properties": {"amenity": "cafe", "wikidata": "Q37158", "level": 1, "note": null},
      "geometry": {"type": "Point", "coordinates": [13.4, 52.5]}
    },
    {
      "type": "Feature",
      "properties": {"@id": "way/7", "building": "yes"},
      "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [2, 0], [2, 2], [0, 2]]]}
    },
    {
      "type": "Feature",
      "properties": {"name": "nowhere"},
      "geometry": null
    }
  ]
}`

func TestLoadGeoJSON(t *testing.T) {
	elements, err := LoadGeoJSON(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, elements, 3)

	cafe := elements[0]
	assert.Equal(t, "node/240109189", cafe.Link())
	assert.Equal(t, Tags{"amenity": "cafe", "wikidata": "Q37158", "level": "1"}, cafe.Tags())
	loc, ok := cafe.Location()
	require.True(t, ok)
	assert.InDelta(t, 52.5, loc.Lat, 1e-9)
	assert.InDelta(t, 13.4, loc.Lon, 1e-9)

	building := elements[1]
	assert.Equal(t, "way/7", building.Link())
	assert.False(t, building.Tags().Has("@id"))
	loc, ok = building.Location()
	require.True(t, ok)
	assert.InDelta(t, 1.0, loc.Lat, 1e-9)
	assert.InDelta(t, 1.0, loc.Lon, 1e-9)

	_, ok = elements[2].Location()
	assert.False(t, ok)
	assert.Equal(t, "feature/2", elements[2].Link())
}

func TestLoadGeoJSONRejectsOtherTypes(t *testing.T) {
	_, err := LoadGeoJSON(strings.NewReader(`{"type": "Feature"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = LoadGeoJSON(strings.NewReader(`not json`))
	require.Error(t, err)
}

func TestSaveGeoJSONRoundTrip(t *testing.T) {
	elements, err := LoadGeoJSON(strings.NewReader(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, SaveGeoJSON(&buf, elements))

	again, err := LoadGeoJSON(&buf)
	require.NoError(t, err)
	require.Len(t, again, 3)
	assert.Equal(t, elements[0].Tags(), again[0].Tags())
	assert.Equal(t, "way/7", again[1].Link())
	_, ok := again[2].Location()
	assert.False(t, ok)
}
