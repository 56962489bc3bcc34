package feature

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/teranos/wdlint/errors"
)

type featureCollection struct {
	Type     string           `json:"type"`
	Features []geojsonFeature `json:"features"`
}

type geojsonFeature struct {
	Type       string                 `json:"type"`
	ID         interface{}            `json:"id"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   *struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
}

// LoadGeoJSON reads a FeatureCollection. Properties become tags (non-string
// values are rendered with %v), "id" or the "@id" property becomes the
// element link, and the geometry's vertex average becomes the location.
func LoadGeoJSON(r io.Reader) ([]*Element, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, errors.Wrap(err, "decode geojson")
	}
	if fc.Type != "FeatureCollection" {
		return nil, errors.NewInvalidRequestError("expected a FeatureCollection, got %q", fc.Type)
	}

	elements := make([]*Element, 0, len(fc.Features))
	for i, f := range fc.Features {
		e := &Element{TagSet: make(Tags, len(f.Properties))}
		for k, v := range f.Properties {
			if v == nil {
				continue
			}
			if s, ok := v.(string); ok {
				e.TagSet[k] = s
				continue
			}
			e.TagSet[k] = fmt.Sprint(v)
		}

		switch id := f.ID.(type) {
		case string:
			e.ID = id
		case float64:
			e.ID = fmt.Sprintf("%.0f", id)
		}
		if at, ok := e.TagSet["@id"]; ok {
			e.ID = at
			delete(e.TagSet, "@id")
		}
		if e.ID == "" {
			e.ID = fmt.Sprintf("feature/%d", i)
		}

		if f.Geometry != nil {
			if loc, ok := centroid(f.Geometry.Coordinates); ok {
				e.Pos = &loc
			}
		}
		elements = append(elements, e)
	}
	return elements, nil
}

// centroid averages every [lon, lat] position in an arbitrarily nested
// coordinates array.
func centroid(raw json.RawMessage) (Location, bool) {
	var sumLat, sumLon float64
	var n int
	var walk func(json.RawMessage)
	walk = func(m json.RawMessage) {
		var pos []float64
		if json.Unmarshal(m, &pos) == nil && len(pos) >= 2 {
			sumLon += pos[0]
			sumLat += pos[1]
			n++
			return
		}
		var nested []json.RawMessage
		if json.Unmarshal(m, &nested) == nil {
			for _, child := range nested {
				walk(child)
			}
		}
	}
	if len(raw) > 0 {
		walk(raw)
	}
	if n == 0 {
		return Location{}, false
	}
	return Location{Lat: sumLat / float64(n), Lon: sumLon / float64(n)}, true
}

// SaveGeoJSON writes elements back as a FeatureCollection with point
// geometries at their locations.
func SaveGeoJSON(w io.Writer, elements []*Element) error {
	type outGeometry struct {
		Type        string     `json:"type"`
		Coordinates [2]float64 `json:"coordinates"`
	}
	type outFeature struct {
		Type       string       `json:"type"`
		ID         string       `json:"id"`
		Properties Tags         `json:"properties"`
		Geometry   *outGeometry `json:"geometry"`
	}
	out := struct {
		Type     string       `json:"type"`
		Features []outFeature `json:"features"`
	}{Type: "FeatureCollection", Features: make([]outFeature, 0, len(elements))}

	for _, e := range elements {
		f := outFeature{Type: "Feature", ID: e.ID, Properties: e.TagSet}
		if e.Pos != nil {
			f.Geometry = &outGeometry{Type: "Point", Coordinates: [2]float64{e.Pos.Lon, e.Pos.Lat}}
		}
		out.Features = append(out.Features, f)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(out), "encode geojson")
}
