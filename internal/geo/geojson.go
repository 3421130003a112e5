// Package geo holds the GeoJSON types exchanged between the drawn-shape API
// and the map page. Raw GeoJSON coordinate order is [lng, lat]; user-facing
// pairs are [lat, lng].
package geo

import (
	"encoding/json"
	"fmt"
)

// Geometry types handled by the drawings store.
const (
	TypePoint   = "Point"
	TypePolygon = "Polygon"
)

// FeatureCollection is a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Geometry   Geometry       `json:"geometry"`
}

// Geometry keeps its coordinates raw; the nesting depth depends on Type.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Point returns the geometry's [lng, lat] pair. It fails unless the geometry
// is a Point with a two-element coordinate array.
func (g Geometry) Point() ([2]float64, error) {
	if g.Type != TypePoint {
		return [2]float64{}, fmt.Errorf("geo: geometry is %s, not a point", g.Type)
	}
	var coords []float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return [2]float64{}, fmt.Errorf("geo: decoding point coordinates: %w", err)
	}
	if len(coords) < 2 {
		return [2]float64{}, fmt.Errorf("geo: point has %d coordinates", len(coords))
	}
	return [2]float64{coords[0], coords[1]}, nil
}

// PolygonRing returns the polygon's outer ring as [lng, lat] pairs. GeoJSON
// closes rings, so the first and last vertices are equal.
func (g Geometry) PolygonRing() ([][2]float64, error) {
	if g.Type != TypePolygon {
		return nil, fmt.Errorf("geo: geometry is %s, not a polygon", g.Type)
	}
	var rings [][][2]float64
	if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
		return nil, fmt.Errorf("geo: decoding polygon coordinates: %w", err)
	}
	if len(rings) == 0 {
		return nil, fmt.Errorf("geo: polygon has no rings")
	}
	return rings[0], nil
}

// Swap reverses a coordinate pair between [lng, lat] and [lat, lng].
func Swap(pair [2]float64) [2]float64 {
	return [2]float64{pair[1], pair[0]}
}

// SwapAll reverses a slice of coordinate pairs.
func SwapAll(pairs [][2]float64) [][2]float64 {
	out := make([][2]float64, len(pairs))
	for i, p := range pairs {
		out[i] = Swap(p)
	}
	return out
}

// NewPointFeature builds a Point feature from a [lng, lat] pair.
func NewPointFeature(lng, lat float64, props map[string]any) Feature {
	coords, _ := json.Marshal([2]float64{lng, lat})
	return Feature{
		Type:       "Feature",
		Properties: props,
		Geometry:   Geometry{Type: TypePoint, Coordinates: coords},
	}
}

// NewPolygonFeature builds a Polygon feature from an outer ring of
// [lng, lat] pairs.
func NewPolygonFeature(ring [][2]float64, props map[string]any) Feature {
	coords, _ := json.Marshal([][][2]float64{ring})
	return Feature{
		Type:       "Feature",
		Properties: props,
		Geometry:   Geometry{Type: TypePolygon, Coordinates: coords},
	}
}
