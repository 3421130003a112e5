package geo

import (
	"encoding/json"
	"testing"
)

func TestPoint(t *testing.T) {
	var f Feature
	raw := `{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[138.25,36.2]}}`
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		t.Fatal(err)
	}
	p, err := f.Geometry.Point()
	if err != nil {
		t.Fatalf("Point: %v", err)
	}
	if p != [2]float64{138.25, 36.2} {
		t.Errorf("point = %v, want [138.25 36.2]", p)
	}
	if got := Swap(p); got != [2]float64{36.2, 138.25} {
		t.Errorf("Swap = %v, want [36.2 138.25]", got)
	}
}

func TestPointWrongType(t *testing.T) {
	g := Geometry{Type: TypePolygon, Coordinates: json.RawMessage(`[[[0,0],[1,0],[0,0]]]`)}
	if _, err := g.Point(); err == nil {
		t.Error("expected error for non-point geometry")
	}
}

func TestPolygonRing(t *testing.T) {
	g := Geometry{
		Type:        TypePolygon,
		Coordinates: json.RawMessage(`[[[138.0,36.0],[138.1,36.0],[138.1,36.1],[138.0,36.0]]]`),
	}
	ring, err := g.PolygonRing()
	if err != nil {
		t.Fatalf("PolygonRing: %v", err)
	}
	if len(ring) != 4 {
		t.Fatalf("ring length = %d, want 4", len(ring))
	}
	if ring[0] != ring[3] {
		t.Error("ring is not closed")
	}
	if ring[2] != [2]float64{138.1, 36.1} {
		t.Errorf("ring[2] = %v", ring[2])
	}
}

func TestRoundTripFeatures(t *testing.T) {
	fc := FeatureCollection{
		Type: "FeatureCollection",
		Features: []Feature{
			NewPointFeature(138.25, 36.2, map[string]any{"id": "0001"}),
			NewPolygonFeature([][2]float64{{138, 36}, {138.1, 36}, {138, 36}}, nil),
		},
	}
	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatal(err)
	}
	var back FeatureCollection
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if len(back.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(back.Features))
	}
	p, err := back.Features[0].Geometry.Point()
	if err != nil {
		t.Fatal(err)
	}
	if p != [2]float64{138.25, 36.2} {
		t.Errorf("point = %v", p)
	}
	if back.Features[1].Geometry.Type != TypePolygon {
		t.Errorf("second feature type = %s", back.Features[1].Geometry.Type)
	}
}
