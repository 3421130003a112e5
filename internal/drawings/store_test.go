package drawings

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/BearMapper/BearDeterrenceMap/internal/db"
	"github.com/BearMapper/BearDeterrenceMap/internal/geo"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return NewStore(d)
}

func TestMarkerSequence(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	first, err := s.SaveMarker(ctx, Marker{Lat: 36.2, Lng: 138.25})
	if err != nil {
		t.Fatalf("SaveMarker: %v", err)
	}
	if first.ID != "0001" {
		t.Errorf("first id = %q, want 0001", first.ID)
	}

	second, err := s.SaveMarker(ctx, Marker{Lat: 36.3, Lng: 138.3})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != "0002" {
		t.Errorf("second id = %q, want 0002", second.ID)
	}

	markers, err := s.Markers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(markers) != 2 {
		t.Fatalf("markers = %d, want 2", len(markers))
	}
	if markers[0].Lat != 36.2 || markers[0].Lng != 138.25 {
		t.Errorf("marker 0 = %+v", markers[0])
	}
	if markers[0].Timestamp.IsZero() {
		t.Error("timestamp not defaulted")
	}
}

func TestMarkerDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if _, err := s.SaveMarker(ctx, Marker{ID: "0001", Lat: 1, Lng: 2}); err != nil {
		t.Fatal(err)
	}
	deleted, err := s.DeleteMarker(ctx, "0001")
	if err != nil || !deleted {
		t.Fatalf("DeleteMarker = %v, %v; want true, nil", deleted, err)
	}
	deleted, err = s.DeleteMarker(ctx, "0001")
	if err != nil {
		t.Fatal(err)
	}
	if deleted {
		t.Error("second delete reported a row")
	}

	if _, err := s.SaveMarker(ctx, Marker{Lat: 1, Lng: 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteAllMarkers(ctx); err != nil {
		t.Fatal(err)
	}
	markers, err := s.Markers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(markers) != 0 {
		t.Errorf("markers after DeleteAll = %d", len(markers))
	}
}

func TestPolygonSequenceAndRename(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	ring := [][2]float64{{138, 36}, {138.1, 36}, {138.1, 36.1}, {138, 36}}
	p, err := s.SavePolygon(ctx, Polygon{Coordinates: ring})
	if err != nil {
		t.Fatalf("SavePolygon: %v", err)
	}
	if p.ID != "poly-1" {
		t.Errorf("id = %q, want poly-1", p.ID)
	}
	if p.Name != "Area 1" {
		t.Errorf("name = %q, want Area 1", p.Name)
	}

	p2, err := s.SavePolygon(ctx, Polygon{Coordinates: ring})
	if err != nil {
		t.Fatal(err)
	}
	if p2.ID != "poly-2" {
		t.Errorf("second id = %q, want poly-2", p2.ID)
	}

	renamed, err := s.UpdatePolygonName(ctx, "poly-1", "Town limits")
	if err != nil || !renamed {
		t.Fatalf("UpdatePolygonName = %v, %v", renamed, err)
	}

	polygons, err := s.Polygons(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(polygons) != 2 {
		t.Fatalf("polygons = %d, want 2", len(polygons))
	}
	if polygons[0].Name != "Town limits" {
		t.Errorf("renamed polygon name = %q", polygons[0].Name)
	}
	if len(polygons[0].Coordinates) != 4 {
		t.Errorf("coordinates = %d vertices, want 4", len(polygons[0].Coordinates))
	}
	if polygons[0].Coordinates[0] != polygons[0].Coordinates[3] {
		t.Error("closing vertex dropped")
	}
}

func TestSaveFeatureCollection(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	raw := `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[138.25,36.2]}},
	    {"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[138,36],[138.1,36],[138.1,36.1],[138,36]]]}},
	    {"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]}}
	  ]
	}`
	var fc geo.FeatureCollection
	if err := json.Unmarshal([]byte(raw), &fc); err != nil {
		t.Fatal(err)
	}

	result, err := s.SaveFeatureCollection(ctx, fc)
	if err != nil {
		t.Fatalf("SaveFeatureCollection: %v", err)
	}
	if len(result.Markers) != 1 {
		t.Fatalf("markers = %d, want 1", len(result.Markers))
	}
	// GeoJSON coordinates are [lng, lat]; stored values are unswapped.
	if result.Markers[0].Lat != 36.2 || result.Markers[0].Lng != 138.25 {
		t.Errorf("marker = %+v", result.Markers[0])
	}
	if result.Markers[0].ID != "0001" {
		t.Errorf("marker id = %q", result.Markers[0].ID)
	}
	if len(result.Polygons) != 1 {
		t.Fatalf("polygons = %d, want 1", len(result.Polygons))
	}
	if result.Polygons[0].ID != "poly-1" || result.Polygons[0].Name != "Area 1" {
		t.Errorf("polygon = %+v", result.Polygons[0])
	}
}

func TestNextIDsOnEmptyStore(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.NextMarkerID(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if id != "0001" {
		t.Errorf("NextMarkerID = %q, want 0001", id)
	}
	n, err := s.NextPolygonID(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("NextPolygonID = %d, want 1", n)
	}
}
