package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BearMapper/BearDeterrenceMap/internal/config"
	"github.com/BearMapper/BearDeterrenceMap/internal/db"
	"github.com/BearMapper/BearDeterrenceMap/internal/deterrent"
	"github.com/BearMapper/BearDeterrenceMap/internal/drawings"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return New(config.DefaultConfig(), database)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "GET", "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestMarkerAPI(t *testing.T) {
	srv := newTestServer(t)

	// Empty list is an array, not null.
	w := doJSON(t, srv, "GET", "/api/markers", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("empty list body = %q, want []", w.Body.String())
	}

	w = doJSON(t, srv, "POST", "/api/markers", `{"lat": 36.56, "lng": 137.75}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body)
	}
	var created drawings.Marker
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal created: %v", err)
	}
	if created.ID != "0001" {
		t.Errorf("first marker ID = %q, want 0001", created.ID)
	}

	w = doJSON(t, srv, "POST", "/api/markers", `not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad body: expected 400, got %d", w.Code)
	}

	w = doJSON(t, srv, "DELETE", "/api/markers/0001", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", w.Code)
	}
	w = doJSON(t, srv, "DELETE", "/api/markers/0001", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("delete again: expected 404, got %d", w.Code)
	}
}

func TestPolygonAPI(t *testing.T) {
	srv := newTestServer(t)

	ring := `[[137.75,36.56],[137.76,36.56],[137.76,36.57],[137.75,36.56]]`
	w := doJSON(t, srv, "POST", "/api/polygons", `{"coordinates": `+ring+`}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body)
	}
	var created drawings.Polygon
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal created: %v", err)
	}
	if created.ID != "poly-1" || created.Name != "Area 1" {
		t.Errorf("created = %+v", created)
	}

	w = doJSON(t, srv, "POST", "/api/polygons", `{"coordinates": [[137.75,36.56]]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("too few vertices: expected 400, got %d", w.Code)
	}

	w = doJSON(t, srv, "PUT", "/api/polygons/poly-1/name", `{"name": "North slope"}`)
	if w.Code != http.StatusNoContent {
		t.Errorf("rename: expected 204, got %d", w.Code)
	}
	w = doJSON(t, srv, "PUT", "/api/polygons/poly-9/name", `{"name": "X"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("rename missing: expected 404, got %d", w.Code)
	}

	w = doJSON(t, srv, "GET", "/api/polygons", "")
	var polys []drawings.Polygon
	if err := json.Unmarshal(w.Body.Bytes(), &polys); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(polys) != 1 || polys[0].Name != "North slope" {
		t.Errorf("list = %+v", polys)
	}
}

func TestSaveDrawings(t *testing.T) {
	srv := newTestServer(t)

	fc := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [137.75, 36.56]}},
		{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[137.75,36.56],[137.76,36.56],[137.76,36.57],[137.75,36.56]]]}}
	]}`
	w := doJSON(t, srv, "POST", "/api/drawings", fc)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body)
	}
	var result drawings.SaveResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if len(result.Markers) != 1 || len(result.Polygons) != 1 {
		t.Errorf("result = %+v", result)
	}
	// GeoJSON [lng, lat] is stored as lat/lng.
	if result.Markers[0].Lat != 36.56 || result.Markers[0].Lng != 137.75 {
		t.Errorf("marker position = %v, %v", result.Markers[0].Lat, result.Markers[0].Lng)
	}
}

func TestDeviceAPI(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	store := deterrent.NewStore(srv.db)
	for _, d := range []deterrent.Device{
		{ID: "dev-001", DirectoryName: "cam_a", Lat: 36.56, Lng: 137.75},
		{ID: "dev-002", DirectoryName: "cam_b", Lat: 36.70, Lng: 137.90},
	} {
		if err := store.Save(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	w := doJSON(t, srv, "GET", "/api/devices", "")
	var devices []deterrent.Device
	if err := json.Unmarshal(w.Body.Bytes(), &devices); err != nil {
		t.Fatalf("unmarshal devices: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}

	w = doJSON(t, srv, "GET", "/api/devices/nearest?lat=36.57&lng=137.76&n=1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("nearest: expected 200, got %d: %s", w.Code, w.Body)
	}
	var nearest []deterrent.Device
	if err := json.Unmarshal(w.Body.Bytes(), &nearest); err != nil {
		t.Fatalf("unmarshal nearest: %v", err)
	}
	if len(nearest) != 1 || nearest[0].ID != "dev-001" {
		t.Errorf("nearest = %+v", nearest)
	}

	w = doJSON(t, srv, "GET", "/api/devices/nearest?lat=bad&lng=137.76", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad lat: expected 400, got %d", w.Code)
	}

	w = doJSON(t, srv, "GET", "/api/devices/nearest?lat=36.57&lng=137.76&n=0", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("n=0: expected 400, got %d", w.Code)
	}

	w = doJSON(t, srv, "GET", "/api/devices/dev-001/images", "")
	if w.Code != http.StatusOK {
		t.Errorf("images: expected 200, got %d", w.Code)
	}
	w = doJSON(t, srv, "GET", "/api/devices/dev-404/images", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("images for missing device: expected 404, got %d", w.Code)
	}
	w = doJSON(t, srv, "GET", "/api/devices/dev-001/images?start_hour=22", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("half hour window: expected 400, got %d", w.Code)
	}
}

func TestBearAPI(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "GET", "/api/bears", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("empty bears = %d %q", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, "GET", "/api/bears/track?start=2024-06-01T00:00:00Z", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("start without end: expected 400, got %d", w.Code)
	}
}

func TestMapPage(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	store := deterrent.NewStore(srv.db)
	if err := store.Save(ctx, deterrent.Device{ID: "dev-001", DirectoryName: "cam_a", Lat: 36.56, Lng: 137.75}); err != nil {
		t.Fatal(err)
	}
	draw := drawings.NewStore(srv.db)
	if _, err := draw.SaveMarker(ctx, drawings.Marker{Lat: 36.57, Lng: 137.76}); err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, srv, "GET", "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	page := w.Body.String()

	for _, want := range []string{
		"<title>Bear Deterrence Map</title>",
		"leaflet.draw",
		"L.tileLayer(",
		"L.AwesomeMarkers.icon(",
		"L.divIcon(",
		"new L.Control.Draw(options)",
		"fetch('/api/markers'",
		"Deterrent Devices",
		"Saved Markers",
		"L.control.layers(",
		"new WebSocket(",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("map page missing %q", want)
		}
	}
}

func TestMapPageOverlayTiles(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.Map.Tiles = append(cfg.Map.Tiles, config.TileLayer{
		Name:        "Flood Hazard",
		URL:         "https://hazard.example/flood/{z}/{x}/{y}.png",
		Attribution: "Hazard portal",
		Overlay:     true,
		Opacity:     0.7,
	})
	srv := New(cfg, database)

	w := doJSON(t, srv, "GET", "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	page := w.Body.String()

	if !strings.Contains(page, `"opacity":0.7`) {
		t.Error("configured opacity not passed to the tile layer")
	}
	if !strings.Contains(page, `"Flood Hazard": `) {
		t.Error("overlay tile missing from the layer control overlays")
	}
	// Overlay tiles stay hidden until toggled in the layer control.
	frag := page[strings.Index(page, "hazard.example"):]
	frag = frag[:strings.IndexByte(frag, '\n')]
	if strings.Contains(frag, ".addTo(") {
		t.Error("overlay tile added to the map immediately")
	}
}

func TestAboutPage(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "GET", "/about", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<h1") {
		t.Error("about markdown not rendered to HTML")
	}
	if !strings.Contains(w.Body.String(), "Back to map") {
		t.Error("about page missing back link")
	}
}
