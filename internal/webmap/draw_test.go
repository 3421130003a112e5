package webmap

import (
	"errors"
	"strings"
	"testing"
)

func renderControl(t *testing.T, opts DrawOptions) (*DrawControl, *Document) {
	t.Helper()
	c, err := NewDrawControl(opts)
	if err != nil {
		t.Fatalf("NewDrawControl: %v", err)
	}
	doc := NewDocument("test")
	m := NewMap("test", [2]float64{36.2, 138.25}, 10)
	if err := c.Render(&Context{Doc: doc, Surface: m, Parent: m.Name()}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return c, doc
}

func scriptText(doc *Document) string {
	return strings.Join(doc.Script(), "\n")
}

func TestDrawControlDefaults(t *testing.T) {
	c, err := NewDrawControl(DrawOptions{})
	if err != nil {
		t.Fatalf("NewDrawControl: %v", err)
	}
	if c.opts.Filename != "data.geojson" {
		t.Errorf("Filename = %q, want data.geojson", c.opts.Filename)
	}
	if c.opts.CoordsFilename != "coordinates.json" {
		t.Errorf("CoordsFilename = %q, want coordinates.json", c.opts.CoordsFilename)
	}
	if c.opts.Position != PositionTopLeft {
		t.Errorf("Position = %q, want topleft", c.opts.Position)
	}
	if c.opts.EventHandlers == nil {
		t.Error("EventHandlers not defaulted to an empty map")
	}
}

func TestDrawControlInvalidPosition(t *testing.T) {
	if _, err := NewDrawControl(DrawOptions{Position: "center"}); err == nil {
		t.Fatal("expected error for invalid position")
	}
}

func TestDrawControlStyleFragment(t *testing.T) {
	cases := []struct {
		name       string
		export     bool
		saveToFile bool
		want       int
	}{
		{"neither", false, false, 0},
		{"export only", true, false, 1},
		{"save only", false, true, 1},
		{"both", true, true, 1},
	}
	for _, tc := range cases {
		opts := DefaultDrawOptions()
		opts.Export = tc.export
		opts.SaveToFile = tc.saveToFile
		_, doc := renderControl(t, opts)
		styles := 0
		for _, frag := range doc.Header() {
			if strings.Contains(frag, "#export") {
				styles++
			}
		}
		if styles != tc.want {
			t.Errorf("%s: style fragments = %d, want %d", tc.name, styles, tc.want)
		}
	}
}

func TestDrawControlAnchors(t *testing.T) {
	opts := DefaultDrawOptions()
	opts.Export = true
	_, doc := renderControl(t, opts)

	body := strings.Join(doc.Body(), "\n")
	if !strings.Contains(body, `id='export'`) {
		t.Error("export anchor missing")
	}
	if !strings.Contains(body, "Export GeoJSON") {
		t.Error("export anchor label missing")
	}
	if strings.Contains(body, "save-coords") {
		t.Error("save-coords anchor present without SaveToFile")
	}

	opts = DefaultDrawOptions()
	opts.SaveToFile = true
	_, doc = renderControl(t, opts)
	body = strings.Join(doc.Body(), "\n")
	if !strings.Contains(body, `id='save-coords'`) {
		t.Error("save-coords anchor missing")
	}
	if strings.Contains(body, `id='export'`) {
		t.Error("export anchor present without Export")
	}
}

func TestDrawControlUniqueNames(t *testing.T) {
	doc := NewDocument("test")
	m := NewMap("test", [2]float64{0, 0}, 5)
	ctx := &Context{Doc: doc, Surface: m, Parent: m.Name()}

	a, err := NewDrawControl(DefaultDrawOptions())
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewDrawControl(DefaultDrawOptions())
	if err != nil {
		t.Fatal(err)
	}
	if a.Name() == b.Name() {
		t.Fatalf("two controls share the name %q", a.Name())
	}
	if err := a.Render(ctx); err != nil {
		t.Fatal(err)
	}
	if err := b.Render(ctx); err != nil {
		t.Fatal(err)
	}

	script := scriptText(doc)
	for _, c := range []*DrawControl{a, b} {
		for _, ident := range []string{
			"drawnItems_" + c.Name(),
			"lastCoords_" + c.Name(),
			"window.lastDrawnCoords_" + c.Name(),
			"window.drawnShapes_" + c.Name(),
		} {
			if !strings.Contains(script, ident) {
				t.Errorf("script missing identifier %s", ident)
			}
		}
	}
}

func TestDrawControlReusesSuppliedGroup(t *testing.T) {
	group := NewFeatureGroup("Drawn shapes")
	opts := DefaultDrawOptions()
	opts.FeatureGroup = group
	c, doc := renderControl(t, opts)

	script := scriptText(doc)
	if !strings.Contains(script, "options.edit.featureGroup = "+group.Name()+";") {
		t.Error("edit target is not the supplied group")
	}
	if strings.Contains(script, "drawnItems_"+c.Name()) {
		t.Error("control constructed its own group despite a supplied one")
	}
}

func TestDrawControlCoordsCallback(t *testing.T) {
	opts := DefaultDrawOptions()
	opts.ReturnCoords = true
	opts.CoordsCallback = "cb"
	c, doc := renderControl(t, opts)

	script := scriptText(doc)
	if !strings.Contains(script, "(cb)(latLng)") {
		t.Error("callback invocation missing")
	}
	// Invocation must sit inside the marker branch: after the type check,
	// before the branch closes with the accessor definition.
	branch := script[strings.Index(script, "if (type === 'marker')"):]
	call := strings.Index(branch, "(cb)(latLng)")
	accessor := strings.Index(branch, "window.lastDrawnCoords_"+c.Name())
	if call < 0 || accessor < 0 || call > accessor {
		t.Error("callback is not inside the marker-creation branch")
	}
	if !strings.Contains(branch, "[geoJson.geometry.coordinates[1], geoJson.geometry.coordinates[0]]") {
		t.Error("callback argument is not the swapped-order pair")
	}
}

func TestDrawControlNoCallbackWithoutReturnCoords(t *testing.T) {
	opts := DefaultDrawOptions()
	opts.CoordsCallback = "cb"
	_, doc := renderControl(t, opts)
	if strings.Contains(scriptText(doc), "(cb)(latLng)") {
		t.Error("callback invoked despite ReturnCoords=false")
	}
}

func TestDrawControlSaveHandler(t *testing.T) {
	opts := DefaultDrawOptions()
	opts.SaveToFile = true
	opts.CoordsFilename = "points.json"
	_, doc := renderControl(t, opts)

	script := scriptText(doc)
	handler := script[strings.Index(script, "save-coords"):]
	if !strings.Contains(handler, "f.geometry.type === 'Point'") {
		t.Error("save handler does not filter to point features")
	}
	if !strings.Contains(handler, "[f.geometry.coordinates[1], f.geometry.coordinates[0]]") {
		t.Error("save handler does not swap coordinate order")
	}
	if !strings.Contains(handler, "JSON.stringify(points, null, 2)") {
		t.Error("save handler does not pretty-print")
	}
	if !strings.Contains(handler, `"points.json"`) {
		t.Error("save handler does not use the configured filename")
	}
}

func TestDrawControlEventHandlers(t *testing.T) {
	opts := DefaultDrawOptions()
	opts.EventHandlers = map[string]JS{
		"mouseover": "function(e) { hover(e); }",
		"dblclick":  "function(e) { zoom(e); }",
	}
	_, doc := renderControl(t, opts)

	script := scriptText(doc)
	if !strings.Contains(script, `layer.on("dblclick", function(e) { zoom(e); });`) {
		t.Error("dblclick handler missing")
	}
	if !strings.Contains(script, `layer.on("mouseover", function(e) { hover(e); });`) {
		t.Error("mouseover handler missing")
	}
	// Deterministic emit order: sorted by event name.
	if strings.Index(script, `"dblclick"`) > strings.Index(script, `"mouseover"`) {
		t.Error("handlers not emitted in sorted order")
	}
}

func TestDrawControlToolbarOptions(t *testing.T) {
	opts := DefaultDrawOptions()
	opts.Draw = DrawToolbar{
		Polyline: Bool(false),
		Polygon:  Bool(true),
		Circle:   Bool(false),
		Extra:    map[string]any{"marker": map[string]any{"repeatMode": true}},
	}
	opts.Edit = EditToolbar{Edit: Bool(false)}
	_, doc := renderControl(t, opts)

	script := scriptText(doc)
	if !strings.Contains(script, `"polyline":false`) {
		t.Error("polyline toggle missing")
	}
	if !strings.Contains(script, `"polygon":true`) {
		t.Error("polygon toggle missing")
	}
	if !strings.Contains(script, `"marker":{"repeatMode":true}`) {
		t.Error("extra toolbar option not passed through")
	}
	if !strings.Contains(script, `edit: {"edit":false}`) {
		t.Error("edit toolbar options missing")
	}
}

func TestDrawControlDoubleSubscription(t *testing.T) {
	_, doc := renderControl(t, DefaultDrawOptions())
	script := scriptText(doc)
	if !strings.Contains(script, "L.Draw.Event.CREATED") {
		t.Error("CREATED subscription missing")
	}
	if !strings.Contains(script, "'draw:created'") {
		t.Error("second draw:created subscription missing")
	}
	if got := strings.Count(script, ".addLayer("); got < 2 {
		t.Errorf("addLayer calls = %d, want at least 2 (both subscriptions add the shape)", got)
	}
}

func TestDrawControlExportScenario(t *testing.T) {
	opts := DefaultDrawOptions()
	opts.Export = true
	opts.Position = PositionBottomRight
	_, doc := renderControl(t, opts)

	header := strings.Join(doc.Header(), "\n")
	if !strings.Contains(header, "#export") {
		t.Error("header missing button style")
	}
	body := strings.Join(doc.Body(), "\n")
	if !strings.Contains(body, `<a href='#' id='export'>Export GeoJSON</a>`) {
		t.Error("body missing export anchor")
	}
	if strings.Contains(body, "save-coords") {
		t.Error("unexpected save-coords anchor")
	}
	script := scriptText(doc)
	if !strings.Contains(script, `position: "bottomright"`) {
		t.Error("script missing bottomright position")
	}
	if !strings.Contains(script, `"data.geojson"`) {
		t.Error("script missing default export filename")
	}
}

func TestDrawControlDetachedRender(t *testing.T) {
	c, err := NewDrawControl(DefaultDrawOptions())
	if err != nil {
		t.Fatal(err)
	}
	err = c.Render(&Context{})
	var structural *StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("err = %v, want StructuralError", err)
	}

	// Render through a map whose context has no document: nothing appended.
	err = c.Render(nil)
	if !errors.As(err, &structural) {
		t.Fatalf("nil context err = %v, want StructuralError", err)
	}
}

func TestDrawControlDetachedAppendsNothing(t *testing.T) {
	c, err := NewDrawControl(DrawOptions{Export: true, SaveToFile: true})
	if err != nil {
		t.Fatal(err)
	}
	ctx := &Context{Doc: nil, Parent: "map_x"}
	if err := c.Render(ctx); err == nil {
		t.Fatal("expected error")
	}
}
