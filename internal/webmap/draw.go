package webmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"text/template"
)

// DrawOptions configures a DrawControl. Start from DefaultDrawOptions and
// override what you need; NewDrawControl normalizes empty fields back to the
// defaults.
type DrawOptions struct {
	// Export adds a floating button that downloads every drawn shape as a
	// GeoJSON FeatureCollection named Filename.
	Export   bool
	Filename string

	// FeatureGroup is an externally-owned group to host drawn shapes. When
	// nil the control creates and owns a new group attached to the map.
	FeatureGroup *FeatureGroup

	// Position places the toolbar in one of the four map corners.
	Position Position

	// ShowGeometryOnClick attaches a click handler to each drawn shape that
	// displays and logs its GeoJSON text.
	ShowGeometryOnClick bool

	// ReturnCoords invokes CoordsCallback with the [lat, lng] pair of each
	// newly drawn point marker. The callback body is opaque text.
	ReturnCoords   bool
	CoordsCallback JS

	// SaveToFile adds a floating button that downloads the [lat, lng] pairs
	// of all drawn point markers, pretty-printed, named CoordsFilename.
	SaveToFile     bool
	CoordsFilename string

	// Draw and Edit configure the drawing and editing toolbars.
	Draw DrawToolbar
	Edit EditToolbar

	// EventHandlers attaches opaque handler code to every drawn shape,
	// keyed by event name.
	EventHandlers map[string]JS
}

// DefaultDrawOptions returns the option defaults: toolbar top-left, geometry
// shown on click, no export or save buttons.
func DefaultDrawOptions() DrawOptions {
	return DrawOptions{
		Filename:            "data.geojson",
		Position:            PositionTopLeft,
		ShowGeometryOnClick: true,
		CoordsFilename:      "coordinates.json",
	}
}

// Bool returns a pointer for toolbar toggles.
func Bool(v bool) *bool { return &v }

// DrawToolbar toggles the drawing tools. Nil fields keep the Leaflet.draw
// default; Extra passes anything else through untouched (tool option
// objects included).
type DrawToolbar struct {
	Polyline     *bool
	Polygon      *bool
	Rectangle    *bool
	Circle       *bool
	Marker       *bool
	CircleMarker *bool
	Extra        map[string]any
}

func (t DrawToolbar) optionMap() map[string]any {
	m := make(map[string]any, len(t.Extra)+6)
	for k, v := range t.Extra {
		m[k] = v
	}
	setTool(m, "polyline", t.Polyline)
	setTool(m, "polygon", t.Polygon)
	setTool(m, "rectangle", t.Rectangle)
	setTool(m, "circle", t.Circle)
	setTool(m, "marker", t.Marker)
	setTool(m, "circlemarker", t.CircleMarker)
	return m
}

// EditToolbar toggles the editing tools.
type EditToolbar struct {
	Edit   *bool
	Remove *bool
	Extra  map[string]any
}

func (t EditToolbar) optionMap() map[string]any {
	m := make(map[string]any, len(t.Extra)+2)
	for k, v := range t.Extra {
		m[k] = v
	}
	setTool(m, "edit", t.Edit)
	setTool(m, "remove", t.Remove)
	return m
}

func setTool(m map[string]any, key string, v *bool) {
	if v != nil {
		m[key] = *v
	}
}

// DrawControl is a drawing and editing toolbar for a map surface. It is a
// write-once generator: construct it, attach it to a Map, render. The
// generated script captures each drawn shape's geometry and feeds it back to
// the page through the configured callback, buttons and accessors.
type DrawControl struct {
	opts DrawOptions
	name string
}

// NewDrawControl creates a draw control. Empty filenames and position fall
// back to the defaults; an unrecognized position is an error.
func NewDrawControl(opts DrawOptions) (*DrawControl, error) {
	if opts.Position == "" {
		opts.Position = PositionTopLeft
	}
	if !validPositions[opts.Position] {
		return nil, fmt.Errorf("webmap: invalid draw control position %q", opts.Position)
	}
	if opts.Filename == "" {
		opts.Filename = "data.geojson"
	}
	if opts.CoordsFilename == "" {
		opts.CoordsFilename = "coordinates.json"
	}
	if opts.EventHandlers == nil {
		opts.EventHandlers = map[string]JS{}
	}
	return &DrawControl{opts: opts, name: elementName("draw_control")}, nil
}

func (c *DrawControl) Name() string { return c.name }

// drawButtonCSS styles the two floating download buttons.
const drawButtonCSS = `<style>
#export, #save-coords {
    position: absolute;
    right: 10px;
    z-index: 999;
    background: white;
    color: black;
    padding: 6px;
    border-radius: 4px;
    font-family: 'Helvetica Neue';
    cursor: pointer;
    font-size: 12px;
    text-decoration: none;
}
#export { top: 90px; }
#save-coords { top: 130px; }
</style>`

type drawHandler struct {
	Event string // JSON-quoted event name
	Code  string
}

type drawData struct {
	Name                string
	Parent              string
	Position            string // JSON-quoted
	DrawJSON            string
	EditJSON            string
	Group               string
	NewGroup            bool
	ShowGeometryOnClick bool
	Callback            string // empty when not invoked
	Export              bool
	SaveToFile          bool
	Filename            string // JSON-quoted
	CoordsFilename      string // JSON-quoted
	Handlers            []drawHandler
}

var drawTmpl = template.Must(template.New("draw").Parse(drawScript))

const drawScript = `var options = {
    position: {{.Position}},
    draw: {{.DrawJSON}},
    edit: {{.EditJSON}}
};
{{- if .NewGroup}}
var {{.Group}} = new L.featureGroup().addTo({{.Parent}});
{{- end}}
options.edit.featureGroup = {{.Group}};
var {{.Name}} = new L.Control.Draw(options).addTo({{.Parent}});
var lastCoords_{{.Name}} = null;
{{.Parent}}.on(L.Draw.Event.CREATED, function(e) {
    var layer = e.layer,
        type = e.layerType;
    var geoJson = layer.toGeoJSON();
    var coords = JSON.stringify(geoJson);
    if (type === 'marker') {
        lastCoords_{{.Name}} = geoJson.geometry.coordinates;
        var latLng = [geoJson.geometry.coordinates[1], geoJson.geometry.coordinates[0]];
{{- if .Callback}}
        ({{.Callback}})(latLng);
{{- end}}
        window.lastDrawnCoords_{{.Name}} = function() {
            return lastCoords_{{.Name}};
        };
    }
{{- if .ShowGeometryOnClick}}
    layer.on('click', function() {
        alert(coords);
        console.log(coords);
    });
{{- end}}
{{- range .Handlers}}
    layer.on({{.Event}}, {{.Code}});
{{- end}}
    {{.Group}}.addLayer(layer);
});
{{.Parent}}.on('draw:created', function(e) {
    {{.Group}}.addLayer(e.layer);
});
{{- if .Export}}
document.getElementById('export').onclick = function(e) {
    var data = {{.Group}}.toGeoJSON();
    var payload = 'text/json;charset=utf-8,' + encodeURIComponent(JSON.stringify(data));
    document.getElementById('export').setAttribute('href', 'data:' + payload);
    document.getElementById('export').setAttribute('download', {{.Filename}});
};
{{- end}}
{{- if .SaveToFile}}
document.getElementById('save-coords').onclick = function(e) {
    var features = {{.Group}}.toGeoJSON().features;
    var points = features.filter(function(f) {
        return f.geometry.type === 'Point';
    }).map(function(f) {
        return [f.geometry.coordinates[1], f.geometry.coordinates[0]];
    });
    var payload = 'text/json;charset=utf-8,' + encodeURIComponent(JSON.stringify(points, null, 2));
    document.getElementById('save-coords').setAttribute('href', 'data:' + payload);
    document.getElementById('save-coords').setAttribute('download', {{.CoordsFilename}});
};
{{- end}}
window.drawnShapes_{{.Name}} = function() {
    return {{.Group}}.toGeoJSON();
};`

// Render appends the control's fragments: button styles into the header when
// a download button is enabled, one anchor per enabled button into the body,
// and the wiring script. Nothing is appended when the context has no
// renderable document.
func (c *DrawControl) Render(ctx *Context) error {
	if ctx == nil || ctx.Doc == nil {
		return &StructuralError{Element: "draw control " + c.name}
	}

	data, err := c.templateData(ctx.Parent)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := drawTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering draw control script: %w", err)
	}

	if c.opts.Export || c.opts.SaveToFile {
		ctx.Doc.AppendHeader(drawButtonCSS)
	}
	if c.opts.Export {
		ctx.Doc.AppendBody(`<a href='#' id='export'>Export GeoJSON</a>`)
	}
	if c.opts.SaveToFile {
		ctx.Doc.AppendBody(`<a href='#' id='save-coords'>Save Coordinates</a>`)
	}
	ctx.Doc.AppendScript(buf.String())
	return nil
}

// templateData serializes the options into template inputs. Configuration
// values are embedded as JSON literals, never raw interpolation; only the
// opaque code fragments go in verbatim.
func (c *DrawControl) templateData(parent string) (*drawData, error) {
	drawJSON, err := json.Marshal(c.opts.Draw.optionMap())
	if err != nil {
		return nil, fmt.Errorf("marshaling draw toolbar options: %w", err)
	}
	editJSON, err := json.Marshal(c.opts.Edit.optionMap())
	if err != nil {
		return nil, fmt.Errorf("marshaling edit toolbar options: %w", err)
	}
	position, err := json.Marshal(c.opts.Position)
	if err != nil {
		return nil, err
	}
	filename, err := json.Marshal(c.opts.Filename)
	if err != nil {
		return nil, err
	}
	coordsFilename, err := json.Marshal(c.opts.CoordsFilename)
	if err != nil {
		return nil, err
	}

	group := "drawnItems_" + c.name
	newGroup := true
	if c.opts.FeatureGroup != nil {
		group = c.opts.FeatureGroup.Name()
		newGroup = false
	}

	callback := ""
	if c.opts.ReturnCoords && c.opts.CoordsCallback != "" {
		callback = string(c.opts.CoordsCallback)
	}

	events := make([]string, 0, len(c.opts.EventHandlers))
	for event := range c.opts.EventHandlers {
		events = append(events, event)
	}
	sort.Strings(events)
	handlers := make([]drawHandler, 0, len(events))
	for _, event := range events {
		quoted, err := json.Marshal(event)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, drawHandler{
			Event: string(quoted),
			Code:  string(c.opts.EventHandlers[event]),
		})
	}

	return &drawData{
		Name:                c.name,
		Parent:              parent,
		Position:            string(position),
		DrawJSON:            string(drawJSON),
		EditJSON:            string(editJSON),
		Group:               group,
		NewGroup:            newGroup,
		ShowGeometryOnClick: c.opts.ShowGeometryOnClick,
		Callback:            callback,
		Export:              c.opts.Export,
		SaveToFile:          c.opts.SaveToFile,
		Filename:            string(filename),
		CoordsFilename:      string(coordsFilename),
		Handlers:            handlers,
	}, nil
}
