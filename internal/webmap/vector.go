package webmap

import (
	"encoding/json"
	"fmt"
)

// Polygon is a filled ring of (lat, lng) vertices.
type Polygon struct {
	Locations   [][2]float64 // lat, lng order
	Color       string
	FillColor   string
	FillOpacity float64
	Weight      int
	Tooltip     string
	Popup       *Popup

	name string
}

// NewPolygon creates a polygon from (lat, lng) vertices.
func NewPolygon(locations [][2]float64) *Polygon {
	return &Polygon{
		Locations:   locations,
		Color:       "blue",
		FillColor:   "blue",
		FillOpacity: 0.2,
		Weight:      2,
		name:        elementName("polygon"),
	}
}

func (p *Polygon) Name() string { return p.name }

func (p *Polygon) Render(ctx *Context) error {
	if ctx == nil || ctx.Doc == nil {
		return &StructuralError{Element: "polygon " + p.name}
	}

	locs, err := json.Marshal(p.Locations)
	if err != nil {
		return fmt.Errorf("marshaling polygon vertices: %w", err)
	}
	opts, err := json.Marshal(map[string]any{
		"color":       p.Color,
		"fillColor":   p.FillColor,
		"fillOpacity": p.FillOpacity,
		"weight":      p.Weight,
	})
	if err != nil {
		return fmt.Errorf("marshaling polygon options: %w", err)
	}

	frag := fmt.Sprintf("var %s = L.polygon(%s, %s)", p.name, locs, opts)
	if p.Popup != nil {
		bind, err := p.Popup.bindJS()
		if err != nil {
			return err
		}
		frag += bind
	}
	if p.Tooltip != "" {
		tip, err := json.Marshal(p.Tooltip)
		if err != nil {
			return fmt.Errorf("marshaling tooltip: %w", err)
		}
		frag += fmt.Sprintf(".bindTooltip(%s)", tip)
	}
	frag += fmt.Sprintf(".addTo(%s);", ctx.Parent)
	ctx.Doc.AppendScript(frag)
	return nil
}

// PolyLine is an open path of (lat, lng) vertices, used for movement tracks.
// A non-empty LayerName registers the line as a toggleable overlay.
type PolyLine struct {
	Locations [][2]float64 // lat, lng order
	Color     string
	Weight    int
	Opacity   float64
	Tooltip   string
	LayerName string

	name string
}

// NewPolyLine creates a path from (lat, lng) vertices.
func NewPolyLine(locations [][2]float64) *PolyLine {
	return &PolyLine{
		Locations: locations,
		Color:     "blue",
		Weight:    3,
		Opacity:   0.8,
		name:      elementName("poly_line"),
	}
}

func (l *PolyLine) Name() string { return l.name }

func (l *PolyLine) Render(ctx *Context) error {
	if ctx == nil || ctx.Doc == nil {
		return &StructuralError{Element: "poly line " + l.name}
	}

	locs, err := json.Marshal(l.Locations)
	if err != nil {
		return fmt.Errorf("marshaling poly line vertices: %w", err)
	}
	opts, err := json.Marshal(map[string]any{
		"color":   l.Color,
		"weight":  l.Weight,
		"opacity": l.Opacity,
	})
	if err != nil {
		return fmt.Errorf("marshaling poly line options: %w", err)
	}

	frag := fmt.Sprintf("var %s = L.polyline(%s, %s)", l.name, locs, opts)
	if l.Tooltip != "" {
		tip, err := json.Marshal(l.Tooltip)
		if err != nil {
			return fmt.Errorf("marshaling tooltip: %w", err)
		}
		frag += fmt.Sprintf(".bindTooltip(%s)", tip)
	}
	frag += fmt.Sprintf(".addTo(%s);", ctx.Parent)
	ctx.Doc.AppendScript(frag)
	if l.LayerName != "" && ctx.Surface != nil {
		ctx.Surface.registerOverlay(l.LayerName, l.name)
	}
	return nil
}
