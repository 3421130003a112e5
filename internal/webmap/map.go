package webmap

import (
	"fmt"
)

// Map is the surface every other element attaches to. Rendering a Map emits
// the map div and the L.map bootstrap, then renders children in the order
// they were added.
type Map struct {
	Title        string
	Center       [2]float64 // lat, lng
	Zoom         int
	ControlScale bool

	name     string
	children []Element

	// named layers registered by children during the render pass, consumed
	// by LayerControl.
	baseLayers []namedLayer
	overlays   []namedLayer
}

type namedLayer struct {
	display string
	jsName  string
}

// NewMap creates a map surface centered on (lat, lng).
func NewMap(title string, center [2]float64, zoom int) *Map {
	return &Map{
		Title:        title,
		Center:       center,
		Zoom:         zoom,
		ControlScale: true,
		name:         elementName("map"),
	}
}

// Name returns the map's unique JS identifier.
func (m *Map) Name() string { return m.name }

// Add attaches a child element. Children render in add order, so layer
// controls must be added after the layers they list.
func (m *Map) Add(children ...Element) *Map {
	m.children = append(m.children, children...)
	return m
}

// registerBaseLayer records a named base layer for the layer control.
func (m *Map) registerBaseLayer(display, jsName string) {
	m.baseLayers = append(m.baseLayers, namedLayer{display: display, jsName: jsName})
}

// registerOverlay records a named overlay for the layer control.
func (m *Map) registerOverlay(display, jsName string) {
	m.overlays = append(m.overlays, namedLayer{display: display, jsName: jsName})
}

// Render appends the map's fragments and then renders every child.
func (m *Map) Render(ctx *Context) error {
	if ctx == nil || ctx.Doc == nil {
		return &StructuralError{Element: "map " + m.name}
	}

	ctx.Doc.AppendHeader(fmt.Sprintf(
		`<style>#%s { position: relative; width: 100%%; height: 100vh; }</style>`, m.name))
	ctx.Doc.AppendBody(fmt.Sprintf(`<div id=%q></div>`, m.name))

	frag := fmt.Sprintf("var %s = L.map(%q, {center: [%v, %v], zoom: %d});",
		m.name, m.name, m.Center[0], m.Center[1], m.Zoom)
	if m.ControlScale {
		frag += fmt.Sprintf("\nL.control.scale().addTo(%s);", m.name)
	}
	ctx.Doc.AppendScript(frag)

	child := &Context{Doc: ctx.Doc, Surface: m, Parent: m.name}
	for _, c := range m.children {
		if err := c.Render(child); err != nil {
			return fmt.Errorf("rendering %s: %w", c.Name(), err)
		}
	}
	return nil
}

// HTML assembles a standalone page containing only this map.
func (m *Map) HTML() (string, error) {
	doc := NewDocument(m.Title)
	if err := m.Render(&Context{Doc: doc, Surface: m, Parent: m.name}); err != nil {
		return "", err
	}
	return doc.HTML(), nil
}
