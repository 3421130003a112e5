package webmap

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Popup is HTML content bound to a shape and opened on click.
type Popup struct {
	HTML     string
	MaxWidth int
}

// NewPopup creates a popup with raw HTML content.
func NewPopup(html string) *Popup {
	return &Popup{HTML: html, MaxWidth: 300}
}

// NewMarkdownPopup renders markdown to HTML for the popup body. Device notes
// are written in markdown, so popups get the same GFM treatment as the about
// page.
func NewMarkdownPopup(markdown string) (*Popup, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("converting popup markdown: %w", err)
	}
	return &Popup{HTML: buf.String(), MaxWidth: 300}, nil
}

// bindJS returns the bindPopup call chained onto a shape expression.
func (p *Popup) bindJS() (string, error) {
	content, err := json.Marshal(p.HTML)
	if err != nil {
		return "", fmt.Errorf("marshaling popup content: %w", err)
	}
	opts := ""
	if p.MaxWidth > 0 {
		opts = fmt.Sprintf(", {maxWidth: %d}", p.MaxWidth)
	}
	return fmt.Sprintf(".bindPopup(%s%s)", content, opts), nil
}

// Icon is a stock Leaflet marker icon with a color and glyph. Deterrent
// devices use color "red" with the "warning-sign" glyph.
type Icon struct {
	Color string
	Glyph string
}

func (i *Icon) optionJS(name string) (string, error) {
	opts, err := json.Marshal(map[string]any{
		"markerColor": i.Color,
		"icon":        i.Glyph,
		"prefix":      "glyphicon",
	})
	if err != nil {
		return "", fmt.Errorf("marshaling icon options: %w", err)
	}
	return fmt.Sprintf("var %s_icon = L.AwesomeMarkers.icon(%s);", name, opts), nil
}

// DivIcon renders arbitrary HTML in place of the stock marker image. Saved
// markers use it for their numbered badges.
type DivIcon struct {
	HTML string
	Size [2]int
}

func (i *DivIcon) optionJS(name string) (string, error) {
	opts := map[string]any{"html": i.HTML, "className": ""}
	if i.Size != [2]int{} {
		opts["iconSize"] = []int{i.Size[0], i.Size[1]}
	}
	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("marshaling div icon options: %w", err)
	}
	return fmt.Sprintf("var %s_icon = L.divIcon(%s);", name, optsJSON), nil
}

// Marker is a single point on the map.
type Marker struct {
	Location [2]float64 // lat, lng
	Popup    *Popup
	Tooltip  string
	Icon     *Icon
	DivIcon  *DivIcon

	name string
}

// NewMarker creates a marker at (lat, lng).
func NewMarker(location [2]float64) *Marker {
	return &Marker{Location: location, name: elementName("marker")}
}

func (m *Marker) Name() string { return m.name }

func (m *Marker) Render(ctx *Context) error {
	if ctx == nil || ctx.Doc == nil {
		return &StructuralError{Element: "marker " + m.name}
	}

	frag := ""
	iconOpt := ""
	switch {
	case m.Icon != nil:
		js, err := m.Icon.optionJS(m.name)
		if err != nil {
			return err
		}
		frag += js + "\n"
		iconOpt = fmt.Sprintf(", {icon: %s_icon}", m.name)
	case m.DivIcon != nil:
		js, err := m.DivIcon.optionJS(m.name)
		if err != nil {
			return err
		}
		frag += js + "\n"
		iconOpt = fmt.Sprintf(", {icon: %s_icon}", m.name)
	}

	frag += fmt.Sprintf("var %s = L.marker([%v, %v]%s)",
		m.name, m.Location[0], m.Location[1], iconOpt)
	if m.Popup != nil {
		bind, err := m.Popup.bindJS()
		if err != nil {
			return err
		}
		frag += bind
	}
	if m.Tooltip != "" {
		tip, err := json.Marshal(m.Tooltip)
		if err != nil {
			return fmt.Errorf("marshaling tooltip: %w", err)
		}
		frag += fmt.Sprintf(".bindTooltip(%s)", tip)
	}
	frag += fmt.Sprintf(".addTo(%s);", ctx.Parent)
	ctx.Doc.AppendScript(frag)
	return nil
}
