package webmap

import (
	"encoding/json"
	"fmt"
)

// TileLayer is a raster tile source. Base layers replace each other; overlays
// stack on top of the active base layer.
type TileLayer struct {
	URL         string  // tile URL template with {z}/{x}/{y} placeholders
	Attribution string
	LayerName   string  // display name in the layer control
	Overlay     bool
	Show        bool    // overlays only: add to the map immediately
	Opacity     float64 // 0 means the Leaflet default (1.0)
	MaxZoom     int     // 0 means the Leaflet default

	name string
}

// NewTileLayer creates a base tile layer.
func NewTileLayer(url, attribution, layerName string) *TileLayer {
	return &TileLayer{
		URL:         url,
		Attribution: attribution,
		LayerName:   layerName,
		name:        elementName("tile_layer"),
	}
}

func (t *TileLayer) Name() string { return t.name }

func (t *TileLayer) Render(ctx *Context) error {
	if ctx == nil || ctx.Doc == nil {
		return &StructuralError{Element: "tile layer " + t.name}
	}

	opts := map[string]any{"attribution": t.Attribution}
	if t.Opacity > 0 {
		opts["opacity"] = t.Opacity
	}
	if t.MaxZoom > 0 {
		opts["maxZoom"] = t.MaxZoom
	}
	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("marshaling tile layer options: %w", err)
	}

	frag := fmt.Sprintf("var %s = L.tileLayer(%q, %s)", t.name, t.URL, optsJSON)
	// Overlays stay hidden until toggled in the layer control unless Show
	// is set.
	if !t.Overlay || t.Show {
		frag += fmt.Sprintf(".addTo(%s)", ctx.Parent)
	}
	frag += ";"
	ctx.Doc.AppendScript(frag)

	if ctx.Surface != nil && t.LayerName != "" {
		if t.Overlay {
			ctx.Surface.registerOverlay(t.LayerName, t.name)
		} else {
			ctx.Surface.registerBaseLayer(t.LayerName, t.name)
		}
	}
	return nil
}
