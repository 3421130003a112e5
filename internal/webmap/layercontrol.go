package webmap

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LayerControl lists the surface's base layers and overlays. It reads the
// layers registered during the render pass, so it must be added to the map
// after every layer it should list.
type LayerControl struct {
	Position  Position
	Collapsed bool

	name string
}

// NewLayerControl creates a layer control in the top-right corner.
func NewLayerControl() *LayerControl {
	return &LayerControl{Position: PositionTopRight, name: elementName("layer_control")}
}

func (c *LayerControl) Name() string { return c.name }

func (c *LayerControl) Render(ctx *Context) error {
	if ctx == nil || ctx.Doc == nil {
		return &StructuralError{Element: "layer control " + c.name}
	}
	if ctx.Surface == nil {
		return &StructuralError{Element: "layer control " + c.name}
	}

	pos := c.Position
	if !validPositions[pos] {
		pos = PositionTopRight
	}
	opts, err := json.Marshal(map[string]any{
		"position":  pos,
		"collapsed": c.Collapsed,
	})
	if err != nil {
		return fmt.Errorf("marshaling layer control options: %w", err)
	}

	ctx.Doc.AppendScript(fmt.Sprintf("L.control.layers(%s, %s, %s).addTo(%s);",
		layerMapJS(ctx.Surface.baseLayers),
		layerMapJS(ctx.Surface.overlays),
		opts, ctx.Parent))
	return nil
}

// layerMapJS builds a {"display name": jsVar, ...} object literal. The values
// are identifiers, so the object cannot be produced by json.Marshal alone;
// keys still go through it for escaping.
func layerMapJS(layers []namedLayer) string {
	var b strings.Builder
	b.WriteString("{")
	for i, l := range layers {
		if i > 0 {
			b.WriteString(", ")
		}
		key, _ := json.Marshal(l.display)
		b.Write(key)
		b.WriteString(": ")
		b.WriteString(l.jsName)
	}
	b.WriteString("}")
	return b.String()
}
