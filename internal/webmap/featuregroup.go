package webmap

import "fmt"

// FeatureGroup is a named container of shapes. A group handed to a
// DrawControl becomes the edit target for the drawing toolbar; rendering it
// as a map child also registers it as a toggleable overlay.
type FeatureGroup struct {
	LayerName string // display name in the layer control; empty to skip

	name     string
	children []Element
}

// NewFeatureGroup creates an empty feature group.
func NewFeatureGroup(layerName string) *FeatureGroup {
	return &FeatureGroup{LayerName: layerName, name: elementName("feature_group")}
}

func (g *FeatureGroup) Name() string { return g.name }

// Add attaches a child shape. Children render into the group, so toggling
// the overlay hides them all at once.
func (g *FeatureGroup) Add(children ...Element) *FeatureGroup {
	g.children = append(g.children, children...)
	return g
}

func (g *FeatureGroup) Render(ctx *Context) error {
	if ctx == nil || ctx.Doc == nil {
		return &StructuralError{Element: "feature group " + g.name}
	}
	ctx.Doc.AppendScript("var " + g.name + " = new L.featureGroup().addTo(" + ctx.Parent + ");")
	if ctx.Surface != nil && g.LayerName != "" {
		ctx.Surface.registerOverlay(g.LayerName, g.name)
	}
	child := &Context{Doc: ctx.Doc, Surface: ctx.Surface, Parent: g.name}
	for _, c := range g.children {
		if err := c.Render(child); err != nil {
			return fmt.Errorf("rendering %s: %w", c.Name(), err)
		}
	}
	return nil
}
