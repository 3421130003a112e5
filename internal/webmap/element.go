// Package webmap assembles self-contained Leaflet map pages. A Map and its
// child elements render themselves into a Document by appending header, body
// and script fragments; Document.HTML produces the final page.
package webmap

import (
	"fmt"
	"sync/atomic"
)

// Element is anything that can render itself into the page under assembly.
type Element interface {
	// Name returns the element's unique identifier. It is embedded in every
	// JS identifier the element generates, so elements never collide even
	// when several of the same kind share a page.
	Name() string

	// Render appends the element's fragments to ctx.Doc.
	Render(ctx *Context) error
}

// Context is handed to each element during a render pass.
type Context struct {
	// Doc is the page being assembled. A nil Doc means the element is not
	// attached to a renderable document and Render must fail with a
	// StructuralError without appending anything.
	Doc *Document

	// Surface is the enclosing map.
	Surface *Map

	// Parent is the JS variable name of the enclosing surface.
	Parent string
}

// StructuralError reports a render attempted outside a renderable document.
type StructuralError struct {
	Element string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("webmap: %s must be attached to a renderable document", e.Element)
}

// JS is an opaque JavaScript fragment emitted verbatim into the generated
// page. No validation or sandboxing is performed; failures at execution time
// are the caller's responsibility.
type JS string

// Position places a Leaflet control in one of the four map corners.
type Position string

const (
	PositionTopLeft     Position = "topleft"
	PositionTopRight    Position = "topright"
	PositionBottomLeft  Position = "bottomleft"
	PositionBottomRight Position = "bottomright"
)

// validPositions is the set of recognized control positions.
var validPositions = map[Position]bool{
	PositionTopLeft:     true,
	PositionTopRight:    true,
	PositionBottomLeft:  true,
	PositionBottomRight: true,
}

var nameSeq atomic.Uint64

// elementName returns a process-unique name for a new element of the given
// kind, e.g. "draw_control_1f". The monotonic suffix keeps generated JS
// identifiers collision-free across every page rendered by the process.
func elementName(kind string) string {
	return fmt.Sprintf("%s_%x", kind, nameSeq.Add(1))
}
