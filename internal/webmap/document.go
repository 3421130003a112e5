package webmap

import (
	"html"
	"strings"
)

// cdnLinks are the stylesheet and script includes every page carries.
// Leaflet.draw is included unconditionally so pages with a draw control need
// no extra wiring.
const cdnLinks = `<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<link rel="stylesheet" href="https://unpkg.com/leaflet-draw@1.0.4/dist/leaflet.draw.css"/>
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.css"/>
<link rel="stylesheet" href="https://maxcdn.bootstrapcdn.com/bootstrap/3.2.0/css/bootstrap.min.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://unpkg.com/leaflet-draw@1.0.4/dist/leaflet.draw.js"></script>
<script src="https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.js"></script>`

// Document is the page under assembly. Elements append fragments into its
// header, body and script regions; HTML stitches the regions into the final
// page.
type Document struct {
	Title string

	header []string
	body   []string
	script []string
}

// NewDocument creates an empty page with the given title.
func NewDocument(title string) *Document {
	return &Document{Title: title}
}

// AppendHeader adds a fragment to the <head> region.
func (d *Document) AppendHeader(fragment string) {
	d.header = append(d.header, fragment)
}

// AppendBody adds a markup fragment to the <body> region.
func (d *Document) AppendBody(fragment string) {
	d.body = append(d.body, fragment)
}

// AppendScript adds a fragment to the page's single script block. Fragments
// run in append order once the document has loaded.
func (d *Document) AppendScript(fragment string) {
	d.script = append(d.script, fragment)
}

// Header returns the appended header fragments in order.
func (d *Document) Header() []string { return d.header }

// Body returns the appended body fragments in order.
func (d *Document) Body() []string { return d.body }

// Script returns the appended script fragments in order.
func (d *Document) Script() []string { return d.script }

// HTML assembles the final page.
func (d *Document) HTML() string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString("<title>" + html.EscapeString(d.Title) + "</title>\n")
	b.WriteString(cdnLinks)
	b.WriteString("\n")
	for _, frag := range d.header {
		b.WriteString(frag)
		b.WriteString("\n")
	}
	b.WriteString("</head>\n<body>\n")
	for _, frag := range d.body {
		b.WriteString(frag)
		b.WriteString("\n")
	}
	b.WriteString("<script>\n")
	for _, frag := range d.script {
		b.WriteString(frag)
		b.WriteString("\n")
	}
	b.WriteString("</script>\n</body>\n</html>\n")
	return b.String()
}
