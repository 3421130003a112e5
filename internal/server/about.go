package server

import (
	"bytes"
	"fmt"
	"net/http"
	"os"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

const aboutPage = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>About</title>
    <style>
        body { font-family: 'Helvetica Neue', sans-serif; max-width: 800px; margin: 40px auto; padding: 0 20px; line-height: 1.6; }
        pre { background: #f6f8fa; padding: 12px; border-radius: 6px; overflow-x: auto; }
        a.back { display: inline-block; margin-bottom: 20px; }
    </style>
</head>
<body>
<a class="back" href="/">&larr; Back to map</a>
%s
</body>
</html>`

const defaultAbout = `# Bear Deterrence Map

This site maps deterrent device locations, camera images, saved survey
markers and bear movement tracks for the study area.

Draw on the map to record new points and areas.`

// handleAbout renders the configured markdown file as the about page. A
// missing file falls back to built-in text rather than a 404.
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	source := []byte(defaultAbout)
	if s.cfg.AboutMD != "" {
		if data, err := os.ReadFile(s.cfg.AboutMD); err == nil {
			source = data
		}
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert(source, &buf); err != nil {
		writeError(w, http.StatusInternalServerError, "rendering about page: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, aboutPage, buf.String())
}
