package server

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/BearMapper/BearDeterrenceMap/internal/bears"
	"github.com/BearMapper/BearDeterrenceMap/internal/config"
	"github.com/BearMapper/BearDeterrenceMap/internal/db"
	"github.com/BearMapper/BearDeterrenceMap/internal/webmap"
)

// savedMarkerBadge is the numbered badge shown for user-placed markers.
const savedMarkerBadge = `<div style="background:#2a81cb;color:white;border-radius:50%%;width:26px;height:26px;line-height:26px;text-align:center;font-weight:bold;">%s</div>`

// reloadScript reconnects to /ws and reloads the page when any dataset
// changes, so every open map stays current.
const reloadScript = `(function() {
    var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
    function connect() {
        var ws = new WebSocket(proto + location.host + '/ws');
        ws.onmessage = function(e) {
            var msg = JSON.parse(e.data);
            if (msg.type === 'changed') { location.reload(); }
        };
        ws.onclose = function() { setTimeout(connect, 2000); };
    }
    connect();
})();`

// RenderMapPage builds the standalone map page for the given configuration
// and database without starting a listener. The render subcommand uses it to
// write a self-contained HTML file.
func RenderMapPage(ctx context.Context, cfg *config.Config, database *db.DB) (string, error) {
	return New(cfg, database).buildMapPage(ctx)
}

func (s *Server) handleMapPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.buildMapPage(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

// buildMapPage assembles the full interactive page from the configuration
// and the current database contents.
func (s *Server) buildMapPage(ctx context.Context) (string, error) {
	cfg := s.cfg
	m := webmap.NewMap(cfg.Map.Title, [2]float64{cfg.Map.CenterLat, cfg.Map.CenterLng}, cfg.Map.Zoom)

	for _, t := range cfg.Map.Tiles {
		layer := webmap.NewTileLayer(t.URL, t.Attribution, t.Name)
		layer.MaxZoom = t.MaxZoom
		layer.Overlay = t.Overlay
		layer.Opacity = t.Opacity
		m.Add(layer)
	}

	if err := s.addDeviceLayer(ctx, m); err != nil {
		return "", err
	}
	if err := s.addSavedMarkerLayer(ctx, m); err != nil {
		return "", err
	}
	if err := s.addPolygonLayer(ctx, m); err != nil {
		return "", err
	}
	if err := s.addBearTracks(ctx, m); err != nil {
		return "", err
	}

	drawn := webmap.NewFeatureGroup("Drawn Shapes")
	m.Add(drawn)

	opts := webmap.DefaultDrawOptions()
	opts.Position = webmap.Position(cfg.Draw.Position)
	opts.Export = cfg.Draw.Export
	opts.SaveToFile = cfg.Draw.SaveToFile
	opts.ShowGeometryOnClick = cfg.Draw.ShowGeometry
	opts.FeatureGroup = drawn
	opts.Draw = webmap.DrawToolbar{
		Circle:       webmap.Bool(false),
		CircleMarker: webmap.Bool(false),
	}
	opts.ReturnCoords = true
	// New points are saved straight to the API; the websocket notification
	// then refreshes every open page.
	opts.CoordsCallback = webmap.JS(`function(latLng) {
        fetch('/api/markers', {
            method: 'POST',
            headers: {'Content-Type': 'application/json'},
            body: JSON.stringify({lat: latLng[0], lng: latLng[1]})
        });
    }`)
	control, err := webmap.NewDrawControl(opts)
	if err != nil {
		return "", err
	}
	m.Add(control)
	m.Add(webmap.NewLayerControl())

	doc := webmap.NewDocument(cfg.Map.Title)
	if err := m.Render(&webmap.Context{Doc: doc, Surface: m, Parent: m.Name()}); err != nil {
		return "", err
	}
	doc.AppendBody(`<a href='/about' id='about-link' style='position:absolute;left:10px;bottom:10px;z-index:999;background:white;padding:4px 8px;border-radius:4px;'>About</a>`)
	doc.AppendScript(reloadScript)
	return doc.HTML(), nil
}

func (s *Server) addDeviceLayer(ctx context.Context, m *webmap.Map) error {
	devices, err := s.devices.List(ctx)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return nil
	}

	group := webmap.NewFeatureGroup("Deterrent Devices")
	for _, d := range devices {
		deviceCount, err := s.devices.ImageCount(ctx, d.ID, "device", false)
		if err != nil {
			return err
		}
		trailCount, err := s.devices.ImageCount(ctx, d.ID, "trail", false)
		if err != nil {
			return err
		}

		marker := webmap.NewMarker([2]float64{d.Lat, d.Lng})
		marker.Icon = &webmap.Icon{Color: "red", Glyph: "warning-sign"}
		marker.Tooltip = d.ID
		marker.Popup = webmap.NewPopup(fmt.Sprintf(
			"<b>%s</b><br>%d device images<br>%d trail camera images",
			html.EscapeString(d.ID), deviceCount, trailCount))
		group.Add(marker)
	}
	m.Add(group)
	return nil
}

func (s *Server) addSavedMarkerLayer(ctx context.Context, m *webmap.Map) error {
	markers, err := s.drawings.Markers(ctx)
	if err != nil {
		return err
	}
	if len(markers) == 0 {
		return nil
	}

	group := webmap.NewFeatureGroup("Saved Markers")
	for _, sm := range markers {
		marker := webmap.NewMarker([2]float64{sm.Lat, sm.Lng})
		label := strings.TrimLeft(sm.ID, "0")
		if label == "" {
			label = "0"
		}
		marker.DivIcon = &webmap.DivIcon{
			HTML: fmt.Sprintf(savedMarkerBadge, html.EscapeString(label)),
			Size: [2]int{26, 26},
		}
		marker.Tooltip = fmt.Sprintf("Marker %s (%s)", sm.ID, sm.Timestamp.Format("2006-01-02"))
		group.Add(marker)
	}
	m.Add(group)
	return nil
}

func (s *Server) addPolygonLayer(ctx context.Context, m *webmap.Map) error {
	polygons, err := s.drawings.Polygons(ctx)
	if err != nil {
		return err
	}
	if len(polygons) == 0 {
		return nil
	}

	group := webmap.NewFeatureGroup("Saved Areas")
	for _, p := range polygons {
		locations := make([][2]float64, 0, len(p.Coordinates))
		for _, pair := range p.Coordinates {
			locations = append(locations, [2]float64{pair[1], pair[0]})
		}
		poly := webmap.NewPolygon(locations)
		poly.Tooltip = p.Name
		group.Add(poly)
	}
	m.Add(group)
	return nil
}

func (s *Server) addBearTracks(ctx context.Context, m *webmap.Map) error {
	records, err := s.bears.Track(ctx, bears.TrackFilter{})
	if err != nil {
		return err
	}
	for _, line := range bears.TrackLayers(records) {
		m.Add(line)
	}
	return nil
}
