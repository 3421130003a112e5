package bears

import (
	"fmt"

	"github.com/BearMapper/BearDeterrenceMap/internal/webmap"
)

// trackPalette cycles per bear so overlapping tracks stay readable.
var trackPalette = []string{
	"#d62728", "#1f77b4", "#2ca02c", "#9467bd",
	"#ff7f0e", "#8c564b", "#e377c2", "#17becf",
}

// TrackLayers groups records by bear and builds one polyline per animal,
// each registered as a toggleable overlay.
func TrackLayers(records []Record) []*webmap.PolyLine {
	order := []string{}
	byBear := map[string][]Record{}
	for _, rec := range records {
		if _, seen := byBear[rec.Name]; !seen {
			order = append(order, rec.Name)
		}
		byBear[rec.Name] = append(byBear[rec.Name], rec)
	}

	var lines []*webmap.PolyLine
	for i, name := range order {
		track := byBear[name]
		locations := make([][2]float64, 0, len(track))
		for _, rec := range track {
			locations = append(locations, [2]float64{rec.Lat, rec.Lng})
		}
		line := webmap.NewPolyLine(locations)
		line.Color = trackPalette[i%len(trackPalette)]
		line.LayerName = fmt.Sprintf("Bear %s", name)
		line.Tooltip = fmt.Sprintf("%s (%d fixes)", name, len(track))
		lines = append(lines, line)
	}
	return lines
}
