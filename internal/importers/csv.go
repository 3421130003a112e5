// Package importers loads field datasets from CSV files into the database.
package importers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BearMapper/BearDeterrenceMap/internal/deterrent"
	"github.com/BearMapper/BearDeterrenceMap/internal/drawings"
)

// header maps lowercased column names to indexes and resolves aliases, so
// exports from different spreadsheet tools all import cleanly.
type header struct {
	cols map[string]int
}

func readHeader(r *csv.Reader) (*header, error) {
	row, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	h := &header{cols: map[string]int{}}
	for i, name := range row {
		h.cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return h, nil
}

func (h *header) field(row []string, names ...string) string {
	for _, name := range names {
		if i, ok := h.cols[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
	}
	return ""
}

func (h *header) has(names ...string) bool {
	for _, name := range names {
		if _, ok := h.cols[name]; ok {
			return true
		}
	}
	return false
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parseTimestamp parses a CSV timestamp, falling back to the zero time so
// timestamp-less exports still import.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// ImportDevices loads deterrent device positions from a CSV with columns
// id, directory_name, lat, lng. Returns the number of imported devices.
func ImportDevices(ctx context.Context, store *deterrent.Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening devices CSV: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	h, err := readHeader(r)
	if err != nil {
		return 0, err
	}
	if !h.has("id", "device_id") || !h.has("lat", "latitude") || !h.has("lng", "lon", "longitude") {
		return 0, fmt.Errorf("devices CSV missing id/lat/lng columns")
	}

	count := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("reading devices CSV: %w", err)
		}
		lat, errLat := strconv.ParseFloat(h.field(row, "lat", "latitude"), 64)
		lng, errLng := strconv.ParseFloat(h.field(row, "lng", "lon", "longitude"), 64)
		if errLat != nil || errLng != nil {
			continue
		}
		d := deterrent.Device{
			ID:            h.field(row, "id", "device_id"),
			DirectoryName: h.field(row, "directory_name", "directory"),
			Lat:           lat,
			Lng:           lng,
		}
		if d.DirectoryName == "" {
			d.DirectoryName = d.ID
		}
		if err := store.Save(ctx, d); err != nil {
			return count, fmt.Errorf("saving device %s: %w", d.ID, err)
		}
		count++
	}
	return count, nil
}

// ImportMarkers loads saved markers from a CSV with columns id, timestamp,
// lat, lng. Rows with unparseable coordinates are skipped.
func ImportMarkers(ctx context.Context, store *drawings.Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening markers CSV: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	h, err := readHeader(r)
	if err != nil {
		return 0, err
	}
	if !h.has("lat", "latitude") || !h.has("lng", "lon", "longitude") {
		return 0, fmt.Errorf("markers CSV missing lat/lng columns")
	}

	count := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("reading markers CSV: %w", err)
		}
		lat, errLat := strconv.ParseFloat(h.field(row, "lat", "latitude"), 64)
		lng, errLng := strconv.ParseFloat(h.field(row, "lng", "lon", "longitude"), 64)
		if errLat != nil || errLng != nil {
			continue
		}
		m := drawings.Marker{
			ID:        h.field(row, "id"),
			Timestamp: parseTimestamp(h.field(row, "timestamp")),
			Lat:       lat,
			Lng:       lng,
		}
		if _, err := store.SaveMarker(ctx, m); err != nil {
			return count, fmt.Errorf("saving marker: %w", err)
		}
		count++
	}
	return count, nil
}

// ImportPolygons loads saved polygons from a CSV with columns polygon_id,
// timestamp, name, coordinates, where coordinates is a JSON array of
// [lng, lat] pairs. Rows with malformed coordinates are skipped.
func ImportPolygons(ctx context.Context, store *drawings.Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening polygons CSV: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	h, err := readHeader(r)
	if err != nil {
		return 0, err
	}
	if !h.has("coordinates") {
		return 0, fmt.Errorf("polygons CSV missing coordinates column")
	}

	count := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("reading polygons CSV: %w", err)
		}
		var coords [][2]float64
		if err := json.Unmarshal([]byte(h.field(row, "coordinates")), &coords); err != nil || len(coords) < 3 {
			continue
		}
		p := drawings.Polygon{
			ID:          h.field(row, "polygon_id", "id"),
			Timestamp:   parseTimestamp(h.field(row, "timestamp")),
			Name:        h.field(row, "name"),
			Coordinates: coords,
		}
		if _, err := store.SavePolygon(ctx, p); err != nil {
			return count, fmt.Errorf("saving polygon: %w", err)
		}
		count++
	}
	return count, nil
}
