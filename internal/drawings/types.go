// Package drawings persists shapes drawn on the map: point markers and named
// polygon areas.
package drawings

import "time"

// Marker is a user-placed point.
type Marker struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
}

// Polygon is a user-drawn area. Coordinates follow GeoJSON order ([lng, lat])
// and keep the closing vertex.
type Polygon struct {
	ID          string       `json:"id"`
	Timestamp   time.Time    `json:"timestamp"`
	Name        string       `json:"name"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// SaveResult reports what a bulk GeoJSON save persisted.
type SaveResult struct {
	Markers  []Marker  `json:"markers"`
	Polygons []Polygon `json:"polygons"`
}
