package drawings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/BearMapper/BearDeterrenceMap/internal/db"
	"github.com/BearMapper/BearDeterrenceMap/internal/geo"
)

// Store manages persistence of drawn markers and polygons.
type Store struct {
	db *db.DB
}

// NewStore creates a drawings store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// SaveMarker inserts or replaces a marker.
func (s *Store) SaveMarker(ctx context.Context, m Marker) (*Marker, error) {
	if m.ID == "" {
		next, err := s.NextMarkerID(ctx)
		if err != nil {
			return nil, err
		}
		m.ID = next
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO markers (id, timestamp, lat, lng) VALUES (?, ?, ?, ?)`,
		m.ID, m.Timestamp.Format(time.RFC3339), m.Lat, m.Lng,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting marker: %w", err)
	}
	return &m, nil
}

// Markers returns all saved markers ordered by ID.
func (s *Store) Markers(ctx context.Context) ([]Marker, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, lat, lng FROM markers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing markers: %w", err)
	}
	defer rows.Close()

	var markers []Marker
	for rows.Next() {
		var m Marker
		var ts string
		if err := rows.Scan(&m.ID, &ts, &m.Lat, &m.Lng); err != nil {
			return nil, fmt.Errorf("scanning marker: %w", err)
		}
		m.Timestamp, _ = time.Parse(time.RFC3339, ts)
		markers = append(markers, m)
	}
	return markers, rows.Err()
}

// DeleteMarker removes one marker. It reports whether a row was deleted.
func (s *Store) DeleteMarker(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM markers WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting marker: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteAllMarkers removes every marker.
func (s *Store) DeleteAllMarkers(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM markers`); err != nil {
		return fmt.Errorf("deleting markers: %w", err)
	}
	return nil
}

// NextMarkerID returns the next sequential marker ID, zero-padded to four
// digits ("0001", "0002", ...).
func (s *Store) NextMarkerID(ctx context.Context) (string, error) {
	var max sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(CAST(id AS INTEGER)) FROM markers`).Scan(&max)
	if err != nil {
		return "", fmt.Errorf("finding max marker id: %w", err)
	}
	return fmt.Sprintf("%04d", max.Int64+1), nil
}

// SavePolygon inserts or replaces a polygon.
func (s *Store) SavePolygon(ctx context.Context, p Polygon) (*Polygon, error) {
	if p.ID == "" {
		next, err := s.NextPolygonID(ctx)
		if err != nil {
			return nil, err
		}
		p.ID = fmt.Sprintf("poly-%d", next)
		if p.Name == "" {
			p.Name = fmt.Sprintf("Area %d", next)
		}
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}
	coords, err := json.Marshal(p.Coordinates)
	if err != nil {
		return nil, fmt.Errorf("marshaling polygon coordinates: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO polygons (polygon_id, timestamp, name, coordinates) VALUES (?, ?, ?, ?)`,
		p.ID, p.Timestamp.Format(time.RFC3339), p.Name, string(coords),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting polygon: %w", err)
	}
	return &p, nil
}

// Polygons returns all saved polygons ordered by ID.
func (s *Store) Polygons(ctx context.Context) ([]Polygon, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT polygon_id, timestamp, name, coordinates FROM polygons ORDER BY polygon_id`)
	if err != nil {
		return nil, fmt.Errorf("listing polygons: %w", err)
	}
	defer rows.Close()

	var polygons []Polygon
	for rows.Next() {
		var p Polygon
		var ts, coords string
		if err := rows.Scan(&p.ID, &ts, &p.Name, &coords); err != nil {
			return nil, fmt.Errorf("scanning polygon: %w", err)
		}
		p.Timestamp, _ = time.Parse(time.RFC3339, ts)
		if err := json.Unmarshal([]byte(coords), &p.Coordinates); err != nil {
			// Rows written by older tools may hold malformed coordinate
			// text; surface the polygon with no vertices rather than
			// failing the whole listing.
			p.Coordinates = nil
		}
		polygons = append(polygons, p)
	}
	return polygons, rows.Err()
}

// UpdatePolygonName renames a polygon. It reports whether a row was updated.
func (s *Store) UpdatePolygonName(ctx context.Context, id, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE polygons SET name = ? WHERE polygon_id = ?`, name, id)
	if err != nil {
		return false, fmt.Errorf("renaming polygon: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeletePolygon removes one polygon. It reports whether a row was deleted.
func (s *Store) DeletePolygon(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM polygons WHERE polygon_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting polygon: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteAllPolygons removes every polygon.
func (s *Store) DeleteAllPolygons(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM polygons`); err != nil {
		return fmt.Errorf("deleting polygons: %w", err)
	}
	return nil
}

// NextPolygonID returns the next sequential polygon number. Stored IDs look
// like "poly-3"; the numeric suffix drives the sequence.
func (s *Store) NextPolygonID(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT polygon_id FROM polygons`)
	if err != nil {
		return 0, fmt.Errorf("listing polygon ids: %w", err)
	}
	defer rows.Close()

	max := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scanning polygon id: %w", err)
		}
		var n int
		if _, err := fmt.Sscanf(id, "poly-%d", &n); err == nil && n > max {
			max = n
		} else if n, err := strconv.Atoi(id); err == nil && n > max {
			max = n
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return max + 1, nil
}

// SaveFeatureCollection persists every Point and Polygon feature of a drawn
// GeoJSON collection: points become sequentially numbered markers, polygon
// outer rings become areas with a default name. Other geometry types are
// skipped.
func (s *Store) SaveFeatureCollection(ctx context.Context, fc geo.FeatureCollection) (*SaveResult, error) {
	result := &SaveResult{}
	for _, f := range fc.Features {
		switch f.Geometry.Type {
		case geo.TypePoint:
			pair, err := f.Geometry.Point()
			if err != nil {
				return result, err
			}
			// GeoJSON order is [lng, lat].
			m, err := s.SaveMarker(ctx, Marker{Lat: pair[1], Lng: pair[0]})
			if err != nil {
				return result, err
			}
			result.Markers = append(result.Markers, *m)
		case geo.TypePolygon:
			ring, err := f.Geometry.PolygonRing()
			if err != nil {
				return result, err
			}
			p, err := s.SavePolygon(ctx, Polygon{Coordinates: ring})
			if err != nil {
				return result, err
			}
			result.Polygons = append(result.Polygons, *p)
		}
	}
	return result, nil
}
