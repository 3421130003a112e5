// Package bears stores and queries brown bear GPS tracking records.
package bears

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BearMapper/BearDeterrenceMap/internal/db"
)

// Record is one GPS fix for a tracked bear. Positions are WGS84.
type Record struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Season    string    `json:"season"`
	Sex       string    `json:"sex"`
	Age       string    `json:"age"`
}

// Bear summarizes one tracked animal.
type Bear struct {
	Name    string    `json:"name"`
	Records int       `json:"records"`
	First   time.Time `json:"first"`
	Last    time.Time `json:"last"`
	Sex     string    `json:"sex"`
	Age     string    `json:"age"`
}

// TrackFilter narrows track queries.
type TrackFilter struct {
	Name       string
	Season     string
	Start, End *time.Time
	Limit      int
}

// Store manages persistence of bear tracking data.
type Store struct {
	db *db.DB
}

// NewStore creates a bears store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// timestampLayouts are the formats seen in tracking CSVs.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ImportCSV replaces the tracking table with records from a CSV file with
// header columns name, timestamp, lat, lng and optional season, sex, age.
// Rows without a parseable timestamp or position are skipped. Returns the
// number of imported records.
func (s *Store) ImportCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening bears CSV: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("reading bears CSV header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "timestamp", "lat", "lng"} {
		if _, ok := col[required]; !ok {
			return 0, fmt.Errorf("bears CSV missing column %q", required)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting import transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bears_tracking`); err != nil {
		return 0, fmt.Errorf("clearing bears_tracking: %w", err)
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	count := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("reading bears CSV: %w", err)
		}
		ts, ok := parseTimestamp(field(row, "timestamp"))
		if !ok {
			continue
		}
		lat, errLat := strconv.ParseFloat(field(row, "lat"), 64)
		lng, errLng := strconv.ParseFloat(field(row, "lng"), 64)
		if errLat != nil || errLng != nil {
			continue
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO bears_tracking (name, timestamp, lat, lng, season, sex, age) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			field(row, "name"), ts.Format(time.RFC3339), lat, lng,
			field(row, "season"), field(row, "sex"), field(row, "age"),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting tracking record: %w", err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	return count, nil
}

// Bears lists tracked animals with record counts and date ranges.
func (s *Store) Bears(ctx context.Context) ([]Bear, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, COUNT(*), MIN(timestamp), MAX(timestamp), MAX(sex), MAX(age)
		 FROM bears_tracking GROUP BY name ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing bears: %w", err)
	}
	defer rows.Close()

	var bears []Bear
	for rows.Next() {
		var b Bear
		var first, last string
		if err := rows.Scan(&b.Name, &b.Records, &first, &last, &b.Sex, &b.Age); err != nil {
			return nil, fmt.Errorf("scanning bear: %w", err)
		}
		b.First, _ = time.Parse(time.RFC3339, first)
		b.Last, _ = time.Parse(time.RFC3339, last)
		bears = append(bears, b)
	}
	return bears, rows.Err()
}

// Track returns tracking records matching the filter in time order.
func (s *Store) Track(ctx context.Context, f TrackFilter) ([]Record, error) {
	query := `SELECT name, timestamp, lat, lng, season, sex, age FROM bears_tracking WHERE 1=1`
	args := []any{}
	if f.Name != "" {
		query += " AND name = ?"
		args = append(args, f.Name)
	}
	if f.Season != "" {
		query += " AND season = ?"
		args = append(args, f.Season)
	}
	if f.Start != nil && f.End != nil {
		query += " AND timestamp >= ? AND timestamp <= ?"
		args = append(args, f.Start.Format(time.RFC3339), f.End.Format(time.RFC3339))
	}
	query += " ORDER BY name, timestamp"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying track: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var ts string
		if err := rows.Scan(&rec.Name, &ts, &rec.Lat, &rec.Lng, &rec.Season, &rec.Sex, &rec.Age); err != nil {
			return nil, fmt.Errorf("scanning tracking record: %w", err)
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339, ts)
		records = append(records, rec)
	}
	return records, rows.Err()
}
