package deterrent

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
)

// Image types recorded in image_metadata.
const (
	ImageTypeDevice = "device"
	ImageTypeTrail  = "trail"
)

// imageGlob matches camera files of any nesting depth below a type folder.
const imageGlob = "**/*.{jpg,jpeg,png,JPG,JPEG,PNG}"

// filenameLayout is the timestamp format embedded in camera filenames,
// e.g. "2024.05.17.0930".
const filenameLayout = "2006.01.02.1504"

// Image is one camera file attributed to a device.
type Image struct {
	ID                 string     `json:"id"`
	DeviceID           string     `json:"device_id"`
	Path               string     `json:"path"`
	Type               string     `json:"type"`
	Filename           string     `json:"filename"`
	Timestamp          *time.Time `json:"timestamp,omitempty"`
	ParsedSuccessfully bool       `json:"parsed_successfully"`
}

// ImageFilter narrows image queries.
type ImageFilter struct {
	Type                string
	Start, End          *time.Time
	StartHour, EndHour  int  // inclusive hour-of-day window
	FilterHours         bool // apply the hour window; it may wrap midnight
	IncludeUnsuccessful bool
	Limit, Offset       int
}

// IndexImages scans baseDir/<directory_name>/{device,trail} for every device
// and records one row per image, parsing the capture timestamp out of the
// filename. Existing rows for a device are replaced. Returns the number of
// indexed images.
func (s *Store) IndexImages(ctx context.Context, baseDir string) (int, error) {
	devices, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, d := range devices {
		if d.DirectoryName == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM image_metadata WHERE device_id = ?`, d.ID); err != nil {
			return total, fmt.Errorf("clearing images for %s: %w", d.ID, err)
		}
		for _, imageType := range []string{ImageTypeDevice, ImageTypeTrail} {
			root := filepath.Join(baseDir, d.DirectoryName, imageType)
			matches, err := doublestar.FilepathGlob(filepath.ToSlash(root) + "/" + imageGlob)
			if err != nil {
				return total, fmt.Errorf("globbing %s: %w", root, err)
			}
			for _, path := range matches {
				filename := filepath.Base(path)
				ts := TimestampFromFilename(filename, imageType)
				img := Image{
					ID:                 uuid.New().String(),
					DeviceID:           d.ID,
					Path:               path,
					Type:               imageType,
					Filename:           filename,
					Timestamp:          ts,
					ParsedSuccessfully: ts != nil,
				}
				if err := s.insertImage(ctx, img); err != nil {
					return total, err
				}
				total++
			}
		}
	}
	return total, nil
}

func (s *Store) insertImage(ctx context.Context, img Image) error {
	var ts any
	if img.Timestamp != nil {
		ts = img.Timestamp.Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO image_metadata (id, device_id, image_path, image_type, filename, timestamp, parsed_successfully)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		img.ID, img.DeviceID, img.Path, img.Type, img.Filename, ts, img.ParsedSuccessfully,
	)
	if err != nil {
		return fmt.Errorf("inserting image %s: %w", img.Filename, err)
	}
	return nil
}

// TimestampFromFilename extracts the capture time encoded in a camera
// filename. Trail cameras name files "<anything>.2024.05.17.0930.jpg";
// device cameras use underscore fields with the date in the third one.
// Returns nil when no timestamp can be parsed.
func TimestampFromFilename(filename, imageType string) *time.Time {
	if imageType == ImageTypeTrail {
		if strings.Contains(filename, "unsuccessful_parsing") {
			return nil
		}
		base := strings.TrimSuffix(filename, filepath.Ext(filename))
		parts := strings.Split(base, ".")
		datePart := base
		if len(parts) >= 4 && allDigits(parts[len(parts)-4:]) {
			datePart = strings.Join(parts[len(parts)-4:], ".")
		}
		if ts, err := time.Parse(filenameLayout, datePart); err == nil {
			return &ts
		}
		return nil
	}

	parts := strings.Split(filename, "_")
	if len(parts) < 3 {
		return nil
	}
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, parts[2])
	if ts, err := time.Parse(filenameLayout, cleaned); err == nil {
		return &ts
	}
	return nil
}

func allDigits(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// Images returns a device's images matching the filter, ordered newest
// first.
func (s *Store) Images(ctx context.Context, deviceID string, f ImageFilter) ([]Image, error) {
	query := `SELECT id, device_id, image_path, image_type, filename, timestamp, parsed_successfully
		 FROM image_metadata WHERE device_id = ?`
	args := []any{deviceID}

	if f.Type != "" {
		query += " AND image_type = ?"
		args = append(args, f.Type)
	}
	if !f.IncludeUnsuccessful {
		query += " AND parsed_successfully = 1"
	}
	if f.Start != nil && f.End != nil {
		query += " AND timestamp >= ? AND timestamp <= ?"
		args = append(args, f.Start.Format(time.RFC3339), f.End.Format(time.RFC3339))
	}
	if f.FilterHours {
		// Window may wrap midnight (e.g. 22:00-04:00).
		hour := "CAST(strftime('%H', timestamp) AS INTEGER)"
		if f.StartHour <= f.EndHour {
			query += " AND " + hour + " BETWEEN ? AND ?"
		} else {
			query += " AND (" + hour + " >= ? OR " + hour + " <= ?)"
		}
		args = append(args, f.StartHour, f.EndHour)
	}

	query += " ORDER BY timestamp DESC"
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		var ts sql.NullString
		if err := rows.Scan(&img.ID, &img.DeviceID, &img.Path, &img.Type, &img.Filename, &ts, &img.ParsedSuccessfully); err != nil {
			return nil, fmt.Errorf("scanning image: %w", err)
		}
		if ts.Valid {
			if parsed, err := time.Parse(time.RFC3339, ts.String); err == nil {
				img.Timestamp = &parsed
			}
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ImageCount returns the number of a device's images of the given type.
func (s *Store) ImageCount(ctx context.Context, deviceID, imageType string, includeUnsuccessful bool) (int, error) {
	query := `SELECT COUNT(*) FROM image_metadata WHERE device_id = ?`
	args := []any{deviceID}
	if imageType != "" {
		query += " AND image_type = ?"
		args = append(args, imageType)
	}
	if !includeUnsuccessful {
		query += " AND parsed_successfully = 1"
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting images: %w", err)
	}
	return count, nil
}
