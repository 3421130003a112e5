// Package deterrent manages the registry of bear deterrent devices, their
// camera imagery, and spatial lookups over device positions.
package deterrent

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BearMapper/BearDeterrenceMap/internal/db"
)

// Device is a deployed deterrent unit.
type Device struct {
	ID            string  `json:"id"`
	DirectoryName string  `json:"directory_name"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
}

// Store manages persistence of deterrent devices and image metadata.
type Store struct {
	db *db.DB
}

// NewStore creates a deterrent store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Save inserts or replaces a device.
func (s *Store) Save(ctx context.Context, d Device) error {
	if d.ID == "" {
		return fmt.Errorf("device id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO deterrent_devices (id, directory_name, lat, lng) VALUES (?, ?, ?, ?)`,
		d.ID, d.DirectoryName, d.Lat, d.Lng,
	)
	if err != nil {
		return fmt.Errorf("inserting device: %w", err)
	}
	return nil
}

// Get retrieves one device, or nil when absent.
func (s *Store) Get(ctx context.Context, id string) (*Device, error) {
	var d Device
	err := s.db.QueryRowContext(ctx,
		`SELECT id, directory_name, lat, lng FROM deterrent_devices WHERE id = ?`, id,
	).Scan(&d.ID, &d.DirectoryName, &d.Lat, &d.Lng)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting device: %w", err)
	}
	return &d, nil
}

// List returns all devices ordered by ID.
func (s *Store) List(ctx context.Context) ([]Device, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, directory_name, lat, lng FROM deterrent_devices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.ID, &d.DirectoryName, &d.Lat, &d.Lng); err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// ByDirectory retrieves a device by its picture directory name.
func (s *Store) ByDirectory(ctx context.Context, dir string) (*Device, error) {
	var d Device
	err := s.db.QueryRowContext(ctx,
		`SELECT id, directory_name, lat, lng FROM deterrent_devices WHERE directory_name = ?`, dir,
	).Scan(&d.ID, &d.DirectoryName, &d.Lat, &d.Lng)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting device by directory: %w", err)
	}
	return &d, nil
}
