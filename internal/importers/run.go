package importers

import (
	"context"
	"fmt"
	"os"

	"github.com/BearMapper/BearDeterrenceMap/internal/bears"
	"github.com/BearMapper/BearDeterrenceMap/internal/db"
	"github.com/BearMapper/BearDeterrenceMap/internal/deterrent"
	"github.com/BearMapper/BearDeterrenceMap/internal/drawings"
	"github.com/BearMapper/BearDeterrenceMap/internal/progress"
)

// Sources names the files and directories one import run reads. Empty paths
// are skipped.
type Sources struct {
	DevicesCSV  string
	MarkersCSV  string
	PolygonsCSV string
	BearsCSV    string
	ImageDir    string
}

// Summary reports per-dataset import counts.
type Summary struct {
	Devices  int
	Markers  int
	Polygons int
	Bears    int
	Images   int
}

// Run imports every configured dataset, reporting progress per dataset.
// Image indexing runs after devices so new devices are scanned too.
func Run(ctx context.Context, database *db.DB, src Sources, reporter progress.Reporter) (*Summary, error) {
	if reporter == nil {
		reporter = progress.NopReporter{}
	}

	type step struct {
		name string
		path string
		run  func() (int, error)
	}

	deviceStore := deterrent.NewStore(database)
	drawingStore := drawings.NewStore(database)
	bearStore := bears.NewStore(database)

	summary := &Summary{}
	steps := []step{
		{"devices", src.DevicesCSV, func() (int, error) {
			n, err := ImportDevices(ctx, deviceStore, src.DevicesCSV)
			summary.Devices = n
			return n, err
		}},
		{"markers", src.MarkersCSV, func() (int, error) {
			n, err := ImportMarkers(ctx, drawingStore, src.MarkersCSV)
			summary.Markers = n
			return n, err
		}},
		{"polygons", src.PolygonsCSV, func() (int, error) {
			n, err := ImportPolygons(ctx, drawingStore, src.PolygonsCSV)
			summary.Polygons = n
			return n, err
		}},
		{"bears", src.BearsCSV, func() (int, error) {
			n, err := bearStore.ImportCSV(ctx, src.BearsCSV)
			summary.Bears = n
			return n, err
		}},
		{"images", src.ImageDir, func() (int, error) {
			n, err := deviceStore.IndexImages(ctx, src.ImageDir)
			summary.Images = n
			return n, err
		}},
	}

	active := steps[:0]
	for _, s := range steps {
		if s.path != "" {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return summary, fmt.Errorf("no import sources configured")
	}

	reporter.Start(len(active))
	defer reporter.Finish()

	for i, s := range active {
		if _, err := os.Stat(s.path); err != nil {
			return summary, fmt.Errorf("import source %s: %w", s.name, err)
		}
		n, err := s.run()
		if err != nil {
			return summary, fmt.Errorf("importing %s: %w", s.name, err)
		}
		reporter.Update(i+1, fmt.Sprintf("%s: %d records", s.name, n))
	}
	return summary, nil
}
