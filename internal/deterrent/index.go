package deterrent

import (
	"fmt"

	"github.com/dhconnelly/rtreego"
)

// pointTol is the degenerate-rectangle side length used to index point
// positions in the R-tree.
const pointTol = 1e-9

// Index is an in-memory R-tree over device positions for nearest-device and
// bounding-box queries. Build it from a device listing; it is read-only
// afterwards.
type Index struct {
	tree *rtreego.Rtree
}

type deviceEntry struct {
	device Device
	rect   *rtreego.Rect
}

func (e *deviceEntry) Bounds() *rtreego.Rect { return e.rect }

// NewIndex builds a spatial index over the given devices.
func NewIndex(devices []Device) (*Index, error) {
	tree := rtreego.NewTree(2, 25, 50)
	for _, d := range devices {
		rect, err := rtreego.NewRect(rtreego.Point{d.Lat, d.Lng}, []float64{pointTol, pointTol})
		if err != nil {
			return nil, fmt.Errorf("indexing device %s: %w", d.ID, err)
		}
		tree.Insert(&deviceEntry{device: d, rect: rect})
	}
	return &Index{tree: tree}, nil
}

// Size returns the number of indexed devices.
func (ix *Index) Size() int { return ix.tree.Size() }

// Nearest returns up to k devices closest to (lat, lng).
func (ix *Index) Nearest(lat, lng float64, k int) []Device {
	if k <= 0 {
		return nil
	}
	results := ix.tree.NearestNeighbors(k, rtreego.Point{lat, lng})
	devices := make([]Device, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		devices = append(devices, r.(*deviceEntry).device)
	}
	return devices
}

// Within returns every device inside the bounding box.
func (ix *Index) Within(minLat, minLng, maxLat, maxLng float64) ([]Device, error) {
	rect, err := rtreego.NewRect(rtreego.Point{minLat, minLng},
		[]float64{maxLat - minLat, maxLng - minLng})
	if err != nil {
		return nil, fmt.Errorf("building query rect: %w", err)
	}
	results := ix.tree.SearchIntersect(rect)
	devices := make([]Device, 0, len(results))
	for _, r := range results {
		devices = append(devices, r.(*deviceEntry).device)
	}
	return devices, nil
}
