// Package geo keeps an in-memory R-tree over the reviewed places for
// viewport and radius queries.
package geo

import (
	"fmt"
	"math"
	"sync"

	"github.com/dhconnelly/rtreego"

	"emoji_map/internal/domain"
)

const (
	tolerance   = 0.0001
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
	earthRadius = 6371.0 // km
)

type spatialPlace struct {
	place domain.PlaceView
	rect  *rtreego.Rect
}

func (s *spatialPlace) Bounds() *rtreego.Rect { return s.rect }

// Index is a thread-safe spatial index of place aggregates. It is rebuilt
// wholesale from the fresh aggregate after every mutation; there is no
// incremental maintenance.
type Index struct {
	mu   sync.RWMutex
	tree *rtreego.Rtree
}

func NewIndex() *Index {
	return &Index{tree: rtreego.NewTree(dimensions, minChildren, maxChildren)}
}

// Rebuild replaces the index contents with the given places.
func (ix *Index) Rebuild(places []domain.PlaceView) {
	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)
	for _, p := range places {
		rect := rtreego.Point{p.Latitude, p.Longitude}.ToRect(tolerance)
		tree.Insert(&spatialPlace{place: p, rect: rect})
	}

	ix.mu.Lock()
	ix.tree = tree
	ix.mu.Unlock()
}

// SearchBox returns places within the bounding box given by its bottom-left
// and top-right corners.
func (ix *Index) SearchBox(minLat, minLng, maxLat, maxLng float64) ([]domain.PlaceView, error) {
	bounds, err := rtreego.NewRect(
		rtreego.Point{minLat, minLng},
		[]float64{maxLat - minLat, maxLng - minLng},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	ix.mu.RLock()
	hits := ix.tree.SearchIntersect(bounds)
	ix.mu.RUnlock()

	out := make([]domain.PlaceView, 0, len(hits))
	for _, h := range hits {
		sp, ok := h.(*spatialPlace)
		if !ok {
			continue
		}
		// The tolerance rect can intersect the box edge; verify the point.
		if sp.place.Latitude >= minLat && sp.place.Latitude <= maxLat &&
			sp.place.Longitude >= minLng && sp.place.Longitude <= maxLng {
			out = append(out, sp.place)
		}
	}
	return out, nil
}

// SearchRadius returns places within radiusKm of the center, using a
// bounding-box pre-filter and exact haversine distances.
func (ix *Index) SearchRadius(lat, lng, radiusKm float64) ([]domain.PlaceView, error) {
	deg := (radiusKm / earthRadius) * (180 / math.Pi)

	candidates, err := ix.SearchBox(lat-deg, lng-deg, lat+deg, lng+deg)
	if err != nil {
		return nil, err
	}
	out := candidates[:0:0]
	for _, p := range candidates {
		if Haversine(lat, lng, p.Latitude, p.Longitude) <= radiusKm {
			out = append(out, p)
		}
	}
	return out, nil
}

// Size returns the number of indexed places.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.tree.Size()
}

// Haversine returns the great-circle distance between two points in km.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := math.Pi / 180
	dLat := (lat2 - lat1) * toRad
	dLng := (lng2 - lng1) * toRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*toRad)*math.Cos(lat2*toRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
