package markers

import "emoji_map/internal/domain"

// Point is a pixel coordinate in the map's projection plane.
type Point struct{ X, Y float64 }

// Size is the map viewport in pixels.
type Size struct{ Width, Height int }

// Map is the handle to the underlying map instance. It is passed in
// explicitly; the renderer never reaches for ambient SDK state.
type Map interface {
	SetCenter(lat, lng float64)
	SetLevel(level int)
	Level() int
	Size() Size
	PointFromCoords(lat, lng float64) Point
	CoordsFromPoint(p Point) (lat, lng float64)
}

// Overlay is one on-map marker object. Remove detaches it, click handler
// included.
type Overlay interface {
	Remove()
}

// OverlayFactory constructs overlays with their click handler bound at
// construction time, so no handler attachment is ever deferred or retried.
type OverlayFactory interface {
	Create(d Descriptor, onClick func()) Overlay
	// CreateSelection builds the pulsing selection marker.
	CreateSelection(lat, lng float64) Overlay
}

const (
	// moveOffsetRatio shifts the camera so a focused point sits 17% of the
	// viewport height below center.
	moveOffsetRatio = 0.17
	// focusLevel is the zoom level a grouped-marker click drills down to.
	focusLevel = 1
)

// Renderer owns the live overlay set. Reconciliation is deliberately
// destroy-and-rebuild: every Render tears down all overlays and constructs
// the new set from a fresh descriptor list. Correctness never depends on
// incremental diffing.
type Renderer struct {
	engine        Engine
	m             Map
	factory       OverlayFactory
	onMarkerClick func(domain.PlaceView)

	overlays  []Overlay
	selection Overlay
}

func NewRenderer(e Engine, m Map, f OverlayFactory, onMarkerClick func(domain.PlaceView)) *Renderer {
	return &Renderer{engine: e, m: m, factory: f, onMarkerClick: onMarkerClick}
}

// Render recomputes descriptors for the current zoom level and rebuilds the
// overlay set. Called on every place-list change and zoom change.
func (r *Renderer) Render(places []domain.PlaceView, currentUserID string) []Descriptor {
	r.removeOverlays()

	descs := r.engine.Compute(places, r.m.Level(), currentUserID)
	for _, d := range descs {
		d := d
		var onClick func()
		if d.DisplayMode == ModeGrouped {
			onClick = func() {
				r.m.SetLevel(focusLevel)
				r.m.SetCenter(d.Latitude, d.Longitude)
			}
		} else {
			place := d.Members[0]
			onClick = func() {
				if r.onMarkerClick != nil {
					r.onMarkerClick(place)
				}
			}
		}
		r.overlays = append(r.overlays, r.factory.Create(d, onClick))
	}
	return descs
}

// MoveTo re-centers the map so the target lands below center by the fixed
// offset, sets the zoom level, and drops the selection marker there. At most
// one selection marker exists; any prior one is replaced.
func (r *Renderer) MoveTo(lat, lng float64, level int) {
	offsetY := float64(r.m.Size().Height) * moveOffsetRatio
	p := r.m.PointFromCoords(lat, lng)
	cLat, cLng := r.m.CoordsFromPoint(Point{X: p.X, Y: p.Y - offsetY})

	r.m.SetCenter(cLat, cLng)
	r.m.SetLevel(level)

	r.ClearSelection()
	r.selection = r.factory.CreateSelection(lat, lng)
}

// ClearSelection removes the selection marker, if any.
func (r *Renderer) ClearSelection() {
	if r.selection != nil {
		r.selection.Remove()
		r.selection = nil
	}
}

// Close tears down every overlay, detaching their handlers.
func (r *Renderer) Close() {
	r.removeOverlays()
	r.ClearSelection()
}

func (r *Renderer) removeOverlays() {
	for _, o := range r.overlays {
		o.Remove()
	}
	r.overlays = nil
}
