// Package markers turns aggregated place data into renderable map-marker
// descriptors and reconciles the on-map overlay set against them.
package markers

import (
	"strconv"

	"emoji_map/internal/domain"
)

type DisplayMode string

const (
	ModeGrouped    DisplayMode = "grouped"
	ModeIndividual DisplayMode = "individual"
)

// Descriptor is one renderable marker. Descriptors are ephemeral: the whole
// list is recomputed from scratch on every place-list or zoom change.
type Descriptor struct {
	GroupKey         string
	Latitude         float64
	Longitude        float64
	BadgeEmoji       string
	ReviewCountLabel string // "" unless the count is above 1; "9+" above 9
	DisplayMode      DisplayMode
	Highlighted      bool   // current user authored a review in this marker
	PlaceNameLabel   string // only set in individual mode at tight zoom
	Members          []domain.PlaceView
}

// Engine computes descriptors from (places, zoom, user). Zoom levels follow
// the map-SDK convention: larger level means zoomed further out.
type Engine struct {
	// ClusterLevel is the zoom level at and above which markers are grouped
	// by address.
	ClusterLevel int
	// NameLevel is the zoom level at and below which individual markers show
	// the place name label.
	NameLevel int
}

func NewEngine() Engine {
	return Engine{ClusterLevel: 3, NameLevel: 2}
}

// Compute is a pure function: it never mutates its inputs and yields an
// identical descriptor list for identical inputs.
func (e Engine) Compute(places []domain.PlaceView, zoom int, currentUserID string) []Descriptor {
	if zoom >= e.ClusterLevel {
		return e.computeGrouped(places, currentUserID)
	}
	return e.computeIndividual(places, zoom, currentUserID)
}

func (e Engine) computeGrouped(places []domain.PlaceView, currentUserID string) []Descriptor {
	groups := groupByAddress(places)

	out := make([]Descriptor, 0, len(groups))
	for _, g := range groups {
		first := g.members[0]
		total := 0
		for _, p := range g.members {
			total += p.TotalReviews
		}
		highlighted := false
		for _, p := range g.members {
			if p.HasReviewBy(currentUserID) {
				highlighted = true
				break
			}
		}
		out = append(out, Descriptor{
			GroupKey:         g.key,
			Latitude:         first.Latitude,
			Longitude:        first.Longitude,
			BadgeEmoji:       mostFrequentEmoji(g.members),
			ReviewCountLabel: countLabel(total),
			DisplayMode:      ModeGrouped,
			Highlighted:      highlighted,
			Members:          g.members,
		})
	}
	return out
}

func (e Engine) computeIndividual(places []domain.PlaceView, zoom int, currentUserID string) []Descriptor {
	showName := zoom <= e.NameLevel

	out := make([]Descriptor, 0, len(places))
	for _, p := range places {
		d := Descriptor{
			GroupKey:         strconv.FormatInt(p.PlaceID, 10),
			Latitude:         p.Latitude,
			Longitude:        p.Longitude,
			BadgeEmoji:       p.Emoji,
			ReviewCountLabel: countLabel(p.TotalReviews),
			DisplayMode:      ModeIndividual,
			Highlighted:      p.HasReviewBy(currentUserID),
			Members:          []domain.PlaceView{p},
		}
		if showName {
			d.PlaceNameLabel = p.PlaceName
		}
		out = append(out, d)
	}
	return out
}

type addressGroup struct {
	key     string
	members []domain.PlaceView
}

// groupByAddress partitions places by address, falling back to a coordinate
// key when the address is empty. Group order is first-encountered.
func groupByAddress(places []domain.PlaceView) []addressGroup {
	index := make(map[string]int, len(places))
	var groups []addressGroup
	for _, p := range places {
		key := p.Address
		if key == "" {
			key = coordKey(p.Latitude, p.Longitude)
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, addressGroup{key: key})
		}
		groups[i].members = append(groups[i].members, p)
	}
	return groups
}

func coordKey(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "_" + strconv.FormatFloat(lng, 'f', -1, 64)
}

// mostFrequentEmoji returns the emoji occurring most often among the members.
// Ties go to the first-encountered emoji in member order.
func mostFrequentEmoji(members []domain.PlaceView) string {
	counts := make(map[string]int, len(members))
	var order []string
	for _, p := range members {
		if counts[p.Emoji] == 0 {
			order = append(order, p.Emoji)
		}
		counts[p.Emoji]++
	}
	best := ""
	for _, e := range order {
		if best == "" || counts[e] > counts[best] {
			best = e
		}
	}
	return best
}

// countLabel formats the review-count badge: nothing at 0 or 1, the count up
// to 9, "9+" beyond.
func countLabel(n int) string {
	if n <= 1 {
		return ""
	}
	if n > 9 {
		return "9+"
	}
	return strconv.Itoa(n)
}
