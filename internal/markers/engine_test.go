package markers_test

import (
	"reflect"
	"testing"

	"emoji_map/internal/domain"
	"emoji_map/internal/markers"
)

func place(id int64, name, addr string, lat, lng float64, emoji string, reviews int, userIDs ...string) domain.PlaceView {
	p := domain.PlaceView{
		PlaceID:      id,
		PlaceName:    name,
		Address:      addr,
		Latitude:     lat,
		Longitude:    lng,
		Emoji:        emoji,
		TotalReviews: reviews,
	}
	for _, uid := range userIDs {
		p.AllReviews = append(p.AllReviews, domain.Review{PlaceID: id, UserID: uid, Emoji: emoji})
	}
	return p
}

func TestGroupedScenario(t *testing.T) {
	// Zoom 4, two places sharing an address: 🍰 with 3 reviews, ☕ with 1.
	places := []domain.PlaceView{
		place(1, "Cake House", "123 Main", 37.55, 126.92, "🍰", 3),
		place(2, "Coffee Bar", "123 Main", 37.551, 126.921, "☕", 1),
	}
	descs := markers.NewEngine().Compute(places, 4, "")

	if len(descs) != 1 {
		t.Fatalf("expected 1 grouped descriptor, got %d", len(descs))
	}
	d := descs[0]
	if d.DisplayMode != markers.ModeGrouped {
		t.Fatalf("expected grouped mode, got %s", d.DisplayMode)
	}
	if d.BadgeEmoji != "🍰" {
		t.Fatalf("expected 🍰 badge, got %s", d.BadgeEmoji)
	}
	if d.ReviewCountLabel != "4" {
		t.Fatalf("expected count label 4, got %q", d.ReviewCountLabel)
	}
	// Representative position is the first member's.
	if d.Latitude != 37.55 || d.Longitude != 126.92 {
		t.Fatalf("expected first member position, got %v,%v", d.Latitude, d.Longitude)
	}
	if d.GroupKey != "123 Main" {
		t.Fatalf("unexpected group key %q", d.GroupKey)
	}
}

func TestIndividualScenario(t *testing.T) {
	// Zoom 1, same two places: individual markers, name labels, own badges.
	places := []domain.PlaceView{
		place(1, "Cake House", "123 Main", 37.55, 126.92, "🍰", 3),
		place(2, "Coffee Bar", "123 Main", 37.551, 126.921, "☕", 1),
	}
	descs := markers.NewEngine().Compute(places, 1, "")

	if len(descs) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(descs))
	}
	if descs[0].DisplayMode != markers.ModeIndividual || descs[1].DisplayMode != markers.ModeIndividual {
		t.Fatalf("expected individual mode")
	}
	if descs[0].PlaceNameLabel != "Cake House" || descs[1].PlaceNameLabel != "Coffee Bar" {
		t.Fatalf("expected name labels at zoom 1: %+v", descs)
	}
	if descs[0].ReviewCountLabel != "3" {
		t.Fatalf("expected badge 3, got %q", descs[0].ReviewCountLabel)
	}
	// A single review never shows a badge.
	if descs[1].ReviewCountLabel != "" {
		t.Fatalf("expected no badge for single review, got %q", descs[1].ReviewCountLabel)
	}
}

func TestNameLabelHiddenAboveNameLevel(t *testing.T) {
	places := []domain.PlaceView{place(1, "Cake House", "123 Main", 37.55, 126.92, "🍰", 2)}
	descs := markers.NewEngine().Compute(places, 2, "")
	if descs[0].PlaceNameLabel != "Cake House" {
		t.Fatalf("expected label at zoom 2")
	}
	// Zoom 3 clusters; drop the cluster threshold to isolate the name rule.
	e := markers.Engine{ClusterLevel: 10, NameLevel: 2}
	descs = e.Compute(places, 3, "")
	if descs[0].PlaceNameLabel != "" {
		t.Fatalf("expected no label at zoom 3, got %q", descs[0].PlaceNameLabel)
	}
}

func TestCountLabelBoundaries(t *testing.T) {
	e := markers.NewEngine()
	for _, tc := range []struct {
		reviews int
		want    string
	}{
		{1, ""}, {2, "2"}, {9, "9"}, {10, "9+"}, {15, "9+"},
	} {
		descs := e.Compute([]domain.PlaceView{place(1, "A", "addr", 1, 2, "☕", tc.reviews)}, 1, "")
		if got := descs[0].ReviewCountLabel; got != tc.want {
			t.Errorf("reviews=%d: expected label %q, got %q", tc.reviews, tc.want, got)
		}
	}
}

func TestEmojiTieBreakFirstEncountered(t *testing.T) {
	places := []domain.PlaceView{
		place(1, "A", "same", 1, 1, "☕", 1),
		place(2, "B", "same", 1, 1, "🍰", 1),
		place(3, "C", "same", 1, 1, "🍰", 1),
		place(4, "D", "same", 1, 1, "☕", 1),
	}
	descs := markers.NewEngine().Compute(places, 4, "")
	if descs[0].BadgeEmoji != "☕" {
		t.Fatalf("tie should go to first-encountered emoji, got %s", descs[0].BadgeEmoji)
	}
}

func TestMissingAddressFallsBackToCoordinateKey(t *testing.T) {
	places := []domain.PlaceView{
		place(1, "A", "", 37.5, 126.9, "☕", 1),
		place(2, "B", "", 37.5, 126.9, "🍰", 1),
		place(3, "C", "", 38.0, 127.0, "🍺", 1),
	}
	descs := markers.NewEngine().Compute(places, 3, "")
	if len(descs) != 2 {
		t.Fatalf("expected 2 coordinate groups, got %d", len(descs))
	}
	if descs[0].GroupKey != "37.5_126.9" {
		t.Fatalf("unexpected coordinate key %q", descs[0].GroupKey)
	}
}

func TestGroupedCountConservation(t *testing.T) {
	places := []domain.PlaceView{
		place(1, "A", "addr1", 1, 1, "☕", 3),
		place(2, "B", "addr1", 1, 1, "🍰", 2),
		place(3, "C", "addr2", 2, 2, "🍺", 7),
		place(4, "D", "", 3, 3, "🎵", 1),
	}
	total := 0
	for _, p := range places {
		total += p.TotalReviews
	}

	descs := markers.NewEngine().Compute(places, 5, "")
	sum := 0
	for _, d := range descs {
		for _, m := range d.Members {
			sum += m.TotalReviews
		}
	}
	if sum != total {
		t.Fatalf("grouped members lost reviews: %d != %d", sum, total)
	}
}

func TestHighlightedForOwnReviews(t *testing.T) {
	places := []domain.PlaceView{
		place(1, "A", "addr1", 1, 1, "☕", 1, "user-a"),
		place(2, "B", "addr1", 1, 1, "🍰", 1, "user-b"),
		place(3, "C", "addr2", 2, 2, "🍺", 1, "user-b"),
	}

	grouped := markers.NewEngine().Compute(places, 4, "user-a")
	if !grouped[0].Highlighted {
		t.Fatalf("group containing user-a's review should be highlighted")
	}
	if grouped[1].Highlighted {
		t.Fatalf("group without user-a's review should not be highlighted")
	}

	individual := markers.NewEngine().Compute(places, 1, "user-b")
	if individual[0].Highlighted || !individual[1].Highlighted || !individual[2].Highlighted {
		t.Fatalf("unexpected highlight set: %+v", individual)
	}

	// Anonymous user never gets highlights.
	for _, d := range markers.NewEngine().Compute(places, 4, "") {
		if d.Highlighted {
			t.Fatalf("anonymous compute must not highlight")
		}
	}
}

func TestComputeIdempotent(t *testing.T) {
	places := []domain.PlaceView{
		place(1, "A", "addr1", 1, 1, "☕", 3, "u1"),
		place(2, "B", "addr1", 1, 1, "🍰", 2),
		place(3, "C", "", 2, 2, "🍺", 12),
	}
	e := markers.NewEngine()
	for _, zoom := range []int{1, 2, 3, 4} {
		a := e.Compute(places, zoom, "u1")
		b := e.Compute(places, zoom, "u1")
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("zoom %d: recompute differs", zoom)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	if descs := markers.NewEngine().Compute(nil, 4, "u1"); len(descs) != 0 {
		t.Fatalf("expected no descriptors for empty input")
	}
}
