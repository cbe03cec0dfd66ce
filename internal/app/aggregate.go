package app

import (
	"math"
	"sort"

	"emoji_map/internal/domain"
)

const maxTopEmojis = 3

// AggregatePlaces groups raw reviews by place and computes the derived view:
// representative emoji (mode, first-in-order tie-break), mean rating rounded
// to one decimal, the top emoji groups, and the full review list. Reviews are expected in creation-
// descending order; that order defines every tie-break and the review order
// inside each group. Places without reviews never appear.
func AggregatePlaces(reviews []domain.Review, places map[int64]domain.Place) []domain.PlaceView {
	type bucket struct {
		place      domain.Place
		reviews    []domain.Review
		emojiCount map[string]int
		emojiOrder []string
	}

	index := make(map[int64]int, len(places))
	var buckets []*bucket
	for _, r := range reviews {
		i, ok := index[r.PlaceID]
		if !ok {
			p, exists := places[r.PlaceID]
			if !exists {
				continue // review without a joined place
			}
			i = len(buckets)
			index[r.PlaceID] = i
			buckets = append(buckets, &bucket{place: p, emojiCount: map[string]int{}})
		}
		b := buckets[i]
		b.reviews = append(b.reviews, r)
		if b.emojiCount[r.Emoji] == 0 {
			b.emojiOrder = append(b.emojiOrder, r.Emoji)
		}
		b.emojiCount[r.Emoji]++
	}

	out := make([]domain.PlaceView, 0, len(buckets))
	for _, b := range buckets {
		// Frequency-descending; sort.SliceStable keeps first-encountered
		// order among equal counts.
		ranked := append([]string(nil), b.emojiOrder...)
		sort.SliceStable(ranked, func(i, j int) bool {
			return b.emojiCount[ranked[i]] > b.emojiCount[ranked[j]]
		})

		top := ranked
		if len(top) > maxTopEmojis {
			top = top[:maxTopEmojis]
		}
		topGroups := make([]domain.EmojiGroup, 0, len(top))
		for _, e := range top {
			g := domain.EmojiGroup{Emoji: e, Count: b.emojiCount[e]}
			for _, r := range b.reviews {
				if r.Emoji == e {
					g.Reviews = append(g.Reviews, r)
				}
			}
			topGroups = append(topGroups, g)
		}

		sum := 0
		for _, r := range b.reviews {
			sum += r.Rating
		}

		out = append(out, domain.PlaceView{
			PlaceID:      b.place.ID,
			PlaceName:    b.place.Name,
			Address:      b.place.Address,
			Latitude:     b.place.Latitude,
			Longitude:    b.place.Longitude,
			Category:     b.place.Category,
			Emoji:        ranked[0],
			TotalReviews: len(b.reviews),
			AvgRating:    math.Round(float64(sum)/float64(len(b.reviews))*10) / 10,
			TopEmojis:    topGroups,
			AllReviews:   b.reviews,
		})
	}
	return out
}
