package domain

type Place struct {
	ID        int64
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	Category  *string
}

// EmojiGroup is one of a place's top emoji buckets: the glyph, how often it
// occurs, and the reviews that carry it.
type EmojiGroup struct {
	Emoji   string   `json:"emoji"`
	Count   int      `json:"count"`
	Reviews []Review `json:"reviews"`
}

// PlaceView is the aggregate read model served by GET /reviews and consumed
// by the marker engine. Derived fields are recomputed from the review set on
// every read and never persisted.
type PlaceView struct {
	PlaceID      int64        `json:"placeId"`
	PlaceName    string       `json:"placeName"`
	Address      string       `json:"address"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	Category     *string      `json:"category"`
	Emoji        string       `json:"emoji"` // most frequent across reviews
	TotalReviews int          `json:"totalReviews"`
	AvgRating    float64      `json:"avgRating"`
	TopEmojis    []EmojiGroup `json:"topEmojis"` // at most 3, frequency-descending
	AllReviews   []Review     `json:"allReviews"`
}

// HasReviewBy reports whether any of the place's reviews was authored by
// userID. Empty userID never matches.
func (p PlaceView) HasReviewBy(userID string) bool {
	if userID == "" {
		return false
	}
	for _, r := range p.AllReviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
