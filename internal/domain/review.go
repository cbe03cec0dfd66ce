package domain

import "time"

// EmojiPalette is the fixed set of glyphs a review may carry.
var EmojiPalette = []string{
	"📍", "☕", "🍰", "🍕", "🍔", "🍜", "🍺", "🎵",
	"🎨", "📚", "🛍️", "💼", "🏫", "🎬", "🎮", "❤️",
}

// IsPaletteEmoji reports whether e is one of the allowed review glyphs.
func IsPaletteEmoji(e string) bool {
	for _, p := range EmojiPalette {
		if e == p {
			return true
		}
	}
	return false
}

const (
	MaxReviewTitleLen       = 50
	MaxReviewDescriptionLen = 500
	MaxReviewImages         = 3
)

type Review struct {
	ID          int64
	PlaceID     int64
	UserID      string
	Title       string
	Description string
	Rating      int // 1..5
	Emoji       string
	Images      []string // 0..3 object-storage URLs, submission order
	CreatedAt   time.Time
	User        UserSummary
}

// NewReview is what POST /reviews persists after validation.
type NewReview struct {
	Title       string
	Description string
	Rating      int
	Emoji       string
	PlaceName   string
	Address     string
	Latitude    float64
	Longitude   float64
	Category    *string
	Images      []string
}

// CreatedReview is the flattened create response: review fields merged with
// its place, matching what clients already consume.
type CreatedReview struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Rating      int         `json:"rating"`
	Emoji       string      `json:"emoji"`
	Images      []string    `json:"images"`
	PlaceName   string      `json:"placeName"`
	Address     string      `json:"address"`
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	CreatedAt   time.Time   `json:"createdAt"`
	User        UserSummary `json:"user"`
}
