package domain

import (
	"context"
	"time"
)

type ReviewRepository interface {
	// Write paths
	CreateReview(ctx context.Context, r NewReview, userID string) (CreatedReview, error)
	DeleteReview(ctx context.Context, id int64, userID string) error

	// Read paths. ListReviews returns reviews joined with their place,
	// creation-descending; aggregation happens in the app layer.
	ListReviews(ctx context.Context) ([]Review, map[int64]Place, error)
	GetReview(ctx context.Context, id int64) (Review, error)
}

type UserRepository interface {
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateProfile(ctx context.Context, id, name string, image *string) (User, error)
	// DeleteAccount removes the user's reviews, sessions, account links and
	// the user row as a single transaction.
	DeleteAccount(ctx context.Context, id string) error
	GetSession(ctx context.Context, token string) (Session, error)
}

type FeedbackRepository interface {
	CreateFeedback(ctx context.Context, userID, subject, content string) (Feedback, error)
	ListFeedback(ctx context.Context, userID string) ([]Feedback, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ImageStore is the blob-storage boundary (S3 in production).
type ImageStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string, cacheControl time.Duration) (url string, err error)
}

// ImageResizer normalizes uploaded images; both variants re-encode as JPEG.
type ImageResizer interface {
	// ResizeInside scales down to fit within w x h, never enlarging.
	ResizeInside(data []byte, w, h int) ([]byte, error)
	// ResizeCover center-crops to exactly w x h, enlarging if needed.
	ResizeCover(data []byte, w, h int) ([]byte, error)
}
