package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"emoji_map/internal/domain"
)

const (
	MaxUploadBytes = 5 << 20 // 5MB

	reviewImageW, reviewImageH   = 800, 600
	profileImageW, profileImageH = 300, 300

	imageCacheControl = 365 * 24 * time.Hour
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

type Upload struct {
	Data        []byte
	ContentType string
}

type UploadResult struct {
	ImageURL string `json:"imageUrl"`
	FileName string `json:"fileName"`
}

// ImageService normalizes uploaded images and writes them to object storage.
// Resizing is CPU-bound, so concurrent work is bounded by a semaphore.
type ImageService struct {
	store   domain.ImageStore
	resizer domain.ImageResizer
	env     string // folder prefix: dev|prod
	sem     *semaphore.Weighted
}

func NewImageService(store domain.ImageStore, resizer domain.ImageResizer, env string, workers int) *ImageService {
	if workers <= 0 {
		workers = 4
	}
	return &ImageService{store: store, resizer: resizer, env: env, sem: semaphore.NewWeighted(int64(workers))}
}

// StoreReviewImage validates, resizes to fit 800x600 and uploads one review
// image. The output is always JPEG.
func (s *ImageService) StoreReviewImage(ctx context.Context, up Upload) (UploadResult, error) {
	if err := validateUpload(up); err != nil {
		return UploadResult{}, err
	}
	key := fmt.Sprintf("%s/reviews/%s.jpg", s.env, uuid.NewString())
	return s.resizeAndPut(ctx, up, key, false)
}

// StoreProfileImage normalizes a profile image to a 300x300 cover crop,
// enlarging smaller sources so every profile image is the same square.
func (s *ImageService) StoreProfileImage(ctx context.Context, userID string, up Upload) (UploadResult, error) {
	if err := validateUpload(up); err != nil {
		return UploadResult{}, err
	}
	key := fmt.Sprintf("%s/profiles/%s/%s.jpg", s.env, userID, uuid.NewString())
	return s.resizeAndPut(ctx, up, key, true)
}

// StoreReviewImages processes a submission's images (at most 3) in parallel
// and fails the whole batch if any upload fails, preserving submission
// atomicity. Result order matches input order.
func (s *ImageService) StoreReviewImages(ctx context.Context, uploads []Upload) ([]UploadResult, error) {
	if len(uploads) > domain.MaxReviewImages {
		return nil, fmt.Errorf("at most %d images per review: %w", domain.MaxReviewImages, domain.ErrValidation)
	}

	results := make([]UploadResult, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	for i, up := range uploads {
		i, up := i, up
		g.Go(func() error {
			res, err := s.StoreReviewImage(gctx, up)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *ImageService) resizeAndPut(ctx context.Context, up Upload, key string, cover bool) (UploadResult, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return UploadResult{}, err
	}
	var (
		resized []byte
		err     error
	)
	if cover {
		resized, err = s.resizer.ResizeCover(up.Data, profileImageW, profileImageH)
	} else {
		resized, err = s.resizer.ResizeInside(up.Data, reviewImageW, reviewImageH)
	}
	s.sem.Release(1)
	if err != nil {
		return UploadResult{}, fmt.Errorf("resize image: %w", err)
	}

	url, err := s.store.Put(ctx, key, resized, "image/jpeg", imageCacheControl)
	if err != nil {
		return UploadResult{}, fmt.Errorf("store image: %w", err)
	}
	return UploadResult{ImageURL: url, FileName: key}, nil
}

func validateUpload(up Upload) error {
	if len(up.Data) == 0 {
		return fmt.Errorf("image file is required: %w", domain.ErrValidation)
	}
	if len(up.Data) > MaxUploadBytes {
		return fmt.Errorf("file exceeds 5MB limit: %w", domain.ErrValidation)
	}
	if !allowedImageTypes[up.ContentType] {
		return fmt.Errorf("unsupported image type %q (JPEG, PNG, WebP): %w", up.ContentType, domain.ErrValidation)
	}
	return nil
}
