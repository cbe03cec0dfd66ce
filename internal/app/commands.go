package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"emoji_map/internal/domain"
)

// ReviewService carries the mutation paths: review create/delete, profile
// update, account deletion, feedback. Every successful mutation invalidates
// the aggregated place cache so the next read rebuilds from fresh rows.
type ReviewService struct {
	reviews  domain.ReviewRepository
	users    domain.UserRepository
	feedback domain.FeedbackRepository
	cache    domain.Cache
}

func NewReviewService(r domain.ReviewRepository, u domain.UserRepository, f domain.FeedbackRepository, c domain.Cache) *ReviewService {
	return &ReviewService{reviews: r, users: u, feedback: f, cache: c}
}

// CreateReview persists a review, creating its place when no place matches
// (name, latitude, longitude). Place lookup-or-create and the review insert
// run in one transaction inside the repository.
func (s *ReviewService) CreateReview(ctx context.Context, userID string, nr domain.NewReview) (domain.CreatedReview, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.CreatedReview{}, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}
		return domain.CreatedReview{}, err
	}

	created, err := s.reviews.CreateReview(ctx, nr, userID)
	if err != nil {
		return domain.CreatedReview{}, fmt.Errorf("save review: %w", err)
	}

	s.invalidatePlaces(ctx)
	log.Info().Int64("review_id", created.ID).Str("place", created.PlaceName).Msg("review created")
	return created, nil
}

// DeleteReview removes a review; only its author may delete it.
func (s *ReviewService) DeleteReview(ctx context.Context, id int64, userID string) error {
	review, err := s.reviews.GetReview(ctx, id)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return domain.ErrForbidden
	}
	if err := s.reviews.DeleteReview(ctx, id, userID); err != nil {
		return err
	}
	s.invalidatePlaces(ctx)
	return nil
}

// UpdateProfile updates name (required) and image.
func (s *ReviewService) UpdateProfile(ctx context.Context, userID, name string, image *string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	u, err := s.users.UpdateProfile(ctx, userID, name, image)
	if err != nil {
		return domain.User{}, err
	}
	// Author summaries are embedded in the aggregate; drop it.
	s.invalidatePlaces(ctx)
	return u, nil
}

// DeleteAccount cascades through the user's reviews, sessions, account links
// and user row as a single atomic unit.
func (s *ReviewService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.DeleteAccount(ctx, userID); err != nil {
		return err
	}
	s.invalidatePlaces(ctx)
	log.Info().Str("user_id", userID).Msg("account deleted")
	return nil
}

func (s *ReviewService) SubmitFeedback(ctx context.Context, userID, subject, content string) (domain.Feedback, error) {
	content = strings.TrimSpace(content)
	if subject == "" || content == "" {
		return domain.Feedback{}, fmt.Errorf("subject and content are required: %w", domain.ErrValidation)
	}
	if !domain.IsFeedbackSubject(subject) {
		return domain.Feedback{}, fmt.Errorf("unknown subject %q: %w", subject, domain.ErrValidation)
	}
	return s.feedback.CreateFeedback(ctx, userID, subject, content)
}

func (s *ReviewService) ListFeedback(ctx context.Context, userID string) ([]domain.Feedback, error) {
	return s.feedback.ListFeedback(ctx, userID)
}

func (s *ReviewService) invalidatePlaces(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, placesCacheKey); err != nil {
		log.Warn().Err(err).Msg("place cache invalidation failed")
	}
}
