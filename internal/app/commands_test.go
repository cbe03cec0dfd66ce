package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"emoji_map/internal/app"
	"emoji_map/internal/domain"
)

// ---- fakes ----

type fakeReviewRepo struct {
	reviews map[int64]domain.Review
	places  map[int64]domain.Place
	nextID  int64
	deleted []int64
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[int64]domain.Review{}, places: map[int64]domain.Place{}, nextID: 1}
}

func (f *fakeReviewRepo) CreateReview(ctx context.Context, nr domain.NewReview, userID string) (domain.CreatedReview, error) {
	id := f.nextID
	f.nextID++
	f.reviews[id] = domain.Review{ID: id, UserID: userID, Title: nr.Title, Rating: nr.Rating, Emoji: nr.Emoji}
	return domain.CreatedReview{
		ID: id, Title: nr.Title, Rating: nr.Rating, Emoji: nr.Emoji,
		PlaceName: nr.PlaceName, Address: nr.Address,
		Latitude: nr.Latitude, Longitude: nr.Longitude,
		CreatedAt: time.Now(),
	}, nil
}

func (f *fakeReviewRepo) DeleteReview(ctx context.Context, id int64, userID string) error {
	if _, ok := f.reviews[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.reviews, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeReviewRepo) ListReviews(ctx context.Context) ([]domain.Review, map[int64]domain.Place, error) {
	var out []domain.Review
	for _, r := range f.reviews {
		out = append(out, r)
	}
	return out, f.places, nil
}

func (f *fakeReviewRepo) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	return r, nil
}

type fakeUserRepo struct {
	users   map[string]domain.User
	deleted []string
}

func (f *fakeUserRepo) GetUser(ctx context.Context, id string) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id, name string, image *string) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	u.Name = name
	u.Image = image
	f.users[id] = u
	return u, nil
}

func (f *fakeUserRepo) DeleteAccount(ctx context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.users, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUserRepo) GetSession(ctx context.Context, token string) (domain.Session, error) {
	return domain.Session{}, domain.ErrNotFound
}

type fakeFeedbackRepo struct {
	items []domain.Feedback
}

func (f *fakeFeedbackRepo) CreateFeedback(ctx context.Context, userID, subject, content string) (domain.Feedback, error) {
	fb := domain.Feedback{ID: int64(len(f.items) + 1), UserID: userID, Subject: subject, Content: content, Status: "pending", CreatedAt: time.Now()}
	f.items = append(f.items, fb)
	return fb, nil
}

func (f *fakeFeedbackRepo) ListFeedback(ctx context.Context, userID string) ([]domain.Feedback, error) {
	var out []domain.Feedback
	for _, fb := range f.items {
		if fb.UserID == userID {
			out = append(out, fb)
		}
	}
	return out, nil
}

type fakeCache struct {
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if d, ok := dst.(*[]domain.PlaceView); ok {
		*d = v.([]domain.PlaceView)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

func newService() (*app.ReviewService, *fakeReviewRepo, *fakeUserRepo, *fakeFeedbackRepo, *fakeCache) {
	rr := newFakeReviewRepo()
	ur := &fakeUserRepo{users: map[string]domain.User{
		"user-a": {ID: "user-a", Name: "Ana", Email: "ana@example.com"},
		"user-b": {ID: "user-b", Name: "Bo", Email: "bo@example.com"},
	}}
	fr := &fakeFeedbackRepo{}
	c := &fakeCache{store: map[string]any{}}
	return app.NewReviewService(rr, ur, fr, c), rr, ur, fr, c
}

// ---- tests ----

func TestCreateReviewUnknownUser(t *testing.T) {
	svc, _, _, _, _ := newService()
	_, err := svc.CreateReview(context.Background(), "nobody", domain.NewReview{Title: "t"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateReviewInvalidatesCache(t *testing.T) {
	svc, _, _, _, cache := newService()
	cache.store["places:aggregate"] = []domain.PlaceView{{PlaceID: 99}}

	_, err := svc.CreateReview(context.Background(), "user-a", domain.NewReview{
		Title: "Great", Description: "desc", Rating: 5, Emoji: "🍰",
		PlaceName: "Cake House", Address: "123 Main", Latitude: 37.55, Longitude: 126.92,
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if _, ok := cache.store["places:aggregate"]; ok {
		t.Fatalf("expected place cache invalidated")
	}
}

func TestDeleteReviewOwnership(t *testing.T) {
	svc, rr, _, _, _ := newService()
	created, err := svc.CreateReview(context.Background(), "user-a", domain.NewReview{
		Title: "Mine", Description: "d", Rating: 4, Emoji: "☕",
		PlaceName: "Coffee Bar", Address: "45 Side St", Latitude: 37.56, Longitude: 126.93,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Non-owner delete is forbidden and leaves the review persisted.
	if err := svc.DeleteReview(context.Background(), created.ID, "user-b"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, ok := rr.reviews[created.ID]; !ok {
		t.Fatalf("review must survive a forbidden delete")
	}

	// Owner delete succeeds.
	if err := svc.DeleteReview(context.Background(), created.ID, "user-a"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, ok := rr.reviews[created.ID]; ok {
		t.Fatalf("review should be gone")
	}
}

func TestDeleteReviewAbsent(t *testing.T) {
	svc, _, _, _, _ := newService()
	if err := svc.DeleteReview(context.Background(), 12345, "user-a"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProfileRequiresName(t *testing.T) {
	svc, _, ur, _, _ := newService()
	if _, err := svc.UpdateProfile(context.Background(), "user-a", "   ", nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	img := "https://cdn.example.com/p.jpg"
	u, err := svc.UpdateProfile(context.Background(), "user-a", "  Ana Maria ", &img)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if u.Name != "Ana Maria" {
		t.Fatalf("expected trimmed name, got %q", u.Name)
	}
	if ur.users["user-a"].Image == nil {
		t.Fatalf("expected image persisted")
	}
}

func TestDeleteAccount(t *testing.T) {
	svc, _, ur, _, cache := newService()
	cache.store["places:aggregate"] = []domain.PlaceView{}

	if err := svc.DeleteAccount(context.Background(), "user-a"); err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(ur.deleted) != 1 || ur.deleted[0] != "user-a" {
		t.Fatalf("expected cascading delete for user-a, got %v", ur.deleted)
	}
	if _, ok := cache.store["places:aggregate"]; ok {
		t.Fatalf("expected cache invalidated after account deletion")
	}
}

func TestSubmitFeedbackSubjectEnum(t *testing.T) {
	svc, _, _, fr, _ := newService()

	if _, err := svc.SubmitFeedback(context.Background(), "user-a", "spam", "hello"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown subject, got %v", err)
	}
	if _, err := svc.SubmitFeedback(context.Background(), "user-a", "bug", "   "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty content, got %v", err)
	}

	fb, err := svc.SubmitFeedback(context.Background(), "user-a", "bug", "  markers overlap  ")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if fb.Content != "markers overlap" {
		t.Fatalf("expected trimmed content, got %q", fb.Content)
	}
	if len(fr.items) != 1 {
		t.Fatalf("expected feedback stored")
	}

	mine, _ := svc.ListFeedback(context.Background(), "user-a")
	if len(mine) != 1 {
		t.Fatalf("expected 1 feedback for user-a, got %d", len(mine))
	}
	other, _ := svc.ListFeedback(context.Background(), "user-b")
	if len(other) != 0 {
		t.Fatalf("feedback must be scoped to its author")
	}
}
