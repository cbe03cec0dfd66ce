package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"emoji_map/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullToPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// ---- reviews ----

// CreateReview finds the place by (name, latitude, longitude) or creates it,
// then inserts the review — all in one transaction so a failed insert never
// leaves an orphan place behind.
func (r *Repo) CreateReview(ctx context.Context, nr domain.NewReview, userID string) (domain.CreatedReview, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.CreatedReview{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var place domain.Place
	var category sql.NullString
	err = tx.QueryRowContext(ctx, findPlaceSQL, nr.PlaceName, nr.Latitude, nr.Longitude).
		Scan(&place.ID, &place.Name, &place.Address, &place.Latitude, &place.Longitude, &category)
	switch {
	case err == sql.ErrNoRows:
		res, ierr := tx.ExecContext(ctx, insertPlaceSQL, nr.PlaceName, nr.Address, nr.Latitude, nr.Longitude, valStr(nr.Category))
		if ierr != nil {
			return domain.CreatedReview{}, fmt.Errorf("create place: %w", ierr)
		}
		place = domain.Place{Name: nr.PlaceName, Address: nr.Address, Latitude: nr.Latitude, Longitude: nr.Longitude, Category: nr.Category}
		place.ID, _ = res.LastInsertId()
	case err != nil:
		return domain.CreatedReview{}, err
	default:
		place.Category = nullToPtr(category)
	}

	images, _ := json.Marshal(nr.Images)
	res, err := tx.ExecContext(ctx, insertReviewSQL,
		place.ID, userID, nr.Title, nr.Description, nr.Rating, nr.Emoji, string(images))
	if err != nil {
		return domain.CreatedReview{}, fmt.Errorf("insert review: %w", err)
	}
	reviewID, _ := res.LastInsertId()

	var created domain.CreatedReview
	var userImage sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT r.created_at, u.name, u.image FROM reviews r JOIN users u ON u.id = r.user_id WHERE r.id = ?`,
		reviewID,
	).Scan(&created.CreatedAt, &created.User.Name, &userImage)
	if err != nil {
		return domain.CreatedReview{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.CreatedReview{}, err
	}

	created.ID = reviewID
	created.Title = nr.Title
	created.Description = nr.Description
	created.Rating = nr.Rating
	created.Emoji = nr.Emoji
	created.Images = nr.Images
	created.PlaceName = place.Name
	created.Address = place.Address
	created.Latitude = place.Latitude
	created.Longitude = place.Longitude
	created.User.ID = userID
	created.User.Image = nullToPtr(userImage)
	return created, nil
}

func (r *Repo) DeleteReview(ctx context.Context, id int64, userID string) error {
	res, err := r.db.ExecContext(ctx, deleteReviewSQL, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	var rv domain.Review
	var images []byte
	row := r.db.QueryRowContext(ctx, getReviewSQL, id)
	err := row.Scan(&rv.ID, &rv.PlaceID, &rv.UserID, &rv.Title, &rv.Description, &rv.Rating, &rv.Emoji, &images, &rv.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Review{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Review{}, err
	}
	_ = json.Unmarshal(images, &rv.Images)
	return rv, nil
}

func (r *Repo) ListReviews(ctx context.Context) ([]domain.Review, map[int64]domain.Place, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	places := make(map[int64]domain.Place)
	for rows.Next() {
		var (
			rv        domain.Review
			imagesRaw []byte
			userImage sql.NullString
			p         domain.Place
			category  sql.NullString
		)
		if err := rows.Scan(
			&rv.ID, &rv.PlaceID, &rv.UserID, &rv.Title, &rv.Description, &rv.Rating, &rv.Emoji,
			&imagesRaw, &rv.CreatedAt,
			&rv.User.Name, &userImage,
			&p.ID, &p.Name, &p.Address, &p.Latitude, &p.Longitude, &category,
		); err != nil {
			return nil, nil, err
		}
		_ = json.Unmarshal(imagesRaw, &rv.Images)
		rv.User.ID = rv.UserID
		rv.User.Image = nullToPtr(userImage)
		p.Category = nullToPtr(category)

		reviews = append(reviews, rv)
		if _, ok := places[p.ID]; !ok {
			places[p.ID] = p
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return reviews, places, nil
}

// ---- users & sessions ----

func (r *Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, getUserSQL, id))
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, getUserByEmailSQL, email))
}

func (r *Repo) scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var image sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &image)
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	u.Image = nullToPtr(image)
	return u, nil
}

func (r *Repo) UpdateProfile(ctx context.Context, id, name string, image *string) (domain.User, error) {
	res, err := r.db.ExecContext(ctx, updateProfileSQL, name, valStr(image), id)
	if err != nil {
		return domain.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows can also mean an unchanged profile; distinguish by lookup.
		if _, gerr := r.GetUser(ctx, id); gerr != nil {
			return domain.User{}, gerr
		}
	}
	return r.GetUser(ctx, id)
}

// DeleteAccount removes everything belonging to the user: reviews, feedback,
// sessions, account links, then the user row, as one transaction. Partial
// deletion is never observable.
func (r *Repo) DeleteAccount(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{deleteUserReviewsSQL, deleteUserFeedbackSQL, deleteUserSessionsSQL, deleteUserAccountsSQL} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, deleteUserSQL, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

func (r *Repo) GetSession(ctx context.Context, token string) (domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRowContext(ctx, getSessionSQL, token).Scan(&s.Token, &s.UserID, &s.Expires)
	if err == sql.ErrNoRows {
		return domain.Session{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	return s, nil
}

// ---- feedback ----

func (r *Repo) CreateFeedback(ctx context.Context, userID, subject, content string) (domain.Feedback, error) {
	res, err := r.db.ExecContext(ctx, insertFeedbackSQL, userID, subject, content)
	if err != nil {
		return domain.Feedback{}, err
	}
	id, _ := res.LastInsertId()

	var fb domain.Feedback
	err = r.db.QueryRowContext(ctx,
		`SELECT id, user_id, subject, content, status, created_at FROM feedback WHERE id = ?`, id,
	).Scan(&fb.ID, &fb.UserID, &fb.Subject, &fb.Content, &fb.Status, &fb.CreatedAt)
	if err != nil {
		return domain.Feedback{}, err
	}
	return fb, nil
}

func (r *Repo) ListFeedback(ctx context.Context, userID string) ([]domain.Feedback, error) {
	rows, err := r.db.QueryContext(ctx, listFeedbackSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Feedback
	for rows.Next() {
		var fb domain.Feedback
		if err := rows.Scan(&fb.ID, &fb.UserID, &fb.Subject, &fb.Content, &fb.Status, &fb.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}
