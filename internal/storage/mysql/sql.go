package mysql

// Reviews joined with place and author, newest first. Aggregation happens in
// the app layer; this query only defines the input order (creation
// descending, id as tie-break).
const listReviewsSQL = `
SELECT
  r.id, r.place_id, r.user_id, r.title, r.description, r.rating, r.emoji,
  r.images, r.created_at,
  u.name, u.image,
  p.id, p.name, p.address, p.latitude, p.longitude, p.category
FROM reviews r
JOIN users u ON u.id = r.user_id
JOIN places p ON p.id = r.place_id
ORDER BY r.created_at DESC, r.id DESC
`

const getReviewSQL = `
SELECT r.id, r.place_id, r.user_id, r.title, r.description, r.rating, r.emoji, r.images, r.created_at
FROM reviews r
WHERE r.id = ?
`

const findPlaceSQL = `
SELECT id, name, address, latitude, longitude, category
FROM places
WHERE name = ? AND latitude = ? AND longitude = ?
`

const insertPlaceSQL = `
INSERT INTO places (name, address, latitude, longitude, category)
VALUES (?, ?, ?, ?, ?)
`

const insertReviewSQL = `
INSERT INTO reviews (place_id, user_id, title, description, rating, emoji, images)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const deleteReviewSQL = `DELETE FROM reviews WHERE id = ? AND user_id = ?`

const getUserSQL = `SELECT id, name, email, image FROM users WHERE id = ?`

const getUserByEmailSQL = `SELECT id, name, email, image FROM users WHERE email = ?`

const updateProfileSQL = `UPDATE users SET name = ?, image = ? WHERE id = ?`

const getSessionSQL = `SELECT session_token, user_id, expires FROM sessions WHERE session_token = ?`

const insertFeedbackSQL = `
INSERT INTO feedback (user_id, subject, content, status)
VALUES (?, ?, ?, 'pending')
`

const listFeedbackSQL = `
SELECT id, user_id, subject, content, status, created_at
FROM feedback
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
`

// Account deletion cascade, executed inside one transaction in this order:
// reviews, feedback, sessions, account links, user row. Every table holding a
// FK to users must be cleared here or the user-row delete is rejected.
const (
	deleteUserReviewsSQL  = `DELETE FROM reviews WHERE user_id = ?`
	deleteUserFeedbackSQL = `DELETE FROM feedback WHERE user_id = ?`
	deleteUserSessionsSQL = `DELETE FROM sessions WHERE user_id = ?`
	deleteUserAccountsSQL = `DELETE FROM accounts WHERE user_id = ?`
	deleteUserSQL         = `DELETE FROM users WHERE id = ?`
)
