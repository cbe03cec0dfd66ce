package domain

import "time"

type User struct {
	ID    string
	Name  string
	Email string
	Image *string
}

type UserSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Image: u.Image}
}

// Session is an identity-provider session persisted in the relational store.
// Token issuance happens outside this service; we only look tokens up.
type Session struct {
	Token   string
	UserID  string
	Expires time.Time
}

func (s Session) ExpiredAt(now time.Time) bool { return !s.Expires.After(now) }
