package domain

import "time"

// FeedbackSubjects is the fixed set of allowed feedback subjects.
var FeedbackSubjects = []string{"bug", "feature", "ui", "performance", "content", "other"}

func IsFeedbackSubject(s string) bool {
	for _, v := range FeedbackSubjects {
		if s == v {
			return true
		}
	}
	return false
}

type Feedback struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	Status    string    `json:"status"` // pending|resolved
	CreatedAt time.Time `json:"createdAt"`
}
