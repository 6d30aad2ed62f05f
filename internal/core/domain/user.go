package domain

import "time"

type User struct {
	ID          string
	Email       *string
	Name        *string
	GithubLogin *string
	CreatedAt   time.Time
}

// Session is the resolved authentication context for one request. It is
// produced by the auth collaborator before any service call runs.
type Session struct {
	Token   string
	UserID  string
	Expires time.Time

	// Snapshot of the session's user, used for identity resolution.
	Email       *string
	Name        *string
	GithubLogin *string
}

func (s Session) Expired(now time.Time) bool {
	return !s.Expires.After(now)
}
