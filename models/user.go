package models

import "time"

// User mirrors an identity issued by the auth collaborator. The ID is the
// token user id from the auth service, reused as primary key; rows are created
// lazily on first authenticated request and never deleted.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSession is one row of the append-only login-event log. Rows are only
// ever inserted and counted; nothing updates or deletes them.
type UserSession struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// AdminUserStats is one row of the admin view: a user plus aggregate counts
// over their watchlist and login log.
type AdminUserStats struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	ItemCount    int        `json:"itemCount"`
	SessionCount int        `json:"sessionCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastSeenAt   *time.Time `json:"lastSeenAt,omitempty"`
}
