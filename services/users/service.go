package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"watchdeck/models"
)

var (
	ErrUserIDRequired = errors.New("user id is required")
	ErrUserNotFound   = errors.New("user not found")
)

// Service manages the local mirror of auth-provider identities and the
// append-only login-event log.
type Service struct {
	db *sql.DB
}

// NewService creates a users service backed by the provided database.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Get returns the user with the given ID if present.
func (s *Service) Get(ctx context.Context, id string) (models.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.User{}, ErrUserIDRequired
	}

	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Upsert creates the user row on first sight and returns it. Existing rows
// pick up an email change from the auth provider; nothing else is mutated and
// rows are never deleted.
func (s *Service) Upsert(ctx context.Context, id, email string) (models.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.User{}, ErrUserIDRequired
	}
	email = strings.TrimSpace(email)

	// A blank email (session logging does not know it) never clobbers one a
	// previous sync stored.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET email = excluded.email WHERE excluded.email != ''`,
		id, email, time.Now().UTC())
	if err != nil {
		return models.User{}, fmt.Errorf("upsert user: %w", err)
	}

	return s.Get(ctx, id)
}

// RecordSession appends one login event for the user, creating the user row
// first if this is their initial callback.
func (s *Service) RecordSession(ctx context.Context, userID string) (models.UserSession, error) {
	if _, err := s.Upsert(ctx, userID, ""); err != nil {
		return models.UserSession{}, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user_sessions (user_id, created_at) VALUES (?, ?)`,
		strings.TrimSpace(userID), now)
	if err != nil {
		return models.UserSession{}, fmt.Errorf("record session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.UserSession{}, fmt.Errorf("record session: %w", err)
	}

	return models.UserSession{ID: id, UserID: strings.TrimSpace(userID), CreatedAt: now}, nil
}

// SessionCount returns the number of recorded logins for a user.
func (s *Service) SessionCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_sessions WHERE user_id = ?`, strings.TrimSpace(userID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

// AdminStats aggregates per-user watchlist and session counts for the admin
// view, newest signups first.
func (s *Service) AdminStats(ctx context.Context) ([]models.AdminUserStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.email, u.created_at,
			(SELECT COUNT(*) FROM watch_items w WHERE w.user_id = u.id) AS item_count,
			(SELECT COUNT(*) FROM user_sessions s WHERE s.user_id = u.id) AS session_count,
			(SELECT MAX(s.created_at) FROM user_sessions s WHERE s.user_id = u.id) AS last_seen_at
		FROM users u
		ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	defer rows.Close()

	stats := make([]models.AdminUserStats, 0)
	for rows.Next() {
		var (
			st       models.AdminUserStats
			lastSeen sql.NullString
		)
		if err := rows.Scan(&st.ID, &st.Email, &st.CreatedAt, &st.ItemCount, &st.SessionCount, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan admin stats: %w", err)
		}
		if lastSeen.Valid {
			t, err := parseStoredTime(lastSeen.String)
			if err != nil {
				return nil, fmt.Errorf("parse last seen: %w", err)
			}
			st.LastSeenAt = &t
		}
		stats = append(stats, st)
	}

	return stats, rows.Err()
}

// sqliteTimeFormats are the layouts the sqlite driver writes timestamps in.
// MAX() strips the column's declared type, so the aggregate comes back as a
// raw string and has to be parsed here.
var sqliteTimeFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

func parseStoredTime(s string) (time.Time, error) {
	for _, layout := range sqliteTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
