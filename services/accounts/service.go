package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const minPasswordLength = 8

// Account is a credential record held by the session-issuing auth service.
// It is distinct from the application's user mirror: the auth middleware
// derives the token user id from it, and the users service mirrors that id.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service stores login credentials for the direct auth provider.
type Service struct {
	db *sql.DB
}

// NewService creates an accounts service backed by the provided database.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Create registers a new account with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, email, password string, isAdmin bool) (Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return Account{}, ErrEmailRequired
	}
	if password == "" {
		return Account{}, ErrPasswordRequired
	}
	if len(password) < minPasswordLength {
		return Account{}, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}

	acct := Account{
		ID:        uuid.NewString(),
		Email:     email,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?, ?)`,
		acct.ID, acct.Email, string(hash), acct.IsAdmin, acct.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return Account{}, ErrEmailTaken
		}
		return Account{}, fmt.Errorf("insert account: %w", err)
	}

	return acct, nil
}

// GetByEmail returns the account registered under the email, if any.
func (s *Service) GetByEmail(ctx context.Context, email string) (Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return Account{}, ErrEmailRequired
	}

	var (
		acct Account
		hash string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, is_admin, created_at FROM accounts WHERE email = ?`, email).
		Scan(&acct.ID, &acct.Email, &hash, &acct.IsAdmin, &acct.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("get account: %w", err)
	}
	return acct, nil
}

// CheckCredentials verifies an email/password pair against the stored hash
// and returns the matching account.
func (s *Service) CheckCredentials(ctx context.Context, email, password string) (Account, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Account{}, ErrInvalidCredentials
	}

	var (
		acct Account
		hash string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, is_admin, created_at FROM accounts WHERE email = ?`, email).
		Scan(&acct.ID, &acct.Email, &hash, &acct.IsAdmin, &acct.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, fmt.Errorf("check credentials: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return Account{}, ErrInvalidCredentials
	}
	return acct, nil
}

// Count returns the number of registered accounts.
func (s *Service) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
