package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/db"
)

// TokenStore issues opaque session tokens kept in auth_tokens. Each user has
// at most one live token; logging in again returns the same one.
type TokenStore struct {
	pool     db.DBPool
	hashCost int
}

func NewTokenStore(pool db.DBPool) *TokenStore {
	return &TokenStore{pool: pool, hashCost: bcrypt.DefaultCost}
}

// WithHashCost returns a copy hashing passwords at cost. Tests use bcrypt.MinCost.
func (s *TokenStore) WithHashCost(cost int) *TokenStore {
	return &TokenStore{pool: s.pool, hashCost: cost}
}

// Register creates the user, its empty profile and its first token in one transaction.
func (s *TokenStore) Register(ctx context.Context, reg Registration) (user *User, token string, err error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.hashCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	token, err = newToken()
	if err != nil {
		return nil, "", err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("begin register: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	u := &User{ID: uuid.NewString(), Username: reg.Username, Email: reg.Email}

	if _, err = tx.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`, u.ID, u.Username, u.Email, string(hash)); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, "", apperr.Wrap(apperr.Conflict("username %q is already taken", reg.Username), err)
		}
		return nil, "", fmt.Errorf("insert user: %w", err)
	}

	if _, err = tx.Exec(ctx, `INSERT INTO user_profiles (user_id) VALUES ($1)`, u.ID); err != nil {
		return nil, "", fmt.Errorf("insert profile: %w", err)
	}

	if _, err = tx.Exec(ctx, `INSERT INTO auth_tokens (key, user_id) VALUES ($1, $2)`, token, u.ID); err != nil {
		return nil, "", fmt.Errorf("insert token: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("commit register: %w", err)
	}
	return u, token, nil
}

// Login checks the password and returns the user's token, creating one if needed.
func (s *TokenStore) Login(ctx context.Context, username, password string) (*User, string, error) {
	var (
		u    User
		hash string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, email, is_staff, password_hash
		FROM users
		WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.Email, &u.IsStaff, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperr.Unauthorized("invalid credentials")
		}
		return nil, "", fmt.Errorf("select user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, "", apperr.Unauthorized("invalid credentials")
	}

	candidate, err := newToken()
	if err != nil {
		return nil, "", err
	}

	var token string
	// On conflict the existing row is kept, so RETURNING yields the live key.
	err = s.pool.QueryRow(ctx, `
		INSERT INTO auth_tokens (key, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING key
	`, candidate, u.ID).Scan(&token)
	if err != nil {
		return nil, "", fmt.Errorf("upsert token: %w", err)
	}
	return &u, token, nil
}

func (s *TokenStore) Logout(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (s *TokenStore) CurrentUser(ctx context.Context, credential string) (*User, error) {
	if credential == "" {
		return nil, apperr.Unauthorized("authentication credentials were not provided")
	}

	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT u.id, u.username, u.email, u.is_staff
		FROM auth_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.key = $1
	`, credential).Scan(&u.ID, &u.Username, &u.Email, &u.IsStaff)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Unauthorized("invalid token")
		}
		return nil, fmt.Errorf("select token: %w", err)
	}
	return &u, nil
}

func newToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
