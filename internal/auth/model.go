package auth

import "context"

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"-"`
}

// Provider resolves request credentials to the user they belong to.
// A missing or unknown credential is an Unauthorized error.
type Provider interface {
	CurrentUser(ctx context.Context, credential string) (*User, error)
}

type Registration struct {
	Username string
	Email    string
	Password string
}
