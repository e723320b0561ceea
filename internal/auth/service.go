package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Admin is the single configured account allowed to obtain a token.
type Admin struct {
	Username     string
	PasswordHash string
}

// Service issues and resolves opaque API tokens.
type Service struct {
	admin Admin
	store TokenStore
}

func NewService(admin Admin, store TokenStore) *Service {
	return &Service{admin: admin, store: store}
}

// IssueToken checks the credentials and returns the user's token, minting
// one on first login.
func (s *Service) IssueToken(ctx context.Context, username, password string) (string, error) {
	if s.admin.PasswordHash == "" || username == "" {
		return "", ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password))
	if !userOK || passErr != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.store.Claim(ctx, username, newToken())
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a token to its username.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrTokenNotFound
	}
	return s.store.Lookup(ctx, token)
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
