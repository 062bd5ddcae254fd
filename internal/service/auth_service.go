package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/weifish0/file-upload-sys/internal/auth"
	"github.com/weifish0/file-upload-sys/internal/models"
	"github.com/weifish0/file-upload-sys/internal/repository"
)

// ErrInvalidCredentials is deliberately generic: it does not reveal whether
// the username existed.
var ErrInvalidCredentials = errors.New("invalid username or password")

// dummyHash is compared against when the username is unknown, so the two
// failure paths take comparable time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type AuthService struct {
	admins repository.AdminRepository
}

func NewAuthService(admins repository.AdminRepository) *AuthService {
	return &AuthService{admins: admins}
}

// Login verifies credentials and returns the admin on success.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Admin, error) {
	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("login %q: %w", username, err)
	}
	if admin == nil {
		auth.CheckPassword(password, dummyHash)
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}

// Bootstrap creates the default admin account when the store holds no admin
// records at all. Idempotent across restarts. The default password is an
// operational bootstrap and must be rotated before production exposure.
func (s *AuthService) Bootstrap(ctx context.Context, username, password string) error {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: count admins: %w", err)
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("bootstrap: hash password: %w", err)
	}
	admin := &models.Admin{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.admins.Create(ctx, admin); err != nil {
		return fmt.Errorf("bootstrap: create admin: %w", err)
	}
	log.Printf("bootstrap: created default admin %q", username)
	return nil
}
