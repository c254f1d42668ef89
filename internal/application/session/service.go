package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-auth-nosql/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the minimal user lookup the service depends on.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// TokenSigner mints the session credential for a user id.
type TokenSigner interface {
	Sign(userID string) (string, error)
}

type Service interface {
	// Login checks the credentials and returns the account with a signed
	// session token. Unknown email and wrong password are indistinguishable
	// to the caller.
	Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error)

	// Profile returns the account bound to an already-verified session token.
	Profile(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	userRepo UserStore
	signer   TokenSigner
}

func NewService(userRepo UserStore, signer TokenSigner) Service {
	return &service{userRepo: userRepo, signer: signer}
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error) {
	if req.Email == "" || req.Password == "" {
		return nil, "", fmt.Errorf("email and password required: %w", domain.ErrBadRequest)
	}

	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	token, err := s.signer.Sign(u.UserID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.Get(ctx, userID)
}
