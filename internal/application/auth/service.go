package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/go-auth-nosql/internal/domain"
	"github.com/go-auth-nosql/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// OTPStore is the pending-code store the service depends on.
type OTPStore interface {
	Issue(ctx context.Context, email, code string) error
	Find(ctx context.Context, email string) (*domain.OTP, error)
	Consume(ctx context.Context, email string) error
}

// UserStore is the minimal user persistence the service depends on.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

// Mailer delivers the verification code. Dispatch is detached: the issuance
// response never waits on it.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// SMSSender sends the post-registration welcome SMS. May be nil.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// TokenSigner mints the session credential for a user id.
type TokenSigner interface {
	Sign(userID string) (string, error)
}

type Service interface {
	// RequestOTP issues a fresh 6-digit code for the email, replacing any
	// pending one, and dispatches the delivery email in the background.
	// Success means the record is durably stored, not that the mail arrived.
	RequestOTP(ctx context.Context, email string) error

	// VerifyAndRegister redeems the pending code and, on success, creates the
	// account and returns it with a signed session token.
	VerifyAndRegister(ctx context.Context, req domain.RegisterRequest) (*domain.User, string, error)
}

// ServiceDeps bundles the collaborators for NewService.
type ServiceDeps struct {
	OTPRepo   OTPStore
	UserRepo  UserStore
	Mailer    Mailer
	SMSSender SMSSender
	Signer    TokenSigner
}

type service struct {
	otpRepo   OTPStore
	userRepo  UserStore
	mailer    Mailer
	smsSender SMSSender
	signer    TokenSigner
}

func NewService(deps ServiceDeps) Service {
	return &service{
		otpRepo:   deps.OTPRepo,
		userRepo:  deps.UserRepo,
		mailer:    deps.Mailer,
		smsSender: deps.SMSSender,
		signer:    deps.Signer,
	}
}

func (s *service) RequestOTP(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}

	code, err := newCode()
	if err != nil {
		return err
	}

	if err := s.otpRepo.Issue(ctx, email, code); err != nil {
		return err
	}
	slog.Info("otp issued", "email", email)

	// Detached delivery: the HTTP response is defined by durable storage of
	// the record, never by the mail collaborator's latency or failure.
	go func() {
		if err := s.mailer.SendEmail(email, "Your verification code", "Your OTP: "+code); err != nil {
			slog.Warn("otp email delivery failed", "email", email, "err", err)
		}
	}()

	return nil
}

func (s *service) VerifyAndRegister(ctx context.Context, req domain.RegisterRequest) (*domain.User, string, error) {
	if req.Email == "" || req.OTP == "" || req.Username == "" || req.Password == "" || req.Mobile == "" {
		return nil, "", fmt.Errorf("all fields are required: %w", domain.ErrBadRequest)
	}

	otp, err := s.otpRepo.Find(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}

	// A mismatch leaves the record in place so the user can retry the same
	// code until it expires.
	if !otp.Matches(req.OTP) {
		return nil, "", fmt.Errorf("invalid otp: %w", domain.ErrUnauthorized)
	}

	// Single use: consume as soon as the code matches. A later failure (e.g.
	// the account already exists) does not restore it — the user re-requests
	// a fresh code.
	if err := s.otpRepo.Consume(ctx, req.Email); err != nil {
		return nil, "", err
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, "", fmt.Errorf("user already exists: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Username:     req.Username,
		Email:        req.Email,
		Mobile:       req.Mobile,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return nil, "", err
	}
	slog.Info("user registered", "user_id", u.UserID, "email", u.Email)

	token, err := s.signer.Sign(u.UserID)
	if err != nil {
		return nil, "", err
	}

	if s.smsSender != nil {
		mobile := u.Mobile
		go func() {
			ctx := context.WithoutCancel(ctx)
			if err := s.smsSender.SendSMS(ctx, mobile, "Welcome aboard, "+u.Username+"!"); err != nil {
				slog.Warn("welcome sms delivery failed", "user_id", u.UserID, "err", err)
			}
		}()
	}

	return u, token, nil
}

// newCode draws a code uniformly from [100000, 999999]. The range excludes
// anything below 100000, so the string form is always six digits.
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
