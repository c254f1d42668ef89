package http

import (
	jwtinfra "github.com/go-auth-nosql/internal/infrastructure/jwt"
	"github.com/go-auth-nosql/internal/infrastructure/smtp"
	"github.com/go-auth-nosql/internal/infrastructure/sns"

	"github.com/go-auth-nosql/internal/application/auth"
	"github.com/go-auth-nosql/internal/application/session"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	OTPRepo     OTPRepository
	Mailer      smtp.Mailer
	SMSSender   sns.SMSSender // optional
	JWTProvider *jwtinfra.Provider
}

// UserRepository is the user store surface the router wires into services.
type UserRepository interface {
	auth.UserStore
	session.UserStore
}

// OTPRepository is the pending-code store surface the router wires into services.
type OTPRepository interface {
	auth.OTPStore
}
