package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-auth-nosql/internal/application/auth"
	"github.com/go-auth-nosql/internal/application/session"
	"github.com/go-auth-nosql/internal/domain"
	"github.com/go-auth-nosql/internal/pkg/validate"
	"github.com/go-auth-nosql/internal/transport/http/middleware"
)

// CookieSettings carries the session-cookie parameters from process
// configuration into the handlers; nothing here reads the environment.
type CookieSettings struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// AuthHandler handles the OTP/registration/login endpoints.
type AuthHandler struct {
	authSvc    auth.Service
	sessionSvc session.Service
	cookie     CookieSettings
}

func NewAuthHandler(authSvc auth.Service, sessionSvc session.Service, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, sessionSvc: sessionSvc, cookie: cookie}
}

func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.RequestOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || validate.Struct(req) != nil {
		writeMessage(w, http.StatusBadRequest, "Email is required.")
		return
	}
	if err := h.authSvc.RequestOTP(r.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			writeMessage(w, http.StatusBadRequest, "Email is required.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeMessage(w, http.StatusOK, "OTP sent to your email successfully")
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || validate.Struct(req) != nil {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}
	u, token, err := h.authSvc.VerifyAndRegister(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadRequest):
			writeMessage(w, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, domain.ErrNotFound):
			writeMessage(w, http.StatusBadRequest, "OTP expired or not found")
		case errors.Is(err, domain.ErrUnauthorized):
			writeMessage(w, http.StatusBadRequest, "Invalid OTP")
		case errors.Is(err, domain.ErrConflict):
			writeMessage(w, http.StatusBadRequest, "User already exists")
		default:
			writeMessage(w, http.StatusInternalServerError, "Server error")
		}
		return
	}
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, RegisterEnvelope{
		Message: "User created successfully",
		User:    toRegisteredUser(u),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || validate.Struct(req) != nil {
		writeMessage(w, http.StatusBadRequest, "Please provide email and password")
		return
	}
	u, token, err := h.sessionSvc.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadRequest):
			writeMessage(w, http.StatusBadRequest, "Please provide email and password")
		case errors.Is(err, domain.ErrUnauthorized):
			// Unknown email and wrong password share one message on purpose.
			writeMessage(w, http.StatusBadRequest, "Invalid email or password")
		default:
			writeMessage(w, http.StatusInternalServerError, "Server error")
		}
		return
	}
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, ProfileEnvelope{
		Message: "Login successful",
		User:    toUserProfile(u),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.sessionSvc.Profile(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, ProfileEnvelope{User: toUserProfile(u)})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cookie.Secure,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cookie.Secure,
	})
}
