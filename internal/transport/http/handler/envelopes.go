package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-auth-nosql/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message"`
}

// RegisteredUser is the identity slice echoed back on registration.
type RegisteredUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserProfile is the redacted account view returned on login and /me.
// Field names follow the public API contract, not the storage schema.
type UserProfile struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Mobile      string  `json:"mobile"`
	CurrentPlan string  `json:"currentPlan"`
	USDT        float64 `json:"usdt"`
	Deposit     float64 `json:"deposit"`
	Withdrawal  float64 `json:"withdrawal"`
}

// RegisterEnvelope wraps the registration success response.
type RegisterEnvelope struct {
	Message string         `json:"message"`
	User    RegisteredUser `json:"user"`
}

// ProfileEnvelope wraps login and /me responses.
type ProfileEnvelope struct {
	Message string      `json:"message,omitempty"`
	User    UserProfile `json:"user"`
}

func toRegisteredUser(u *domain.User) RegisteredUser {
	return RegisteredUser{ID: u.UserID, Username: u.Username, Email: u.Email}
}

func toUserProfile(u *domain.User) UserProfile {
	return UserProfile{
		ID:          u.UserID,
		Username:    u.Username,
		Email:       u.Email,
		Mobile:      u.Mobile,
		CurrentPlan: u.CurrentPlan,
		USDT:        u.USDT,
		Deposit:     u.Deposit,
		Withdrawal:  u.Withdrawal,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Message: msg})
}
