package domain

import "time"

type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	Username     string    `json:"username" dynamodbav:"username"`
	Email        string    `json:"email" dynamodbav:"email"`
	Mobile       string    `json:"mobile" dynamodbav:"mobile"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	CurrentPlan  string    `json:"current_plan" dynamodbav:"current_plan"`
	USDT         float64   `json:"usdt" dynamodbav:"usdt"`
	Deposit      float64   `json:"deposit" dynamodbav:"deposit"`
	Withdrawal   float64   `json:"withdrawal" dynamodbav:"withdrawal"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

type RequestOTPRequest struct {
	Email string `json:"email" validate:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	OTP      string `json:"otp" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Mobile   string `json:"mobile" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
