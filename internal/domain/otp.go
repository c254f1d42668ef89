package domain

import "strings"

// OTP is a pending email verification code.
// PK: email — at most one live record per address; a new issuance replaces
// the previous one. ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type OTP struct {
	Email     string `json:"email" dynamodbav:"email"`
	Code      string `json:"-" dynamodbav:"code"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// Matches reports whether the submitted code equals the stored one.
// Codes are drawn from [100000, 999999], so trimmed string equality and
// numeric equality coincide.
func (o *OTP) Matches(code string) bool {
	return strings.TrimSpace(code) == o.Code
}
