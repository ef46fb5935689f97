package domain

import "time"

// TokenPair is what a successful login or refresh returns: the short-lived
// access token and the single-use refresh token.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // seconds until access expiry
}

// ActionType names an out-of-band email flow an action token authorizes.
type ActionType string

const (
	ActionEmailVerify   ActionType = "EMAIL_VERIFY"
	ActionPasswordReset ActionType = "PASSWORD_RESET"
)
