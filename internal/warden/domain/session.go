package domain

import "time"

// Session is the persisted proof of an authenticated device binding.
// (UserID, DeviceID) is the natural key: at most one live record exists per
// pair, and every refresh replaces the record wholesale rather than updating
// it in place. Only the fingerprint of the refresh token is stored.
type Session struct {
	ID               string
	UserID           string
	DeviceID         string
	AccessToken      string
	RefreshTokenHash string
	IssuedAt         time.Time
}
