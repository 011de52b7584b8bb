package domain

import (
	"slices"
	"strings"
	"time"
)

// Account is a registered user of the platform.
type Account struct {
	ID            string
	Username      string // unique, lowercased
	Email         string // unique, lowercased
	FullName      string
	PasswordHash  string // bcrypt encoded
	AvatarURL     string
	CoverImageURL string

	// RefreshTokenHash is the fingerprint of the single refresh token that is
	// currently allowed to rotate. Empty means no active session.
	RefreshTokenHash string

	WatchHistory []string // opaque video references, oldest first
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized returns a copy without credential material. Anything that leaves
// the service layer goes through here.
func (a Account) Sanitized() Account {
	a.PasswordHash = ""
	a.RefreshTokenHash = ""
	a.WatchHistory = slices.Clone(a.WatchHistory)
	return a
}

// NormalizeHandle lowercases and trims a username or email so lookups and
// uniqueness checks are case-insensitive.
func NormalizeHandle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
