package domain

import "time"

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string

	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}
