package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/vidtab/internal/accounts/domain"
	"github.com/stretchr/testify/require"
)

func TestSanitizedStripsCredentials(t *testing.T) {
	a := domain.Account{
		ID:               "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV",
		Username:         "alice",
		PasswordHash:     "$2a$10$hash",
		RefreshTokenHash: "fingerprint",
		WatchHistory:     []string{"v1"},
	}

	s := a.Sanitized()
	require.Empty(t, s.PasswordHash)
	require.Empty(t, s.RefreshTokenHash)
	require.Equal(t, "alice", s.Username)

	// The original is untouched and the history is a copy.
	require.Equal(t, "$2a$10$hash", a.PasswordHash)
	s.WatchHistory[0] = "changed"
	require.Equal(t, "v1", a.WatchHistory[0])
}

func TestNormalizeHandle(t *testing.T) {
	require.Equal(t, "alice@x.com", domain.NormalizeHandle("  Alice@X.com\t"))
	require.Equal(t, "", domain.NormalizeHandle("   "))
}
