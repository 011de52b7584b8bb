package accounts_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/vidtab/pkg/accountsdk"
	"github.com/stretchr/testify/require"
)

// TestRegisterLoginRefreshLogout walks one account through its whole session
// lifecycle.
func TestRegisterLoginRefreshLogout(t *testing.T) {
	client := setupAccountsContainer(t, nil)

	registered := registerAccount(t, client, "alice")
	require.Equal(t, "alice", registered.Username)
	require.NotEmpty(t, registered.Avatar)

	session := login(t, client, "alice")
	me, err := session.CurrentUser(t.Context())
	require.NoError(t, err)
	require.Equal(t, registered.ID, me.ID)

	oldAccess, oldRefresh := session.AccessToken(), session.RefreshToken()
	require.NoError(t, session.Refresh(t.Context()))
	require.NotEqual(t, oldAccess, session.AccessToken(), "access token should be rotated")
	require.NotEqual(t, oldRefresh, session.RefreshToken(), "refresh token should be rotated")

	_, err = client.Refresh(t.Context(), oldRefresh)
	assertAPIError(t, err, http.StatusUnauthorized, "Refresh token is expired or used")

	spent := session.RefreshToken()
	require.NoError(t, session.Logout(t.Context()))

	_, err = client.Refresh(t.Context(), spent)
	assertAPIError(t, err, http.StatusUnauthorized, "Refresh token is expired or used")
}

// TestSecondLoginEndsFirstSession checks that only the newest session can
// refresh.
func TestSecondLoginEndsFirstSession(t *testing.T) {
	client := setupAccountsContainer(t, nil)
	registerAccount(t, client, "bob")

	first := login(t, client, "bob")
	second := login(t, client, "bob")

	_, err := client.Refresh(t.Context(), first.RefreshToken())
	assertAPIError(t, err, http.StatusUnauthorized, "Refresh token is expired or used")

	require.NoError(t, second.Refresh(t.Context()))
}

func TestLoginFailures(t *testing.T) {
	client := setupAccountsContainer(t, nil)
	registerAccount(t, client, "carol")

	_, err := client.Login(t.Context(), accountsdk.LoginRequest{Username: "carol", Password: "wrong"})
	assertAPIError(t, err, http.StatusUnauthorized, "Invalid user credentials")

	_, err = client.Login(t.Context(), accountsdk.LoginRequest{Username: "nobody", Password: defaultPassword})
	assertAPIError(t, err, http.StatusNotFound, "User does not exist")

	_, err = client.Login(t.Context(), accountsdk.LoginRequest{Password: defaultPassword})
	assertAPIError(t, err, http.StatusBadRequest, "username or email is required")
}

func TestDuplicateRegistration(t *testing.T) {
	client := setupAccountsContainer(t, nil)
	registerAccount(t, client, "dave")

	_, err := client.Register(t.Context(), accountsdk.RegisterRequest{
		Username: "DAVE",
		Email:    "other@example.com",
		FullName: "Dave Again",
		Password: defaultPassword,
		Avatar:   image("dup"),
	})
	assertAPIError(t, err, http.StatusConflict, "User with email or username already exists")
}
