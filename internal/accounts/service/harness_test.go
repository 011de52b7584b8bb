package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/vidtab/internal/accounts/domain"
	"github.com/aussiebroadwan/vidtab/internal/accounts/media"
	"github.com/aussiebroadwan/vidtab/internal/accounts/service"
	"github.com/aussiebroadwan/vidtab/internal/accounts/store"
	"github.com/aussiebroadwan/vidtab/internal/accounts/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memMedia records uploads and hands back predictable URLs.
type memMedia struct {
	mu      sync.Mutex
	uploads []media.Upload
	fail    bool
}

func (m *memMedia) Put(_ context.Context, u media.Upload) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return "", errors.New("media backend unavailable")
	}
	if _, err := io.Copy(io.Discard, u.Body); err != nil {
		return "", err
	}
	m.uploads = append(m.uploads, u)
	return fmt.Sprintf("http://media.test/%s/%d%s", u.Kind, len(m.uploads), strings.ToLower(u.Filename)), nil
}

func (m *memMedia) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads)
}

type harness struct {
	store    store.Store
	media    *memMedia
	tokens   *service.TokenService
	accounts *service.AccountService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	st, err := sqlite.NewStore("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	tokens, err := service.NewTokenService(st, service.TokenConfig{
		Issuer:        "vidtab-test",
		AccessSecret:  []byte("access-secret-for-tests-only"),
		RefreshSecret: []byte("refresh-secret-for-tests-only"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	m := &memMedia{}
	return &harness{
		store:  st,
		media:  m,
		tokens: tokens,
		accounts: &service.AccountService{
			Store:      st,
			Tokens:     tokens,
			Media:      m,
			BcryptCost: bcrypt.MinCost,
		},
	}
}

func avatar() *media.Upload {
	return &media.Upload{Filename: "me.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}
}

func (h *harness) register(t *testing.T, username, email, password string) domain.Account {
	t.Helper()

	a, err := h.accounts.Register(t.Context(), service.RegisterInput{
		Username: username,
		Email:    email,
		FullName: "Test " + username,
		Password: password,
		Avatar:   avatar(),
	})
	require.NoError(t, err)
	return a
}

func (h *harness) login(t *testing.T, username, password string) domain.TokenPair {
	t.Helper()

	_, pair, err := h.accounts.Login(t.Context(), service.LoginInput{Username: username, Password: password})
	require.NoError(t, err)
	return pair
}

func (h *harness) stored(t *testing.T, id string) domain.Account {
	t.Helper()

	a, err := h.store.Accounts().GetByID(t.Context(), id)
	require.NoError(t, err)
	return a
}

func requireKind(t *testing.T, err error, sentinel error, message string) {
	t.Helper()

	require.ErrorIs(t, err, sentinel)
	var se *service.Error
	require.ErrorAs(t, err, &se)
	require.Equal(t, message, se.Message)
}
