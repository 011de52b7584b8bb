package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/vidtab/internal/accounts/domain"
	accountshttp "github.com/aussiebroadwan/vidtab/internal/accounts/http"
	"github.com/aussiebroadwan/vidtab/internal/accounts/media/localfs"
	"github.com/aussiebroadwan/vidtab/internal/accounts/service"
	"github.com/aussiebroadwan/vidtab/internal/accounts/store"
	"github.com/aussiebroadwan/vidtab/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/vidtab/pkg/accountsdk"
	"github.com/aussiebroadwan/vidtab/pkg/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const mediaBase = "http://vidtab.test/media"

type server struct {
	t       *testing.T
	handler http.Handler
	store   store.Store
	tokens  *service.TokenService
	clients int
}

func newServer(t *testing.T) *server {
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

	files, err := localfs.New(t.TempDir(), mediaBase)
	require.NoError(t, err)

	r := accountshttp.NewRouter(accountshttp.RouterConfig{
		BuildVersion: "test",
		CORSOrigins:  []string{"http://app.test"},
		Media:        files.Handler(),
	}, st, slog.New(slog.DiscardHandler))
	r.TokenService = tokens
	r.AccountService = &service.AccountService{
		Store:      st,
		Tokens:     tokens,
		Media:      files,
		BcryptCost: bcrypt.MinCost,
	}
	r.ApplyRoutes()

	return &server{t: t, handler: r, store: st, tokens: tokens}
}

type option func(*http.Request)

func bearer(token string) option {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func cookie(name, value string) option {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: name, Value: value}) }
}

// do sends a request from a fresh client address so the per-IP limits on
// credential endpoints don't interfere.
func (s *server) do(method, path string, body io.Reader, contentType string, opts ...option) *httptest.ResponseRecorder {
	s.t.Helper()

	s.clients++
	req := httptest.NewRequest(method, path, body)
	req.RemoteAddr = fmt.Sprintf("10.0.%d.%d:4000", s.clients/250, s.clients%250+1)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *server) json(method, path string, v any, opts ...option) *httptest.ResponseRecorder {
	s.t.Helper()

	b, err := json.Marshal(v)
	require.NoError(s.t, err)
	return s.do(method, path, bytes.NewReader(b), "application/json", opts...)
}

func form(t *testing.T, fields map[string]string, files map[string]string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// fileForm is form with control over the uploaded file's name.
func fileForm(t *testing.T, fields map[string]string, field, filename, content string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (s *server) register(username, email, password string) accountsdk.Account {
	s.t.Helper()

	body, ct := form(s.t, map[string]string{
		"username": username,
		"email":    email,
		"fullName": "Test " + username,
		"password": password,
	}, map[string]string{"avatar": "avatar-bytes"})

	rec := s.do(http.MethodPost, "/api/v1/users/register", body, ct)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[accountsdk.Account](s.t, rec).Data
}

func (s *server) login(username, password string) accountsdk.LoginResponse {
	s.t.Helper()

	rec := s.json(http.MethodPost, "/api/v1/users/login", accountsdk.LoginRequest{Username: username, Password: password})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[accountsdk.LoginResponse](s.t, rec).Data
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) accountsdk.APIResponse[T] {
	t.Helper()

	var resp accountsdk.APIResponse[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func requireAPIError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()

	require.Equal(t, status, rec.Code, rec.Body.String())
	var e accountsdk.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	require.Equal(t, status, e.StatusCode)
	require.Equal(t, message, e.Message)
	require.False(t, e.Success)
	require.NotNil(t, e.Errors)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newServer(t)

	account := s.register("Alice", "Alice@Example.com", "hunter2")
	require.Equal(t, "alice", account.Username)
	require.Equal(t, "alice@example.com", account.Email)
	require.True(t, strings.HasPrefix(account.Avatar, mediaBase+"/avatars/"), account.Avatar)
	require.Empty(t, account.CoverImage)
	require.Empty(t, account.WatchHistory)

	rec := s.json(http.MethodPost, "/api/v1/users/login", accountsdk.LoginRequest{Email: "alice@example.com", Password: "hunter2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotContains(t, rec.Body.String(), "password")
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	resp := decode[accountsdk.LoginResponse](t, rec)
	require.True(t, resp.Success)
	require.Equal(t, "User logged In Successfully", resp.Message)
	require.Equal(t, account.ID, resp.Data.User.ID)
	require.NotEmpty(t, resp.Data.AccessToken)
	require.NotEmpty(t, resp.Data.RefreshToken)

	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Equal(t, resp.Data.AccessToken, cookies[httpx.AccessTokenCookie].Value)
	require.Equal(t, resp.Data.RefreshToken, cookies[httpx.RefreshTokenCookie].Value)
	require.True(t, cookies[httpx.AccessTokenCookie].HttpOnly)
	require.True(t, cookies[httpx.RefreshTokenCookie].Secure)
	require.Equal(t, 60, cookies[httpx.AccessTokenCookie].MaxAge)

	t.Run("bearer header", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/users/current-user", nil, "", bearer(resp.Data.AccessToken))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "alice", decode[accountsdk.Account](t, rec).Data.Username)
	})

	t.Run("cookie", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/users/current-user", nil, "", cookie(httpx.AccessTokenCookie, resp.Data.AccessToken))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := s.json(http.MethodPost, "/api/v1/users/login", accountsdk.LoginRequest{Username: "alice", Password: "nope"})
		requireAPIError(t, rec, http.StatusUnauthorized, "Invalid user credentials")
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := s.json(http.MethodPost, "/api/v1/users/login", accountsdk.LoginRequest{Username: "bob", Password: "hunter2"})
		requireAPIError(t, rec, http.StatusNotFound, "User does not exist")
	})
}

func TestRegisterValidation(t *testing.T) {
	s := newServer(t)
	s.register("alice", "alice@example.com", "hunter2")

	fields := map[string]string{
		"username": "bob",
		"email":    "bob@example.com",
		"fullName": "Bob",
		"password": "pw",
	}

	t.Run("missing avatar", func(t *testing.T) {
		body, ct := form(t, fields, nil)
		requireAPIError(t, s.do(http.MethodPost, "/api/v1/users/register", body, ct),
			http.StatusBadRequest, "Avatar file is required")
	})

	t.Run("missing field", func(t *testing.T) {
		body, ct := form(t, map[string]string{"username": "bob", "password": "pw"}, map[string]string{"avatar": "x"})
		requireAPIError(t, s.do(http.MethodPost, "/api/v1/users/register", body, ct),
			http.StatusBadRequest, "All fields are required")
	})

	t.Run("not multipart", func(t *testing.T) {
		requireAPIError(t, s.json(http.MethodPost, "/api/v1/users/register", fields),
			http.StatusBadRequest, "All fields are required")
	})

	t.Run("duplicate username", func(t *testing.T) {
		dup := map[string]string{"username": "ALICE", "email": "new@example.com", "fullName": "A", "password": "pw"}
		body, ct := form(t, dup, map[string]string{"avatar": "x"})
		requireAPIError(t, s.do(http.MethodPost, "/api/v1/users/register", body, ct),
			http.StatusConflict, "User with email or username already exists")
	})

	t.Run("cover image", func(t *testing.T) {
		body, ct := form(t, fields, map[string]string{"avatar": "a", "coverImage": "c"})
		rec := s.do(http.MethodPost, "/api/v1/users/register", body, ct)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.Contains(t, decode[accountsdk.Account](t, rec).Data.CoverImage, "/cover-images/")
	})
}

func TestSessionMiddleware(t *testing.T) {
	s := newServer(t)
	alice := s.register("alice", "alice@example.com", "hunter2")
	tokens := s.login("alice", "hunter2")

	s.tokens.Now = func() time.Time { return time.Now().Add(-2 * s.tokens.AccessTTL) }
	expired, err := s.tokens.IssueAccessToken(domain.Account{ID: alice.ID, Username: alice.Username, Email: alice.Email})
	require.NoError(t, err)
	s.tokens.Now = nil

	ghost, err := s.tokens.IssueAccessToken(domain.Account{ID: "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", Username: "ghost"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		opts    []option
		status  int
		message string
	}{
		{"no token", nil, http.StatusUnauthorized, "Unauthorized request"},
		{"garbage token", []option{bearer("not-a-jwt")}, http.StatusUnauthorized, "Invalid access token"},
		{"refresh token as access token", []option{bearer(tokens.RefreshToken)}, http.StatusUnauthorized, "Invalid access token"},
		{"expired access token", []option{bearer(expired)}, http.StatusUnauthorized, "Invalid access token"},
		{"account no longer exists", []option{bearer(ghost)}, http.StatusUnauthorized, "Invalid access token"},
		{
			"cookie is used over bearer header",
			[]option{cookie(httpx.AccessTokenCookie, tokens.AccessToken), bearer("not-a-jwt")},
			http.StatusOK, "",
		},
		{
			"bad cookie is not rescued by bearer header",
			[]option{cookie(httpx.AccessTokenCookie, "not-a-jwt"), bearer(tokens.AccessToken)},
			http.StatusUnauthorized, "Invalid access token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodGet, "/api/v1/users/current-user", nil, "", tt.opts...)
			if tt.status == http.StatusOK {
				require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
				require.Equal(t, "alice", decode[accountsdk.Account](t, rec).Data.Username)
				return
			}
			requireAPIError(t, rec, tt.status, tt.message)
		})
	}
}

func TestRefreshRotation(t *testing.T) {
	s := newServer(t)
	s.register("alice", "alice@example.com", "hunter2")
	first := s.login("alice", "hunter2")

	rec := s.json(http.MethodPost, "/api/v1/users/refresh-token", accountsdk.RefreshRequest{RefreshToken: first.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	second := decode[accountsdk.TokenResponse](t, rec).Data
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.Len(t, rec.Result().Cookies(), 2)

	t.Run("old token is spent", func(t *testing.T) {
		rec := s.json(http.MethodPost, "/api/v1/users/refresh-token", accountsdk.RefreshRequest{RefreshToken: first.RefreshToken})
		requireAPIError(t, rec, http.StatusUnauthorized, "Refresh token is expired or used")
	})

	t.Run("cookie wins over body", func(t *testing.T) {
		rec := s.json(http.MethodPost, "/api/v1/users/refresh-token",
			accountsdk.RefreshRequest{RefreshToken: "ignored"},
			cookie(httpx.RefreshTokenCookie, second.RefreshToken))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/users/refresh-token", nil, "")
		requireAPIError(t, rec, http.StatusUnauthorized, "Unauthorized request")
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		rec := s.json(http.MethodPost, "/api/v1/users/refresh-token", accountsdk.RefreshRequest{RefreshToken: second.AccessToken})
		requireAPIError(t, rec, http.StatusUnauthorized, "Invalid refresh token")
	})
}

func TestLogout(t *testing.T) {
	s := newServer(t)
	s.register("alice", "alice@example.com", "hunter2")
	tokens := s.login("alice", "hunter2")

	rec := s.do(http.MethodPost, "/api/v1/users/logout", nil, "", bearer(tokens.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "User logged Out", decode[accountsdk.Empty](t, rec).Message)
	for _, c := range rec.Result().Cookies() {
		assert.Empty(t, c.Value, c.Name)
		assert.Less(t, c.MaxAge, 0, c.Name)
	}

	rec = s.json(http.MethodPost, "/api/v1/users/refresh-token", accountsdk.RefreshRequest{RefreshToken: tokens.RefreshToken})
	requireAPIError(t, rec, http.StatusUnauthorized, "Refresh token is expired or used")

	// The access token outlives the session until it expires.
	rec = s.do(http.MethodGet, "/api/v1/users/current-user", nil, "", bearer(tokens.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestChangePassword(t *testing.T) {
	s := newServer(t)
	s.register("alice", "alice@example.com", "hunter2")
	tokens := s.login("alice", "hunter2")
	auth := bearer(tokens.AccessToken)

	rec := s.json(http.MethodPost, "/api/v1/users/change-password",
		accountsdk.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "next"}, auth)
	requireAPIError(t, rec, http.StatusUnauthorized, "Invalid old password")

	rec = s.json(http.MethodPost, "/api/v1/users/change-password",
		accountsdk.ChangePasswordRequest{OldPassword: "hunter2", NewPassword: "next"}, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "Password changed successfully", decode[accountsdk.Empty](t, rec).Message)

	s.login("alice", "next")
	rec = s.json(http.MethodPost, "/api/v1/users/login", accountsdk.LoginRequest{Username: "alice", Password: "hunter2"})
	requireAPIError(t, rec, http.StatusUnauthorized, "Invalid user credentials")
}

func TestUpdateAccount(t *testing.T) {
	s := newServer(t)
	s.register("alice", "alice@example.com", "hunter2")
	s.register("bob", "bob@example.com", "hunter2")
	auth := bearer(s.login("alice", "hunter2").AccessToken)

	rec := s.json(http.MethodPatch, "/api/v1/users/update-account",
		accountsdk.UpdateAccountRequest{FullName: "Alice A", Email: "ALICE@new.example.com"}, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[accountsdk.Account](t, rec).Data
	require.Equal(t, "Alice A", updated.FullName)
	require.Equal(t, "alice@new.example.com", updated.Email)

	rec = s.json(http.MethodPatch, "/api/v1/users/update-account",
		accountsdk.UpdateAccountRequest{FullName: "Alice", Email: "bob@example.com"}, auth)
	requireAPIError(t, rec, http.StatusConflict, "Email is already in use")

	rec = s.json(http.MethodPatch, "/api/v1/users/update-account",
		accountsdk.UpdateAccountRequest{FullName: "Alice"}, auth)
	requireAPIError(t, rec, http.StatusBadRequest, "All fields are required")

	rec = s.do(http.MethodPatch, "/api/v1/users/update-account", strings.NewReader(`{"fullName":`), "application/json", auth)
	requireAPIError(t, rec, http.StatusBadRequest, "Invalid request body")
}

func TestImageUpdatesAreServed(t *testing.T) {
	s := newServer(t)
	before := s.register("alice", "alice@example.com", "hunter2")
	auth := bearer(s.login("alice", "hunter2").AccessToken)

	body, ct := form(t, nil, map[string]string{"avatar": "new-avatar"})
	rec := s.do(http.MethodPatch, "/api/v1/users/avatar", body, ct, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	after := decode[accountsdk.Account](t, rec).Data
	require.NotEqual(t, before.Avatar, after.Avatar)

	u, err := url.Parse(after.Avatar)
	require.NoError(t, err)
	rec = s.do(http.MethodGet, u.Path, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "new-avatar", rec.Body.String())

	body, ct = form(t, nil, map[string]string{"coverImage": "cover"})
	rec = s.do(http.MethodPatch, "/api/v1/users/cover-image", body, ct, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, decode[accountsdk.Account](t, rec).Data.CoverImage, "/cover-images/")

	body, ct = form(t, nil, nil)
	rec = s.do(http.MethodPatch, "/api/v1/users/cover-image", body, ct, auth)
	requireAPIError(t, rec, http.StatusBadRequest, "Cover image file is missing")
}

func TestMediaIsInert(t *testing.T) {
	s := newServer(t)
	account := s.register("alice", "alice@example.com", "hunter2")
	auth := bearer(s.login("alice", "hunter2").AccessToken)

	page := "<script>fetch('/api/v1/users/refresh-token',{method:'POST'})</script>"

	t.Run("html avatar on register", func(t *testing.T) {
		body, ct := fileForm(t, map[string]string{
			"username": "mallory",
			"email":    "mallory@example.com",
			"fullName": "Mallory",
			"password": "hunter2",
		}, "avatar", "evil.html", page)
		rec := s.do(http.MethodPost, "/api/v1/users/register", body, ct)
		requireAPIError(t, rec, http.StatusBadRequest, "Avatar must be a png, jpeg, gif or webp image")
	})

	t.Run("svg avatar update", func(t *testing.T) {
		body, ct := fileForm(t, nil, "avatar", "logo.svg", "<svg onload=alert(1)/>")
		rec := s.do(http.MethodPatch, "/api/v1/users/avatar", body, ct, auth)
		requireAPIError(t, rec, http.StatusBadRequest, "Avatar must be a png, jpeg, gif or webp image")
	})

	t.Run("images are served with a fixed type", func(t *testing.T) {
		u, err := url.Parse(account.Avatar)
		require.NoError(t, err)

		rec := s.do(http.MethodGet, u.Path, nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	})

	t.Run("directories are not listed", func(t *testing.T) {
		for _, path := range []string{"/media/", "/media/avatars/"} {
			rec := s.do(http.MethodGet, path, nil, "")
			require.Equal(t, http.StatusNotFound, rec.Code, path)
			require.NotContains(t, rec.Body.String(), ".png", path)
		}
	})
}

func TestChannelAndHistory(t *testing.T) {
	s := newServer(t)
	s.register("alice", "alice@example.com", "hunter2")
	bob := s.register("bob", "bob@example.com", "hunter2")
	auth := bearer(s.login("alice", "hunter2").AccessToken)

	rec := s.do(http.MethodGet, "/api/v1/users/c/BOB", nil, "", auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	channel := decode[accountsdk.ChannelProfile](t, rec).Data
	require.Equal(t, bob.ID, channel.ID)
	require.Equal(t, bob.Avatar, channel.Avatar)

	rec = s.do(http.MethodGet, "/api/v1/users/c/nobody", nil, "", auth)
	requireAPIError(t, rec, http.StatusNotFound, "channel does not exist")

	rec = s.do(http.MethodGet, "/api/v1/users/history", nil, "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, string(mustField(t, rec.Body.Bytes(), "data")))
}

func mustField(t *testing.T, body []byte, field string) json.RawMessage {
	t.Helper()

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &m))
	return m[field]
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodGet, "/livez", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var live accountsdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &live))
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	rec = s.do(http.MethodGet, "/readyz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, s.store.Close())
	rec = s.do(http.MethodGet, "/readyz", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var ready accountsdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	require.Equal(t, "degraded", ready.Status)
	require.True(t, strings.HasPrefix(ready.Checks.Database, "error: "))
}

func TestCORSPreflight(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodOptions, "/api/v1/users/login", nil, "", func(r *http.Request) {
		r.Header.Set("Origin", "http://app.test")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	})
	require.Equal(t, "http://app.test", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCredentialRateLimit(t *testing.T) {
	s := newServer(t)

	var last *httptest.ResponseRecorder
	for range httpx.StrictLimit.Burst + 1 {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "192.0.2.1:1234"
		s.handler.ServeHTTP(last, req)
	}
	require.Equal(t, http.StatusTooManyRequests, last.Code)
}

func TestSwaggerDoc(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodGet, "/swagger/doc.json", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Host  string         `json:"host"`
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "localhost:8000", doc.Host)
	require.Contains(t, doc.Paths, "/api/v1/users/login")
}
