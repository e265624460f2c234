package controller

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"teamnest/config"
	"teamnest/models"
	"teamnest/repositories"
	"teamnest/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserStore struct {
	mu    sync.Mutex
	seq   uint
	users map[string]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*models.User)}
}

func (s *memUserStore) FindOrCreateByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[email]; ok {
		return user, nil
	}
	s.seq++
	user := &models.User{Email: email, IsActive: true}
	user.ID = s.seq
	s.users[email] = user
	return user, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[email]; ok {
		return user, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (s *memUserStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Email] = user
	return nil
}

func (s *memUserStore) ClearExpiredSignInTokens(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, user := range s.users {
		if user.SignInTokenHash != "" && user.SignInTokenExpiresAt != nil && time.Now().After(*user.SignInTokenExpiresAt) {
			user.SignInTokenHash = ""
			user.SignInTokenExpiresAt = nil
			n++
		}
	}
	return n, nil
}

type fakeAuthMailer struct {
	mu    sync.Mutex
	sent  []string
	links []string
}

func (f *fakeAuthMailer) SendSignInEmail(to, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	f.links = append(f.links, link)
	return nil
}

func (f *fakeAuthMailer) lastToken(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.links)
	parsed, err := url.Parse(f.links[len(f.links)-1])
	require.NoError(t, err)
	return parsed.Query().Get("token")
}

type authResponse struct {
	OK      bool         `json:"ok"`
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

func newAuthTestApp(store *memUserStore, mailer *fakeAuthMailer) *fiber.App {
	config.AppConfig.EncryptionKey = "test-encryption-key"
	config.AppConfig.AppURL = "http://app.test"
	config.AppConfig.Environment = "development"

	ac := NewAuthController(store, mailer, log.New(io.Discard, "", 0))

	app := fiber.New()
	app.Post("/auth/signin", ac.RequestSignIn)
	app.Get("/auth/callback", ac.SignInCallback)
	app.Post("/auth/refresh", ac.RefreshToken)
	return app
}

func postJSON(t *testing.T, app *fiber.App, target, body string) (*http.Response, authResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed authResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	resp.Body.Close()
	return resp, parsed
}

func TestRequestSignIn(t *testing.T) {
	store := newMemUserStore()
	mailer := &fakeAuthMailer{}
	app := newAuthTestApp(store, mailer)

	resp, parsed := postJSON(t, app, "/auth/signin", `{"email":"a@x.com"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, parsed.OK)

	user, ok := store.users["a@x.com"]
	require.True(t, ok, "user record should be created on first sign-in request")
	assert.NotEmpty(t, user.SignInTokenHash)
	require.NotNil(t, user.SignInTokenExpiresAt)
	assert.WithinDuration(t, time.Now().Add(utils.SignInTokenExpiry), *user.SignInTokenExpiresAt, time.Second)

	// The raw token goes into the link, never into storage.
	token := mailer.lastToken(t)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, token, user.SignInTokenHash)
	assert.True(t, utils.CheckSignInToken(user.SignInTokenHash, token))
}

func TestRequestSignInInvalidEmail(t *testing.T) {
	store := newMemUserStore()
	mailer := &fakeAuthMailer{}
	app := newAuthTestApp(store, mailer)

	resp, parsed := postJSON(t, app, "/auth/signin", `{"email":"not-an-email"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, parsed.OK)
	assert.Empty(t, mailer.sent)
}

func TestRequestSignInCooldown(t *testing.T) {
	store := newMemUserStore()
	mailer := &fakeAuthMailer{}
	app := newAuthTestApp(store, mailer)

	resp, _ := postJSON(t, app, "/auth/signin", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, parsed := postJSON(t, app, "/auth/signin", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, parsed.OK)

	// Second request within the cooldown does not send another email.
	assert.Len(t, mailer.sent, 1)
}

func TestSignInCallback(t *testing.T) {
	store := newMemUserStore()
	mailer := &fakeAuthMailer{}
	app := newAuthTestApp(store, mailer)

	_, _ = postJSON(t, app, "/auth/signin", `{"email":"a@x.com"}`)
	token := mailer.lastToken(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?email=a%40x.com&token="+url.QueryEscape(token), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed authResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.True(t, parsed.OK)
	require.NotNil(t, parsed.User)
	assert.Equal(t, "a@x.com", parsed.User.Email)

	cookieNames := make([]string, 0)
	for _, cookie := range resp.Cookies() {
		cookieNames = append(cookieNames, cookie.Name)
	}
	assert.Contains(t, cookieNames, "access_token")
	assert.Contains(t, cookieNames, "refresh_token")

	// The link is single use.
	user := store.users["a@x.com"]
	assert.Empty(t, user.SignInTokenHash)
	assert.True(t, user.EmailVerified)

	reuse := httptest.NewRequest(http.MethodGet, "/auth/callback?email=a%40x.com&token="+url.QueryEscape(token), nil)
	resp2, err := app.Test(reuse, -1)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestSignInCallbackWrongToken(t *testing.T) {
	store := newMemUserStore()
	mailer := &fakeAuthMailer{}
	app := newAuthTestApp(store, mailer)

	_, _ = postJSON(t, app, "/auth/signin", `{"email":"a@x.com"}`)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?email=a%40x.com&token=deadbeef", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSignInCallbackExpiredToken(t *testing.T) {
	store := newMemUserStore()
	mailer := &fakeAuthMailer{}
	app := newAuthTestApp(store, mailer)

	_, _ = postJSON(t, app, "/auth/signin", `{"email":"a@x.com"}`)
	token := mailer.lastToken(t)

	expired := time.Now().Add(-time.Minute)
	store.users["a@x.com"].SignInTokenExpiresAt = &expired

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?email=a%40x.com&token="+url.QueryEscape(token), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRefreshToken(t *testing.T) {
	store := newMemUserStore()
	mailer := &fakeAuthMailer{}
	app := newAuthTestApp(store, mailer)

	_, _ = postJSON(t, app, "/auth/signin", `{"email":"a@x.com"}`)
	token := mailer.lastToken(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?email=a%40x.com&token="+url.QueryEscape(token), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	var refreshToken string
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "refresh_token" {
			refreshToken = cookie.Value
		}
	}
	require.NotEmpty(t, refreshToken)

	resp, parsed := postJSON(t, app, "/auth/refresh", `{"refresh_token":"`+refreshToken+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, parsed.OK)

	// A stale token version is rejected after logout bumps it.
	store.users["a@x.com"].TokenVersion++
	resp, parsed = postJSON(t, app, "/auth/refresh", `{"refresh_token":"`+refreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, parsed.OK)
}

func TestLogoutInvalidatesSessions(t *testing.T) {
	config.AppConfig.EncryptionKey = "test-encryption-key"

	store := newMemUserStore()
	user, err := store.FindOrCreateByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)

	ac := NewAuthController(store, &fakeAuthMailer{}, log.New(io.Discard, "", 0))

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return c.Next()
	})
	app.Post("/auth/logout", ac.Logout)

	before := user.TokenVersion

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, before+1, store.users["a@x.com"].TokenVersion)
}
