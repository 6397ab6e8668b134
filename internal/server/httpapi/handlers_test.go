package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/picshare/internal/common"
	"github.com/dmitrijs2005/picshare/internal/logging"
	"github.com/dmitrijs2005/picshare/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// fakeSessions is a scripted SessionManager.
type fakeSessions struct {
	registerPair *services.TokenPair
	registerErr  error

	loginPair *services.TokenPair
	loginErr  error

	refreshPair *services.TokenPair
	refreshErr  error

	logoutErr error

	authUsername string
	authErr      error

	lastLogoutUsername string
	lastLogoutToken    string
}

func (f *fakeSessions) Register(ctx context.Context, username, password string) (*services.TokenPair, error) {
	return f.registerPair, f.registerErr
}

func (f *fakeSessions) Login(ctx context.Context, username, password string) (*services.TokenPair, error) {
	return f.loginPair, f.loginErr
}

func (f *fakeSessions) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	return f.refreshPair, f.refreshErr
}

func (f *fakeSessions) Logout(ctx context.Context, username, refreshToken string) error {
	f.lastLogoutUsername = username
	f.lastLogoutToken = refreshToken
	return f.logoutErr
}

func (f *fakeSessions) Authenticate(ctx context.Context, accessToken string) (string, error) {
	return f.authUsername, f.authErr
}

func newTestServer(t *testing.T, sessions *fakeSessions) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s, err := NewHTTPServer(":0", logger, sessions)
	if err != nil {
		t.Fatalf("NewHTTPServer error: %v", err)
	}
	return s.Routes()
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("NewRequest error: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_Created(t *testing.T) {
	sessions := &fakeSessions{registerPair: &services.TokenPair{AccessToken: "acc", RefreshToken: "ref"}}
	r := newTestServer(t, sessions)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", `{"username":"alice","password":"secret1"}`, nil)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "acc", resp["accessToken"])
	assert.Equal(t, "ref", resp["refreshToken"])
}

func TestRegister_Conflict(t *testing.T) {
	sessions := &fakeSessions{registerErr: common.ErrorAlreadyExists}
	r := newTestServer(t, sessions)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", `{"username":"alice","password":"secret1"}`, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_ValidationFailed(t *testing.T) {
	r := newTestServer(t, &fakeSessions{})

	tests := []struct {
		name string
		body string
	}{
		{"short username", `{"username":"ab","password":"secret1"}`},
		{"short password", `{"username":"alice","password":"12345"}`},
		{"missing fields", `{}`},
		{"not json", `garbage`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/auth/register", tc.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLogin_OK(t *testing.T) {
	sessions := &fakeSessions{loginPair: &services.TokenPair{AccessToken: "acc", RefreshToken: "ref"}}
	r := newTestServer(t, sessions)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", `{"username":"alice","password":"secret1"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	sessions := &fakeSessions{loginErr: common.ErrorUnauthorized}
	r := newTestServer(t, sessions)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", `{"username":"alice","password":"wrongpw"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_StorageErrorIs500(t *testing.T) {
	sessions := &fakeSessions{loginErr: common.ErrStorage}
	r := newTestServer(t, sessions)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", `{"username":"alice","password":"secret1"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRefresh_OK(t *testing.T) {
	sessions := &fakeSessions{refreshPair: &services.TokenPair{AccessToken: "acc2", RefreshToken: "ref2"}}
	r := newTestServer(t, sessions)

	w := doJSON(t, r, http.MethodPost, "/api/auth/refresh", `{"refreshToken":"ref"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "acc2", resp["accessToken"])
	assert.Equal(t, "ref2", resp["refreshToken"])
}

func TestRefresh_MissingToken(t *testing.T) {
	r := newTestServer(t, &fakeSessions{})

	w := doJSON(t, r, http.MethodPost, "/api/auth/refresh", `{}`, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_InvalidTokenIsGeneric403(t *testing.T) {
	sessions := &fakeSessions{refreshErr: common.ErrInvalidToken}
	r := newTestServer(t, sessions)

	w := doJSON(t, r, http.MethodPost, "/api/auth/refresh", `{"refreshToken":"whatever"}`, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid refresh token", resp["error"])
}

func TestLogout_RequiresAuth(t *testing.T) {
	r := newTestServer(t, &fakeSessions{})

	w := doJSON(t, r, http.MethodPost, "/api/auth/logout", `{}`, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_SpecificToken(t *testing.T) {
	sessions := &fakeSessions{authUsername: "alice"}
	r := newTestServer(t, sessions)

	w := doJSON(t, r, http.MethodPost, "/api/auth/logout", `{"refreshToken":"ref"}`,
		map[string]string{"Authorization": "Bearer acc"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", sessions.lastLogoutUsername)
	assert.Equal(t, "ref", sessions.lastLogoutToken)
}

func TestLogout_NoTokenMeansEverywhere(t *testing.T) {
	sessions := &fakeSessions{authUsername: "alice"}
	r := newTestServer(t, sessions)

	w := doJSON(t, r, http.MethodPost, "/api/auth/logout", `{}`,
		map[string]string{"Authorization": "Bearer acc"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", sessions.lastLogoutToken)
}

func TestHealth(t *testing.T) {
	r := newTestServer(t, &fakeSessions{})

	w := doJSON(t, r, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}
