package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestAPI() *API {
	return &API{
		jwtSecret: []byte("test-secret"),
		log:       zerolog.Nop(),
	}
}

func protectedEcho(t *testing.T, a *API) http.Handler {
	t.Helper()
	return a.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(claimsKey).(*Claims)
		require.True(t, ok, "claims missing from request context")
		w.Write([]byte(claims.DiscordID))
	}))
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	a := newTestAPI()
	rec := httptest.NewRecorder()
	protectedEcho(t, a).ServeHTTP(rec, httptest.NewRequest("GET", "/api/categories", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	a := newTestAPI()
	req := httptest.NewRequest("GET", "/api/categories", nil)
	req.Header.Set("Authorization", "not-a-bearer-token")
	rec := httptest.NewRecorder()
	protectedEcho(t, a).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareAcceptsIssuedToken(t *testing.T) {
	a := newTestAPI()
	token, err := a.issueToken("123456789", "alice")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/categories", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protectedEcho(t, a).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "123456789", rec.Body.String())
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	other := &API{jwtSecret: []byte("other-secret"), log: zerolog.Nop()}
	token, err := other.issueToken("123456789", "alice")
	require.NoError(t, err)

	a := newTestAPI()
	req := httptest.NewRequest("GET", "/api/categories", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protectedEcho(t, a).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	a := newTestAPI()
	claims := &Claims{
		DiscordID: "123456789",
		Username:  "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/categories", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protectedEcho(t, a).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleLoginReturnsAuthURL(t *testing.T) {
	a := newTestAPI()
	a.oauth = &oauth2.Config{
		ClientID:    "test-client",
		RedirectURL: "http://localhost/callback",
		Scopes:      []string{"identify"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://discord.com/api/oauth2/authorize",
			TokenURL: "https://discord.com/api/oauth2/token",
		},
	}

	rec := httptest.NewRecorder()
	a.handleLogin(rec, httptest.NewRequest("GET", "/api/auth/login", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body["auth_url"], "client_id=test-client")
	assert.NotEmpty(t, body["state"])
}
