package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/apibridge/types"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestLogin(t *testing.T) {
	t.Parallel()

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signedToken(t, expiry)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "operator", creds["username"])
		assert.Equal(t, "hunter2", creds["password"])

		json.NewEncoder(w).Encode(map[string]string{"access_token": raw})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		BaseURL:  srv.URL,
		Username: "operator",
		Password: "hunter2",
	}, nil)

	token, err := client.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, raw, token.AccessToken)
	assert.Equal(t, expiry.Unix(), token.ExpiresAt.Unix())
}

func TestLogin_OpaqueToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "not-a-jwt"})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL, Username: "u", Password: "p"}, nil)
	token, err := client.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "not-a-jwt", token.AccessToken)
	assert.True(t, token.ExpiresAt.IsZero())
}

func TestLogin_MissingCredentials(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{BaseURL: "https://example.invalid"}, nil)
	_, err := client.Login(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.ErrAuthentication, types.GetErrorCode(err))
}

func TestLogin_Rejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL, Username: "u", Password: "wrong"}, nil)
	_, err := client.Login(context.Background())
	require.Error(t, err)

	assert.Equal(t, types.ErrAuthentication, types.GetErrorCode(err))
	var typed *types.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, http.StatusUnauthorized, typed.HTTPStatus)
}

func TestLogin_NoAccessToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL, Username: "u", Password: "p"}, nil)
	_, err := client.Login(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.ErrAuthentication, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "no access_token")
}

func TestLogin_Unreachable(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{
		BaseURL:  "http://127.0.0.1:1",
		Username: "u",
		Password: "p",
		Timeout:  time.Second,
	}, nil)
	_, err := client.Login(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.ErrAuthentication, types.GetErrorCode(err))
}
