// Package auth acquires the bearer token that authorizes every subsequent
// call to the remote API. Bad credentials or an unreachable login endpoint
// are fatal at startup; nothing in the bridge recovers from them.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/BaSui01/apibridge/internal/tlsutil"
	"github.com/BaSui01/apibridge/types"
)

// Config configures the session provider.
type Config struct {
	BaseURL   string
	LoginPath string
	Username  string
	Password  string
	VerifySSL bool
	Timeout   time.Duration
}

// Token is an acquired session credential. ExpiresAt is advisory: it is
// read from the token's exp claim without signature verification and stays
// zero for opaque tokens.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Client logs into the remote API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a session provider.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/api/auth/login"
	}
	cfg.Timeout = timeout
	return &Client{
		cfg:    cfg,
		http:   tlsutil.HTTPClient(cfg.VerifySSL, timeout),
		logger: logger.With(zap.String("component", "auth")),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges the configured credentials for a bearer token.
func (c *Client) Login(ctx context.Context) (*Token, error) {
	if c.cfg.Username == "" || c.cfg.Password == "" {
		return nil, types.NewError(types.ErrAuthentication, "username and password must be set")
	}

	payload, err := json.Marshal(loginRequest{Username: c.cfg.Username, Password: c.cfg.Password})
	if err != nil {
		return nil, types.NewError(types.ErrAuthentication, "encode login request").WithCause(err)
	}

	loginURL := strings.TrimRight(c.cfg.BaseURL, "/") + c.cfg.LoginPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, bytes.NewReader(payload))
	if err != nil {
		return nil, types.NewError(types.ErrAuthentication, "build login request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, types.NewError(types.ErrAuthentication, "authentication request failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, types.NewError(types.ErrAuthentication,
			fmt.Sprintf("login returned HTTP %d", resp.StatusCode)).WithHTTPStatus(resp.StatusCode)
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, types.NewError(types.ErrAuthentication, "decode login response").WithCause(err)
	}
	if body.AccessToken == "" {
		return nil, types.NewError(types.ErrAuthentication, "no access_token in authentication response")
	}

	token := &Token{AccessToken: body.AccessToken, ExpiresAt: tokenExpiry(body.AccessToken)}

	fields := []zap.Field{zap.String("login_url", loginURL)}
	if !token.ExpiresAt.IsZero() {
		fields = append(fields, zap.Time("expires_at", token.ExpiresAt))
	}
	c.logger.Info("authenticated with remote API", fields...)

	return token, nil
}

// tokenExpiry extracts the exp claim from a JWT without verifying the
// signature. The bridge never validates the token, it only reports when the
// session will go stale.
func tokenExpiry(raw string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
