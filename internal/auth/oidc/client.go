// Package oidc talks to an external OpenID Connect provider: token
// introspection with a signed client assertion, and userinfo retrieval. The
// client is stateless between calls; the authorization-code exchange happens
// on the caller's side, so no PKCE or nonce tracking lives here.
package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultClientAssertionType is the JWT bearer assertion type registered for
// OAuth2 client authentication.
const DefaultClientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

// defaultTimeout bounds every provider call so a stalled provider cannot
// block a login flow indefinitely.
const defaultTimeout = 10 * time.Second

// Config carries the provider endpoints and client credentials. ClientSecret
// holds the PEM-encoded RSA private key used to sign client assertions.
type Config struct {
	ClientID            string
	ClientSecret        string
	Issuer              string
	IntrospectionURL    string
	UserInfoURL         string
	KeyID               string
	ClientAssertionType string
}

// Client performs introspection and userinfo calls against one provider.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a federation client. A nil httpClient gets a default with
// a request timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if cfg.ClientAssertionType == "" {
		cfg.ClientAssertionType = DefaultClientAssertionType
	}
	return &Client{cfg: cfg, http: httpClient}
}

// Introspect asks the provider whether the bearer token is active. A non-200
// answer means the token is simply invalid: (false, nil, nil). Transport
// failures and provider 5xx responses are errors.
func (c *Client) Introspect(ctx context.Context, token string) (bool, map[string]any, error) {
	assertion, err := c.signAssertion(time.Now().UTC())
	if err != nil {
		return false, nil, fmt.Errorf("oidc: sign client assertion: %w", err)
	}

	form := url.Values{
		"token":                 {token},
		"client_assertion_type": {c.cfg.ClientAssertionType},
		"client_assertion":      {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.IntrospectionURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return false, nil, fmt.Errorf("oidc: introspection request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusInternalServerError {
		return false, nil, fmt.Errorf("oidc: introspection status %d", res.StatusCode)
	}
	if res.StatusCode != http.StatusOK {
		return false, nil, nil
	}

	claims, err := decodeClaims(res.Body)
	if err != nil {
		return false, nil, fmt.Errorf("oidc: introspection response: %w", err)
	}

	active, _ := claims["active"].(bool)
	return active, claims, nil
}

// UserInfo fetches the identity claims behind the bearer token. A non-200
// answer yields (nil, nil): the token bought no identity, which is not a
// server fault. Provider 5xx responses are errors.
func (c *Client) UserInfo(ctx context.Context, token string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oidc: userinfo request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("oidc: userinfo status %d", res.StatusCode)
	}
	if res.StatusCode != http.StatusOK {
		return nil, nil
	}

	claims, err := decodeClaims(res.Body)
	if err != nil {
		return nil, fmt.Errorf("oidc: userinfo response: %w", err)
	}
	return claims, nil
}

func decodeClaims(r io.Reader) (map[string]any, error) {
	var claims map[string]any
	if err := json.NewDecoder(r).Decode(&claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// StringClaim returns the named claim as a trimmed string, or "" when absent
// or not a string.
func StringClaim(claims map[string]any, name string) string {
	v, _ := claims[name].(string)
	return strings.TrimSpace(v)
}
