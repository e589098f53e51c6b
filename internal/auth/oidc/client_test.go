package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func testKeyPEM(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	block := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	return key, string(block)
}

func TestIntrospectSendsSignedAssertion(t *testing.T) {
	key, pemKey := testKeyPEM(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "the-inspected-token", r.PostFormValue("token"))
		require.Equal(t, DefaultClientAssertionType, r.PostFormValue("client_assertion_type"))

		assertion := r.PostFormValue("client_assertion")
		claims := jwt.RegisteredClaims{}
		parsed, err := jwt.ParseWithClaims(assertion, &claims, func(tok *jwt.Token) (any, error) {
			return &key.PublicKey, nil
		}, jwt.WithValidMethods([]string{"RS256"}))
		require.NoError(t, err)
		require.Equal(t, "my-client", claims.Subject)
		require.Equal(t, "my-client", claims.Issuer)
		require.Equal(t, jwt.ClaimStrings{"https://idp.example"}, claims.Audience)
		require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
		require.Equal(t, "kid-1", parsed.Header["kid"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"active": true,
			"email":  "jane@x.com",
		})
	}))
	defer srv.Close()

	c := NewClient(Config{
		ClientID:         "my-client",
		ClientSecret:     pemKey,
		Issuer:           "https://idp.example",
		IntrospectionURL: srv.URL,
		KeyID:            "kid-1",
	}, srv.Client())

	active, claims, err := c.Introspect(context.Background(), "the-inspected-token")
	require.NoError(t, err)
	require.True(t, active)
	require.Equal(t, "jane@x.com", StringClaim(claims, "email"))
}

func TestIntrospectNon200IsInactive(t *testing.T) {
	_, pemKey := testKeyPEM(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(Config{
		ClientID:         "my-client",
		ClientSecret:     pemKey,
		Issuer:           "https://idp.example",
		IntrospectionURL: srv.URL,
	}, srv.Client())

	active, claims, err := c.Introspect(context.Background(), "whatever")
	require.NoError(t, err)
	require.False(t, active)
	require.Nil(t, claims)
}

func TestIntrospect5xxIsError(t *testing.T) {
	_, pemKey := testKeyPEM(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{
		ClientID:         "my-client",
		ClientSecret:     pemKey,
		Issuer:           "https://idp.example",
		IntrospectionURL: srv.URL,
	}, srv.Client())

	active, claims, err := c.Introspect(context.Background(), "whatever")
	require.Error(t, err)
	require.False(t, active)
	require.Nil(t, claims)
}

func TestIntrospectBadKeyIsError(t *testing.T) {
	c := NewClient(Config{
		ClientID:     "my-client",
		ClientSecret: "not a pem key",
		Issuer:       "https://idp.example",
	}, nil)

	_, _, err := c.Introspect(context.Background(), "whatever")
	require.Error(t, err)
}

func TestUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer federated-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"email":       "jane@x.com",
			"given_name":  "Jane",
			"family_name": "Doe",
		})
	}))
	defer srv.Close()

	c := NewClient(Config{UserInfoURL: srv.URL}, srv.Client())

	claims, err := c.UserInfo(context.Background(), "federated-token")
	require.NoError(t, err)
	require.Equal(t, "Jane", StringClaim(claims, "given_name"))
	require.Equal(t, "", StringClaim(claims, "missing"))
}

func TestUserInfoNon200IsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(Config{UserInfoURL: srv.URL}, srv.Client())

	claims, err := c.UserInfo(context.Background(), "whatever")
	require.NoError(t, err)
	require.Nil(t, claims)
}

func TestUserInfo5xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{UserInfoURL: srv.URL}, srv.Client())

	_, err := c.UserInfo(context.Background(), "whatever")
	require.Error(t, err)
}
