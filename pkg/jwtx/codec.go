// Package jwtx signs and verifies the compact token format used across the
// auth core. Tokens are HMAC-signed (HS512) with a secret selected by token
// kind: access and refresh tokens never share a key, so leaking one kind's
// secret cannot forge the other.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrSignature reports a token whose signature does not verify under the
	// expected kind's secret.
	ErrSignature = errors.New("jwtx: signature mismatch")

	// ErrExpired reports a structurally valid token past its expiry.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrKindMismatch reports a valid token presented under the wrong kind
	// (e.g. a refresh token where an access token is expected).
	ErrKindMismatch = errors.New("jwtx: token kind mismatch")

	// ErrMalformed reports a token that is not a parseable JWT at all.
	ErrMalformed = errors.New("jwtx: malformed token")
)

// Codec issues and verifies signed claims. The zero value is not usable;
// both secrets must be set and must differ.
type Codec struct {
	Issuer        string
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// NewCodec returns a Codec with default TTLs applied.
func NewCodec(issuer string, accessSecret, refreshSecret []byte) *Codec {
	return &Codec{
		Issuer:        issuer,
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     DefaultAccessTokenTTL,
		RefreshTTL:    DefaultRefreshTokenTTL,
	}
}

// Issue signs a fresh token of the given kind for the subject.
func (c *Codec) Issue(subject, email string, kind Kind) (string, error) {
	return c.IssueAt(subject, email, kind, time.Now().UTC())
}

// IssueAt is Issue with an explicit clock, used by tests to mint
// already-expired tokens.
func (c *Codec) IssueAt(subject, email string, kind Kind, now time.Time) (string, error) {
	claims := NewClaims(subject, email, c.Issuer, kind, c.ttl(kind), now)
	return c.sign(claims)
}

// Verify parses the token and checks signature, expiry, and kind tag. The
// verification secret is selected by the token's own declared kind, so a
// well-formed token of the wrong kind fails with ErrKindMismatch rather than
// a spurious signature error. The declared kind only ever picks which of our
// two secrets to check against, so a forged tag still cannot make a bad
// signature pass.
func (c *Codec) Verify(token string, kind Kind) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) {
			declared, _ := t.Claims.(*Claims)
			if declared == nil {
				return c.secret(kind), nil
			}
			return c.secret(declared.Kind), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		default:
			return Claims{}, ErrSignature
		}
	}

	if claims.Kind != kind {
		return Claims{}, ErrKindMismatch
	}

	return claims, nil
}

// Restamp turns verified refresh claims into a fresh access token: same
// subject and email, new iat/exp, kind flipped to access. The caller is
// responsible for checking the refresh token against the persisted ledger;
// Restamp never consults storage.
func (c *Codec) Restamp(claims Claims) (string, error) {
	if claims.Kind != KindRefresh {
		return "", ErrKindMismatch
	}
	return c.Issue(claims.Subject, claims.Email, KindAccess)
}

func (c *Codec) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	token.Header["kid"] = headerKid(claims.Kind)
	return token.SignedString(c.secret(claims.Kind))
}

func (c *Codec) secret(kind Kind) []byte {
	if kind == KindRefresh {
		return c.RefreshSecret
	}
	return c.AccessSecret
}

func (c *Codec) ttl(kind Kind) time.Duration {
	if kind == KindRefresh {
		if c.RefreshTTL > 0 {
			return c.RefreshTTL
		}
		return DefaultRefreshTokenTTL
	}
	if c.AccessTTL > 0 {
		return c.AccessTTL
	}
	return DefaultAccessTokenTTL
}

func headerKid(kind Kind) string {
	if kind == KindRefresh {
		return headerKidRefresh
	}
	return headerKidAccess
}
