package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants. Access tokens are short-lived; refresh tokens
// carry the session. The 1:168 ratio (1h vs 7d) is load-bearing: Codec
// validation assumes refresh tokens outlive any access token minted from them.
const (
	DefaultAccessTokenTTL  = 1 * time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Kind discriminates what a signed token is allowed to be used for. It is
// embedded in the claims and checked on verify, so a refresh token can never
// pass where an access token is expected even if both signatures were valid.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// kid values stamped into the JOSE header so operators can tell token kinds
// apart without decoding the payload.
const (
	headerKidAccess  = "access_token"
	headerKidRefresh = "refresh_token"
)

// Claims is the payload embedded in every locally issued token.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the subject identity, carried so callers can resolve a user
	// without a database round trip.
	Email string `json:"email,omitempty"`

	// Kind tags the token as access or refresh.
	Kind Kind `json:"kind"`
}

// NewClaims builds claims for a subject at the given time.
func NewClaims(subject, email, issuer string, kind Kind, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Kind:  kind,
	}
}
