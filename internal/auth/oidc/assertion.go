package oidc

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// assertionTTL is the lifetime of a client assertion. Assertions are minted
// per introspection call and never reused.
const assertionTTL = 1 * time.Hour

// signAssertion builds the RS256 client-assertion JWT the provider expects
// for confidential client authentication: subject and issuer are both the
// client id, the audience is the provider issuer URL.
func (c *Client) signAssertion(now time.Time) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(c.cfg.ClientSecret))
	if err != nil {
		return "", err
	}

	claims := jwt.RegisteredClaims{
		Subject:   c.cfg.ClientID,
		Issuer:    c.cfg.ClientID,
		Audience:  jwt.ClaimStrings{c.cfg.Issuer},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(assertionTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = c.cfg.KeyID
	return token.SignedString(key)
}
