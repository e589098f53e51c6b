package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/authcore/internal/auth/domain"
	"github.com/aussiebroadwan/authcore/internal/auth/store"
	"github.com/aussiebroadwan/authcore/pkg/cryptox"
	"github.com/aussiebroadwan/authcore/pkg/idx"
	"github.com/aussiebroadwan/authcore/pkg/jwtx"
	"github.com/aussiebroadwan/authcore/pkg/slogx"
)

// AuthService composes the password verifier, token codec, and refresh-token
// ledger into the login, refresh, logout, and access-token resolution flows.
type AuthService struct {
	Store  store.Store
	Codec  *jwtx.Codec
	Tokens *TokenService
}

// Login checks the password and either issues a refresh token (StatusRefreshStep)
// or, when OTP is enabled, stores a one-time token and returns StatusOtpStep.
//
// A missing identity and a wrong password fail identically with
// ErrEmailPasswordMismatch. Federated identities are rejected with
// ErrUserIsOauth before any password comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.LoginResult, error) {
	l := slogx.FromContext(ctx)

	// 1. Resolve the identity. Absence is indistinguishable from a wrong
	// password.
	identity, err := s.Store.Identities().FindOne(ctx, store.IdentitySearch{Email: email})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.LoginResult{}, ErrEmailPasswordMismatch
		}
		return domain.LoginResult{}, serverError(err)
	}

	// 2. Federated identities carry no usable password hash.
	if identity.IsOAuth {
		l.Info("local login rejected for federated identity", slog.String("user_id", identity.ID))
		return domain.LoginResult{}, ErrUserIsOauth
	}

	// 3. Verify the password.
	if err := cryptox.VerifyPassword(password, identity.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.LoginResult{}, ErrEmailPasswordMismatch
		}
		return domain.LoginResult{}, serverError(err)
	}

	// 4. OTP enabled: persist a single-use correlation token and hand the
	// flow to OTP verification.
	if identity.OTPEnabled {
		oneTime := idx.New()
		identity.OneTimeToken = &oneTime
		if err := s.Store.Identities().Update(ctx, identity); err != nil {
			return domain.LoginResult{}, serverError(err)
		}
		l.Info("otp challenge issued", slog.String("user_id", identity.ID))
		return domain.LoginResult{Status: domain.StatusOtpStep, Token: oneTime}, nil
	}

	// 5. Issue the refresh token.
	refresh, err := s.Tokens.Issue(ctx, identity)
	if err != nil {
		return domain.LoginResult{}, err
	}

	l.Info("login succeeded", slog.String("user_id", identity.ID))
	return domain.LoginResult{
		Identity: &identity,
		Status:   domain.StatusRefreshStep,
		Token:    refresh,
	}, nil
}

// Refresh re-stamps a valid refresh token into a fresh access token. The
// refresh token itself is not rotated. A revoked, pruned, expired, or unknown
// token is ErrTokenInvalid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	// 1. The ledger record must still exist; absence means logged out.
	if _, err := s.Tokens.Validate(ctx, refreshToken); err != nil {
		return "", err
	}

	// 2. The signature and expiry must still hold.
	claims, err := s.Codec.Verify(refreshToken, jwtx.KindRefresh)
	if err != nil {
		return "", ErrTokenInvalid
	}

	// 3. Mint the access token from the refresh claims.
	access, err := s.Codec.Restamp(claims)
	if err != nil {
		return "", serverError(err)
	}
	return access, nil
}

// Logout revokes the refresh token's ledger record. A second logout with the
// same token reports store.ErrNotFound.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.Tokens.Revoke(ctx, refreshToken)
	if errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Info("logout of unknown refresh token")
	}
	return err
}

// Authenticate resolves the identity behind an access token. Every token
// rejection, including an identity deleted after issuance, is ErrTokenInvalid.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (domain.Identity, error) {
	claims, err := s.Codec.Verify(accessToken, jwtx.KindAccess)
	if err != nil {
		return domain.Identity{}, ErrTokenInvalid
	}

	identity, err := s.Store.Identities().FindOne(ctx, store.IdentitySearch{ID: claims.Subject})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Identity{}, ErrTokenInvalid
		}
		return domain.Identity{}, serverError(err)
	}
	return identity, nil
}
