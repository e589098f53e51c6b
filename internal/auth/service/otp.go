package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/authcore/internal/auth/domain"
	"github.com/aussiebroadwan/authcore/internal/auth/store"
	"github.com/aussiebroadwan/authcore/pkg/slogx"
	"github.com/aussiebroadwan/authcore/pkg/totpx"
)

// OTPService manages TOTP enrollment and the OTP step of the login flow.
// Enrollment is two-step: Enroll generates a secret, Activate confirms it
// with a live code before the second factor is enforced.
type OTPService struct {
	Store  store.Store
	TOTP   totpx.Engine
	Tokens *TokenService
}

// Enroll generates a fresh TOTP secret and provisioning URL for the user and
// stores them inactive. Calling Enroll again before Activate replaces the
// pending secret.
func (s *OTPService) Enroll(ctx context.Context, userID string) (domain.OTPEnrollment, error) {
	identity, err := s.Store.Identities().FindOne(ctx, store.IdentitySearch{ID: userID})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.OTPEnrollment{}, store.ErrNotFound
		}
		return domain.OTPEnrollment{}, serverError(err)
	}

	if identity.IsOAuth {
		return domain.OTPEnrollment{}, ErrUserIsOauth
	}
	if identity.OTPEnabled {
		return domain.OTPEnrollment{}, ErrOtpAlreadyEnabled
	}

	secret, url, err := s.TOTP.GenerateSecret(identity.Email)
	if err != nil {
		return domain.OTPEnrollment{}, serverError(err)
	}

	identity.OTPSecret = &secret
	identity.OTPURL = &url
	if err := s.Store.Identities().Update(ctx, identity); err != nil {
		return domain.OTPEnrollment{}, serverError(err)
	}

	return domain.OTPEnrollment{Secret: secret, URL: url}, nil
}

// Activate confirms a pending enrollment with a live code and turns the
// second factor on.
func (s *OTPService) Activate(ctx context.Context, userID, code string) error {
	identity, err := s.Store.Identities().FindOne(ctx, store.IdentitySearch{ID: userID})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrNotFound
		}
		return serverError(err)
	}

	if identity.OTPEnabled {
		return ErrOtpAlreadyEnabled
	}
	if identity.OTPSecret == nil || *identity.OTPSecret == "" {
		return ErrOtpNotEnrolled
	}

	ok, err := s.TOTP.Verify(*identity.OTPSecret, code)
	if err != nil {
		return serverError(err)
	}
	if !ok {
		return ErrOtpCodeMismatch
	}

	identity.OTPEnabled = true
	if err := s.Store.Identities().Update(ctx, identity); err != nil {
		return serverError(err)
	}

	slogx.FromContext(ctx).Info("otp activated", slog.String("user_id", identity.ID))
	return nil
}

// VerifyLogin completes an OTP login challenge. The one-time token is looked
// up, the code checked, and on success the token is cleared and a refresh
// token issued.
//
// The one-time token is consumed on every terminal outcome, success or
// permanent failure, so a stale challenge cannot be replayed. A wrong code is
// not terminal; the token stays usable for another attempt.
func (s *OTPService) VerifyLogin(ctx context.Context, oneTimeToken, code string) (domain.LoginResult, error) {
	l := slogx.FromContext(ctx)

	// 1. The one-time token is the only handle; absence means no pending
	// challenge.
	identity, err := s.Store.Identities().FindOne(ctx, store.IdentitySearch{OneTimeToken: oneTimeToken})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.LoginResult{}, ErrTokenInvalid
		}
		return domain.LoginResult{}, serverError(err)
	}

	// 2. A challenge stored against an identity that cannot complete it is
	// permanently dead: consume the token and reject.
	if identity.IsOAuth || !identity.OTPEnabled || identity.OTPSecret == nil {
		if err := s.clearOneTimeToken(ctx, identity); err != nil {
			return domain.LoginResult{}, err
		}
		l.Warn("otp challenge for identity that cannot verify", slog.String("user_id", identity.ID))
		return domain.LoginResult{}, ErrTokenInvalid
	}

	// 3. Check the code. A malformed stored secret is a server fault, not a
	// mismatch.
	ok, err := s.TOTP.Verify(*identity.OTPSecret, code)
	if err != nil {
		return domain.LoginResult{}, serverError(err)
	}
	if !ok {
		return domain.LoginResult{}, ErrOtpCodeMismatch
	}

	// 4. Success consumes the token before any credential is issued.
	if err := s.clearOneTimeToken(ctx, identity); err != nil {
		return domain.LoginResult{}, err
	}
	identity.OneTimeToken = nil

	refresh, err := s.Tokens.Issue(ctx, identity)
	if err != nil {
		return domain.LoginResult{}, err
	}

	l.Info("otp login succeeded", slog.String("user_id", identity.ID))
	return domain.LoginResult{
		Identity: &identity,
		Status:   domain.StatusRefreshStep,
		Token:    refresh,
	}, nil
}

func (s *OTPService) clearOneTimeToken(ctx context.Context, identity domain.Identity) error {
	identity.OneTimeToken = nil
	if err := s.Store.Identities().Update(ctx, identity); err != nil {
		return serverError(err)
	}
	return nil
}
