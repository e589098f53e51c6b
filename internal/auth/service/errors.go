package service

import (
	"errors"
	"fmt"
)

var (
	// ErrEmailPasswordMismatch covers both a missing identity and a wrong
	// password so callers cannot probe which emails exist.
	ErrEmailPasswordMismatch = errors.New("email_password_mismatch")

	// ErrUserIsOauth rejects local password login for federated identities.
	ErrUserIsOauth = errors.New("user_is_oauth")

	// ErrOidcDisabled is returned by the federation path when no provider is
	// configured. Local flows never return it.
	ErrOidcDisabled = errors.New("oidc_disabled")

	// ErrTokenInvalid covers every client-facing token rejection: unknown,
	// expired, revoked, inactive at the provider, or the wrong kind.
	ErrTokenInvalid = errors.New("token_invalid")

	ErrOtpAlreadyEnabled = errors.New("otp_already_enabled")
	ErrOtpNotEnrolled    = errors.New("otp_not_enrolled")
	ErrOtpCodeMismatch   = errors.New("otp_code_mismatch")

	ErrEmailTaken   = errors.New("email_taken")
	ErrInvalidInput = errors.New("invalid_input")

	// ErrServer wraps repository and upstream failures. Safe for the caller
	// to retry; never retried internally.
	ErrServer = errors.New("server_error")
)

// serverError wraps an upstream or repository failure as ErrServer while
// keeping the cause in the chain.
func serverError(err error) error {
	return fmt.Errorf("%w: %w", ErrServer, err)
}
