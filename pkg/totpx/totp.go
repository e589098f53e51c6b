// Package totpx wraps time-based one-time password generation and validation
// for the OTP second factor. Parameters are fixed to the common authenticator
// defaults: 30 second steps, 6 digit codes, SHA1, with one step of clock skew
// tolerated in either direction.
package totpx

import (
	"errors"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// ErrInvalidSecret reports a secret that is not valid base32. Distinct from a
// code that simply does not match.
var ErrInvalidSecret = errors.New("totpx: invalid secret")

var validateOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// Engine issues and checks TOTP codes. Issuer is the label shown in
// authenticator apps next to the account.
type Engine struct {
	Issuer string
}

// GenerateSecret mints a fresh base32 secret for the account and returns it
// together with the otpauth:// provisioning URL encoding issuer and account.
func (e Engine) GenerateSecret(account string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.Issuer,
		AccountName: account,
		Period:      validateOpts.Period,
		Digits:      validateOpts.Digits,
		Algorithm:   validateOpts.Algorithm,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// CurrentCode computes the code for the current time step. Intended for tests
// and debugging only; verification should always go through Verify.
func (e Engine) CurrentCode(secret string) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, time.Now().UTC(), validateOpts)
	if err != nil {
		return "", ErrInvalidSecret
	}
	return code, nil
}

// Verify reports whether the submitted code is valid for the secret at the
// current time step or one adjacent step. A malformed secret is an error;
// a non-matching code is (false, nil).
func (e Engine) Verify(secret, code string) (bool, error) {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), validateOpts)
	if err != nil {
		// A code of the wrong length is just a failed match, not a
		// malformed secret.
		if errors.Is(err, otp.ErrValidateInputInvalidLength) {
			return false, nil
		}
		return false, ErrInvalidSecret
	}
	return ok, nil
}
