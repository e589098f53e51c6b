package domain

import "time"

// RefreshToken is a persisted ledger entry for an issued refresh token. At
// most four live records exist per user; older ones are pruned on issuance.
type RefreshToken struct {
	UserID    string
	Token     string
	CreatedAt time.Time
}

// LoginStatus tells the caller which step of the login flow comes next.
type LoginStatus string

const (
	// StatusOtpStep means the password checked out but an OTP code must be
	// verified before tokens are issued. The returned token is the
	// single-use correlation handle for that verification.
	StatusOtpStep LoginStatus = "OtpStep"

	// StatusRefreshStep means tokens were issued; the returned token is the
	// refresh token.
	StatusRefreshStep LoginStatus = "RefreshStep"
)

// LoginResult is the outcome of a successful login or OTP verification.
// Identity is nil while an OTP challenge is pending.
type LoginResult struct {
	Identity *Identity
	Status   LoginStatus
	Token    string
}

// OTPEnrollment is returned when OTP enrollment starts. The secret is not yet
// active; the user must confirm with a valid code first.
type OTPEnrollment struct {
	Secret string
	URL    string
}
