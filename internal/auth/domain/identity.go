package domain

import "time"

// Identity is the durable user record. Federated identities (IsOAuth) never
// carry a usable password hash; OTPSecret is set only while OTP enrollment is
// in progress or enabled.
type Identity struct {
	ID           string
	Email        string
	PasswordHash string // argon2id PHC encoded, empty for federated identities
	GivenName    string
	FamilyName   string

	OTPSecret  *string // base32 TOTP secret
	OTPURL     *string // otpauth:// provisioning URL
	OTPEnabled bool

	// OneTimeToken is the transient single-use handle bridging a successful
	// password check to OTP code verification. Absence means no pending
	// challenge.
	OneTimeToken *string

	IsOAuth   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
