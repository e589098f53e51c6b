package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/authcore/internal/auth/domain"
	"github.com/aussiebroadwan/authcore/internal/auth/store"
	"github.com/aussiebroadwan/authcore/pkg/jwtx"
)

// MaxRefreshTokensPerUser caps the live refresh-token ledger per user. Older
// records are pruned on each new issuance.
const MaxRefreshTokensPerUser = 4

// TokenService owns the refresh-token ledger: minting signed refresh tokens,
// persisting their records, and pruning old ones.
type TokenService struct {
	Codec *jwtx.Codec
	Store store.Store
}

// Issue mints a refresh token for the identity, persists the ledger record,
// and prunes the user's records down to the newest MaxRefreshTokensPerUser.
//
// Persist and prune are not atomic across concurrent logins; a transient
// over-count self-corrects on the next issuance.
func (s *TokenService) Issue(ctx context.Context, id domain.Identity) (string, error) {
	token, err := s.Codec.Issue(id.ID, id.Email, jwtx.KindRefresh)
	if err != nil {
		return "", serverError(err)
	}

	record := domain.RefreshToken{
		UserID:    id.ID,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.RefreshTokens().Create(ctx, record); err != nil {
		return "", serverError(err)
	}

	if err := s.Store.RefreshTokens().PruneUser(ctx, id.ID, MaxRefreshTokensPerUser); err != nil {
		return "", serverError(err)
	}

	return token, nil
}

// Validate looks up the persisted record behind the exact token string. An
// absent record means the token was revoked, pruned, or never issued:
// ErrTokenInvalid, not a server fault.
func (s *TokenService) Validate(ctx context.Context, token string) (domain.RefreshToken, error) {
	record, err := s.Store.RefreshTokens().FindOne(ctx, store.RefreshTokenSearch{Token: token})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.RefreshToken{}, ErrTokenInvalid
		}
		return domain.RefreshToken{}, serverError(err)
	}
	return record, nil
}

// Revoke deletes the ledger record. Revoking an already-gone token reports
// store.ErrNotFound so callers can log it, never a crash.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	err := s.Store.RefreshTokens().Delete(ctx, token)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return serverError(err)
	}
	return err
}
