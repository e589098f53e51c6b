package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aussiebroadwan/authcore/internal/auth/domain"
	"github.com/aussiebroadwan/authcore/internal/auth/oidc"
	"github.com/aussiebroadwan/authcore/internal/auth/store"
	"github.com/aussiebroadwan/authcore/pkg/slogx"
)

// OIDCService handles federated login: introspect the provider's bearer
// token, fetch the identity claims, find or create the local identity, and
// issue tokens. When no provider is configured every call returns
// ErrOidcDisabled; the local flows are unaffected.
type OIDCService struct {
	Store  store.Store
	Tokens *TokenService
	Client *oidc.Client
}

// Login validates the provider bearer token and signs the federated identity
// in, registering it on first sight.
func (s *OIDCService) Login(ctx context.Context, bearerToken string) (domain.LoginResult, error) {
	l := slogx.FromContext(ctx)

	if s.Client == nil {
		return domain.LoginResult{}, ErrOidcDisabled
	}

	// 1. Ask the provider whether the token is live. An inactive token is a
	// client rejection; a provider fault is retryable.
	active, _, err := s.Client.Introspect(ctx, bearerToken)
	if err != nil {
		return domain.LoginResult{}, serverError(err)
	}
	if !active {
		return domain.LoginResult{}, ErrTokenInvalid
	}

	// 2. Fetch the identity claims. An active token that buys no identity
	// is a provider inconsistency, not a client mistake.
	claims, err := s.Client.UserInfo(ctx, bearerToken)
	if err != nil {
		return domain.LoginResult{}, serverError(err)
	}
	email := oidc.StringClaim(claims, "email")
	if email == "" {
		return domain.LoginResult{}, serverError(errors.New("userinfo returned no email"))
	}

	givenName := oidc.StringClaim(claims, "given_name")
	familyName := oidc.StringClaim(claims, "family_name")

	// 3. Find or create the local identity by email.
	identity, err := s.Store.Identities().FindOne(ctx, store.IdentitySearch{Email: email})
	switch {
	case errors.Is(err, store.ErrNotFound):
		identity, err = s.register(ctx, email, givenName, familyName)
		if err != nil {
			return domain.LoginResult{}, err
		}
		l.Info("federated identity registered", slog.String("user_id", identity.ID))

	case err != nil:
		return domain.LoginResult{}, serverError(err)

	default:
		// A local-password identity is never silently converted to
		// federated.
		if !identity.IsOAuth {
			l.Warn("federated login against local identity", slog.String("user_id", identity.ID))
			return domain.LoginResult{}, ErrTokenInvalid
		}

		// Sync the name fields, writing only when the provider's claims
		// differ.
		if identity.GivenName != givenName || identity.FamilyName != familyName {
			identity.GivenName = givenName
			identity.FamilyName = familyName
			if err := s.Store.Identities().Update(ctx, identity); err != nil {
				return domain.LoginResult{}, serverError(err)
			}
		}
	}

	// 4. Issue the refresh token.
	refresh, err := s.Tokens.Issue(ctx, identity)
	if err != nil {
		return domain.LoginResult{}, err
	}

	l.Info("federated login succeeded", slog.String("user_id", identity.ID))
	return domain.LoginResult{
		Identity: &identity,
		Status:   domain.StatusRefreshStep,
		Token:    refresh,
	}, nil
}

func (s *OIDCService) register(ctx context.Context, email, givenName, familyName string) (domain.Identity, error) {
	now := time.Now().UTC()
	identity := domain.Identity{
		ID:         uuid.NewString(),
		Email:      email,
		GivenName:  givenName,
		FamilyName: familyName,
		IsOAuth:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Store.Identities().Create(ctx, identity); err != nil {
		return domain.Identity{}, serverError(err)
	}
	return identity, nil
}
