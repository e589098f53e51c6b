package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aussiebroadwan/authcore/internal/auth/domain"
	"github.com/aussiebroadwan/authcore/internal/auth/store"
	"github.com/aussiebroadwan/authcore/pkg/cryptox"
	"github.com/aussiebroadwan/authcore/pkg/slogx"
)

// RegisterService creates local-password identities.
type RegisterService struct {
	Store store.Store
}

// RegisterInput is a local signup request.
type RegisterInput struct {
	Email      string
	Password   string
	GivenName  string
	FamilyName string
}

// Register validates the input, hashes the password, and creates the
// identity. A duplicate email is ErrEmailTaken.
func (s *RegisterService) Register(ctx context.Context, in RegisterInput) (domain.Identity, error) {
	if err := validateRegistration(in); err != nil {
		return domain.Identity{}, err
	}

	taken, err := s.Store.Identities().ExistsByEmail(ctx, in.Email)
	if err != nil {
		return domain.Identity{}, serverError(err)
	}
	if taken {
		return domain.Identity{}, ErrEmailTaken
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.Identity{}, serverError(err)
	}

	now := time.Now().UTC()
	identity := domain.Identity{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		GivenName:    in.GivenName,
		FamilyName:   in.FamilyName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Identities().Create(ctx, identity); err != nil {
		// The existence check above races with concurrent signups; the
		// unique index is the authority.
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Identity{}, ErrEmailTaken
		}
		return domain.Identity{}, serverError(err)
	}

	slogx.FromContext(ctx).Info("identity registered", slog.String("user_id", identity.ID))
	return identity, nil
}
