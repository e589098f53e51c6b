package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/authcore/internal/auth/domain"
	"github.com/aussiebroadwan/authcore/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func strPtr(s string) *string { return &s }

func TestIdentitiesCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id := domain.Identity{
		ID:           "11111111-1111-1111-1111-111111111111",
		Email:        "jane@x.com",
		PasswordHash: "$argon2id$fake",
		GivenName:    "Jane",
		FamilyName:   "Doe",
	}
	require.NoError(t, s.Identities().Create(ctx, id))

	t.Run("duplicate email rejected", func(t *testing.T) {
		dup := id
		dup.ID = "22222222-2222-2222-2222-222222222222"
		err := s.Identities().Create(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("find by email", func(t *testing.T) {
		got, err := s.Identities().FindOne(ctx, store.IdentitySearch{Email: "jane@x.com"})
		require.NoError(t, err)
		require.Equal(t, id.ID, got.ID)
		require.Equal(t, "Jane", got.GivenName)
		require.Nil(t, got.OneTimeToken)
		require.False(t, got.OTPEnabled)
	})

	t.Run("find by id", func(t *testing.T) {
		got, err := s.Identities().FindOne(ctx, store.IdentitySearch{ID: id.ID})
		require.NoError(t, err)
		require.Equal(t, "jane@x.com", got.Email)
	})

	t.Run("empty search is invalid", func(t *testing.T) {
		_, err := s.Identities().FindOne(ctx, store.IdentitySearch{})
		require.ErrorIs(t, err, store.ErrInvalidData)
	})

	t.Run("missing identity is not found", func(t *testing.T) {
		_, err := s.Identities().FindOne(ctx, store.IdentitySearch{Email: "ghost@x.com"})
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("update and find by one time token", func(t *testing.T) {
		got, err := s.Identities().FindOne(ctx, store.IdentitySearch{ID: id.ID})
		require.NoError(t, err)

		got.OTPSecret = strPtr("SECRET")
		got.OTPEnabled = true
		got.OneTimeToken = strPtr("01HZZZZZZZZZZZZZZZZZZZZZZZ")
		require.NoError(t, s.Identities().Update(ctx, got))

		found, err := s.Identities().FindOne(ctx, store.IdentitySearch{
			OneTimeToken: "01HZZZZZZZZZZZZZZZZZZZZZZZ",
		})
		require.NoError(t, err)
		require.Equal(t, id.ID, found.ID)
		require.True(t, found.OTPEnabled)
		require.NotNil(t, found.OTPSecret)
	})

	t.Run("exists by email", func(t *testing.T) {
		ok, err := s.Identities().ExistsByEmail(ctx, "jane@x.com")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = s.Identities().ExistsByEmail(ctx, "ghost@x.com")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("update missing identity is not found", func(t *testing.T) {
		ghost := id
		ghost.ID = "99999999-9999-9999-9999-999999999999"
		ghost.Email = "ghost@x.com"
		require.ErrorIs(t, s.Identities().Update(ctx, ghost), store.ErrNotFound)
	})

	t.Run("delete cascades to refresh tokens", func(t *testing.T) {
		require.NoError(t, s.RefreshTokens().Create(ctx, domain.RefreshToken{
			UserID: id.ID,
			Token:  "cascade-me",
		}))
		require.NoError(t, s.Identities().Delete(ctx, id.ID))

		_, err := s.RefreshTokens().FindOne(ctx, store.RefreshTokenSearch{Token: "cascade-me"})
		require.ErrorIs(t, err, store.ErrNotFound)

		require.ErrorIs(t, s.Identities().Delete(ctx, id.ID), store.ErrNotFound)
	})
}

func TestRefreshTokensLedger(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	user := domain.Identity{ID: "u-1", Email: "u1@x.com"}
	require.NoError(t, s.Identities().Create(ctx, user))

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 6; i++ {
		require.NoError(t, s.RefreshTokens().Create(ctx, domain.RefreshToken{
			UserID:    user.ID,
			Token:     fmt.Sprintf("tok-%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	t.Run("find all newest first", func(t *testing.T) {
		all, err := s.RefreshTokens().FindAllByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, all, 6)
		require.Equal(t, "tok-5", all[0].Token)
		require.Equal(t, "tok-0", all[5].Token)
	})

	t.Run("prune keeps newest four", func(t *testing.T) {
		require.NoError(t, s.RefreshTokens().PruneUser(ctx, user.ID, 4))

		all, err := s.RefreshTokens().FindAllByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, all, 4)
		require.Equal(t, "tok-5", all[0].Token)
		require.Equal(t, "tok-2", all[3].Token)
	})

	t.Run("delete reports not found on second call", func(t *testing.T) {
		require.NoError(t, s.RefreshTokens().Delete(ctx, "tok-5"))
		require.ErrorIs(t, s.RefreshTokens().Delete(ctx, "tok-5"), store.ErrNotFound)
	})

	t.Run("delete older than cutoff", func(t *testing.T) {
		cutoff := base.Add(10 * time.Minute)
		require.NoError(t, s.RefreshTokens().DeleteOlderThan(ctx, cutoff))

		all, err := s.RefreshTokens().FindAllByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Empty(t, all)
	})

	t.Run("duplicate token rejected", func(t *testing.T) {
		rec := domain.RefreshToken{UserID: user.ID, Token: "dup"}
		require.NoError(t, s.RefreshTokens().Create(ctx, rec))
		require.ErrorIs(t, s.RefreshTokens().Create(ctx, rec), store.ErrAlreadyExists)
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	boom := fmt.Errorf("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Identities().Create(ctx, domain.Identity{ID: "u-tx", Email: "tx@x.com"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Identities().FindOne(ctx, store.IdentitySearch{Email: "tx@x.com"})
	require.ErrorIs(t, err, store.ErrNotFound)
}
