package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/authcore/internal/auth/domain"
	"github.com/aussiebroadwan/authcore/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/authcore/pkg/cryptox"
	"github.com/aussiebroadwan/authcore/pkg/jwtx"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestCodec() *jwtx.Codec {
	return jwtx.NewCodec("authcore-test",
		[]byte("access-secret-for-tests"),
		[]byte("refresh-secret-for-tests"))
}

// seedIdentity creates a local identity with the given password and returns
// it.
func seedIdentity(t *testing.T, st *sqlite.Store, email, password string, mutate ...func(*domain.Identity)) domain.Identity {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	identity := domain.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		GivenName:    "Jane",
		FamilyName:   "Doe",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, fn := range mutate {
		fn(&identity)
	}

	require.NoError(t, st.Identities().Create(context.Background(), identity))
	return identity
}
