package sqlite

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/authcore/internal/auth/domain"
	"github.com/aussiebroadwan/authcore/internal/auth/store"
)

const identityColumns = `id, email, password_hash, given_name, family_name,
	otp_secret, otp_url, otp_enabled, one_time_token, is_oauth,
	created_at, updated_at`

type identitiesRepo struct {
	q querier
}

func (r *identitiesRepo) Create(ctx context.Context, id domain.Identity) error {
	now := nowUTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO identities (
			id, email, password_hash, given_name, family_name,
			otp_secret, otp_url, otp_enabled, one_time_token, is_oauth,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.ID, id.Email, id.PasswordHash, id.GivenName, id.FamilyName,
		mapOptionalString(id.OTPSecret), mapOptionalString(id.OTPURL),
		id.OTPEnabled, mapOptionalString(id.OneTimeToken), id.IsOAuth,
		now, now,
	)
	return mapConstraint(err)
}

func (r *identitiesRepo) FindOne(ctx context.Context, search store.IdentitySearch) (domain.Identity, error) {
	column, value, err := identityCriteria(search)
	if err != nil {
		return domain.Identity{}, err
	}

	// column comes from the fixed criteria table above, never from input.
	query := fmt.Sprintf(`SELECT %s FROM identities WHERE %s = ?`, identityColumns, column)
	row := r.q.QueryRowContext(ctx, query, value)

	id, err := mapIdentityRow(row.Scan)
	if err != nil {
		return domain.Identity{}, mapNotFound(err)
	}
	return id, nil
}

func (r *identitiesRepo) Update(ctx context.Context, id domain.Identity) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE identities SET
			email = ?, password_hash = ?, given_name = ?, family_name = ?,
			otp_secret = ?, otp_url = ?, otp_enabled = ?,
			one_time_token = ?, is_oauth = ?, updated_at = ?
		WHERE id = ?`,
		id.Email, id.PasswordHash, id.GivenName, id.FamilyName,
		mapOptionalString(id.OTPSecret), mapOptionalString(id.OTPURL),
		id.OTPEnabled, mapOptionalString(id.OneTimeToken), id.IsOAuth,
		nowUTC(), id.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRows(res.RowsAffected())
}

func (r *identitiesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM identities WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRows(res.RowsAffected())
}

func (r *identitiesRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM identities WHERE email = ?`, email,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// identityCriteria maps a search value object onto a single keyed column.
func identityCriteria(search store.IdentitySearch) (column, value string, err error) {
	switch {
	case search.ID != "":
		return "id", search.ID, nil
	case search.Email != "":
		return "email", search.Email, nil
	case search.OneTimeToken != "":
		return "one_time_token", search.OneTimeToken, nil
	default:
		return "", "", fmt.Errorf("%w: empty identity search", store.ErrInvalidData)
	}
}

func requireRows(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
