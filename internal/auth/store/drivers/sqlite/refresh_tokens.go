package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/authcore/internal/auth/domain"
	"github.com/aussiebroadwan/authcore/internal/auth/store"
)

type refreshTokensRepo struct {
	q querier
}

func (r *refreshTokensRepo) Create(ctx context.Context, t domain.RefreshToken) error {
	created := t.CreatedAt
	if created.IsZero() {
		created = nowUTC()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token, created_at)
		VALUES (?, ?, ?)`,
		t.UserID, t.Token, created,
	)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) FindOne(ctx context.Context, search store.RefreshTokenSearch) (domain.RefreshToken, error) {
	if search.Token == "" {
		return domain.RefreshToken{}, fmt.Errorf("%w: empty refresh token search", store.ErrInvalidData)
	}

	var t domain.RefreshToken
	err := r.q.QueryRowContext(ctx, `
		SELECT user_id, token, created_at
		FROM refresh_tokens
		WHERE token = ?`, search.Token,
	).Scan(&t.UserID, &t.Token, &t.CreatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (r *refreshTokensRepo) FindAllByUser(ctx context.Context, userID string) ([]domain.RefreshToken, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT user_id, token, created_at
		FROM refresh_tokens
		WHERE user_id = ?
		ORDER BY created_at DESC, token`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RefreshToken
	for rows.Next() {
		var t domain.RefreshToken
		if err := rows.Scan(&t.UserID, &t.Token, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.CreatedAt = t.CreatedAt.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *refreshTokensRepo) Delete(ctx context.Context, token string) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE token = ?`, token,
	)
	if err != nil {
		return err
	}
	return requireRows(res.RowsAffected())
}

// PruneUser keeps the `keep` newest records for the user and deletes the
// rest. Newest-first ordering breaks creation-time ties on the token string
// so the survivors are deterministic.
func (r *refreshTokensRepo) PruneUser(ctx context.Context, userID string, keep int) error {
	if keep < 0 {
		keep = 0
	}
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM refresh_tokens
		WHERE user_id = ?
		AND token NOT IN (
			SELECT token FROM refresh_tokens
			WHERE user_id = ?
			ORDER BY created_at DESC, token
			LIMIT ?
		)`, userID, userID, keep,
	)
	return err
}

func (r *refreshTokensRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE created_at < ?`, cutoff.UTC(),
	)
	return err
}
