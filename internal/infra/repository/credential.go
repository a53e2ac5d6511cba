package repository

import (
	"context"
	"errors"
	"time"

	"allegro-autopilot/internal/domain/credential"
	"allegro-autopilot/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CredentialRepository is the durable store of the single live token pair
// per merchant account.
type CredentialRepository struct {
	pool *pgxpool.Pool
}

func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

func (r *CredentialRepository) Get(ctx context.Context, accountID string) (*credential.Credential, error) {
	const query = `
		SELECT account_id, access_token, refresh_token, expires_at, status, failure_count
		FROM credentials
		WHERE account_id = $1
	`

	var (
		id, accessToken, refreshToken, status string
		expiresAt                             time.Time
		failureCount                          int
	)
	err := r.pool.QueryRow(ctx, query, accountID).
		Scan(&id, &accessToken, &refreshToken, &expiresAt, &status, &failureCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("credential not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load credential", err)
	}

	return credential.ReconstructCredential(
		id, accessToken, refreshToken, expiresAt, credential.Status(status), failureCount,
	), nil
}

// Upsert atomically replaces the whole credential row keyed by account id.
// Partial field updates are deliberately not offered.
func (r *CredentialRepository) Upsert(ctx context.Context, c *credential.Credential) error {
	const query = `
		INSERT INTO credentials (account_id, access_token, refresh_token, expires_at, status, failure_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (account_id) DO UPDATE SET
			access_token  = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at    = EXCLUDED.expires_at,
			status        = EXCLUDED.status,
			failure_count = EXCLUDED.failure_count,
			updated_at    = now()
	`

	_, err := r.pool.Exec(ctx, query,
		c.AccountID(), c.AccessToken(), c.RefreshToken(), c.ExpiresAt(), string(c.Status()), c.FailureCount())
	if err != nil {
		return infra.WrapRepoErr("failed to upsert credential", err)
	}
	return nil
}
