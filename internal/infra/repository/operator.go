package repository

import (
	"context"
	"errors"

	"allegro-autopilot/internal/infra"
	"allegro-autopilot/internal/usecase/queries"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/google/uuid"
)

type OperatorRepository struct {
	pool *pgxpool.Pool
}

func NewOperatorRepository(pool *pgxpool.Pool) *OperatorRepository {
	return &OperatorRepository{pool: pool}
}

func (r *OperatorRepository) FindByEmail(ctx context.Context, email string) (*queries.OperatorView, string, error) {
	const query = `
		SELECT id, email, password_hash
		FROM operators
		WHERE email = $1
	`

	var (
		view         queries.OperatorView
		passwordHash string
	)
	err := r.pool.QueryRow(ctx, query, email).Scan(&view.ID, &view.Email, &passwordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", infra.WrapRepoErr("operator not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("failed to find operator by email", err)
	}

	return &view, passwordHash, nil
}

func (r *OperatorRepository) Create(ctx context.Context, id uuid.UUID, email, passwordHash string) error {
	const query = `
		INSERT INTO operators (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, now())
	`

	_, err := r.pool.Exec(ctx, query, id, email, passwordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return infra.WrapRepoErr("operator email already registered", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create operator", err)
	}
	return nil
}
