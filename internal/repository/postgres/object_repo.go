package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/campusconnect/internal/domain"
)

// ObjectRepo keeps uploaded files (résumés, avatars) in the objects table.
type ObjectRepo struct {
	pool *pgxpool.Pool
}

func NewObjectRepo(pool *pgxpool.Pool) *ObjectRepo {
	return &ObjectRepo{pool: pool}
}

func (r *ObjectRepo) Put(ctx context.Context, obj *domain.Object) error {
	query := `
		INSERT INTO objects (path, content_type, data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (path) DO UPDATE
			SET content_type = EXCLUDED.content_type, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	_, err := r.pool.Exec(ctx, query, obj.Path, obj.ContentType, obj.Data, obj.UpdatedAt)
	return err
}

func (r *ObjectRepo) Get(ctx context.Context, path string) (*domain.Object, error) {
	var obj domain.Object
	err := r.pool.QueryRow(ctx,
		`SELECT path, content_type, data, updated_at FROM objects WHERE path = $1`, path,
	).Scan(&obj.Path, &obj.ContentType, &obj.Data, &obj.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &obj, err
}
