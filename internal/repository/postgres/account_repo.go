package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/campusconnect/internal/domain"
)

const accountColumns = "id, name, email, role, skills, bio, resume_ref, avatar_ref, password_hash, created_at"

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO accounts (id, name, email, role, skills, bio, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Name, a.Email, string(a.Role), a.Skills, a.Bio, a.PasswordHash, a.CreatedAt,
	)
	return mapWriteErr(err)
}

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return r.scanOne(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = $1", id)
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.scanOne(ctx, "SELECT "+accountColumns+" FROM accounts WHERE lower(email) = lower($1)", email)
}

func (r *AccountRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.scanMany(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ANY($1)", ids)
}

func (r *AccountRepo) ListExcept(ctx context.Context, id uuid.UUID) ([]domain.Account, error) {
	return r.scanMany(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id <> $1 ORDER BY name", id)
}

func (r *AccountRepo) UpdateProfile(ctx context.Context, id uuid.UUID, skills []string, bio string) error {
	_, err := r.pool.Exec(ctx, `UPDATE accounts SET skills = $1, bio = $2 WHERE id = $3`, skills, bio, id)
	return err
}

func (r *AccountRepo) SetResumeRef(ctx context.Context, id uuid.UUID, ref string) error {
	_, err := r.pool.Exec(ctx, `UPDATE accounts SET resume_ref = $1 WHERE id = $2`, ref, id)
	return err
}

func (r *AccountRepo) SetAvatarRef(ctx context.Context, id uuid.UUID, ref string) error {
	_, err := r.pool.Exec(ctx, `UPDATE accounts SET avatar_ref = $1 WHERE id = $2`, ref, id)
	return err
}

func (r *AccountRepo) scanOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *AccountRepo) scanMany(ctx context.Context, query string, arg any) ([]domain.Account, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a    domain.Account
		role string
	)
	if err := row.Scan(
		&a.ID, &a.Name, &a.Email, &role, &a.Skills, &a.Bio,
		&a.ResumeRef, &a.AvatarRef, &a.PasswordHash, &a.CreatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("decoding account %s: %w", a.ID, err)
	}
	a.Role = parsed
	return &a, nil
}
