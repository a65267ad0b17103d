package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/campusconnect/internal/domain"
)

const applicationColumns = "id, listing_id, listing_owner_id, applicant_id, message, status, applied_at, decided_at"

type ApplicationRepo struct {
	pool *pgxpool.Pool
}

func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

func (r *ApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (id, listing_id, listing_owner_id, applicant_id, message, status, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query,
		app.ID, app.ListingID, app.ListingOwnerID, app.ApplicantID, app.Message, string(app.Status), app.AppliedAt,
	)
	return mapWriteErr(err)
}

func (r *ApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	return r.one(ctx, "SELECT "+applicationColumns+" FROM applications WHERE id = $1", id)
}

func (r *ApplicationRepo) GetByListingAndApplicant(ctx context.Context, listingID, applicantID uuid.UUID) (*domain.Application, error) {
	return r.one(ctx,
		"SELECT "+applicationColumns+" FROM applications WHERE listing_id = $1 AND applicant_id = $2",
		listingID, applicantID,
	)
}

func (r *ApplicationRepo) ListByListingOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Application, error) {
	return r.list(ctx,
		"SELECT "+applicationColumns+" FROM applications WHERE listing_owner_id = $1 ORDER BY applied_at DESC",
		ownerID,
	)
}

func (r *ApplicationRepo) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]domain.Application, error) {
	return r.list(ctx,
		"SELECT "+applicationColumns+" FROM applications WHERE applicant_id = $1 ORDER BY applied_at DESC",
		applicantID,
	)
}

func (r *ApplicationRepo) Decide(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE applications SET status = $1, decided_at = $2 WHERE id = $3 AND status = 'pending'`,
		string(status), time.Now(), id,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ApplicationRepo) one(ctx context.Context, query string, args ...any) (*domain.Application, error) {
	app, err := scanApplication(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return app, err
}

func (r *ApplicationRepo) list(ctx context.Context, query string, args ...any) ([]domain.Application, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var (
		app    domain.Application
		status string
	)
	if err := row.Scan(
		&app.ID, &app.ListingID, &app.ListingOwnerID, &app.ApplicantID,
		&app.Message, &status, &app.AppliedAt, &app.DecidedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := domain.ParseApplicationStatus(status)
	if err != nil {
		return nil, fmt.Errorf("decoding application %s: %w", app.ID, err)
	}
	app.Status = parsed
	return &app, nil
}
