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

const listingColumns = "id, title, description, category, tags, owner_id, view_count, created_at"

type ListingRepo struct {
	pool *pgxpool.Pool
}

func NewListingRepo(pool *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	query := `
		INSERT INTO listings (id, title, description, category, tags, owner_id, view_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7)`
	_, err := r.pool.Exec(ctx, query,
		l.ID, l.Title, l.Description, string(l.Category), l.Tags, l.OwnerID, l.CreatedAt,
	)
	return err
}

func (r *ListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	l, err := scanListing(r.pool.QueryRow(ctx, "SELECT "+listingColumns+" FROM listings WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

func (r *ListingRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, "SELECT "+listingColumns+" FROM listings WHERE id = ANY($1)", ids)
}

func (r *ListingRepo) ListRecent(ctx context.Context) ([]domain.Listing, error) {
	return r.list(ctx, "SELECT "+listingColumns+" FROM listings ORDER BY created_at DESC, seq DESC")
}

func (r *ListingRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Listing, error) {
	return r.list(ctx, "SELECT "+listingColumns+" FROM listings WHERE owner_id = $1 ORDER BY created_at DESC, seq DESC", ownerID)
}

func (r *ListingRepo) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	var views int64
	err := r.pool.QueryRow(ctx,
		`UPDATE listings SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count`, id,
	).Scan(&views)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return views, err
}

func (r *ListingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	return err
}

func (r *ListingRepo) list(ctx context.Context, query string, args ...any) ([]domain.Listing, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var (
		l        domain.Listing
		category string
	)
	if err := row.Scan(
		&l.ID, &l.Title, &l.Description, &category, &l.Tags,
		&l.OwnerID, &l.ViewCount, &l.CreatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := domain.ParseCategory(category)
	if err != nil {
		return nil, fmt.Errorf("decoding listing %s: %w", l.ID, err)
	}
	l.Category = parsed
	return &l, nil
}
