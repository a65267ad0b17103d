package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vedran77/campusconnect/internal/domain"
)

// ErrConflict is returned when a write violates a uniqueness constraint.
var ErrConflict = errors.New("unique constraint violated")

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Account, error)
	ListExcept(ctx context.Context, id uuid.UUID) ([]domain.Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, skills []string, bio string) error
	SetResumeRef(ctx context.Context, id uuid.UUID, ref string) error
	SetAvatarRef(ctx context.Context, id uuid.UUID, ref string) error
}

type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error)
	// ListRecent returns every listing, newest first.
	ListRecent(ctx context.Context) ([]domain.Listing, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Listing, error)
	// IncrementViews atomically adds one view and returns the new count,
	// or 0 if the listing does not exist.
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ApplicationRepository interface {
	// Create returns ErrConflict if the applicant already applied to the listing.
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	GetByListingAndApplicant(ctx context.Context, listingID, applicantID uuid.UUID) (*domain.Application, error)
	ListByListingOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Application, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]domain.Application, error)
	// Decide sets the status of a pending application. It reports false if the
	// application was no longer pending.
	Decide(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus) (bool, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	// ListByThread returns the thread's messages oldest first.
	ListByThread(ctx context.Context, threadID string) ([]domain.Message, error)
	// ListThreads returns the latest message of every thread the account is in.
	ListThreads(ctx context.Context, accountID uuid.UUID) ([]domain.Message, error)
}

type ObjectRepository interface {
	// Put inserts or replaces the object at obj.Path.
	Put(ctx context.Context, obj *domain.Object) error
	Get(ctx context.Context, path string) (*domain.Object, error)
}
