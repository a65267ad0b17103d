package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/campusconnect/internal/domain"
	"github.com/vedran77/campusconnect/internal/repository"
	"github.com/vedran77/campusconnect/pkg/metrics"
	"github.com/vedran77/campusconnect/pkg/validator"
)

var (
	ErrApplicationNotFound  = errors.New("application not found")
	ErrDuplicateApplication = errors.New("you have already applied to this listing")
	ErrInvalidStatus        = errors.New("status must be shortlisted, accepted or rejected")
	ErrInvalidTransition    = errors.New("application has already been decided")
)

type ApplicationService struct {
	applicationRepo repository.ApplicationRepository
	listingRepo     repository.ListingRepository
	accountRepo     repository.AccountRepository
	metrics         *metrics.Manager
}

func NewApplicationService(
	applicationRepo repository.ApplicationRepository,
	listingRepo repository.ListingRepository,
	accountRepo repository.AccountRepository,
	m *metrics.Manager,
) *ApplicationService {
	return &ApplicationService{
		applicationRepo: applicationRepo,
		listingRepo:     listingRepo,
		accountRepo:     accountRepo,
		metrics:         m,
	}
}

type SubmitInput struct {
	Message string `json:"message"`
}

type DecideInput struct {
	Status string `json:"status"`
}

// Submit records a pending application from a candidate to a listing.
func (s *ApplicationService) Submit(ctx context.Context, applicantID, listingID uuid.UUID, message string) (*domain.Application, error) {
	applicant, err := s.accountRepo.GetByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if applicant == nil {
		return nil, ErrAccountNotFound
	}
	if applicant.Role != domain.RoleCandidate {
		return nil, ErrNotCandidate
	}

	message = strings.TrimSpace(message)
	if err := validator.ValidateApplicationNote(message).OrNil(); err != nil {
		return nil, err
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}

	existing, err := s.applicationRepo.GetByListingAndApplicant(ctx, listingID, applicantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateApplication
	}

	app := &domain.Application{
		ID:             uuid.New(),
		ListingID:      listingID,
		ListingOwnerID: listing.OwnerID,
		ApplicantID:    applicantID,
		Message:        message,
		Status:         domain.StatusPending,
		AppliedAt:      time.Now(),
	}

	if err := s.applicationRepo.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateApplication
		}
		return nil, fmt.Errorf("creating application: %w", err)
	}

	s.metrics.ApplicationSubmitted()
	return app, nil
}

// Decide moves a pending application into a final state. Only the owner of
// the listing may decide, even after the listing itself has been deleted.
func (s *ApplicationService) Decide(ctx context.Context, callerID, applicationID uuid.UUID, newStatus string) (*domain.Application, error) {
	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	if app.ListingOwnerID != callerID {
		return nil, ErrNotListingOwner
	}

	status, err := domain.ParseApplicationStatus(newStatus)
	if err != nil || !status.IsDecision() {
		return nil, ErrInvalidStatus
	}
	if !app.Status.CanTransition(status) {
		return nil, ErrInvalidTransition
	}

	ok, err := s.applicationRepo.Decide(ctx, applicationID, status)
	if err != nil {
		return nil, fmt.Errorf("deciding application: %w", err)
	}
	if !ok {
		// Someone else decided it first.
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	app.Status = status
	app.DecidedAt = &now

	s.metrics.ApplicationDecided(string(status))
	return app, nil
}

// List returns the caller's applications filtered by status and search text:
// received ones for posters, submitted ones for candidates.
func (s *ApplicationService) List(ctx context.Context, callerID uuid.UUID, status, search string) ([]domain.ApplicationView, error) {
	if status != "" && status != "all" {
		if _, err := domain.ParseApplicationStatus(status); err != nil {
			return nil, ErrInvalidStatus
		}
	}

	caller, err := s.accountRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, ErrAccountNotFound
	}

	var views []domain.ApplicationView
	if caller.Role == domain.RolePoster {
		views, err = s.ListForPoster(ctx, callerID)
	} else {
		views, err = s.ListForCandidate(ctx, callerID)
	}
	if err != nil {
		return nil, err
	}

	return FilterApplications(views, status, search), nil
}

// ListForPoster returns every application to a listing the poster owns, with
// the listing (nil once deleted) and the applicant (nil if missing).
func (s *ApplicationService) ListForPoster(ctx context.Context, posterID uuid.UUID) ([]domain.ApplicationView, error) {
	apps, err := s.applicationRepo.ListByListingOwner(ctx, posterID)
	if err != nil {
		return nil, err
	}

	listings, err := s.listingsByID(ctx, apps)
	if err != nil {
		return nil, err
	}

	applicantIDs := make([]uuid.UUID, 0, len(apps))
	for _, a := range apps {
		applicantIDs = append(applicantIDs, a.ApplicantID)
	}
	applicants := map[uuid.UUID]*domain.Account{}
	if len(applicantIDs) > 0 {
		accounts, err := s.accountRepo.ListByIDs(ctx, applicantIDs)
		if err != nil {
			return nil, err
		}
		for i := range accounts {
			applicants[accounts[i].ID] = &accounts[i]
		}
	}

	views := make([]domain.ApplicationView, 0, len(apps))
	for _, a := range apps {
		v := newApplicationView(a, listings[a.ListingID])
		if acc, ok := applicants[a.ApplicantID]; ok {
			v.Applicant = acc.Summary()
		}
		views = append(views, v)
	}
	return views, nil
}

// ListForCandidate returns the candidate's own applications with their listings.
func (s *ApplicationService) ListForCandidate(ctx context.Context, candidateID uuid.UUID) ([]domain.ApplicationView, error) {
	apps, err := s.applicationRepo.ListByApplicant(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	listings, err := s.listingsByID(ctx, apps)
	if err != nil {
		return nil, err
	}

	views := make([]domain.ApplicationView, 0, len(apps))
	for _, a := range apps {
		views = append(views, newApplicationView(a, listings[a.ListingID]))
	}
	return views, nil
}

// FilterApplications keeps views whose status equals status ("" and "all"
// match any) and whose listing matches search. A view without a listing only
// survives an empty search.
func FilterApplications(views []domain.ApplicationView, status, search string) []domain.ApplicationView {
	out := make([]domain.ApplicationView, 0, len(views))
	for _, v := range views {
		if status != "" && status != "all" && string(v.Status) != status {
			continue
		}
		if !MatchesSearch(v.Listing, search) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (s *ApplicationService) listingsByID(ctx context.Context, apps []domain.Application) (map[uuid.UUID]*domain.Listing, error) {
	result := map[uuid.UUID]*domain.Listing{}
	if len(apps) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.ListingID)
	}
	listings, err := s.listingRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range listings {
		result[listings[i].ID] = &listings[i]
	}
	return result, nil
}

func newApplicationView(a domain.Application, listing *domain.Listing) domain.ApplicationView {
	return domain.ApplicationView{
		Application: a,
		StatusLabel: a.Status.Label(),
		Listing:     listing,
	}
}
