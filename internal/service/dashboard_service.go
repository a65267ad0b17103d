package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/vedran77/campusconnect/internal/domain"
	"github.com/vedran77/campusconnect/internal/repository"
)

type DashboardService struct {
	accountRepo     repository.AccountRepository
	listingRepo     repository.ListingRepository
	applicationRepo repository.ApplicationRepository
}

func NewDashboardService(
	accountRepo repository.AccountRepository,
	listingRepo repository.ListingRepository,
	applicationRepo repository.ApplicationRepository,
) *DashboardService {
	return &DashboardService{
		accountRepo:     accountRepo,
		listingRepo:     listingRepo,
		applicationRepo: applicationRepo,
	}
}

type PosterStats struct {
	Listings     int   `json:"listings"`
	Applications int   `json:"applications"`
	TotalViews   int64 `json:"total_views"`
	Pending      int   `json:"pending"`
}

type CandidateStats struct {
	Applications int `json:"applications"`
	Pending      int `json:"pending"`
}

// Dashboard holds exactly one of Poster or Candidate, matching Role.
type Dashboard struct {
	Role      domain.Role     `json:"role"`
	Poster    *PosterStats    `json:"poster,omitempty"`
	Candidate *CandidateStats `json:"candidate,omitempty"`
}

func (s *DashboardService) Get(ctx context.Context, accountID uuid.UUID) (*Dashboard, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if account.Role == domain.RolePoster {
		stats, err := s.posterStats(ctx, accountID)
		if err != nil {
			return nil, err
		}
		return &Dashboard{Role: account.Role, Poster: stats}, nil
	}

	apps, err := s.applicationRepo.ListByApplicant(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Role: account.Role,
		Candidate: &CandidateStats{
			Applications: len(apps),
			Pending:      countPending(apps),
		},
	}, nil
}

func (s *DashboardService) posterStats(ctx context.Context, posterID uuid.UUID) (*PosterStats, error) {
	listings, err := s.listingRepo.ListByOwner(ctx, posterID)
	if err != nil {
		return nil, err
	}
	apps, err := s.applicationRepo.ListByListingOwner(ctx, posterID)
	if err != nil {
		return nil, err
	}

	stats := &PosterStats{
		Listings:     len(listings),
		Applications: len(apps),
		Pending:      countPending(apps),
	}
	for _, l := range listings {
		stats.TotalViews += l.ViewCount
	}
	return stats, nil
}

func countPending(apps []domain.Application) int {
	n := 0
	for _, a := range apps {
		if a.Status == domain.StatusPending {
			n++
		}
	}
	return n
}
