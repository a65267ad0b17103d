package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/campusconnect/internal/domain"
	"github.com/vedran77/campusconnect/internal/repository"
	"github.com/vedran77/campusconnect/pkg/metrics"
	"github.com/vedran77/campusconnect/pkg/validator"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrNotListingOwner = errors.New("only the listing owner can perform this action")
	ErrNotPoster       = errors.New("only posters can perform this action")
	ErrNotCandidate    = errors.New("only candidates can perform this action")
	ErrInvalidSort     = errors.New("sort must be score or recent")
)

const (
	SortByScore  = "score"
	SortByRecent = "recent"
)

type ListingService struct {
	listingRepo     repository.ListingRepository
	accountRepo     repository.AccountRepository
	applicationRepo repository.ApplicationRepository
	metrics         *metrics.Manager
}

func NewListingService(
	listingRepo repository.ListingRepository,
	accountRepo repository.AccountRepository,
	applicationRepo repository.ApplicationRepository,
	m *metrics.Manager,
) *ListingService {
	return &ListingService{
		listingRepo:     listingRepo,
		accountRepo:     accountRepo,
		applicationRepo: applicationRepo,
		metrics:         m,
	}
}

type CreateListingInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

type BrowseQuery struct {
	Search   string
	Category string
	Sort     string
}

// ListingDetail is what a single listing page shows to its viewer.
type ListingDetail struct {
	domain.ScoredListing
	Owner      *domain.AccountSummary `json:"owner,omitempty"`
	HasApplied bool                   `json:"has_applied"`
}

func (s *ListingService) Create(ctx context.Context, ownerID uuid.UUID, input CreateListingInput) (*domain.Listing, error) {
	owner, err := s.loadAccount(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner.Role != domain.RolePoster {
		return nil, ErrNotPoster
	}

	tags := NormalizeTerms(input.Tags)
	if err := validator.ValidateListing(input.Title, input.Description, input.Category, tags).OrNil(); err != nil {
		return nil, err
	}
	category, err := domain.ParseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	listing := &domain.Listing{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		Tags:        tags,
		OwnerID:     ownerID,
		CreatedAt:   time.Now(),
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("creating listing: %w", err)
	}

	s.metrics.ListingCreated()
	return listing, nil
}

// View counts one view for every call, the owner's own included, and returns
// the listing annotated for the viewer.
func (s *ListingService) View(ctx context.Context, viewerID, listingID uuid.UUID) (*ListingDetail, error) {
	viewer, err := s.loadAccount(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}

	views, err := s.listingRepo.IncrementViews(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("incrementing views: %w", err)
	}
	if views == 0 {
		// Deleted between the read and the increment.
		return nil, ErrListingNotFound
	}
	listing.ViewCount = views
	s.metrics.ListingViewed()

	detail := &ListingDetail{ScoredListing: domain.ScoredListing{Listing: *listing}}

	if viewer.Role == domain.RoleCandidate {
		scoreListing(&detail.ScoredListing, viewer.Skills)

		app, err := s.applicationRepo.GetByListingAndApplicant(ctx, listingID, viewerID)
		if err != nil {
			return nil, err
		}
		detail.HasApplied = app != nil
	}

	owner, err := s.accountRepo.GetByID(ctx, listing.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		detail.Owner = owner.Summary()
	}

	return detail, nil
}

func (s *ListingService) Delete(ctx context.Context, callerID, listingID uuid.UUID) error {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing == nil {
		return ErrListingNotFound
	}
	if listing.OwnerID != callerID {
		return ErrNotListingOwner
	}

	if err := s.listingRepo.Delete(ctx, listingID); err != nil {
		return fmt.Errorf("deleting listing: %w", err)
	}
	return nil
}

// Browse lists every listing newest first, narrowed by category and search.
// Candidates additionally get their match score on each entry.
func (s *ListingService) Browse(ctx context.Context, viewerID uuid.UUID, q BrowseQuery) ([]domain.ScoredListing, error) {
	if q.Sort != "" && q.Sort != SortByScore && q.Sort != SortByRecent {
		return nil, ErrInvalidSort
	}
	var category domain.Category
	if q.Category != "" && q.Category != "all" {
		c, err := domain.ParseCategory(q.Category)
		if err != nil {
			return nil, err
		}
		category = c
	}

	viewer, err := s.loadAccount(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	listings, err := s.listingRepo.ListRecent(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.ScoredListing, 0, len(listings))
	for _, l := range listings {
		if category != "" && l.Category != category {
			continue
		}
		if !MatchesSearch(&l, q.Search) {
			continue
		}
		sl := domain.ScoredListing{Listing: l}
		if viewer.Role == domain.RoleCandidate {
			scoreListing(&sl, viewer.Skills)
		}
		result = append(result, sl)
	}

	if q.Sort == SortByScore {
		SortScored(result, SortByScore)
	}
	return result, nil
}

// Matches scores every listing against the candidate's skills and drops the
// ones with nothing in common.
func (s *ListingService) Matches(ctx context.Context, candidateID uuid.UUID, sortBy string) ([]domain.ScoredListing, error) {
	if sortBy == "" {
		sortBy = SortByScore
	}
	if sortBy != SortByScore && sortBy != SortByRecent {
		return nil, ErrInvalidSort
	}

	candidate, err := s.loadAccount(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if candidate.Role != domain.RoleCandidate {
		return nil, ErrNotCandidate
	}

	listings, err := s.listingRepo.ListRecent(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.ScoredListing, 0, len(listings))
	for _, l := range listings {
		sl := domain.ScoredListing{Listing: l}
		scoreListing(&sl, candidate.Skills)
		if *sl.MatchScore == 0 {
			continue
		}
		result = append(result, sl)
	}

	SortScored(result, sortBy)
	return result, nil
}

// SortScored orders listings by descending score or by creation time, newest
// first. Ties keep their incoming order.
func SortScored(listings []domain.ScoredListing, by string) {
	switch by {
	case SortByScore:
		sort.SliceStable(listings, func(i, j int) bool {
			return scoreOf(listings[i]) > scoreOf(listings[j])
		})
	case SortByRecent:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].CreatedAt.After(listings[j].CreatedAt)
		})
	}
}

// MatchesSearch reports whether q occurs, ignoring case, in the listing's
// title, description or any of its tags. An empty q matches everything.
func MatchesSearch(l *domain.Listing, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	if l == nil {
		return false
	}
	if strings.Contains(strings.ToLower(l.Title), q) || strings.Contains(strings.ToLower(l.Description), q) {
		return true
	}
	for _, tag := range l.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func scoreListing(sl *domain.ScoredListing, skills []string) {
	score := domain.MatchScore(skills, sl.Tags)
	sl.MatchScore = &score
	sl.MatchBand = domain.MatchBand(score)
}

func scoreOf(sl domain.ScoredListing) int {
	if sl.MatchScore == nil {
		return 0
	}
	return *sl.MatchScore
}

func (s *ListingService) loadAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}
