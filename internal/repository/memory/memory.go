// Package memory implements the repositories in process memory. It backs
// the "memory" store and the HTTP and service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/campusconnect/internal/domain"
	"github.com/vedran77/campusconnect/internal/repository"
)

var (
	_ repository.AccountRepository     = (*AccountRepo)(nil)
	_ repository.ListingRepository     = (*ListingRepo)(nil)
	_ repository.ApplicationRepository = (*ApplicationRepo)(nil)
	_ repository.MessageRepository     = (*MessageRepo)(nil)
	_ repository.ObjectRepository      = (*ObjectRepo)(nil)
)

type AccountRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*domain.Account
}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{byID: map[uuid.UUID]*domain.Account{}}
}

func (r *AccountRepo) Create(_ context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if strings.EqualFold(existing.Email, a.Email) {
			return repository.ErrConflict
		}
	}
	cp := *a
	r.byID[a.ID] = &cp
	return nil
}

func (r *AccountRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *AccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *AccountRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Account
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if a, ok := r.byID[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *AccountRepo) ListExcept(_ context.Context, id uuid.UUID) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Account
	for _, a := range r.byID {
		if a.ID != id {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *AccountRepo) UpdateProfile(_ context.Context, id uuid.UUID, skills []string, bio string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.Skills = skills
		a.Bio = bio
	}
	return nil
}

func (r *AccountRepo) SetResumeRef(_ context.Context, id uuid.UUID, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.ResumeRef = &ref
	}
	return nil
}

func (r *AccountRepo) SetAvatarRef(_ context.Context, id uuid.UUID, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.AvatarRef = &ref
	}
	return nil
}

type ListingRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*domain.Listing
	// order holds ids in insertion order; it breaks created_at ties.
	order []uuid.UUID
}

func NewListingRepo() *ListingRepo {
	return &ListingRepo{byID: map[uuid.UUID]*domain.Listing{}}
}

func (r *ListingRepo) Create(_ context.Context, l *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[l.ID]; !ok {
		r.order = append(r.order, l.ID)
	}
	cp := *l
	r.byID[l.ID] = &cp
	return nil
}

func (r *ListingRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *ListingRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Listing
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if l, ok := r.byID[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *ListingRepo) ListRecent(_ context.Context) ([]domain.Listing, error) {
	return r.filter(func(*domain.Listing) bool { return true }), nil
}

func (r *ListingRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Listing, error) {
	return r.filter(func(l *domain.Listing) bool { return l.OwnerID == ownerID }), nil
}

func (r *ListingRepo) IncrementViews(_ context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return 0, nil
	}
	l.ViewCount++
	return l.ViewCount, nil
}

func (r *ListingRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return nil
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// filter returns matching listings newest first. Listings created at the same
// instant come back latest arrival first.
func (r *ListingRepo) filter(keep func(*domain.Listing) bool) []domain.Listing {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Listing
	for i := len(r.order) - 1; i >= 0; i-- {
		if l := r.byID[r.order[i]]; keep(l) {
			out = append(out, *l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type ApplicationRepo struct {
	mu   sync.Mutex
	apps []*domain.Application
}

func NewApplicationRepo() *ApplicationRepo {
	return &ApplicationRepo{}
}

func (r *ApplicationRepo) Create(_ context.Context, a *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.apps {
		if existing.ListingID == a.ListingID && existing.ApplicantID == a.ApplicantID {
			return repository.ErrConflict
		}
	}
	cp := *a
	r.apps = append(r.apps, &cp)
	return nil
}

func (r *ApplicationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Application, error) {
	return r.first(func(a *domain.Application) bool { return a.ID == id }), nil
}

func (r *ApplicationRepo) GetByListingAndApplicant(_ context.Context, listingID, applicantID uuid.UUID) (*domain.Application, error) {
	return r.first(func(a *domain.Application) bool {
		return a.ListingID == listingID && a.ApplicantID == applicantID
	}), nil
}

func (r *ApplicationRepo) ListByListingOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Application, error) {
	return r.filter(func(a *domain.Application) bool { return a.ListingOwnerID == ownerID }), nil
}

func (r *ApplicationRepo) ListByApplicant(_ context.Context, applicantID uuid.UUID) ([]domain.Application, error) {
	return r.filter(func(a *domain.Application) bool { return a.ApplicantID == applicantID }), nil
}

func (r *ApplicationRepo) Decide(_ context.Context, id uuid.UUID, status domain.ApplicationStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.ID == id && a.Status == domain.StatusPending {
			now := time.Now()
			a.Status = status
			a.DecidedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (r *ApplicationRepo) first(match func(*domain.Application) bool) *domain.Application {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if match(a) {
			cp := *a
			return &cp
		}
	}
	return nil
}

// filter returns matches newest first, like the SQL repository.
func (r *ApplicationRepo) filter(match func(*domain.Application) bool) []domain.Application {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Application
	for i := len(r.apps) - 1; i >= 0; i-- {
		if match(r.apps[i]) {
			out = append(out, *r.apps[i])
		}
	}
	return out
}

type MessageRepo struct {
	mu   sync.Mutex
	msgs []domain.Message
}

func NewMessageRepo() *MessageRepo {
	return &MessageRepo{}
}

func (r *MessageRepo) Create(_ context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, *m)
	return nil
}

func (r *MessageRepo) ListByThread(_ context.Context, threadID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.msgs {
		if m.ThreadID == threadID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MessageRepo) ListThreads(_ context.Context, accountID uuid.UUID) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := accountID.String()
	var out []domain.Message
	seen := map[string]bool{}
	for i := len(r.msgs) - 1; i >= 0; i-- {
		m := r.msgs[i]
		if seen[m.ThreadID] {
			continue
		}
		a, b, err := domain.ParseThreadID(m.ThreadID)
		if err != nil || (a != id && b != id) {
			continue
		}
		seen[m.ThreadID] = true
		out = append(out, m)
	}
	return out, nil
}

type ObjectRepo struct {
	mu     sync.Mutex
	byPath map[string]domain.Object
}

func NewObjectRepo() *ObjectRepo {
	return &ObjectRepo{byPath: map[string]domain.Object{}}
}

func (r *ObjectRepo) Put(_ context.Context, obj *domain.Object) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPath[obj.Path] = *obj
	return nil
}

func (r *ObjectRepo) Get(_ context.Context, path string) (*domain.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.byPath[path]
	if !ok {
		return nil, nil
	}
	return &obj, nil
}
