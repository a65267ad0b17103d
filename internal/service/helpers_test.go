package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/campusconnect/internal/domain"
	"github.com/vedran77/campusconnect/internal/repository/memory"
	"github.com/vedran77/campusconnect/pkg/metrics"
)

type fixture struct {
	ctx          context.Context
	accounts     *memory.AccountRepo
	listings     *memory.ListingRepo
	applications *memory.ApplicationRepo
	messages     *memory.MessageRepo
	objects      *memory.ObjectRepo
	metrics      *metrics.Manager

	accountSvc     *AccountService
	listingSvc     *ListingService
	applicationSvc *ApplicationService
	threadSvc      *ThreadService
	dashboardSvc   *DashboardService
}

func newFixture() *fixture {
	f := &fixture{
		ctx:          context.Background(),
		accounts:     memory.NewAccountRepo(),
		listings:     memory.NewListingRepo(),
		applications: memory.NewApplicationRepo(),
		messages:     memory.NewMessageRepo(),
		objects:      memory.NewObjectRepo(),
		metrics:      metrics.NewManager(),
	}
	f.accountSvc = NewAccountService(f.accounts, f.objects)
	f.listingSvc = NewListingService(f.listings, f.accounts, f.applications, f.metrics)
	f.applicationSvc = NewApplicationService(f.applications, f.listings, f.accounts, f.metrics)
	f.threadSvc = NewThreadService(f.messages, f.accounts, f.metrics)
	f.dashboardSvc = NewDashboardService(f.accounts, f.listings, f.applications)
	return f
}

func (f *fixture) account(name string, role domain.Role, skills ...string) *domain.Account {
	a := &domain.Account{
		ID:        uuid.New(),
		Name:      name,
		Email:     name + "@campus.test",
		Role:      role,
		Skills:    skills,
		CreatedAt: time.Now(),
	}
	if err := f.accounts.Create(f.ctx, a); err != nil {
		panic(err)
	}
	return a
}

// listing seeds a listing created age ago.
func (f *fixture) listing(owner *domain.Account, title string, age time.Duration, tags ...string) *domain.Listing {
	l := &domain.Listing{
		ID:          uuid.New(),
		Title:       title,
		Description: title + " description",
		Category:    domain.CategoryJob,
		Tags:        tags,
		OwnerID:     owner.ID,
		CreatedAt:   time.Now().Add(-age),
	}
	if err := f.listings.Create(f.ctx, l); err != nil {
		panic(err)
	}
	return l
}
