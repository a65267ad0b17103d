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
	"github.com/vedran77/campusconnect/pkg/validator"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrObjectNotFound  = errors.New("object not found")
)

type AccountService struct {
	accountRepo repository.AccountRepository
	objectRepo  repository.ObjectRepository
}

func NewAccountService(accountRepo repository.AccountRepository, objectRepo repository.ObjectRepository) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		objectRepo:  objectRepo,
	}
}

type ProfileInput struct {
	Skills []string `json:"skills"`
	Bio    *string  `json:"bio"`
}

func (s *AccountService) GetProfile(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// UpdateProfile replaces the account's skills and, when given, its bio.
// The role is never changed here.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID uuid.UUID, input ProfileInput) (*domain.Account, error) {
	account, err := s.GetProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}

	bio := account.Bio
	if input.Bio != nil {
		bio = strings.TrimSpace(*input.Bio)
	}
	skills := account.Skills
	if input.Skills != nil {
		skills = NormalizeTerms(input.Skills)
	}

	if err := validator.ValidateProfile(skills, bio).OrNil(); err != nil {
		return nil, err
	}

	if err := s.accountRepo.UpdateProfile(ctx, accountID, skills, bio); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	account.Skills = skills
	account.Bio = bio
	return account, nil
}

// NormalizeTerms trims entries, drops empty ones and removes case-insensitive
// duplicates, keeping the first spelling seen.
func NormalizeTerms(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (s *AccountService) UploadResume(ctx context.Context, accountID uuid.UUID, filename, contentType string, data []byte) (*domain.Account, error) {
	if err := validator.ValidateResume(filename, len(data)).OrNil(); err != nil {
		return nil, err
	}

	account, err := s.GetProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}

	ref := domain.ResumePath(accountID, filename)
	if err := s.putObject(ctx, ref, contentType, data); err != nil {
		return nil, err
	}
	if err := s.accountRepo.SetResumeRef(ctx, accountID, ref); err != nil {
		return nil, fmt.Errorf("setting resume ref: %w", err)
	}

	account.ResumeRef = &ref
	return account, nil
}

func (s *AccountService) UploadAvatar(ctx context.Context, accountID uuid.UUID, contentType string, data []byte) (*domain.Account, error) {
	if err := validator.ValidateAvatar(contentType, len(data)).OrNil(); err != nil {
		return nil, err
	}

	account, err := s.GetProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}

	ref := domain.AvatarPath(accountID)
	if err := s.putObject(ctx, ref, contentType, data); err != nil {
		return nil, err
	}
	if err := s.accountRepo.SetAvatarRef(ctx, accountID, ref); err != nil {
		return nil, fmt.Errorf("setting avatar ref: %w", err)
	}

	account.AvatarRef = &ref
	return account, nil
}

func (s *AccountService) GetObject(ctx context.Context, path string) (*domain.Object, error) {
	obj, err := s.objectRepo.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrObjectNotFound
	}
	return obj, nil
}

func (s *AccountService) putObject(ctx context.Context, path, contentType string, data []byte) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	obj := &domain.Object{
		Path:        path,
		ContentType: contentType,
		Data:        data,
		UpdatedAt:   time.Now(),
	}
	if err := s.objectRepo.Put(ctx, obj); err != nil {
		return fmt.Errorf("storing object %s: %w", path, err)
	}
	return nil
}
