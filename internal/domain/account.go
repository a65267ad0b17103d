package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePoster    Role = "poster"
	RoleCandidate Role = "candidate"
)

// ParseRole decodes a stored or submitted role value.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePoster, RoleCandidate:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: role %q", ErrUnknownValue, s)
}

type Account struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Skills       []string  `json:"skills"`
	Bio          string    `json:"bio"`
	ResumeRef    *string   `json:"resume_ref,omitempty"`
	AvatarRef    *string   `json:"avatar_ref,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AccountSummary is the applicant snapshot attached to a poster's application view.
type AccountSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Skills    []string  `json:"skills"`
	ResumeRef *string   `json:"resume_ref,omitempty"`
	AvatarRef *string   `json:"avatar_ref,omitempty"`
}

func (a *Account) Summary() *AccountSummary {
	return &AccountSummary{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Skills:    a.Skills,
		ResumeRef: a.ResumeRef,
		AvatarRef: a.AvatarRef,
	}
}
