package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "pending"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusAccepted    ApplicationStatus = "accepted"
	StatusRejected    ApplicationStatus = "rejected"
)

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	switch ApplicationStatus(s) {
	case StatusPending, StatusShortlisted, StatusAccepted, StatusRejected:
		return ApplicationStatus(s), nil
	}
	return "", fmt.Errorf("%w: application status %q", ErrUnknownValue, s)
}

// IsDecision reports whether s is a state a listing owner may move an application into.
func (s ApplicationStatus) IsDecision() bool {
	return s == StatusShortlisted || s == StatusAccepted || s == StatusRejected
}

// CanTransition reports whether an application may move from s to next.
// Only pending applications can be decided; every decided state is final.
func (s ApplicationStatus) CanTransition(next ApplicationStatus) bool {
	return s == StatusPending && next.IsDecision()
}

// Label is the display form used for status badges, e.g. "Pending".
func (s ApplicationStatus) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

type Application struct {
	ID             uuid.UUID         `json:"id"`
	ListingID      uuid.UUID         `json:"listing_id"`
	ListingOwnerID uuid.UUID         `json:"listing_owner_id"`
	ApplicantID    uuid.UUID         `json:"applicant_id"`
	Message        string            `json:"message"`
	Status         ApplicationStatus `json:"status"`
	AppliedAt      time.Time         `json:"applied_at"`
	DecidedAt      *time.Time        `json:"decided_at,omitempty"`
}

// ApplicationView is an application joined with its listing and, for posters,
// the applicant. Listing is nil once the listing has been deleted.
type ApplicationView struct {
	Application
	StatusLabel string          `json:"status_label"`
	Listing     *Listing        `json:"listing"`
	Applicant   *AccountSummary `json:"applicant,omitempty"`
}
