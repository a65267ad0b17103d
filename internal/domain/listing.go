package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryJob        Category = "job"
	CategoryInternship Category = "internship"
	CategoryProject    Category = "project"
)

func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryJob, CategoryInternship, CategoryProject:
		return Category(s), nil
	}
	return "", fmt.Errorf("%w: category %q", ErrUnknownValue, s)
}

type Listing struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Tags        []string  `json:"tags"`
	OwnerID     uuid.UUID `json:"owner_id"`
	ViewCount   int64     `json:"view_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ScoredListing is a listing annotated with the viewer's match score.
type ScoredListing struct {
	Listing
	MatchScore *int   `json:"match_score,omitempty"`
	MatchBand  string `json:"match_band,omitempty"`
}
