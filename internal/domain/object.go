package domain

import (
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
)

type Object struct {
	Path        string    `json:"path"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"-"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ResumePath is where an account's résumé named filename is stored.
func ResumePath(accountID uuid.UUID, filename string) string {
	return fmt.Sprintf("resumes/%s/%s", accountID, path.Base(filename))
}

// AvatarPath is fixed per account, so uploading a new avatar replaces the old one.
func AvatarPath(accountID uuid.UUID) string {
	return fmt.Sprintf("profiles/%s/avatar", accountID)
}
