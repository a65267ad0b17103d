package validator

import (
	"fmt"
	"net/mail"
	"path"
	"sort"
	"strings"
)

const (
	MinPasswordLen  = 6
	MaxTitleLen     = 200
	MaxTagLen       = 50
	MaxTags         = 20
	MaxSkills       = 50
	MaxBioLen       = 2000
	MaxMessageLen   = 4000
	MaxApplyNoteLen = 2000

	MaxResumeSize = 5 << 20
	MaxAvatarSize = 2 << 20
)

var resumeExtensions = []string{".pdf", ".doc", ".docx"}

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	if _, exists := v[field]; !exists {
		v[field] = message
	}
}

// Error lets services return validation failures as ordinary errors.
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + v[f]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// OrNil returns nil when there are no errors, so callers can write
// `if err := errs.OrNil(); err != nil`.
func (v ValidationErrors) OrNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}

func ValidateRegister(name, email, password, confirmPassword, role string) ValidationErrors {
	errs := make(ValidationErrors)

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Name is required")
	} else if len(name) > 100 {
		errs.Add("name", "Name is too long")
	}

	validateEmail(email, errs)

	if len(password) < MinPasswordLen {
		errs.Add("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLen))
	}
	if password != confirmPassword {
		errs.Add("confirm_password", "Passwords do not match")
	}

	if role != "poster" && role != "candidate" {
		errs.Add("role", "Role must be poster or candidate")
	}

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func ValidateListing(title, description, category string, tags []string) ValidationErrors {
	errs := make(ValidationErrors)

	title = strings.TrimSpace(title)
	if title == "" {
		errs.Add("title", "Job title is required")
	} else if len(title) > MaxTitleLen {
		errs.Add("title", "Job title is too long")
	}

	if strings.TrimSpace(description) == "" {
		errs.Add("description", "Job description is required")
	}

	if category != "job" && category != "internship" && category != "project" {
		errs.Add("category", "Category must be job, internship, or project")
	}

	clean := 0
	for _, t := range tags {
		if strings.TrimSpace(t) != "" {
			clean++
		}
	}
	if clean == 0 {
		errs.Add("tags", "Please add at least one skill tag")
	} else if len(tags) > MaxTags {
		errs.Add("tags", fmt.Sprintf("At most %d tags are allowed", MaxTags))
	}

	return errs
}

func ValidateProfile(skills []string, bio string) ValidationErrors {
	errs := make(ValidationErrors)

	if len(skills) > MaxSkills {
		errs.Add("skills", fmt.Sprintf("At most %d skills are allowed", MaxSkills))
	}
	for _, s := range skills {
		if len(strings.TrimSpace(s)) > MaxTagLen {
			errs.Add("skills", "Skill names are limited to 50 characters")
			break
		}
	}
	if len(bio) > MaxBioLen {
		errs.Add("bio", "Bio is too long")
	}

	return errs
}

func ValidateMessage(text string) ValidationErrors {
	errs := make(ValidationErrors)

	text = strings.TrimSpace(text)
	if text == "" {
		errs.Add("text", "Message text is required")
	} else if len(text) > MaxMessageLen {
		errs.Add("text", "Message is too long")
	}

	return errs
}

func ValidateApplicationNote(message string) ValidationErrors {
	errs := make(ValidationErrors)
	if len(message) > MaxApplyNoteLen {
		errs.Add("message", "Message is too long")
	}
	return errs
}

func ValidateResume(filename string, size int) ValidationErrors {
	errs := make(ValidationErrors)

	name := path.Base(filename)
	ext := strings.ToLower(path.Ext(name))
	allowed := false
	for _, e := range resumeExtensions {
		if ext == e {
			allowed = true
			break
		}
	}

	switch {
	case filename == "" || name == "." || name == "/":
		errs.Add("file", "File name is required")
	case !allowed:
		errs.Add("file", "Invalid file type. Allowed: "+strings.Join(resumeExtensions, ","))
	case size == 0:
		errs.Add("file", "File is empty")
	case size > MaxResumeSize:
		errs.Add("file", "File too large. Max size: 5MB")
	}

	return errs
}

func ValidateAvatar(contentType string, size int) ValidationErrors {
	errs := make(ValidationErrors)

	switch {
	case !strings.HasPrefix(contentType, "image/"):
		errs.Add("file", "Please upload an image file")
	case size == 0:
		errs.Add("file", "File is empty")
	case size > MaxAvatarSize:
		errs.Add("file", "Image must be smaller than 2MB")
	}

	return errs
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}
}
