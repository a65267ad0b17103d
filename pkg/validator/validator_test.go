package validator

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateRegister(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		confirm   string
		role      string
		wantField string
	}{
		{"ok", "ana@uni.edu", "secret1", "secret1", "candidate", ""},
		{"short password", "ana@uni.edu", "abc", "abc", "candidate", "password"},
		{"mismatch", "ana@uni.edu", "secret1", "secret2", "poster", "confirm_password"},
		{"bad email", "not-an-email", "secret1", "secret1", "poster", "email"},
		{"bad role", "ana@uni.edu", "secret1", "secret1", "finder", "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateRegister("Ana", tt.email, tt.password, tt.confirm, tt.role)
			if tt.wantField == "" {
				if errs.HasErrors() {
					t.Fatalf("unexpected errors: %v", errs)
				}
				return
			}
			if _, ok := errs[tt.wantField]; !ok {
				t.Fatalf("expected error on %s, got %v", tt.wantField, errs)
			}
		})
	}
}

func TestValidateListingRequiresContent(t *testing.T) {
	errs := ValidateListing("  ", "", "job", []string{" "})
	for _, f := range []string{"title", "description", "tags"} {
		if _, ok := errs[f]; !ok {
			t.Errorf("expected error on %s", f)
		}
	}
	if errs := ValidateListing("Backend intern", "Go and SQL", "internship", []string{"Go"}); errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidateListingDocument(t *testing.T) {
	errs, err := ValidateListingDocument([]byte(`{"title":"Data intern","description":"d","category":"internship","tags":["python"]}`))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}

	errs, err = ValidateListingDocument([]byte(`{"title":"x","category":"gig","tags":[],"salary":1}`))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	for _, f := range []string{"description", "category", "tags", "salary"} {
		if _, ok := errs[f]; !ok {
			t.Errorf("expected error on %s, got %v", f, errs)
		}
	}

	if _, err := ValidateListingDocument([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestValidateUploads(t *testing.T) {
	if errs := ValidateResume("cv.PDF", 1024); errs.HasErrors() {
		t.Fatalf("pdf should be accepted: %v", errs)
	}
	if errs := ValidateResume("cv.exe", 1024); !errs.HasErrors() {
		t.Fatal("exe should be rejected")
	}
	if errs := ValidateResume("cv.docx", MaxResumeSize+1); !errs.HasErrors() {
		t.Fatal("oversized resume should be rejected")
	}
	if errs := ValidateAvatar("image/png", 2048); errs.HasErrors() {
		t.Fatalf("png should be accepted: %v", errs)
	}
	if errs := ValidateAvatar("application/pdf", 2048); !errs.HasErrors() {
		t.Fatal("pdf avatar should be rejected")
	}
	if errs := ValidateAvatar("image/jpeg", MaxAvatarSize+1); !errs.HasErrors() {
		t.Fatal("oversized avatar should be rejected")
	}
}

func TestValidationErrorsAsError(t *testing.T) {
	errs := ValidateMessage("   ")
	err := errs.OrNil()
	if err == nil {
		t.Fatal("expected error")
	}
	var verrs ValidationErrors
	if !errors.As(err, &verrs) || verrs["text"] == "" {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if !strings.Contains(err.Error(), "text: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if ValidateMessage("hi").OrNil() != nil {
		t.Fatal("expected nil for valid message")
	}
}
