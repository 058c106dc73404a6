package wizard

import (
	"fmt"
	"regexp"

	"github.com/atinyakov/VeriFlow/internal/models"
)

// MaxDocumentSizeMB is the per-file upload limit.
const MaxDocumentSizeMB = 10

const maxDocumentBytes = MaxDocumentSizeMB * 1024 * 1024

// MinPasswordLength is the account password floor.
const MinPasswordLength = 8

var allowedDocumentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/jpg":  true,
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateDocumentFile checks one document image locally, before any
// network call. side is "front" or "back", used in messages. Returns a
// user-facing message, or "" when valid.
func ValidateDocumentFile(side string, f models.DocumentFile) string {
	if !allowedDocumentTypes[f.MIME] {
		return fmt.Sprintf("Invalid file type for %s (%s). Please upload a JPG or PNG image.", side, f.MIME)
	}
	if f.Size() > maxDocumentBytes {
		return fmt.Sprintf("File size for %s exceeds %dMB limit (%.2fMB).",
			side, MaxDocumentSizeMB, float64(f.Size())/1024/1024)
	}
	return ""
}

// ValidateBundle checks a full document selection: front mandatory,
// back optional, both within type and size limits.
func ValidateBundle(b models.DocumentBundle) string {
	if len(b.Front.Data) == 0 {
		return "Please upload the front of your document."
	}
	if msg := ValidateDocumentFile("front", b.Front); msg != "" {
		return msg
	}
	if b.Back != nil {
		if msg := ValidateDocumentFile("back", *b.Back); msg != "" {
			return msg
		}
	}
	return ""
}

// AccountForm holds the account-step input fields.
type AccountForm struct {
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate checks the form locally. Returns a user-facing message, or
// "" when the form is valid.
func (f AccountForm) Validate() string {
	if f.Email == "" || f.Password == "" || f.ConfirmPassword == "" {
		return "All fields are required."
	}
	if !emailPattern.MatchString(f.Email) {
		return "Please enter a valid email address."
	}
	if len(f.Password) < MinPasswordLength {
		return fmt.Sprintf("Password must be at least %d characters long.", MinPasswordLength)
	}
	if f.Password != f.ConfirmPassword {
		return "Passwords do not match."
	}
	return ""
}

// IsSubmitDisabled mirrors the derived submit-button state: disabled
// while any field is empty, the password is short, or the confirmation
// does not match.
func (f AccountForm) IsSubmitDisabled() bool {
	return f.Email == "" || f.Password == "" || f.ConfirmPassword == "" ||
		f.Password != f.ConfirmPassword || len(f.Password) < MinPasswordLength
}
