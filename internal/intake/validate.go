package intake

import (
	"errors"
	"regexp"
	"unicode/utf8"

	"github.com/quicklaunchweb/leadrelay/internal/site"
)

// maxMessageLength caps the optional free-text message.
const maxMessageLength = 5000

var (
	namePattern = regexp.MustCompile(`^[A-Za-z\s\-']{2,50}$`)
	zipPattern  = regexp.MustCompile(`^\d{5}$`)
)

// Validation errors double as the user-facing 400 messages.
var (
	ErrMissingAddressFields = errors.New("Please provide your name, phone, address, zip code, and service needed.")
	ErrMissingEmailFields   = errors.New("Please provide your name, phone, email, and service needed.")
	ErrInvalidName          = errors.New("Name should contain only letters, spaces, and hyphens (2-50 characters).")
	ErrInvalidPhone         = errors.New("Please enter a valid 10-digit phone number.")
	ErrInvalidZip           = errors.New("Please enter a valid 5-digit zip code.")
	ErrMessageTooLong       = errors.New("Message is too long. Please keep it under 5000 characters.")
)

// ValidateLead enforces the required-field and format rules for a site's
// contact variant. Validation is fail-fast: the first violated rule is the
// error returned. Format rules only apply when the profile enables them; the
// email-variant site checks presence only.
func ValidateLead(lead Lead, profile site.Profile) error {
	switch profile.Variant {
	case site.VariantEmail:
		if lead.Name == "" || lead.Phone == "" || lead.Email == "" || lead.Service == "" {
			return ErrMissingEmailFields
		}
	default:
		if lead.Name == "" || lead.Phone == "" || lead.Address == "" || lead.ZipCode == "" || lead.Service == "" {
			return ErrMissingAddressFields
		}
	}

	if !profile.StrictFormats {
		return nil
	}

	if !namePattern.MatchString(lead.Name) {
		return ErrInvalidName
	}
	if n := len(digitsOnly(lead.Phone)); n < 10 || n > 11 {
		return ErrInvalidPhone
	}
	if !zipPattern.MatchString(lead.ZipCode) {
		return ErrInvalidZip
	}
	if utf8.RuneCountInString(lead.Message) > maxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// digitsOnly strips everything but ASCII digits.
func digitsOnly(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
