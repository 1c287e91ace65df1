package service

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/spec-kit/recruitment-crm/internal/auth"
	apperrors "github.com/spec-kit/recruitment-crm/pkg/util/errorutil"
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
	maxExperience  = 70
)

// fieldErrors collects per-field validation messages.
type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		f.add(field, "is required")
	}
}

func (f fieldErrors) maxLen(field, value string, max int) {
	if len(value) > max {
		f.add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func (f fieldErrors) email(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		f.add(field, "is required")
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || !strings.Contains(value[strings.LastIndex(value, "@")+1:], ".") {
		f.add(field, "must be a valid email address")
	}
}

func (f fieldErrors) phone(field, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	digits := 0
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case strings.ContainsRune(" +-().", r):
		default:
			f.add(field, "may only contain digits, spaces and + - ( ) .")
			return
		}
	}
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		f.add(field, fmt.Sprintf("must contain %d to %d digits", minPhoneDigits, maxPhoneDigits))
	}
}

func (f fieldErrors) url(field, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	parsed, err := url.Parse(value)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		f.add(field, "must be an http or https URL")
	}
}

func (f fieldErrors) experience(field string, value *int) {
	if value != nil && (*value < 0 || *value > maxExperience) {
		f.add(field, fmt.Sprintf("must be between 0 and %d", maxExperience))
	}
}

func (f fieldErrors) password(field, value string) {
	if len(value) < auth.MinPasswordLength {
		f.add(field, fmt.Sprintf("must be at least %d characters", auth.MinPasswordLength))
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	fields := make(map[string]any, len(f))
	for k, v := range f {
		fields[k] = v
	}
	return apperrors.NewValidationError("validation failed", map[string]any{"fields": fields})
}

func trimmed(value string) string {
	return strings.TrimSpace(value)
}
