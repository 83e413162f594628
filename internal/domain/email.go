package domain

import (
	"strings"

	"github.com/phrazzld/signup/internal/result"
)

// MaxEmailLength is the longest address accepted, per the SMTP path limit.
const MaxEmailLength = 254

// Email is a lower-cased email address that passed NewEmail's rules.
// The zero value is not a valid Email.
type Email struct {
	value string
}

// NewEmail validates raw and returns the normalized Email, or the first
// violated rule as a ValidationError. Rules are checked in a fixed order.
func NewEmail(raw string) result.Result[Email, ValidationError] {
	value := strings.TrimSpace(raw)

	if value == "" {
		return fail[Email](FieldEmail, "email cannot be empty")
	}

	if strings.Count(value, "@") != 1 {
		return fail[Email](FieldEmail, "email must contain exactly one @")
	}

	local, domainPart, _ := strings.Cut(value, "@")
	if local == "" {
		return fail[Email](FieldEmail, "email is missing the part before @")
	}
	if domainPart == "" {
		return fail[Email](FieldEmail, "email is missing the domain after @")
	}
	if !strings.Contains(domainPart, ".") {
		return fail[Email](FieldEmail, "email domain must have a domain extension (e.g. .com)")
	}
	if strings.HasPrefix(domainPart, ".") || strings.HasSuffix(domainPart, ".") {
		return fail[Email](FieldEmail, "email domain cannot start or end with .")
	}
	if len(value) > MaxEmailLength {
		return fail[Email](FieldEmail, "email must be at most 254 characters long")
	}

	return result.Ok[Email, ValidationError](Email{value: strings.ToLower(value)})
}

// String returns the normalized address.
func (e Email) String() string {
	return e.value
}

// Domain returns the part after @.
func (e Email) Domain() string {
	_, d, _ := strings.Cut(e.value, "@")
	return d
}

// Equals compares two addresses by value.
func (e Email) Equals(other Email) bool {
	return e.value == other.value
}

// IsZero reports whether e was never produced by NewEmail.
func (e Email) IsZero() bool {
	return e.value == ""
}

// MarshalText lets an Email serialize as a plain JSON string.
func (e Email) MarshalText() ([]byte, error) {
	return []byte(e.value), nil
}

func fail[T any](field, reason string) result.Result[T, ValidationError] {
	return result.Fail[T](invalid(field, reason))
}
