package validation

import (
	"regexp"
	"strings"

	"github.com/badoux/checkmail"
)

// Validation rule patterns
var (
	// PhonePattern accepts an optional leading + followed by 9 to 14 digits,
	// which keeps the stored value within 15 characters.
	PhonePattern = `^\+?[0-9]{9,14}$`

	PasswordMinLength = 8

	NameMaxLength    = 255
	ContactMaxLength = 15
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Phone *regexp.Regexp
}{
	Phone: regexp.MustCompile(PhonePattern),
}

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

const kenyaCallingCode = "254"

// NormalizePhone strips common separators and rewrites Kenyan local forms
// (0712345678, 254712345678) to E.164, so every spelling of a number maps to
// one account.
func NormalizePhone(raw string) string {
	phone := phoneSeparators.Replace(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(phone, "+"):
		return phone
	case len(phone) == 10 && strings.HasPrefix(phone, "0"):
		return "+" + kenyaCallingCode + phone[1:]
	case len(phone) == 12 && strings.HasPrefix(phone, kenyaCallingCode):
		return "+" + phone
	}
	return phone
}

// IsValidPhone reports whether raw, once normalized, is an acceptable phone number.
func IsValidPhone(raw string) bool {
	return NewStringValidation(NormalizePhone(raw)).
		WithMaxLength(ContactMaxLength).
		WithPattern(CompiledPatterns.Phone).
		Validate()
}

// IsValidPassword enforces the minimum password length.
func IsValidPassword(password string) bool {
	return NewStringValidation(password).WithMinLength(PasswordMinLength).Validate()
}

// IsValidEmail checks address syntax only; no MX or SMTP lookups are made.
func IsValidEmail(email string) bool {
	return checkmail.ValidateFormat(email) == nil
}

// StringValidation is a small builder for ad-hoc string checks
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    strings.TrimSpace(value),
		Required: true,
	}
}

func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Value == "" {
		return !v.Required
	}

	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}

	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}

	return true
}
