package validation

import "testing"

func TestIsValidPhone(t *testing.T) {
	tests := map[string]bool{
		"+254712345678":     true,
		"0712 345 678":      true,
		"0712-345-678":      true,
		"12345":             false,
		"+2547123456789012": false,
		"phone":             false,
		"":                  false,
	}
	for in, want := range tests {
		if got := IsValidPhone(in); got != want {
			t.Errorf("IsValidPhone(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		" 0712 345-678 ":   "+254712345678",
		"0712345678":       "+254712345678",
		"254712345678":     "+254712345678",
		"+254712345678":    "+254712345678",
		"+44 20 7946 0958": "+442079460958",
		"12345":            "12345",
	}
	for in, want := range tests {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsValidPassword(t *testing.T) {
	if IsValidPassword("short") {
		t.Error("short password should fail")
	}
	if IsValidPassword("  abc   ") {
		t.Error("padding should not count towards the minimum")
	}
	if !IsValidPassword("Str0ngPass!") {
		t.Error("expected long password to pass")
	}
}

func TestIsValidEmail(t *testing.T) {
	if !IsValidEmail("amani@example.com") {
		t.Error("expected valid email")
	}
	if IsValidEmail("not-an-email") {
		t.Error("expected invalid email")
	}
}

func TestStringValidation(t *testing.T) {
	if NewStringValidation("  ").Validate() {
		t.Error("blank required value should fail")
	}
	if !NewStringValidation("").WithRequired(false).Validate() {
		t.Error("blank optional value should pass")
	}
	if NewStringValidation("abcdef").WithMaxLength(3).Validate() {
		t.Error("value over max length should fail")
	}
	if NewStringValidation("ab").WithMinLength(3).Validate() {
		t.Error("value under min length should fail")
	}
	if NewStringValidation("abc").WithPattern(CompiledPatterns.Phone).Validate() {
		t.Error("value not matching pattern should fail")
	}
}
