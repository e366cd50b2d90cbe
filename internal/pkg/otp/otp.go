// Package otp issues and checks the one-time codes used for phone login.
// Delivery is stubbed: the only Checker shipped accepts a single configured code.
package otp

import (
	"context"
	"crypto/subtle"
	"errors"
)

// ErrInvalidCode is returned when a submitted code does not match.
var ErrInvalidCode = errors.New("invalid verification code")

// Checker issues codes for a phone number and verifies submitted ones.
type Checker interface {
	Issue(ctx context.Context, phoneNumber string) (string, error)
	Verify(ctx context.Context, phoneNumber, code string) error
}

// DefaultStaticCode is used when no code is configured.
const DefaultStaticCode = "123456"

// StaticChecker accepts one fixed code for every phone number.
type StaticChecker struct {
	code string
}

// NewStaticChecker returns a checker bound to code, or DefaultStaticCode when empty.
func NewStaticChecker(code string) *StaticChecker {
	if code == "" {
		code = DefaultStaticCode
	}
	return &StaticChecker{code: code}
}

func (s *StaticChecker) Issue(_ context.Context, _ string) (string, error) {
	return s.code, nil
}

func (s *StaticChecker) Verify(_ context.Context, _ string, code string) error {
	if subtle.ConstantTimeCompare([]byte(code), []byte(s.code)) != 1 {
		return ErrInvalidCode
	}
	return nil
}
