package otp

import (
	"context"
	"errors"
	"testing"
)

func TestStaticChecker(t *testing.T) {
	ctx := context.Background()
	c := NewStaticChecker("")

	code, err := c.Issue(ctx, "+254700000001")
	if err != nil {
		t.Fatal(err)
	}
	if code != DefaultStaticCode {
		t.Fatalf("Issue = %q, want %q", code, DefaultStaticCode)
	}

	if err := c.Verify(ctx, "+254700000001", "123456"); err != nil {
		t.Errorf("Verify with correct code: %v", err)
	}
	if err := c.Verify(ctx, "+254700000001", "000000"); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("Verify with wrong code = %v, want ErrInvalidCode", err)
	}
}

func TestStaticCheckerCustomCode(t *testing.T) {
	c := NewStaticChecker("424242")
	if err := c.Verify(context.Background(), "x", "123456"); err == nil {
		t.Error("default code must not be accepted when a custom code is configured")
	}
}

func TestNoopLimiter(t *testing.T) {
	ok, err := NoopLimiter{}.Allow(context.Background(), "k")
	if !ok || err != nil {
		t.Fatalf("NoopLimiter.Allow = %v, %v", ok, err)
	}
}
