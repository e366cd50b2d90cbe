package auth

import "github.com/google/uuid"

// Identity is the authenticated caller every protected operation receives.
type Identity struct {
	UserID      uuid.UUID
	PhoneNumber string
}

// IsZero reports whether the identity was never populated.
func (i Identity) IsZero() bool {
	return i.UserID == uuid.Nil
}
