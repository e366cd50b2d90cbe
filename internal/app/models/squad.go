package models

import (
	"time"

	"github.com/google/uuid"
)

// Squad is a group of users planning to register together
type Squad struct {
	ID                    uuid.UUID  `db:"id"`
	Name                  string     `db:"name"`
	Description           string     `db:"description"`
	MaxMembers            *int       `db:"max_members"`
	County                string     `db:"county"`
	IsPublic              bool       `db:"is_public"`
	VoterRegistrationDate time.Time  `db:"voter_registration_date"`
	RegistrationCenterID  *uuid.UUID `db:"registration_center_id"`
	OwnerID               uuid.UUID  `db:"owner_id"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

// SquadCounts holds the aggregates computed fields are derived from
type SquadCounts struct {
	Members    int
	Registered int
}

// SquadWithStats is a squad together with its membership aggregates
type SquadWithStats struct {
	Squad
	SquadCounts
	CenterName string
}

// Membership links a user to a squad
type Membership struct {
	ID            uuid.UUID `db:"id"`
	UserID        uuid.UUID `db:"user_id"`
	SquadID       uuid.UUID `db:"squad_id"`
	Role          Role      `db:"role"`
	HasRegistered bool      `db:"has_registered"`
	JoinedAt      time.Time `db:"joined_at"`

	// Joined for list responses
	SquadName string
	User      *User
}
