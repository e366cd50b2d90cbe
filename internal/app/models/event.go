package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a meetup of a squad at a center
type Event struct {
	ID           uuid.UUID `db:"id"`
	SquadID      uuid.UUID `db:"squad_id"`
	CenterID     uuid.UUID `db:"center_id"`
	Datetime     time.Time `db:"datetime"`
	MeetingPoint string    `db:"meeting_point"`
	Note         string    `db:"note"`
	CreatedAt    time.Time `db:"created_at"`

	SquadName  string
	CenterName string
}

// RSVP is one user's response to one event
type RSVP struct {
	ID          uuid.UUID  `db:"id"`
	EventID     uuid.UUID  `db:"event_id"`
	UserID      uuid.UUID  `db:"user_id"`
	Status      RSVPStatus `db:"status"`
	RespondedAt time.Time  `db:"responded_at"`
}
