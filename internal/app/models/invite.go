package models

import (
	"time"

	"github.com/google/uuid"
)

// Invite records one outbound contact attempt
type Invite struct {
	ID             uuid.UUID     `db:"id"`
	InviterID      uuid.UUID     `db:"inviter_id"`
	InviteeContact string        `db:"invitee_contact"`
	Channel        InviteChannel `db:"channel"`
	Status         InviteStatus  `db:"status"`
	SquadID        *uuid.UUID    `db:"squad_id"`
	EventID        *uuid.UUID    `db:"event_id"`
	Message        string        `db:"message"`
	SentAt         time.Time     `db:"sent_at"`
	DeliveredAt    *time.Time    `db:"delivered_at"`
}
