package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateInviteRequest records one invite
type CreateInviteRequest struct {
	InviteeContact string     `json:"invitee_contact" binding:"required,phone" example:"+254712345678"`
	Channel        string     `json:"channel" binding:"required,oneof=whatsapp sms" example:"whatsapp"`
	SquadID        *uuid.UUID `json:"squad_id" swaggertype:"string" format:"uuid"`
	EventID        *uuid.UUID `json:"event_id" swaggertype:"string" format:"uuid"`
	Message        string     `json:"message" binding:"omitempty,max=1000"`
}

// BulkInviteRequest invites many contacts to one squad or event
type BulkInviteRequest struct {
	PhoneNumbers []string   `json:"phone_numbers" binding:"required,min=1,max=200"`
	SquadID      *uuid.UUID `json:"squad_id" swaggertype:"string" format:"uuid"`
	EventID      *uuid.UUID `json:"event_id" swaggertype:"string" format:"uuid"`
	Channel      string     `json:"channel" binding:"omitempty,oneof=whatsapp sms" example:"whatsapp"`
}

// WhatsAppInviteRequest is a bulk invite fixed to the WhatsApp channel
type WhatsAppInviteRequest struct {
	PhoneNumbers []string   `json:"phone_numbers" binding:"required,min=1,max=200"`
	SquadID      *uuid.UUID `json:"squad_id" swaggertype:"string" format:"uuid"`
	EventID      *uuid.UUID `json:"event_id" swaggertype:"string" format:"uuid"`
}

// InviteResponse is the public view of an invite
type InviteResponse struct {
	ID             string     `json:"id"`
	InviterID      string     `json:"inviter_id"`
	InviteeContact string     `json:"invitee_contact" example:"+254712345678"`
	Channel        string     `json:"channel" example:"whatsapp"`
	Status         string     `json:"status" example:"sent"`
	SquadID        *string    `json:"squad_id"`
	EventID        *string    `json:"event_id"`
	Message        string     `json:"message"`
	SentAt         time.Time  `json:"sent_at"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
}

// BulkInviteResponse reports how many invites were recorded
type BulkInviteResponse struct {
	Message string           `json:"message" example:"Created 3 invites"`
	Count   int              `json:"count" example:"3"`
	Invites []InviteResponse `json:"invites"`
	Skipped []string         `json:"skipped,omitempty"`
}

// InviteListResponse is one page of invites
type InviteListResponse struct {
	Invites    []InviteResponse `json:"invites"`
	Pagination PaginationInfo   `json:"pagination"`
}
