package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateEventRequest schedules a squad meetup at a center
type CreateEventRequest struct {
	SquadID      uuid.UUID `json:"squad_id" binding:"required" swaggertype:"string" format:"uuid"`
	CenterID     uuid.UUID `json:"center_id" binding:"required" swaggertype:"string" format:"uuid"`
	Datetime     time.Time `json:"datetime" binding:"required" example:"2025-08-01T09:00:00Z"`
	MeetingPoint string    `json:"meeting_point" binding:"omitempty,max=255" example:"Main gate"`
	Note         string    `json:"note" binding:"omitempty,max=2000"`
}

// UpdateEventRequest changes an event; nil fields are left untouched
type UpdateEventRequest struct {
	CenterID     *uuid.UUID `json:"center_id" swaggertype:"string" format:"uuid"`
	Datetime     *time.Time `json:"datetime"`
	MeetingPoint *string    `json:"meeting_point" binding:"omitempty,max=255"`
	Note         *string    `json:"note" binding:"omitempty,max=2000"`
}

// EventResponse is the public view of an event
type EventResponse struct {
	ID           string    `json:"id"`
	SquadID      string    `json:"squad_id"`
	SquadName    string    `json:"squad_name,omitempty"`
	CenterID     string    `json:"center_id"`
	CenterName   string    `json:"center_name,omitempty"`
	Datetime     time.Time `json:"datetime"`
	MeetingPoint string    `json:"meeting_point"`
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"created_at"`
}

// RSVPRequest answers an event; a missing status keeps the current one
type RSVPRequest struct {
	Status *string `json:"status" binding:"omitempty,oneof=yes no maybe" example:"yes" enums:"yes,no,maybe"`
}

// RSVPResponse is the public view of an RSVP
type RSVPResponse struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status" example:"yes"`
	RespondedAt time.Time `json:"responded_at"`
}

// EventFilter narrows an event listing
type EventFilter struct {
	SquadID  *uuid.UUID
	From     *time.Time
	Page     int
	PageSize int
}

// EventListResponse is one page of events
type EventListResponse struct {
	Events     []EventResponse `json:"events"`
	Pagination PaginationInfo  `json:"pagination"`
}
