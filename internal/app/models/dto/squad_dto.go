package dto

import (
	"time"
)

// CreateSquadRequest creates a squad owned by the caller
type CreateSquadRequest struct {
	Name                  string    `json:"name" binding:"required,max=255" example:"Westlands Youth"`
	Description           string    `json:"description" binding:"omitempty,max=2000"`
	MaxMembers            *int      `json:"max_members" binding:"omitempty,gt=0,max=10000" example:"5"`
	County                string    `json:"county" binding:"required,max=100" example:"Nairobi"`
	IsPublic              *bool     `json:"is_public" example:"true"`
	VoterRegistrationDate string    `json:"voter_registration_date" binding:"required,datetime=2006-01-02" example:"2025-08-01"`
	RegistrationCenter    CenterRef `json:"registration_center" swaggertype:"object"`
}

// UpdateSquadRequest changes a squad; nil fields are left untouched
type UpdateSquadRequest struct {
	Name                  *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description           *string `json:"description" binding:"omitempty,max=2000"`
	MaxMembers            *int    `json:"max_members" binding:"omitempty,gt=0,max=10000"`
	County                *string `json:"county" binding:"omitempty,min=1,max=100"`
	IsPublic              *bool   `json:"is_public"`
	VoterRegistrationDate *string `json:"voter_registration_date" binding:"omitempty,datetime=2006-01-02"`
}

// SquadFilter narrows a squad listing
type SquadFilter struct {
	County   string
	Page     int
	PageSize int
}

// SquadResponse is the public view of a squad with its computed fields
type SquadResponse struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name" example:"Westlands Youth"`
	Description            string    `json:"description"`
	MaxMembers             *int      `json:"max_members" example:"5"`
	County                 string    `json:"county" example:"Nairobi"`
	IsPublic               bool      `json:"is_public" example:"true"`
	VoterRegistrationDate  string    `json:"voter_registration_date" example:"2025-08-01"`
	RegistrationCenter     *string   `json:"registration_center"`
	RegistrationCenterName string    `json:"registration_center_name,omitempty" example:"Uhuru Primary"`
	Owner                  string    `json:"owner"`
	MemberCount            int       `json:"member_count" example:"2"`
	RemainingSlots         *int      `json:"remaining_slots" example:"3"`
	RegistrationProgress   float64   `json:"registration_progress" example:"50"`
	CreatedAt              time.Time `json:"created_at"`
}

// SquadListResponse is one page of squads
type SquadListResponse struct {
	Squads     []SquadResponse `json:"squads"`
	Pagination PaginationInfo  `json:"pagination"`
}

// LeaderboardEntry ranks a squad by membership
type LeaderboardEntry struct {
	SquadID              string    `json:"squad_id"`
	County               string    `json:"county" example:"Nairobi"`
	SquadName            string    `json:"squad_name" example:"Westlands Youth"`
	MemberCount          int       `json:"member_count" example:"12"`
	RegistrationProgress float64   `json:"registration_progress" example:"75"`
	CreatedAt            time.Time `json:"created_at"`
}

// MembershipResponse is the public view of a membership
type MembershipResponse struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	SquadID       string        `json:"squad_id"`
	SquadName     string        `json:"squad_name,omitempty"`
	Role          string        `json:"role" example:"member" enums:"member,leader"`
	HasRegistered bool          `json:"has_registered" example:"false"`
	JoinedAt      time.Time     `json:"joined_at"`
	User          *UserResponse `json:"user,omitempty"`
}

// ChangeRoleRequest sets a membership's role
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required" example:"leader" enums:"member,leader"`
}

// UpdateRegistrationStatusRequest records whether the member has registered to vote
type UpdateRegistrationStatusRequest struct {
	HasRegistered *bool `json:"has_registered" binding:"required" example:"true"`
}
