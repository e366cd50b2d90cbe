package dto

import (
	"encoding/json"
	"time"

	"github.com/Simoh8/pamoja-vote/internal/app/models"
)

// CreateCenterRequest adds a center to the directory
type CreateCenterRequest struct {
	Name               string          `json:"name" binding:"required,max=255" example:"Uhuru Primary"`
	County             string          `json:"county" binding:"required,max=100" example:"Nairobi"`
	Constituency       string          `json:"constituency" binding:"omitempty,max=100" example:"Starehe"`
	Ward               string          `json:"ward" binding:"omitempty,max=100" example:"Pangani"`
	PollingStationName string          `json:"polling_station_name" binding:"omitempty,max=255"`
	Address            string          `json:"address" binding:"required" example:"Juja Road, Nairobi"`
	Lat                *float64        `json:"lat" binding:"omitempty,latitude" example:"-1.2697"`
	Lng                *float64        `json:"lng" binding:"omitempty,longitude" example:"36.8386"`
	OpeningHours       json.RawMessage `json:"opening_hours" swaggertype:"object"`
}

// UpdateCenterRequest changes a center; nil fields are left untouched
type UpdateCenterRequest struct {
	Name               *string         `json:"name" binding:"omitempty,min=1,max=255"`
	County             *string         `json:"county" binding:"omitempty,min=1,max=100"`
	Constituency       *string         `json:"constituency" binding:"omitempty,max=100"`
	Ward               *string         `json:"ward" binding:"omitempty,max=100"`
	PollingStationName *string         `json:"polling_station_name" binding:"omitempty,max=255"`
	Address            *string         `json:"address" binding:"omitempty,min=1"`
	Lat                *float64        `json:"lat" binding:"omitempty,latitude"`
	Lng                *float64        `json:"lng" binding:"omitempty,longitude"`
	OpeningHours       json.RawMessage `json:"opening_hours" swaggertype:"object"`
}

// CenterFilter narrows a center listing
type CenterFilter struct {
	County   string
	Search   string
	Page     int
	PageSize int
}

// NearbyCentersQuery lists centers around a coordinate
type NearbyCentersQuery struct {
	Lat      float64 `form:"lat" binding:"required,latitude"`
	Lng      float64 `form:"lng" binding:"required,longitude"`
	RadiusKM float64 `form:"radius_km" binding:"omitempty,gt=0,max=500"`
	Limit    int     `form:"limit" binding:"omitempty,min=1,max=100"`
}

// CenterResponse is the public view of a center
type CenterResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name" example:"Uhuru Primary"`
	County             string          `json:"county" example:"Nairobi"`
	Constituency       string          `json:"constituency"`
	Ward               string          `json:"ward" example:"Unknown"`
	PollingStationName string          `json:"polling_station_name"`
	Address            string          `json:"address" example:"Uhuru Primary, Unknown"`
	Lat                *float64        `json:"lat,omitempty"`
	Lng                *float64        `json:"lng,omitempty"`
	OpeningHours       json.RawMessage `json:"opening_hours,omitempty" swaggertype:"object"`
	DistanceKM         *float64        `json:"distance_km,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// CenterListResponse is one page of centers
type CenterListResponse struct {
	Centers    []CenterResponse `json:"centers"`
	Pagination PaginationInfo   `json:"pagination"`
}

// NewCenterResponse maps a center model onto its response
func NewCenterResponse(c *models.Center) CenterResponse {
	return CenterResponse{
		ID:                 c.ID.String(),
		Name:               c.Name,
		County:             c.County,
		Constituency:       c.Constituency,
		Ward:               c.Ward,
		PollingStationName: c.PollingStationName,
		Address:            c.Address,
		Lat:                c.Lat,
		Lng:                c.Lng,
		OpeningHours:       c.OpeningHours,
		CreatedAt:          c.CreatedAt,
	}
}
