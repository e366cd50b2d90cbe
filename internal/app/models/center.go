package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Center is a physical registration or polling location
type Center struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	County             string          `json:"county" db:"county"`
	Constituency       string          `json:"constituency" db:"constituency"`
	Ward               string          `json:"ward" db:"ward"`
	PollingStationName string          `json:"polling_station_name" db:"polling_station_name"`
	Address            string          `json:"address" db:"address"`
	Lat                *float64        `json:"lat,omitempty" db:"lat"`
	Lng                *float64        `json:"lng,omitempty" db:"lng"`
	OpeningHours       json.RawMessage `json:"opening_hours" db:"opening_hours"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}
