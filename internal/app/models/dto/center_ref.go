package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CenterRefKind says how a squad names its registration center
type CenterRefKind int

const (
	// CenterRefNone means the squad has no center
	CenterRefNone CenterRefKind = iota
	// CenterRefByID points at an existing center
	CenterRefByID
	// CenterRefInline describes a center to look up or create
	CenterRefInline
)

// InlineCenter is an inline center descriptor
type InlineCenter struct {
	Name         string `json:"name"`
	County       string `json:"county"`
	Constituency string `json:"constituency"`
	Ward         string `json:"ward"`
	Address      string `json:"address"`
}

// CenterRef is the decoded registration_center field of a squad request.
// It accepts null, a center id string, or an inline descriptor object.
type CenterRef struct {
	Kind CenterRefKind
	// ID is uuid.Nil when RawID could not be parsed
	ID     uuid.UUID
	RawID  string
	Inline *InlineCenter
}

// IsSet reports whether any center was supplied
func (r CenterRef) IsSet() bool {
	return r.Kind != CenterRefNone
}

// UnmarshalJSON implements json.Unmarshaler
func (r *CenterRef) UnmarshalJSON(data []byte) error {
	*r = CenterRef{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '"':
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
		r.Kind = CenterRefByID
		r.RawID = raw
		if id, err := uuid.Parse(raw); err == nil {
			r.ID = id
		}
		return nil

	case '{':
		var inline InlineCenter
		if err := json.Unmarshal(trimmed, &inline); err != nil {
			return err
		}
		if inline == (InlineCenter{}) {
			return nil
		}
		r.Kind = CenterRefInline
		r.Inline = &inline
		return nil
	}

	return fmt.Errorf("registration_center must be a center id or an object")
}

// MarshalJSON implements json.Marshaler
func (r CenterRef) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case CenterRefByID:
		return json.Marshal(r.RawID)
	case CenterRefInline:
		return json.Marshal(r.Inline)
	default:
		return []byte("null"), nil
	}
}
