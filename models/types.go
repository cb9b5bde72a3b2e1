package models

import "time"

// Event status constants
const (
	StatusOpen  = "open"
	StatusDrawn = "drawn"
)

// Request types

type CreateEventRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=100"`
	GroupExclusion bool   `json:"group_exclusion"`
}

// nil fields are left unchanged
type UpdateEventRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=100"`
	GroupExclusion *bool   `json:"group_exclusion"`
}

type SetStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type CreatePersonRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	LookupKey string `json:"lookup_key" validate:"required,min=3,max=64"`
	GroupID   int64  `json:"group_id" validate:"required,gt=0"`
}

type RevealRequest struct {
	LookupKey string `json:"lookup_key" validate:"required"`
}

// Response types

type CreateEventResponse struct {
	EventID  int64  `json:"event_id"`
	AdminKey string `json:"admin_key"`
}

type CreateGroupResponse struct {
	GroupID int64 `json:"group_id"`
}

type CreatePersonResponse struct {
	PersonID int64 `json:"person_id"`
}

type StatusResponse struct {
	Status  string     `json:"status"`
	RunID   string     `json:"run_id,omitempty"`
	DrawnAt *time.Time `json:"drawn_at,omitempty"`
}

// RevealResponse carries display names only
type RevealResponse struct {
	Participant string `json:"participant"`
	Recipient   string `json:"recipient"`
	Drawn       string `json:"drawn,omitempty"`
}

type EventDetails struct {
	Event  Event    `json:"event"`
	Groups []Group  `json:"groups"`
	People []Person `json:"people"`
}

// Domain types

type Event struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	GroupExclusion bool       `json:"group_exclusion"`
	Status         string     `json:"status"`
	DrawnAt        *time.Time `json:"drawn_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type Group struct {
	ID      int64  `json:"id"`
	EventID int64  `json:"event_id"`
	Name    string `json:"name"`
}

type Person struct {
	ID             int64     `json:"id"`
	EventID        int64     `json:"event_id"`
	GroupID        int64     `json:"group_id"`
	Name           string    `json:"name"`
	LookupKey      string    `json:"-"` // Never expose in JSON
	RecipientToken string    `json:"-"` // Never expose in JSON
	HasRecipient   bool      `json:"has_recipient"`
	CreatedAt      time.Time `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
