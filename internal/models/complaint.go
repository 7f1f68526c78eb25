package models

import (
	"time"

	"github.com/google/uuid"
)

// ComplaintStatus represents the resolution state of a complaint.
type ComplaintStatus string

const (
	ComplaintPending  ComplaintStatus = "PENDING"
	ComplaintResolved ComplaintStatus = "RESOLVED"
	ComplaintRejected ComplaintStatus = "REJECTED"
)

// Valid reports whether the status is one of the known values.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintPending, ComplaintResolved, ComplaintRejected:
		return true
	}
	return false
}

// ClientComplaint is a message from an agency client to its agency.
// The submitter may edit the message only while the status is PENDING;
// the agency sets the reply and status.
type ClientComplaint struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	ClientID uuid.UUID `json:"clientId" db:"client_id"`
	AgencyID uuid.UUID `json:"agencyId" db:"agency_id"`

	Message string          `json:"message" db:"message"`
	Reply   string          `json:"reply,omitempty" db:"reply"`
	Status  ComplaintStatus `json:"status" db:"status"`

	Client *AgencyClient `json:"client,omitempty"`
}

// AgencyComplaint is a message from an agency to its master. Same state
// machine as ClientComplaint, one level up the tenant hierarchy.
type AgencyComplaint struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	AgencyID uuid.UUID `json:"agencyId" db:"agency_id"`
	MasterID uuid.UUID `json:"masterId" db:"master_id"`

	Message string          `json:"message" db:"message"`
	Reply   string          `json:"reply,omitempty" db:"reply"`
	Status  ComplaintStatus `json:"status" db:"status"`

	Agency *Agency `json:"agency,omitempty"`
}
