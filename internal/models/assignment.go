package models

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentState classifies an assignment relative to a point in time.
// It is a read-time concept and never stored.
type AssignmentState string

const (
	AssignmentLive      AssignmentState = "LIVE"
	AssignmentUpcoming  AssignmentState = "UPCOMING"
	AssignmentCompleted AssignmentState = "COMPLETED"
)

// Assignment books an ad onto a device for a client over a bounded time
// window. Windows are half-open: [StartTime, EndTime). For any one device
// no two assignments may overlap.
type Assignment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	ClientID uuid.UUID `json:"clientId" db:"client_id"`
	DeviceID uuid.UUID `json:"deviceId" db:"device_id"`
	AdID     uuid.UUID `json:"adId" db:"ad_id"`

	StartTime time.Time `json:"startTime" db:"start_time"`
	EndTime   time.Time `json:"endTime" db:"end_time"`

	// Relations, populated by list queries
	Client *AgencyClient `json:"client,omitempty"`
	Device *Device       `json:"device,omitempty"`
	Ad     *Ad           `json:"ad,omitempty"`
}

// Overlaps reports whether the assignment's window intersects
// [start, end) on the half-open interval test.
func (a *Assignment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && a.EndTime.After(start)
}

// State classifies the assignment at time now.
func (a *Assignment) State(now time.Time) AssignmentState {
	if !now.Before(a.EndTime) {
		return AssignmentCompleted
	}
	if !now.Before(a.StartTime) {
		return AssignmentLive
	}
	return AssignmentUpcoming
}
