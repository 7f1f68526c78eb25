package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceStatus represents the lifecycle state of a display device.
type DeviceStatus string

const (
	DeviceActive      DeviceStatus = "ACTIVE"
	DeviceInactive    DeviceStatus = "INACTIVE"
	DeviceMaintenance DeviceStatus = "MAINTENANCE"
)

// Valid reports whether the status is one of the known values.
func (s DeviceStatus) Valid() bool {
	switch s {
	case DeviceActive, DeviceInactive, DeviceMaintenance:
		return true
	}
	return false
}

// Device represents a physical or virtual display player.
//
// Devices are created by a master, assigned to an agency and optionally
// further assigned to one of that agency's clients. The player channel
// authenticates with the per-device secret key instead of a session token.
type Device struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	UUID        string  `json:"uuid" db:"uuid"`
	Name        string  `json:"name" db:"name"`
	Model       string  `json:"model" db:"model"`
	Size        string  `json:"size" db:"size"`
	Latitude    float64 `json:"latitude" db:"latitude"`
	Longitude   float64 `json:"longitude" db:"longitude"`
	APIEndpoint string  `json:"apiEndpoint" db:"api_endpoint"`

	PublicKey string `json:"publicKey" db:"public_key"`
	SecretKey string `json:"-" db:"secret_key"`

	Status DeviceStatus `json:"status" db:"status"`

	MasterID uuid.UUID  `json:"masterId" db:"master_id"`
	AgencyID uuid.UUID  `json:"agencyId" db:"agency_id"`
	ClientID *uuid.UUID `json:"clientId,omitempty" db:"client_id"`
}
