package models

import (
	"time"

	"github.com/google/uuid"
)

// Ad represents an uploaded video advertisement owned by an agency.
type Ad struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	AgencyID uuid.UUID `json:"agencyId" db:"agency_id"`

	Title   string `json:"title" db:"title"`
	FileURL string `json:"fileUrl" db:"file_url"`
}
