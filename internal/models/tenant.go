package models

import (
	"time"

	"github.com/google/uuid"
)

// Master represents a platform operator account. Masters own agencies
// and the device fleet.
type Master struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`

	PasswordHash string `json:"-" db:"password_hash"`
}

// Agency represents a reseller account. Agencies own clients, ads and
// the devices assigned to them by a master.
type Agency struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	MasterID uuid.UUID `json:"masterId" db:"master_id"`

	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
	Phone string `json:"phone" db:"phone"`

	PasswordHash string `json:"-" db:"password_hash"`

	// Address block, printed on generated bills
	Area    string `json:"area" db:"area"`
	City    string `json:"city" db:"city"`
	State   string `json:"state" db:"state"`
	Country string `json:"country" db:"country"`
	Pincode string `json:"pincode" db:"pincode"`
}

// AgencyClient represents an end customer of an agency.
type AgencyClient struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	AgencyID uuid.UUID `json:"agencyId" db:"agency_id"`

	Name           string `json:"name" db:"name"`
	BusinessName   string `json:"businessName" db:"business_name"`
	BusinessEmail  string `json:"businessEmail" db:"business_email"`
	WhatsappNumber string `json:"whatsappNumber" db:"whatsapp_number"`

	PasswordHash string `json:"-" db:"password_hash"`

	Area    string `json:"area" db:"area"`
	City    string `json:"city" db:"city"`
	State   string `json:"state" db:"state"`
	Country string `json:"country" db:"country"`
	Pincode string `json:"pincode" db:"pincode"`
}

// Address joins the non-empty address parts into a single display line.
func (a *Agency) Address() string {
	return joinAddress(a.Area, a.City, a.State, a.Country, a.Pincode)
}

// Address joins the non-empty address parts into a single display line.
func (c *AgencyClient) Address() string {
	return joinAddress(c.Area, c.City, c.State, c.Country, c.Pincode)
}

func joinAddress(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += p
	}
	if out == "" {
		return "N/A"
	}
	return out
}
