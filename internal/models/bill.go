package models

import (
	"time"

	"github.com/google/uuid"
)

// BillStatus represents the payment state of a bill.
type BillStatus string

const (
	BillPending BillStatus = "PENDING"
	BillPaid    BillStatus = "PAID"
	BillDelayed BillStatus = "DELAYED"
)

// Valid reports whether the status is one of the known values.
func (s BillStatus) Valid() bool {
	switch s {
	case BillPending, BillPaid, BillDelayed:
		return true
	}
	return false
}

// Bill is an immutable invoice generated for one (agency, client) pair
// over a date window. Only Status may change after creation.
type Bill struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	AgencyID uuid.UUID `json:"agencyId" db:"agency_id"`
	ClientID uuid.UUID `json:"clientId" db:"client_id"`

	FromDate time.Time `json:"fromDate" db:"from_date"`
	ToDate   time.Time `json:"toDate" db:"to_date"`

	// Zero-padded global monotonic sequence, e.g. "007"
	InvoiceNumber string `json:"invoiceNumber" db:"invoice_number"`

	TotalPrice float64    `json:"totalPrice" db:"total_price"`
	Status     BillStatus `json:"status" db:"status"`

	Items []*BillItem `json:"items,omitempty"`

	// Relations, populated for rendering
	Agency *Agency       `json:"agency,omitempty"`
	Client *AgencyClient `json:"client,omitempty"`
}

// BillItem is one aggregated assignment line on a bill.
//
// PlayCount is the booked hours rounded up for display; TotalPrice is
// computed from the unrounded fractional hours.
type BillItem struct {
	ID     uuid.UUID `json:"id" db:"id"`
	BillID uuid.UUID `json:"billId" db:"bill_id"`

	AdID     uuid.UUID `json:"adId" db:"ad_id"`
	DeviceID uuid.UUID `json:"deviceId" db:"device_id"`

	PlayCount  int     `json:"playCount" db:"play_count"`
	UnitPrice  float64 `json:"unitPrice" db:"unit_price"`
	TotalPrice float64 `json:"totalPrice" db:"total_price"`

	Ad     *Ad     `json:"ad,omitempty"`
	Device *Device `json:"device,omitempty"`
}
