package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/signage-server/signage-server-pro/internal/models"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrConflict     = errors.New("conflict")
	ErrInvalidData  = errors.New("invalid data")
)

// Store defines the storage interface
type Store interface {
	// Transaction support
	BeginTx(ctx context.Context) (Store, error)
	Commit() error
	Rollback() error

	// Master methods
	CreateMaster(ctx context.Context, master *models.Master) error
	GetMaster(ctx context.Context, id uuid.UUID) (*models.Master, error)
	GetMasterByEmail(ctx context.Context, email string) (*models.Master, error)
	UpdateMaster(ctx context.Context, master *models.Master) error

	// Agency methods
	CreateAgency(ctx context.Context, agency *models.Agency) error
	GetAgency(ctx context.Context, id uuid.UUID) (*models.Agency, error)
	GetAgencyByEmail(ctx context.Context, email string) (*models.Agency, error)
	UpdateAgency(ctx context.Context, agency *models.Agency) error
	DeleteAgency(ctx context.Context, id uuid.UUID) error
	ListAgencies(ctx context.Context, masterID uuid.UUID) ([]*models.Agency, error)

	// Agency client methods
	CreateAgencyClient(ctx context.Context, client *models.AgencyClient) error
	GetAgencyClient(ctx context.Context, id uuid.UUID) (*models.AgencyClient, error)
	GetAgencyClientByEmail(ctx context.Context, email string) (*models.AgencyClient, error)
	UpdateAgencyClient(ctx context.Context, client *models.AgencyClient) error
	DeleteAgencyClient(ctx context.Context, id uuid.UUID) error
	ListAgencyClients(ctx context.Context, agencyID uuid.UUID) ([]*models.AgencyClient, error)

	// Device methods
	CreateDevice(ctx context.Context, device *models.Device) error
	GetDevice(ctx context.Context, id uuid.UUID) (*models.Device, error)
	GetDeviceBySecretKey(ctx context.Context, key string) (*models.Device, error)
	UpdateDevice(ctx context.Context, device *models.Device) error
	UpdateDeviceStatus(ctx context.Context, id uuid.UUID, status models.DeviceStatus) error
	DeleteDevice(ctx context.Context, id uuid.UUID) error
	ListDevices(ctx context.Context, filters DeviceFilters) ([]*models.Device, error)

	// Ad methods
	CreateAd(ctx context.Context, ad *models.Ad) error
	GetAd(ctx context.Context, id uuid.UUID) (*models.Ad, error)
	UpdateAd(ctx context.Context, ad *models.Ad) error
	DeleteAd(ctx context.Context, id uuid.UUID) error
	ListAds(ctx context.Context, agencyID uuid.UUID) ([]*models.Ad, error)

	// Assignment methods
	CreateAssignment(ctx context.Context, a *models.Assignment) error
	GetAssignment(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	UpdateAssignment(ctx context.Context, a *models.Assignment) error
	DeleteAssignment(ctx context.Context, id uuid.UUID) error
	// CountOverlapping counts assignments for the device whose half-open
	// window intersects [start, end), optionally excluding one id.
	CountOverlapping(ctx context.Context, deviceID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (int64, error)
	ListAssignments(ctx context.Context, filters AssignmentFilters) ([]*models.Assignment, error)
	// GetLiveAssignment returns the assignment covering instant now for the
	// device, earliest start first, or ErrNotFound.
	GetLiveAssignment(ctx context.Context, deviceID uuid.UUID, now time.Time) (*models.Assignment, error)
	// LockDevice serializes allocation for one device. Only meaningful
	// inside a transaction; released on commit/rollback.
	LockDevice(ctx context.Context, deviceID uuid.UUID) error

	// Bill methods
	NextInvoiceNumber(ctx context.Context) (int64, error)
	CreateBill(ctx context.Context, bill *models.Bill) error
	CreateBillItem(ctx context.Context, item *models.BillItem) error
	GetBill(ctx context.Context, id uuid.UUID) (*models.Bill, error)
	UpdateBillStatus(ctx context.Context, id uuid.UUID, status models.BillStatus) error
	ListBills(ctx context.Context, filters BillFilters) ([]*models.Bill, error)

	// Complaint methods
	CreateClientComplaint(ctx context.Context, c *models.ClientComplaint) error
	GetClientComplaint(ctx context.Context, id uuid.UUID) (*models.ClientComplaint, error)
	UpdateClientComplaint(ctx context.Context, c *models.ClientComplaint) error
	ListClientComplaints(ctx context.Context, filters ComplaintFilters) ([]*models.ClientComplaint, error)

	CreateAgencyComplaint(ctx context.Context, c *models.AgencyComplaint) error
	GetAgencyComplaint(ctx context.Context, id uuid.UUID) (*models.AgencyComplaint, error)
	UpdateAgencyComplaint(ctx context.Context, c *models.AgencyComplaint) error
	ListAgencyComplaints(ctx context.Context, filters ComplaintFilters) ([]*models.AgencyComplaint, error)

	// Close the store
	Close() error
}

// DeviceFilters narrows device listings.
type DeviceFilters struct {
	MasterID *uuid.UUID
	AgencyID *uuid.UUID
	ClientID *uuid.UUID
}

// AssignmentFilters narrows assignment listings. Exactly one of the
// ownership scopes (AgencyID, ClientID, DeviceID) is normally set.
type AssignmentFilters struct {
	AgencyID *uuid.UUID
	ClientID *uuid.UUID
	DeviceID *uuid.UUID

	// Intersecting selects windows overlapping [From, To]; Contained
	// selects windows fully inside it. Both nil means no time filter.
	Intersecting *TimeRange
	Contained    *TimeRange

	// WithRelations loads client, device and ad rows alongside.
	WithRelations bool
}

// BillFilters narrows bill listings.
type BillFilters struct {
	AgencyID *uuid.UUID
	ClientID *uuid.UUID
	From     *time.Time
	To       *time.Time
}

// ComplaintFilters narrows complaint listings to the submitter or the
// receiver side of a thread.
type ComplaintFilters struct {
	SubmitterID *uuid.UUID
	ReceiverID  *uuid.UUID
}

// TimeRange is a closed [From, To] window used by list filters.
type TimeRange struct {
	From time.Time
	To   time.Time
}
