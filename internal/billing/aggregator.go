package billing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/signage-server/signage-server-pro/internal/models"
	"github.com/signage-server/signage-server-pro/internal/storage"
)

var (
	// ErrInvalidPrice is returned when the unit price is not positive
	ErrInvalidPrice = errors.New("unit price must be positive")

	// ErrInvalidRange is returned when the from date is after the to date
	ErrInvalidRange = errors.New("from date cannot be after to date")

	// ErrNoAssignments is returned when the range contains no billable
	// assignments for the client.
	ErrNoAssignments = errors.New("no assignments found in range")

	// ErrForbidden is returned when the bill or client belongs to a
	// different agency.
	ErrForbidden = errors.New("bill does not belong to this agency")
)

// Service aggregates a client's assignments for a date range into an
// immutable bill with line items, numbered from a shared sequence.
type Service struct {
	store storage.Store
	log   zerolog.Logger
}

// NewService creates a billing service
func NewService(store storage.Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "billing").Logger(),
	}
}

// Generate creates a bill for every assignment of the client that is
// fully contained in [from, to]. Bookings straddling either boundary
// are excluded. Line totals use the fractional hour count while the
// play count rounds hours up, so a 90-minute booking bills 1.5 hours
// but counts as 2 plays.
func (s *Service) Generate(ctx context.Context, agencyID, clientID uuid.UUID, from, to time.Time, unitPrice float64) (*models.Bill, error) {
	if unitPrice <= 0 {
		return nil, ErrInvalidPrice
	}
	if from.After(to) {
		return nil, ErrInvalidRange
	}

	client, err := s.store.GetAgencyClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client.AgencyID != agencyID {
		return nil, ErrForbidden
	}

	assignments, err := s.store.ListAssignments(ctx, storage.AssignmentFilters{
		ClientID:  &clientID,
		Contained: &storage.TimeRange{From: from, To: to},
	})
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	if len(assignments) == 0 {
		return nil, ErrNoAssignments
	}

	var totalPrice float64
	items := make([]*models.BillItem, 0, len(assignments))
	for _, a := range assignments {
		hours := a.EndTime.Sub(a.StartTime).Hours()
		if hours < 0 {
			hours = 0
		}
		lineTotal := hours * unitPrice
		items = append(items, &models.BillItem{
			AdID:       a.AdID,
			DeviceID:   a.DeviceID,
			PlayCount:  int(math.Ceil(hours)),
			UnitPrice:  unitPrice,
			TotalPrice: lineTotal,
		})
		totalPrice += lineTotal
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	seq, err := tx.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("next invoice number: %w", err)
	}

	bill := &models.Bill{
		AgencyID:      agencyID,
		ClientID:      clientID,
		FromDate:      from,
		ToDate:        to,
		InvoiceNumber: formatInvoiceNumber(seq),
		TotalPrice:    totalPrice,
		Status:        models.BillPending,
	}

	if err := tx.CreateBill(ctx, bill); err != nil {
		return nil, fmt.Errorf("create bill: %w", err)
	}
	for _, item := range items {
		item.BillID = bill.ID
		if err := tx.CreateBillItem(ctx, item); err != nil {
			return nil, fmt.Errorf("create bill item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.log.Info().
		Str("bill_id", bill.ID.String()).
		Str("invoice", bill.InvoiceNumber).
		Float64("total", totalPrice).
		Msg("bill generated")

	return s.store.GetBill(ctx, bill.ID)
}

// formatInvoiceNumber zero-pads the sequence value to three digits and
// truncates anything longer back to three characters.
func formatInvoiceNumber(seq int64) string {
	num := fmt.Sprintf("%03d", seq)
	if len(num) > 3 {
		num = num[:3]
	}
	return num
}

// Get returns a bill with items if it belongs to the agency
func (s *Service) Get(ctx context.Context, agencyID, billID uuid.UUID) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.AgencyID != agencyID {
		return nil, storage.ErrNotFound
	}
	return bill, nil
}

// UpdateStatus moves a bill to any of the three payment states. There
// is no transition restriction, a PAID bill may go back to DELAYED.
func (s *Service) UpdateStatus(ctx context.Context, agencyID, billID uuid.UUID, status models.BillStatus) (*models.Bill, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown bill status: %q", status)
	}

	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.AgencyID != agencyID {
		return nil, ErrForbidden
	}

	if err := s.store.UpdateBillStatus(ctx, billID, status); err != nil {
		return nil, err
	}

	bill.Status = status
	return bill, nil
}

// ListByAgency returns an agency's bills, newest billing period first
func (s *Service) ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]*models.Bill, error) {
	return s.store.ListBills(ctx, storage.BillFilters{AgencyID: &agencyID})
}

// ListByClient returns a client's own bills
func (s *Service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Bill, error) {
	return s.store.ListBills(ctx, storage.BillFilters{ClientID: &clientID})
}

// CompletedItem is a pre-billing view of one finished assignment
type CompletedItem struct {
	ID        uuid.UUID            `json:"id"`
	Date      string               `json:"date"`
	Client    *models.AgencyClient `json:"client,omitempty"`
	Device    *models.Device       `json:"device,omitempty"`
	Ad        *models.Ad           `json:"ad,omitempty"`
	StartHour string               `json:"startTime"`
	EndHour   string               `json:"endTime"`
	Hours     float64              `json:"hours"`
}

// CompletedItems lists the agency's assignments fully contained in the
// range, with hour counts rounded to two decimals, oldest first. This
// is the preview agencies review before generating a bill.
func (s *Service) CompletedItems(ctx context.Context, agencyID uuid.UUID, from, to time.Time) ([]CompletedItem, error) {
	if from.After(to) {
		return nil, ErrInvalidRange
	}

	assignments, err := s.store.ListAssignments(ctx, storage.AssignmentFilters{
		AgencyID:      &agencyID,
		Contained:     &storage.TimeRange{From: from, To: to},
		WithRelations: true,
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].StartTime.Before(assignments[j].StartTime)
	})

	items := make([]CompletedItem, 0, len(assignments))
	for _, a := range assignments {
		hours := a.EndTime.Sub(a.StartTime).Hours()
		items = append(items, CompletedItem{
			ID:        a.ID,
			Date:      a.StartTime.Format("2006-01-02"),
			Client:    a.Client,
			Device:    a.Device,
			Ad:        a.Ad,
			StartHour: a.StartTime.Format("15"),
			EndHour:   a.EndTime.Format("15"),
			Hours:     math.Round(hours*100) / 100,
		})
	}
	return items, nil
}
