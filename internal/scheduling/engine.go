package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/signage-server/signage-server-pro/internal/models"
	"github.com/signage-server/signage-server-pro/internal/storage"
)

var (
	// ErrForbidden is returned when the acting agency does not own one
	// of the entities an allocation ties together.
	ErrForbidden = errors.New("entity does not belong to this agency")

	// ErrInvalidRange is returned when start time is not strictly
	// before end time.
	ErrInvalidRange = errors.New("start time must be before end time")

	// ErrSlotConflict is returned when the requested window overlaps an
	// existing assignment on the same device.
	ErrSlotConflict = errors.New("slot already booked for this device")

	// ErrCompleted is returned when editing an assignment whose window
	// has already ended.
	ErrCompleted = errors.New("assignment already completed")
)

// Engine owns the assignment lifecycle: booking ad time windows onto
// devices, editing and removing them, and answering availability and
// playback queries. Writes are serialized per device with an advisory
// lock so the overlap check and the insert are atomic.
type Engine struct {
	store storage.Store
	log   zerolog.Logger
}

// NewEngine creates a scheduling engine
func NewEngine(store storage.Store, log zerolog.Logger) *Engine {
	return &Engine{
		store: store,
		log:   log.With().Str("component", "scheduling").Logger(),
	}
}

// AllocateRequest describes a new booking
type AllocateRequest struct {
	AgencyID  uuid.UUID
	ClientID  uuid.UUID
	DeviceID  uuid.UUID
	AdID      uuid.UUID
	StartTime time.Time
	EndTime   time.Time
}

// Allocate books an ad onto a device for a client over a time window.
// All three entities must belong to the acting agency.
func (e *Engine) Allocate(ctx context.Context, req AllocateRequest) (*models.Assignment, error) {
	if !req.StartTime.Before(req.EndTime) {
		return nil, ErrInvalidRange
	}

	if err := e.checkOwnership(ctx, req.AgencyID, req.ClientID, req.DeviceID, req.AdID); err != nil {
		return nil, err
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := tx.LockDevice(ctx, req.DeviceID); err != nil {
		return nil, fmt.Errorf("lock device: %w", err)
	}

	count, err := tx.CountOverlapping(ctx, req.DeviceID, req.StartTime, req.EndTime, nil)
	if err != nil {
		return nil, fmt.Errorf("count overlapping: %w", err)
	}
	if count > 0 {
		return nil, ErrSlotConflict
	}

	assignment := &models.Assignment{
		ClientID:  req.ClientID,
		DeviceID:  req.DeviceID,
		AdID:      req.AdID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}

	if err := tx.CreateAssignment(ctx, assignment); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrSlotConflict
		}
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	e.log.Info().
		Str("assignment_id", assignment.ID.String()).
		Str("device_id", req.DeviceID.String()).
		Time("start", req.StartTime).
		Time("end", req.EndTime).
		Msg("assignment allocated")

	return assignment, nil
}

// ReallocateRequest describes an edit to an existing booking. Only the
// window and the ad may change; moving a booking to another client or
// device is delete plus re-allocate.
type ReallocateRequest struct {
	AgencyID     uuid.UUID
	AssignmentID uuid.UUID
	StartTime    time.Time
	EndTime      time.Time
	AdID         uuid.UUID
}

// Reallocate edits the window and ad of an existing assignment.
// Assignments whose window has already ended are immutable.
func (e *Engine) Reallocate(ctx context.Context, req ReallocateRequest) (*models.Assignment, error) {
	if !req.StartTime.Before(req.EndTime) {
		return nil, ErrInvalidRange
	}

	existing, err := e.store.GetAssignment(ctx, req.AssignmentID)
	if err != nil {
		return nil, err
	}

	if err := e.checkOwnership(ctx, req.AgencyID, existing.ClientID, existing.DeviceID, req.AdID); err != nil {
		return nil, err
	}

	if !time.Now().Before(existing.EndTime) {
		return nil, ErrCompleted
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := tx.LockDevice(ctx, existing.DeviceID); err != nil {
		return nil, fmt.Errorf("lock device: %w", err)
	}

	count, err := tx.CountOverlapping(ctx, existing.DeviceID, req.StartTime, req.EndTime, &req.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("count overlapping: %w", err)
	}
	if count > 0 {
		return nil, ErrSlotConflict
	}

	updated := &models.Assignment{
		ID:        req.AssignmentID,
		ClientID:  existing.ClientID,
		DeviceID:  existing.DeviceID,
		AdID:      req.AdID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}

	if err := tx.UpdateAssignment(ctx, updated); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrSlotConflict
		}
		return nil, fmt.Errorf("update assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	e.log.Info().
		Str("assignment_id", req.AssignmentID.String()).
		Time("start", req.StartTime).
		Time("end", req.EndTime).
		Msg("assignment reallocated")

	return e.store.GetAssignment(ctx, req.AssignmentID)
}

// Deallocate removes a booking. Ownership is re-validated the same way
// as on edit: client, device and ad must all still belong to the
// acting agency.
func (e *Engine) Deallocate(ctx context.Context, agencyID, assignmentID uuid.UUID) error {
	existing, err := e.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}

	if err := e.checkOwnership(ctx, agencyID, existing.ClientID, existing.DeviceID, existing.AdID); err != nil {
		return err
	}

	if !time.Now().Before(existing.EndTime) {
		return ErrCompleted
	}

	if err := e.store.DeleteAssignment(ctx, assignmentID); err != nil {
		return err
	}

	e.log.Info().Str("assignment_id", assignmentID.String()).Msg("assignment removed")
	return nil
}

// Get returns a single assignment if it is visible to the agency
func (e *Engine) Get(ctx context.Context, agencyID, assignmentID uuid.UUID) (*models.Assignment, error) {
	a, err := e.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if !e.visibleToAgency(a, agencyID) {
		return nil, storage.ErrNotFound
	}
	return a, nil
}

// ListByAgency returns all assignments visible to an agency through
// any ownership edge (device, client or ad).
func (e *Engine) ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]*models.Assignment, error) {
	return e.store.ListAssignments(ctx, storage.AssignmentFilters{
		AgencyID:      &agencyID,
		WithRelations: true,
	})
}

// ListByClient returns a client's own assignments
func (e *Engine) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Assignment, error) {
	return e.store.ListAssignments(ctx, storage.AssignmentFilters{
		ClientID:      &clientID,
		WithRelations: true,
	})
}

// ListByDeviceDay returns assignments whose window intersects the
// given calendar day of the device.
func (e *Engine) ListByDeviceDay(ctx context.Context, deviceID uuid.UUID, day time.Time) ([]*models.Assignment, error) {
	start, end := dayBounds(day)
	return e.store.ListAssignments(ctx, storage.AssignmentFilters{
		DeviceID:      &deviceID,
		Intersecting:  &storage.TimeRange{From: start, To: end},
		WithRelations: true,
	})
}

// Current returns the assignment playing on a device right now, or
// nil when the device has no live booking.
func (e *Engine) Current(ctx context.Context, deviceID uuid.UUID, now time.Time) (*models.Assignment, error) {
	a, err := e.store.GetLiveAssignment(ctx, deviceID, now)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// checkOwnership verifies that the client, device and ad all belong to
// the acting agency. Missing entities surface as ErrNotFound.
func (e *Engine) checkOwnership(ctx context.Context, agencyID, clientID, deviceID, adID uuid.UUID) error {
	client, err := e.store.GetAgencyClient(ctx, clientID)
	if err != nil {
		return err
	}
	if client.AgencyID != agencyID {
		return ErrForbidden
	}

	device, err := e.store.GetDevice(ctx, deviceID)
	if err != nil {
		return err
	}
	if device.AgencyID != agencyID {
		return ErrForbidden
	}

	ad, err := e.store.GetAd(ctx, adID)
	if err != nil {
		return err
	}
	if ad.AgencyID != agencyID {
		return ErrForbidden
	}

	return nil
}

// visibleToAgency applies the looser read rule: any single ownership
// edge grants visibility.
func (e *Engine) visibleToAgency(a *models.Assignment, agencyID uuid.UUID) bool {
	if a.Device != nil && a.Device.AgencyID == agencyID {
		return true
	}
	if a.Client != nil && a.Client.AgencyID == agencyID {
		return true
	}
	if a.Ad != nil && a.Ad.AgencyID == agencyID {
		return true
	}
	return false
}

// dayBounds returns the inclusive bounds of a calendar day in the
// day's own location.
func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}
