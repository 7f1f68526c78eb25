package complaints

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/signage-server/signage-server-pro/internal/models"
	"github.com/signage-server/signage-server-pro/internal/storage"
)

var (
	// ErrEmptyMessage is returned when a message or reply is blank
	// after trimming.
	ErrEmptyMessage = errors.New("message is required")

	// ErrInvalidStatus is returned for a status outside the
	// PENDING/RESOLVED/REJECTED set.
	ErrInvalidStatus = errors.New("invalid complaint status")

	// ErrNotEditable is returned when the submitter tries to edit a
	// complaint that is no longer pending or is not theirs.
	ErrNotEditable = errors.New("complaint cannot be edited")

	// ErrForbidden is returned when the actor is not the complaint's
	// receiver.
	ErrForbidden = errors.New("complaint does not belong to this account")
)

// Ledger runs the two complaint threads: clients filing against their
// agency, and agencies filing against the master. Both share the same
// lifecycle: the submitter may rewrite the message while the complaint
// is PENDING, and only the receiver moves it to RESOLVED or REJECTED
// by replying. The receiver is fixed at submission from the
// submitter's parent at that moment.
type Ledger struct {
	store storage.Store
	log   zerolog.Logger
}

// NewLedger creates a complaint ledger
func NewLedger(store storage.Store, log zerolog.Logger) *Ledger {
	return &Ledger{
		store: store,
		log:   log.With().Str("component", "complaints").Logger(),
	}
}

// SubmitFromClient files a new complaint from a client against its
// current agency.
func (l *Ledger) SubmitFromClient(ctx context.Context, clientID uuid.UUID, message string) (*models.ClientComplaint, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	client, err := l.store.GetAgencyClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	complaint := &models.ClientComplaint{
		ClientID: clientID,
		AgencyID: client.AgencyID,
		Message:  message,
		Status:   models.ComplaintPending,
	}
	if err := l.store.CreateClientComplaint(ctx, complaint); err != nil {
		return nil, err
	}

	l.log.Info().Str("complaint_id", complaint.ID.String()).Msg("client complaint submitted")
	return complaint, nil
}

// EditClientMessage rewrites the message of a pending complaint. Only
// the original submitter may edit, and only while status is PENDING.
func (l *Ledger) EditClientMessage(ctx context.Context, clientID, complaintID uuid.UUID, message string) (*models.ClientComplaint, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	complaint, err := l.store.GetClientComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.ClientID != clientID || complaint.Status != models.ComplaintPending {
		return nil, ErrNotEditable
	}

	complaint.Message = message
	if err := l.store.UpdateClientComplaint(ctx, complaint); err != nil {
		return nil, err
	}
	return complaint, nil
}

// ReplyToClient records the agency's reply and moves the complaint to
// the given status.
func (l *Ledger) ReplyToClient(ctx context.Context, agencyID, complaintID uuid.UUID, reply string, status models.ComplaintStatus) (*models.ClientComplaint, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, ErrEmptyMessage
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	complaint, err := l.store.GetClientComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.AgencyID != agencyID {
		return nil, ErrForbidden
	}

	complaint.Reply = reply
	complaint.Status = status
	if err := l.store.UpdateClientComplaint(ctx, complaint); err != nil {
		return nil, err
	}

	l.log.Info().
		Str("complaint_id", complaintID.String()).
		Str("status", string(status)).
		Msg("client complaint answered")
	return complaint, nil
}

// ListByClient returns a client's own complaints, newest first
func (l *Ledger) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.ClientComplaint, error) {
	return l.store.ListClientComplaints(ctx, storage.ComplaintFilters{SubmitterID: &clientID})
}

// ListForAgency returns the complaints filed against an agency
func (l *Ledger) ListForAgency(ctx context.Context, agencyID uuid.UUID) ([]*models.ClientComplaint, error) {
	return l.store.ListClientComplaints(ctx, storage.ComplaintFilters{ReceiverID: &agencyID})
}

// SubmitFromAgency files a new complaint from an agency against its
// master.
func (l *Ledger) SubmitFromAgency(ctx context.Context, agencyID uuid.UUID, message string) (*models.AgencyComplaint, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	agency, err := l.store.GetAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	complaint := &models.AgencyComplaint{
		AgencyID: agencyID,
		MasterID: agency.MasterID,
		Message:  message,
		Status:   models.ComplaintPending,
	}
	if err := l.store.CreateAgencyComplaint(ctx, complaint); err != nil {
		return nil, err
	}

	l.log.Info().Str("complaint_id", complaint.ID.String()).Msg("agency complaint submitted")
	return complaint, nil
}

// EditAgencyMessage rewrites the message of a pending agency complaint
func (l *Ledger) EditAgencyMessage(ctx context.Context, agencyID, complaintID uuid.UUID, message string) (*models.AgencyComplaint, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	complaint, err := l.store.GetAgencyComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.AgencyID != agencyID || complaint.Status != models.ComplaintPending {
		return nil, ErrNotEditable
	}

	complaint.Message = message
	if err := l.store.UpdateAgencyComplaint(ctx, complaint); err != nil {
		return nil, err
	}
	return complaint, nil
}

// ReplyToAgency records the master's reply and moves the complaint to
// the given status.
func (l *Ledger) ReplyToAgency(ctx context.Context, masterID, complaintID uuid.UUID, reply string, status models.ComplaintStatus) (*models.AgencyComplaint, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, ErrEmptyMessage
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	complaint, err := l.store.GetAgencyComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.MasterID != masterID {
		return nil, ErrForbidden
	}

	complaint.Reply = reply
	complaint.Status = status
	if err := l.store.UpdateAgencyComplaint(ctx, complaint); err != nil {
		return nil, err
	}

	l.log.Info().
		Str("complaint_id", complaintID.String()).
		Str("status", string(status)).
		Msg("agency complaint answered")
	return complaint, nil
}

// ListByAgency returns an agency's own complaints, newest first
func (l *Ledger) ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]*models.AgencyComplaint, error) {
	return l.store.ListAgencyComplaints(ctx, storage.ComplaintFilters{SubmitterID: &agencyID})
}

// ListForMaster returns the complaints filed against a master
func (l *Ledger) ListForMaster(ctx context.Context, masterID uuid.UUID) ([]*models.AgencyComplaint, error) {
	return l.store.ListAgencyComplaints(ctx, storage.ComplaintFilters{ReceiverID: &masterID})
}
