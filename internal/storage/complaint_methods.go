package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/signage-server/signage-server-pro/internal/models"
)

// ========== Client Complaint Methods ==========

// CreateClientComplaint creates a client -> agency complaint
func (s *PostgresStore) CreateClientComplaint(ctx context.Context, c *models.ClientComplaint) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = models.ComplaintPending
	}

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
        INSERT INTO client_complaints (id, created_at, updated_at, client_id, agency_id, message, reply, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.getDB().ExecContext(ctx, query,
		c.ID, c.CreatedAt, c.UpdatedAt, c.ClientID, c.AgencyID, c.Message, c.Reply, c.Status,
	)
	return mapError(err)
}

// GetClientComplaint gets a client complaint by id
func (s *PostgresStore) GetClientComplaint(ctx context.Context, id uuid.UUID) (*models.ClientComplaint, error) {
	query := `
        SELECT id, created_at, updated_at, client_id, agency_id, message, reply, status
        FROM client_complaints WHERE id = $1`

	c := &models.ClientComplaint{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.ClientID, &c.AgencyID,
		&c.Message, &c.Reply, &c.Status,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// UpdateClientComplaint updates message, reply and status
func (s *PostgresStore) UpdateClientComplaint(ctx context.Context, c *models.ClientComplaint) error {
	c.UpdatedAt = time.Now()

	query := `
        UPDATE client_complaints
        SET updated_at = $2, message = $3, reply = $4, status = $5
        WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query, c.ID, c.UpdatedAt, c.Message, c.Reply, c.Status)
	if err != nil {
		return mapError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListClientComplaints lists complaints by submitter or receiver
func (s *PostgresStore) ListClientComplaints(ctx context.Context, filters ComplaintFilters) ([]*models.ClientComplaint, error) {
	query := `
        SELECT cc.id, cc.created_at, cc.updated_at, cc.client_id, cc.agency_id,
               cc.message, cc.reply, cc.status, c.business_name
        FROM client_complaints cc
        JOIN agency_clients c ON c.id = cc.client_id
        WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.SubmitterID != nil {
		argCount++
		query += fmt.Sprintf(" AND cc.client_id = $%d", argCount)
		args = append(args, *filters.SubmitterID)
	}
	if filters.ReceiverID != nil {
		argCount++
		query += fmt.Sprintf(" AND cc.agency_id = $%d", argCount)
		args = append(args, *filters.ReceiverID)
	}

	query += " ORDER BY cc.created_at DESC"

	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var complaints []*models.ClientComplaint
	for rows.Next() {
		c := &models.ClientComplaint{Client: &models.AgencyClient{}}
		if err := rows.Scan(
			&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.ClientID, &c.AgencyID,
			&c.Message, &c.Reply, &c.Status, &c.Client.BusinessName,
		); err != nil {
			return nil, err
		}
		c.Client.ID = c.ClientID
		complaints = append(complaints, c)
	}
	return complaints, rows.Err()
}

// ========== Agency Complaint Methods ==========

// CreateAgencyComplaint creates an agency -> master complaint
func (s *PostgresStore) CreateAgencyComplaint(ctx context.Context, c *models.AgencyComplaint) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = models.ComplaintPending
	}

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
        INSERT INTO agency_complaints (id, created_at, updated_at, agency_id, master_id, message, reply, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.getDB().ExecContext(ctx, query,
		c.ID, c.CreatedAt, c.UpdatedAt, c.AgencyID, c.MasterID, c.Message, c.Reply, c.Status,
	)
	return mapError(err)
}

// GetAgencyComplaint gets an agency complaint by id
func (s *PostgresStore) GetAgencyComplaint(ctx context.Context, id uuid.UUID) (*models.AgencyComplaint, error) {
	query := `
        SELECT id, created_at, updated_at, agency_id, master_id, message, reply, status
        FROM agency_complaints WHERE id = $1`

	c := &models.AgencyComplaint{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.AgencyID, &c.MasterID,
		&c.Message, &c.Reply, &c.Status,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// UpdateAgencyComplaint updates message, reply and status
func (s *PostgresStore) UpdateAgencyComplaint(ctx context.Context, c *models.AgencyComplaint) error {
	c.UpdatedAt = time.Now()

	query := `
        UPDATE agency_complaints
        SET updated_at = $2, message = $3, reply = $4, status = $5
        WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query, c.ID, c.UpdatedAt, c.Message, c.Reply, c.Status)
	if err != nil {
		return mapError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAgencyComplaints lists complaints by submitter or receiver
func (s *PostgresStore) ListAgencyComplaints(ctx context.Context, filters ComplaintFilters) ([]*models.AgencyComplaint, error) {
	query := `
        SELECT ac.id, ac.created_at, ac.updated_at, ac.agency_id, ac.master_id,
               ac.message, ac.reply, ac.status, a.name
        FROM agency_complaints ac
        JOIN agencies a ON a.id = ac.agency_id
        WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.SubmitterID != nil {
		argCount++
		query += fmt.Sprintf(" AND ac.agency_id = $%d", argCount)
		args = append(args, *filters.SubmitterID)
	}
	if filters.ReceiverID != nil {
		argCount++
		query += fmt.Sprintf(" AND ac.master_id = $%d", argCount)
		args = append(args, *filters.ReceiverID)
	}

	query += " ORDER BY ac.created_at DESC"

	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var complaints []*models.AgencyComplaint
	for rows.Next() {
		c := &models.AgencyComplaint{Agency: &models.Agency{}}
		if err := rows.Scan(
			&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.AgencyID, &c.MasterID,
			&c.Message, &c.Reply, &c.Status, &c.Agency.Name,
		); err != nil {
			return nil, err
		}
		c.Agency.ID = c.AgencyID
		complaints = append(complaints, c)
	}
	return complaints, rows.Err()
}
