package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/signage-server/signage-server-pro/internal/models"
)

// ========== Assignment Methods ==========

// CreateAssignment inserts an assignment row. The schema's exclusion
// constraint rejects overlapping windows for the same device; the
// violation surfaces as ErrConflict.
func (s *PostgresStore) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	query := `
        INSERT INTO assignments (id, created_at, updated_at, client_id, device_id, ad_id, start_time, end_time)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.getDB().ExecContext(ctx, query,
		a.ID, a.CreatedAt, a.UpdatedAt, a.ClientID, a.DeviceID, a.AdID,
		a.StartTime, a.EndTime,
	)
	return mapError(err)
}

// GetAssignment gets an assignment by id with its client, device and ad
func (s *PostgresStore) GetAssignment(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	query := assignmentSelect + ` WHERE asg.id = $1`

	a, err := scanAssignmentRow(s.getDB().QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAssignment updates the time window and ad of an assignment.
// Client and device are immutable after creation.
func (s *PostgresStore) UpdateAssignment(ctx context.Context, a *models.Assignment) error {
	a.UpdatedAt = time.Now()

	query := `
        UPDATE assignments
        SET updated_at = $2, start_time = $3, end_time = $4, ad_id = $5
        WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		a.ID, a.UpdatedAt, a.StartTime, a.EndTime, a.AdID,
	)
	if err != nil {
		return mapError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAssignment deletes an assignment
func (s *PostgresStore) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountOverlapping counts assignments on the device intersecting the
// half-open window [start, end), optionally excluding one assignment.
func (s *PostgresStore) CountOverlapping(ctx context.Context, deviceID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (int64, error) {
	query := `
        SELECT COUNT(*) FROM assignments
        WHERE device_id = $1 AND start_time < $3 AND end_time > $2`
	args := []interface{}{deviceID, start, end}

	if exclude != nil {
		query += ` AND id != $4`
		args = append(args, *exclude)
	}

	var count int64
	if err := s.getDB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// GetLiveAssignment returns the assignment covering instant now on the
// device. At most one row can match while the overlap constraint holds;
// earliest start wins if it ever does not.
func (s *PostgresStore) GetLiveAssignment(ctx context.Context, deviceID uuid.UUID, now time.Time) (*models.Assignment, error) {
	query := assignmentSelect + `
        WHERE asg.device_id = $1 AND asg.start_time <= $2 AND asg.end_time > $2
        ORDER BY asg.start_time ASC
        LIMIT 1`

	return scanAssignmentRow(s.getDB().QueryRowContext(ctx, query, deviceID, now))
}

// LockDevice takes a transaction-scoped advisory lock keyed on the
// device id, serializing check-then-insert allocation per device.
func (s *PostgresStore) LockDevice(ctx context.Context, deviceID uuid.UUID) error {
	if s.tx == nil {
		return fmt.Errorf("LockDevice requires a transaction")
	}
	_, err := s.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, deviceID.String())
	return err
}

// ListAssignments lists assignments matching the filters with relations
func (s *PostgresStore) ListAssignments(ctx context.Context, filters AssignmentFilters) ([]*models.Assignment, error) {
	query := assignmentSelect + ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.AgencyID != nil {
		// Any ownership edge grants read visibility.
		argCount++
		query += fmt.Sprintf(" AND (d.agency_id = $%d OR c.agency_id = $%d OR ad.agency_id = $%d)", argCount, argCount, argCount)
		args = append(args, *filters.AgencyID)
	}
	if filters.ClientID != nil {
		argCount++
		query += fmt.Sprintf(" AND asg.client_id = $%d", argCount)
		args = append(args, *filters.ClientID)
	}
	if filters.DeviceID != nil {
		argCount++
		query += fmt.Sprintf(" AND asg.device_id = $%d", argCount)
		args = append(args, *filters.DeviceID)
	}
	if filters.Intersecting != nil {
		argCount++
		query += fmt.Sprintf(" AND asg.start_time <= $%d", argCount)
		args = append(args, filters.Intersecting.To)
		argCount++
		query += fmt.Sprintf(" AND asg.end_time >= $%d", argCount)
		args = append(args, filters.Intersecting.From)
	}
	if filters.Contained != nil {
		argCount++
		query += fmt.Sprintf(" AND asg.start_time >= $%d", argCount)
		args = append(args, filters.Contained.From)
		argCount++
		query += fmt.Sprintf(" AND asg.end_time <= $%d", argCount)
		args = append(args, filters.Contained.To)
	}

	query += " ORDER BY asg.start_time DESC"

	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []*models.Assignment
	for rows.Next() {
		a, err := scanAssignmentRow(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

const assignmentSelect = `
        SELECT asg.id, asg.created_at, asg.updated_at, asg.client_id, asg.device_id,
               asg.ad_id, asg.start_time, asg.end_time,
               c.business_name, c.agency_id,
               d.name, d.agency_id,
               ad.title, ad.file_url, ad.agency_id
        FROM assignments asg
        JOIN agency_clients c ON c.id = asg.client_id
        JOIN devices d ON d.id = asg.device_id
        JOIN ads ad ON ad.id = asg.ad_id`

func scanAssignmentRow(row interface{ Scan(...interface{}) error }) (*models.Assignment, error) {
	a := &models.Assignment{
		Client: &models.AgencyClient{},
		Device: &models.Device{},
		Ad:     &models.Ad{},
	}

	err := row.Scan(
		&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.ClientID, &a.DeviceID,
		&a.AdID, &a.StartTime, &a.EndTime,
		&a.Client.BusinessName, &a.Client.AgencyID,
		&a.Device.Name, &a.Device.AgencyID,
		&a.Ad.Title, &a.Ad.FileURL, &a.Ad.AgencyID,
	)
	if err != nil {
		return nil, mapError(err)
	}

	a.Client.ID = a.ClientID
	a.Device.ID = a.DeviceID
	a.Ad.ID = a.AdID
	return a, nil
}
