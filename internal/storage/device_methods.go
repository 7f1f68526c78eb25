package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/signage-server/signage-server-pro/internal/models"
)

// ========== Device Methods ==========

const deviceColumns = `id, created_at, updated_at, uuid, name, model, size,
        latitude, longitude, api_endpoint, public_key, secret_key, status,
        master_id, agency_id, client_id`

func scanDevice(row interface{ Scan(...interface{}) error }) (*models.Device, error) {
	d := &models.Device{}
	err := row.Scan(
		&d.ID, &d.CreatedAt, &d.UpdatedAt, &d.UUID, &d.Name, &d.Model, &d.Size,
		&d.Latitude, &d.Longitude, &d.APIEndpoint, &d.PublicKey, &d.SecretKey,
		&d.Status, &d.MasterID, &d.AgencyID, &d.ClientID,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return d, nil
}

// CreateDevice creates a new device
func (s *PostgresStore) CreateDevice(ctx context.Context, device *models.Device) error {
	if device.ID == uuid.Nil {
		device.ID = uuid.New()
	}
	if device.Status == "" {
		device.Status = models.DeviceInactive
	}

	now := time.Now()
	device.CreatedAt = now
	device.UpdatedAt = now

	query := `
        INSERT INTO devices (` + deviceColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := s.getDB().ExecContext(ctx, query,
		device.ID, device.CreatedAt, device.UpdatedAt, device.UUID,
		device.Name, device.Model, device.Size, device.Latitude, device.Longitude,
		device.APIEndpoint, device.PublicKey, device.SecretKey, device.Status,
		device.MasterID, device.AgencyID, device.ClientID,
	)
	return mapError(err)
}

// GetDevice gets a device by id
func (s *PostgresStore) GetDevice(ctx context.Context, id uuid.UUID) (*models.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE id = $1`
	return scanDevice(s.getDB().QueryRowContext(ctx, query, id))
}

// GetDeviceBySecretKey gets a device by its player credential
func (s *PostgresStore) GetDeviceBySecretKey(ctx context.Context, key string) (*models.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE secret_key = $1`
	return scanDevice(s.getDB().QueryRowContext(ctx, query, key))
}

// UpdateDevice updates a device
func (s *PostgresStore) UpdateDevice(ctx context.Context, device *models.Device) error {
	device.UpdatedAt = time.Now()

	query := `
        UPDATE devices
        SET updated_at = $2, name = $3, model = $4, size = $5, latitude = $6,
            longitude = $7, api_endpoint = $8, status = $9, agency_id = $10,
            client_id = $11
        WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		device.ID, device.UpdatedAt, device.Name, device.Model, device.Size,
		device.Latitude, device.Longitude, device.APIEndpoint, device.Status,
		device.AgencyID, device.ClientID,
	)
	if err != nil {
		return mapError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDeviceStatus sets only the status column. Idempotent.
func (s *PostgresStore) UpdateDeviceStatus(ctx context.Context, id uuid.UUID, status models.DeviceStatus) error {
	query := `UPDATE devices SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return mapError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDevice deletes a device
func (s *PostgresStore) DeleteDevice(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, `DELETE FROM devices WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDevices lists devices matching the filters
func (s *PostgresStore) ListDevices(ctx context.Context, filters DeviceFilters) ([]*models.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.MasterID != nil {
		argCount++
		query += fmt.Sprintf(" AND master_id = $%d", argCount)
		args = append(args, *filters.MasterID)
	}
	if filters.AgencyID != nil {
		argCount++
		query += fmt.Sprintf(" AND agency_id = $%d", argCount)
		args = append(args, *filters.AgencyID)
	}
	if filters.ClientID != nil {
		argCount++
		query += fmt.Sprintf(" AND client_id = $%d", argCount)
		args = append(args, *filters.ClientID)
	}

	query += " ORDER BY name"

	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*models.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}
