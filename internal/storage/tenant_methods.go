package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/signage-server/signage-server-pro/internal/models"
)

// ========== Master Methods ==========

// CreateMaster creates a master account
func (s *PostgresStore) CreateMaster(ctx context.Context, master *models.Master) error {
	if master.ID == uuid.Nil {
		master.ID = uuid.New()
	}

	now := time.Now()
	master.CreatedAt = now
	master.UpdatedAt = now

	query := `
        INSERT INTO masters (id, created_at, updated_at, name, email, password_hash)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.getDB().ExecContext(ctx, query,
		master.ID, master.CreatedAt, master.UpdatedAt,
		master.Name, master.Email, master.PasswordHash,
	)
	return mapError(err)
}

// GetMaster gets a master by id
func (s *PostgresStore) GetMaster(ctx context.Context, id uuid.UUID) (*models.Master, error) {
	query := `
        SELECT id, created_at, updated_at, name, email, password_hash
        FROM masters WHERE id = $1`

	master := &models.Master{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&master.ID, &master.CreatedAt, &master.UpdatedAt,
		&master.Name, &master.Email, &master.PasswordHash,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return master, nil
}

// GetMasterByEmail gets a master by email
func (s *PostgresStore) GetMasterByEmail(ctx context.Context, email string) (*models.Master, error) {
	query := `
        SELECT id, created_at, updated_at, name, email, password_hash
        FROM masters WHERE email = $1`

	master := &models.Master{}
	err := s.getDB().QueryRowContext(ctx, query, email).Scan(
		&master.ID, &master.CreatedAt, &master.UpdatedAt,
		&master.Name, &master.Email, &master.PasswordHash,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return master, nil
}

// UpdateMaster updates a master account
func (s *PostgresStore) UpdateMaster(ctx context.Context, master *models.Master) error {
	master.UpdatedAt = time.Now()

	query := `
        UPDATE masters
        SET updated_at = $2, name = $3, email = $4, password_hash = $5
        WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		master.ID, master.UpdatedAt, master.Name, master.Email, master.PasswordHash,
	)
	if err != nil {
		return mapError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ========== Agency Methods ==========

const agencyColumns = `id, created_at, updated_at, master_id, name, email, phone,
        password_hash, area, city, state, country, pincode`

func scanAgency(row interface{ Scan(...interface{}) error }) (*models.Agency, error) {
	a := &models.Agency{}
	err := row.Scan(
		&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.MasterID, &a.Name, &a.Email, &a.Phone,
		&a.PasswordHash, &a.Area, &a.City, &a.State, &a.Country, &a.Pincode,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

// CreateAgency creates an agency
func (s *PostgresStore) CreateAgency(ctx context.Context, agency *models.Agency) error {
	if agency.ID == uuid.Nil {
		agency.ID = uuid.New()
	}

	now := time.Now()
	agency.CreatedAt = now
	agency.UpdatedAt = now

	query := `
        INSERT INTO agencies (` + agencyColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.getDB().ExecContext(ctx, query,
		agency.ID, agency.CreatedAt, agency.UpdatedAt, agency.MasterID,
		agency.Name, agency.Email, agency.Phone, agency.PasswordHash,
		agency.Area, agency.City, agency.State, agency.Country, agency.Pincode,
	)
	return mapError(err)
}

// GetAgency gets an agency by id
func (s *PostgresStore) GetAgency(ctx context.Context, id uuid.UUID) (*models.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies WHERE id = $1`
	return scanAgency(s.getDB().QueryRowContext(ctx, query, id))
}

// GetAgencyByEmail gets an agency by login email
func (s *PostgresStore) GetAgencyByEmail(ctx context.Context, email string) (*models.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies WHERE email = $1`
	return scanAgency(s.getDB().QueryRowContext(ctx, query, email))
}

// UpdateAgency updates an agency
func (s *PostgresStore) UpdateAgency(ctx context.Context, agency *models.Agency) error {
	agency.UpdatedAt = time.Now()

	query := `
        UPDATE agencies
        SET updated_at = $2, name = $3, email = $4, phone = $5, password_hash = $6,
            area = $7, city = $8, state = $9, country = $10, pincode = $11
        WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		agency.ID, agency.UpdatedAt, agency.Name, agency.Email, agency.Phone,
		agency.PasswordHash, agency.Area, agency.City, agency.State,
		agency.Country, agency.Pincode,
	)
	if err != nil {
		return mapError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAgency deletes an agency
func (s *PostgresStore) DeleteAgency(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, `DELETE FROM agencies WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAgencies lists agencies belonging to a master
func (s *PostgresStore) ListAgencies(ctx context.Context, masterID uuid.UUID) ([]*models.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies WHERE master_id = $1 ORDER BY name`

	rows, err := s.getDB().QueryContext(ctx, query, masterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agencies []*models.Agency
	for rows.Next() {
		a, err := scanAgency(rows)
		if err != nil {
			return nil, err
		}
		agencies = append(agencies, a)
	}
	return agencies, rows.Err()
}

// ========== Agency Client Methods ==========

const clientColumns = `id, created_at, updated_at, agency_id, name, business_name,
        business_email, whatsapp_number, password_hash, area, city, state, country, pincode`

func scanClient(row interface{ Scan(...interface{}) error }) (*models.AgencyClient, error) {
	c := &models.AgencyClient{}
	err := row.Scan(
		&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.AgencyID, &c.Name, &c.BusinessName,
		&c.BusinessEmail, &c.WhatsappNumber, &c.PasswordHash,
		&c.Area, &c.City, &c.State, &c.Country, &c.Pincode,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// CreateAgencyClient creates an agency client
func (s *PostgresStore) CreateAgencyClient(ctx context.Context, client *models.AgencyClient) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}

	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now

	query := `
        INSERT INTO agency_clients (` + clientColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := s.getDB().ExecContext(ctx, query,
		client.ID, client.CreatedAt, client.UpdatedAt, client.AgencyID,
		client.Name, client.BusinessName, client.BusinessEmail,
		client.WhatsappNumber, client.PasswordHash,
		client.Area, client.City, client.State, client.Country, client.Pincode,
	)
	return mapError(err)
}

// GetAgencyClient gets an agency client by id
func (s *PostgresStore) GetAgencyClient(ctx context.Context, id uuid.UUID) (*models.AgencyClient, error) {
	query := `SELECT ` + clientColumns + ` FROM agency_clients WHERE id = $1`
	return scanClient(s.getDB().QueryRowContext(ctx, query, id))
}

// GetAgencyClientByEmail gets an agency client by business email
func (s *PostgresStore) GetAgencyClientByEmail(ctx context.Context, email string) (*models.AgencyClient, error) {
	query := `SELECT ` + clientColumns + ` FROM agency_clients WHERE business_email = $1`
	return scanClient(s.getDB().QueryRowContext(ctx, query, email))
}

// UpdateAgencyClient updates an agency client
func (s *PostgresStore) UpdateAgencyClient(ctx context.Context, client *models.AgencyClient) error {
	client.UpdatedAt = time.Now()

	query := `
        UPDATE agency_clients
        SET updated_at = $2, name = $3, business_name = $4, business_email = $5,
            whatsapp_number = $6, password_hash = $7, area = $8, city = $9,
            state = $10, country = $11, pincode = $12
        WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		client.ID, client.UpdatedAt, client.Name, client.BusinessName,
		client.BusinessEmail, client.WhatsappNumber, client.PasswordHash,
		client.Area, client.City, client.State, client.Country, client.Pincode,
	)
	if err != nil {
		return mapError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAgencyClient deletes an agency client
func (s *PostgresStore) DeleteAgencyClient(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, `DELETE FROM agency_clients WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAgencyClients lists clients belonging to an agency
func (s *PostgresStore) ListAgencyClients(ctx context.Context, agencyID uuid.UUID) ([]*models.AgencyClient, error) {
	query := `SELECT ` + clientColumns + ` FROM agency_clients WHERE agency_id = $1 ORDER BY business_name`

	rows, err := s.getDB().QueryContext(ctx, query, agencyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*models.AgencyClient
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}
