package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/signage-server/signage-server-pro/internal/models"
)

// ========== Ad Methods ==========

// CreateAd creates an ad
func (s *PostgresStore) CreateAd(ctx context.Context, ad *models.Ad) error {
	if ad.ID == uuid.Nil {
		ad.ID = uuid.New()
	}

	now := time.Now()
	ad.CreatedAt = now
	ad.UpdatedAt = now

	query := `
        INSERT INTO ads (id, created_at, updated_at, agency_id, title, file_url)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.getDB().ExecContext(ctx, query,
		ad.ID, ad.CreatedAt, ad.UpdatedAt, ad.AgencyID, ad.Title, ad.FileURL,
	)
	return mapError(err)
}

// GetAd gets an ad by id
func (s *PostgresStore) GetAd(ctx context.Context, id uuid.UUID) (*models.Ad, error) {
	query := `
        SELECT id, created_at, updated_at, agency_id, title, file_url
        FROM ads WHERE id = $1`

	ad := &models.Ad{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&ad.ID, &ad.CreatedAt, &ad.UpdatedAt, &ad.AgencyID, &ad.Title, &ad.FileURL,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return ad, nil
}

// UpdateAd updates an ad's title and file reference
func (s *PostgresStore) UpdateAd(ctx context.Context, ad *models.Ad) error {
	ad.UpdatedAt = time.Now()

	query := `UPDATE ads SET updated_at = $2, title = $3, file_url = $4 WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query, ad.ID, ad.UpdatedAt, ad.Title, ad.FileURL)
	if err != nil {
		return mapError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAd deletes an ad
func (s *PostgresStore) DeleteAd(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, `DELETE FROM ads WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAds lists ads owned by an agency
func (s *PostgresStore) ListAds(ctx context.Context, agencyID uuid.UUID) ([]*models.Ad, error) {
	query := `
        SELECT id, created_at, updated_at, agency_id, title, file_url
        FROM ads WHERE agency_id = $1 ORDER BY created_at DESC`

	rows, err := s.getDB().QueryContext(ctx, query, agencyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ads []*models.Ad
	for rows.Next() {
		ad := &models.Ad{}
		if err := rows.Scan(
			&ad.ID, &ad.CreatedAt, &ad.UpdatedAt, &ad.AgencyID, &ad.Title, &ad.FileURL,
		); err != nil {
			return nil, err
		}
		ads = append(ads, ad)
	}
	return ads, rows.Err()
}
