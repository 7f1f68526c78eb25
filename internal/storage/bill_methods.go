package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/signage-server/signage-server-pro/internal/models"
)

// ========== Bill Methods ==========

// NextInvoiceNumber allocates the next value of the global invoice
// sequence. The sequence is atomic, so concurrent bill generation never
// yields duplicate numbers.
func (s *PostgresStore) NextInvoiceNumber(ctx context.Context) (int64, error) {
	var n int64
	err := s.getDB().QueryRowContext(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&n)
	return n, err
}

// CreateBill inserts the bill header row
func (s *PostgresStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	if bill.Status == "" {
		bill.Status = models.BillPending
	}
	bill.CreatedAt = time.Now()

	query := `
        INSERT INTO bills (id, created_at, agency_id, client_id, from_date, to_date,
            invoice_number, total_price, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.getDB().ExecContext(ctx, query,
		bill.ID, bill.CreatedAt, bill.AgencyID, bill.ClientID,
		bill.FromDate, bill.ToDate, bill.InvoiceNumber, bill.TotalPrice, bill.Status,
	)
	return mapError(err)
}

// CreateBillItem inserts one bill line
func (s *PostgresStore) CreateBillItem(ctx context.Context, item *models.BillItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	query := `
        INSERT INTO bill_items (id, bill_id, ad_id, device_id, play_count, unit_price, total_price)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.getDB().ExecContext(ctx, query,
		item.ID, item.BillID, item.AdID, item.DeviceID,
		item.PlayCount, item.UnitPrice, item.TotalPrice,
	)
	return mapError(err)
}

// GetBill gets a bill with items, agency and client loaded for rendering
func (s *PostgresStore) GetBill(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	query := `
        SELECT id, created_at, agency_id, client_id, from_date, to_date,
               invoice_number, total_price, status
        FROM bills WHERE id = $1`

	bill := &models.Bill{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&bill.ID, &bill.CreatedAt, &bill.AgencyID, &bill.ClientID,
		&bill.FromDate, &bill.ToDate, &bill.InvoiceNumber, &bill.TotalPrice, &bill.Status,
	)
	if err != nil {
		return nil, mapError(err)
	}

	if bill.Agency, err = s.GetAgency(ctx, bill.AgencyID); err != nil {
		return nil, err
	}
	if bill.Client, err = s.GetAgencyClient(ctx, bill.ClientID); err != nil {
		return nil, err
	}
	if bill.Items, err = s.listBillItems(ctx, bill.ID); err != nil {
		return nil, err
	}
	return bill, nil
}

// UpdateBillStatus sets the bill status. Any status is reachable from
// any other; bills are otherwise immutable.
func (s *PostgresStore) UpdateBillStatus(ctx context.Context, id uuid.UUID, status models.BillStatus) error {
	result, err := s.getDB().ExecContext(ctx,
		`UPDATE bills SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return mapError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBills lists bills matching the filters, newest window first
func (s *PostgresStore) ListBills(ctx context.Context, filters BillFilters) ([]*models.Bill, error) {
	query := `
        SELECT id, created_at, agency_id, client_id, from_date, to_date,
               invoice_number, total_price, status
        FROM bills WHERE 1=1`
	args := []interface{}{}
	argCount := 0

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
	if filters.From != nil {
		argCount++
		query += fmt.Sprintf(" AND from_date >= $%d", argCount)
		args = append(args, *filters.From)
	}
	if filters.To != nil {
		argCount++
		query += fmt.Sprintf(" AND to_date <= $%d", argCount)
		args = append(args, *filters.To)
	}

	query += " ORDER BY from_date DESC"

	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill := &models.Bill{}
		if err := rows.Scan(
			&bill.ID, &bill.CreatedAt, &bill.AgencyID, &bill.ClientID,
			&bill.FromDate, &bill.ToDate, &bill.InvoiceNumber, &bill.TotalPrice, &bill.Status,
		); err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, bill := range bills {
		items, err := s.listBillItems(ctx, bill.ID)
		if err != nil {
			return nil, err
		}
		bill.Items = items
	}
	return bills, nil
}

func (s *PostgresStore) listBillItems(ctx context.Context, billID uuid.UUID) ([]*models.BillItem, error) {
	query := `
        SELECT i.id, i.bill_id, i.ad_id, i.device_id, i.play_count, i.unit_price, i.total_price,
               COALESCE(a.title, 'N/A'), COALESCE(d.name, 'N/A')
        FROM bill_items i
        LEFT JOIN ads a ON a.id = i.ad_id
        LEFT JOIN devices d ON d.id = i.device_id
        WHERE i.bill_id = $1
        ORDER BY i.id`

	rows, err := s.getDB().QueryContext(ctx, query, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.BillItem
	for rows.Next() {
		item := &models.BillItem{Ad: &models.Ad{}, Device: &models.Device{}}
		if err := rows.Scan(
			&item.ID, &item.BillID, &item.AdID, &item.DeviceID,
			&item.PlayCount, &item.UnitPrice, &item.TotalPrice,
			&item.Ad.Title, &item.Device.Name,
		); err != nil {
			return nil, err
		}
		item.Ad.ID = item.AdID
		item.Device.ID = item.DeviceID
		items = append(items, item)
	}
	return items, rows.Err()
}
