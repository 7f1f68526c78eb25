package billing

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signage-server/signage-server-pro/internal/models"
	"github.com/signage-server/signage-server-pro/internal/storage"
)

type fixture struct {
	store   *storage.MemoryStore
	service *Service

	agencyID uuid.UUID
	clientID uuid.UUID
	deviceID uuid.UUID
	adID     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStore()

	master := &models.Master{Name: "Platform", Email: "master@example.com"}
	require.NoError(t, store.CreateMaster(ctx, master))

	agency := &models.Agency{
		MasterID: master.ID,
		Name:     "Acme Media",
		Email:    "acme@example.com",
		Phone:    "9999999999",
		City:     "Pune",
	}
	require.NoError(t, store.CreateAgency(ctx, agency))

	client := &models.AgencyClient{
		AgencyID:      agency.ID,
		BusinessName:  "Corner Cafe",
		BusinessEmail: "cafe@example.com",
	}
	require.NoError(t, store.CreateAgencyClient(ctx, client))

	device := &models.Device{
		MasterID:  master.ID,
		AgencyID:  agency.ID,
		UUID:      "dev-0001",
		Name:      "Mall Entrance",
		PublicKey: "pub-0001",
		SecretKey: "sec-0001",
	}
	require.NoError(t, store.CreateDevice(ctx, device))

	ad := &models.Ad{AgencyID: agency.ID, Title: "Latte Promo", FileURL: "/uploads/latte.mp4"}
	require.NoError(t, store.CreateAd(ctx, ad))

	return &fixture{
		store:    store,
		service:  NewService(store, zerolog.Nop()),
		agencyID: agency.ID,
		clientID: client.ID,
		deviceID: device.ID,
		adID:     ad.ID,
	}
}

func (f *fixture) addAssignment(t *testing.T, start, end time.Time) {
	t.Helper()
	require.NoError(t, f.store.CreateAssignment(context.Background(), &models.Assignment{
		ClientID:  f.clientID,
		DeviceID:  f.deviceID,
		AdID:      f.adID,
		StartTime: start,
		EndTime:   end,
	}))
}

var billDay = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

func TestGenerateNinetyMinuteAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start := billDay.Add(10 * time.Hour)
	f.addAssignment(t, start, start.Add(90*time.Minute))

	bill, err := f.service.Generate(ctx, f.agencyID, f.clientID, billDay, billDay.AddDate(0, 1, 0), 50)
	require.NoError(t, err)

	require.Len(t, bill.Items, 1)
	item := bill.Items[0]
	assert.Equal(t, 2, item.PlayCount)
	assert.InDelta(t, 75.0, item.TotalPrice, 1e-9)
	assert.InDelta(t, 75.0, bill.TotalPrice, 1e-9)
	assert.Equal(t, "001", bill.InvoiceNumber)
	assert.Equal(t, models.BillPending, bill.Status)
}

func TestGenerateExcludesStraddlingAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Starts before the range opens, so it is not billable even though
	// it ends inside.
	f.addAssignment(t, billDay.Add(-time.Hour), billDay.Add(time.Hour))

	_, err := f.service.Generate(ctx, f.agencyID, f.clientID, billDay, billDay.AddDate(0, 1, 0), 50)
	assert.ErrorIs(t, err, ErrNoAssignments)
}

func TestGenerateInvoiceNumbersIncrement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addAssignment(t, billDay.Add(10*time.Hour), billDay.Add(11*time.Hour))

	first, err := f.service.Generate(ctx, f.agencyID, f.clientID, billDay, billDay.AddDate(0, 1, 0), 50)
	require.NoError(t, err)
	second, err := f.service.Generate(ctx, f.agencyID, f.clientID, billDay, billDay.AddDate(0, 1, 0), 50)
	require.NoError(t, err)

	assert.Equal(t, "001", first.InvoiceNumber)
	assert.Equal(t, "002", second.InvoiceNumber)
}

func TestGenerateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Generate(ctx, f.agencyID, f.clientID, billDay, billDay.AddDate(0, 1, 0), 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = f.service.Generate(ctx, f.agencyID, f.clientID, billDay.AddDate(0, 1, 0), billDay, 50)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestGenerateForeignClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &models.Agency{MasterID: uuid.New(), Name: "Rival", Email: "rival@example.com"}
	require.NoError(t, f.store.CreateAgency(ctx, other))

	_, err := f.service.Generate(ctx, other.ID, f.clientID, billDay, billDay.AddDate(0, 1, 0), 50)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateStatusAnyTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addAssignment(t, billDay.Add(10*time.Hour), billDay.Add(11*time.Hour))
	bill, err := f.service.Generate(ctx, f.agencyID, f.clientID, billDay, billDay.AddDate(0, 1, 0), 50)
	require.NoError(t, err)

	// Any status is reachable from any other.
	for _, status := range []models.BillStatus{models.BillPaid, models.BillDelayed, models.BillPending, models.BillPaid} {
		updated, err := f.service.UpdateStatus(ctx, f.agencyID, bill.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	_, err = f.service.UpdateStatus(ctx, f.agencyID, bill.ID, models.BillStatus("VOID"))
	assert.Error(t, err)
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "001", formatInvoiceNumber(1))
	assert.Equal(t, "042", formatInvoiceNumber(42))
	assert.Equal(t, "999", formatInvoiceNumber(999))
	// Overflow past three digits truncates back down.
	assert.Equal(t, "100", formatInvoiceNumber(1000))
}

func TestCompletedItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addAssignment(t, billDay.Add(14*time.Hour), billDay.Add(15*time.Hour+30*time.Minute))
	f.addAssignment(t, billDay.Add(10*time.Hour), billDay.Add(11*time.Hour))

	items, err := f.service.CompletedItems(ctx, f.agencyID, billDay, billDay.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Oldest first.
	assert.Equal(t, "10", items[0].StartHour)
	assert.InDelta(t, 1.0, items[0].Hours, 1e-9)
	assert.Equal(t, "14", items[1].StartHour)
	assert.InDelta(t, 1.5, items[1].Hours, 1e-9)
	require.NotNil(t, items[0].Ad)
	assert.Equal(t, "Latte Promo", items[0].Ad.Title)
}

func TestWriteInvoicePDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addAssignment(t, billDay.Add(10*time.Hour), billDay.Add(11*time.Hour+30*time.Minute))
	bill, err := f.service.Generate(ctx, f.agencyID, f.clientID, billDay, billDay.AddDate(0, 1, 0), 50)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteInvoicePDF(bill, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
