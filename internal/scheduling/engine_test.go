package scheduling

import (
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
	store  *storage.MemoryStore
	engine *Engine

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

	agency := &models.Agency{MasterID: master.ID, Name: "Acme Media", Email: "acme@example.com"}
	require.NoError(t, store.CreateAgency(ctx, agency))

	client := &models.AgencyClient{AgencyID: agency.ID, BusinessName: "Corner Cafe", BusinessEmail: "cafe@example.com"}
	require.NoError(t, store.CreateAgencyClient(ctx, client))

	device := &models.Device{
		MasterID:  master.ID,
		AgencyID:  agency.ID,
		UUID:      "dev-0001",
		Name:      "Mall Entrance",
		PublicKey: "pub-0001",
		SecretKey: "sec-0001",
		Status:    models.DeviceActive,
	}
	require.NoError(t, store.CreateDevice(ctx, device))

	ad := &models.Ad{AgencyID: agency.ID, Title: "Latte Promo", FileURL: "/uploads/latte.mp4"}
	require.NoError(t, store.CreateAd(ctx, ad))

	return &fixture{
		store:    store,
		engine:   NewEngine(store, zerolog.Nop()),
		agencyID: agency.ID,
		clientID: client.ID,
		deviceID: device.ID,
		adID:     ad.ID,
	}
}

func (f *fixture) allocate(t *testing.T, start, end time.Time) *models.Assignment {
	t.Helper()
	a, err := f.engine.Allocate(context.Background(), AllocateRequest{
		AgencyID:  f.agencyID,
		ClientID:  f.clientID,
		DeviceID:  f.deviceID,
		AdID:      f.adID,
		StartTime: start,
		EndTime:   end,
	})
	require.NoError(t, err)
	return a
}

// baseDay is a week out so bookings placed with at() are never
// already completed when the guard checks them against the clock.
var baseDay = time.Now().UTC().AddDate(0, 0, 7).Truncate(24 * time.Hour)

func at(hour, min int) time.Time {
	return baseDay.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func TestAllocateRejectsOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.allocate(t, at(10, 0), at(11, 0))

	_, err := f.engine.Allocate(ctx, AllocateRequest{
		AgencyID:  f.agencyID,
		ClientID:  f.clientID,
		DeviceID:  f.deviceID,
		AdID:      f.adID,
		StartTime: at(10, 30),
		EndTime:   at(11, 30),
	})
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestAllocateAllowsTouchingWindows(t *testing.T) {
	f := newFixture(t)

	f.allocate(t, at(10, 0), at(11, 0))

	// Half-open intervals: [10,11) and [11,12) do not overlap.
	a := f.allocate(t, at(11, 0), at(12, 0))
	assert.NotEqual(t, uuid.Nil, a.ID)
}

func TestAllocateRejectsInvertedRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Allocate(context.Background(), AllocateRequest{
		AgencyID:  f.agencyID,
		ClientID:  f.clientID,
		DeviceID:  f.deviceID,
		AdID:      f.adID,
		StartTime: at(12, 0),
		EndTime:   at(11, 0),
	})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestAllocateRejectsForeignEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &models.Agency{MasterID: uuid.New(), Name: "Rival", Email: "rival@example.com"}
	require.NoError(t, f.store.CreateAgency(ctx, other))

	_, err := f.engine.Allocate(ctx, AllocateRequest{
		AgencyID:  other.ID,
		ClientID:  f.clientID,
		DeviceID:  f.deviceID,
		AdID:      f.adID,
		StartTime: at(10, 0),
		EndTime:   at(11, 0),
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestReallocateExcludesOwnWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.allocate(t, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))

	// Shifting within its own window must not self-conflict.
	newStart := time.Now().Add(90 * time.Minute)
	newEnd := time.Now().Add(150 * time.Minute)
	updated, err := f.engine.Reallocate(ctx, ReallocateRequest{
		AgencyID:     f.agencyID,
		AssignmentID: a.ID,
		StartTime:    newStart,
		EndTime:      newEnd,
		AdID:         f.adID,
	})
	require.NoError(t, err)
	assert.True(t, updated.StartTime.Equal(newStart))
	assert.True(t, updated.EndTime.Equal(newEnd))
}

func TestReallocateAdOnlyKeepsWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start := time.Now().Add(time.Hour)
	end := time.Now().Add(2 * time.Hour)
	a := f.allocate(t, start, end)

	secondAd := &models.Ad{AgencyID: f.agencyID, Title: "Muffin Promo", FileURL: "/uploads/muffin.mp4"}
	require.NoError(t, f.store.CreateAd(ctx, secondAd))

	updated, err := f.engine.Reallocate(ctx, ReallocateRequest{
		AgencyID:     f.agencyID,
		AssignmentID: a.ID,
		StartTime:    start,
		EndTime:      end,
		AdID:         secondAd.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, secondAd.ID, updated.AdID)
	assert.True(t, updated.StartTime.Equal(start))
	assert.True(t, updated.EndTime.Equal(end))
}

func TestReallocateCompletedFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.allocate(t, time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))

	_, err := f.engine.Reallocate(ctx, ReallocateRequest{
		AgencyID:     f.agencyID,
		AssignmentID: a.ID,
		StartTime:    time.Now().Add(time.Hour),
		EndTime:      time.Now().Add(2 * time.Hour),
		AdID:         f.adID,
	})
	assert.ErrorIs(t, err, ErrCompleted)
}

func TestReallocateConflictsWithNeighbor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.allocate(t, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
	f.allocate(t, time.Now().Add(3*time.Hour), time.Now().Add(4*time.Hour))

	_, err := f.engine.Reallocate(ctx, ReallocateRequest{
		AgencyID:     f.agencyID,
		AssignmentID: first.ID,
		StartTime:    time.Now().Add(150 * time.Minute),
		EndTime:      time.Now().Add(210 * time.Minute),
		AdID:         f.adID,
	})
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestDeallocate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.allocate(t, at(10, 0), at(11, 0))

	require.NoError(t, f.engine.Deallocate(ctx, f.agencyID, a.ID))

	_, err := f.store.GetAssignment(ctx, a.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeallocateCompletedFails(t *testing.T) {
	f := newFixture(t)

	a := f.allocate(t, time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))

	err := f.engine.Deallocate(context.Background(), f.agencyID, a.ID)
	assert.ErrorIs(t, err, ErrCompleted)
}

func TestDeallocateForeignAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.allocate(t, at(10, 0), at(11, 0))

	other := &models.Agency{MasterID: uuid.New(), Name: "Rival", Email: "rival@example.com"}
	require.NoError(t, f.store.CreateAgency(ctx, other))

	err := f.engine.Deallocate(ctx, other.ID, a.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeallocateAfterDeviceReassignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.allocate(t, at(10, 0), at(11, 0))

	// Master moves the device to a rival agency. Holding the device
	// edge alone must not let the rival delete the booking: client,
	// device and ad all have to belong to the caller, as on edit.
	rival := &models.Agency{MasterID: uuid.New(), Name: "Rival", Email: "rival@example.com"}
	require.NoError(t, f.store.CreateAgency(ctx, rival))

	device, err := f.store.GetDevice(ctx, f.deviceID)
	require.NoError(t, err)
	device.AgencyID = rival.ID
	require.NoError(t, f.store.UpdateDevice(ctx, device))

	err = f.engine.Deallocate(ctx, rival.ID, a.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.store.GetAssignment(ctx, a.ID)
	require.NoError(t, err)
}

func TestAssignmentState(t *testing.T) {
	now := at(12, 0)

	past := models.Assignment{StartTime: at(9, 0), EndTime: at(10, 0)}
	assert.Equal(t, models.AssignmentCompleted, past.State(now))

	// Boundary: an assignment ending exactly now is completed.
	ending := models.Assignment{StartTime: at(11, 0), EndTime: at(12, 0)}
	assert.Equal(t, models.AssignmentCompleted, ending.State(now))

	live := models.Assignment{StartTime: at(11, 0), EndTime: at(13, 0)}
	assert.Equal(t, models.AssignmentLive, live.State(now))

	// Boundary: an assignment starting exactly now is live.
	starting := models.Assignment{StartTime: at(12, 0), EndTime: at(13, 0)}
	assert.Equal(t, models.AssignmentLive, starting.State(now))

	future := models.Assignment{StartTime: at(13, 0), EndTime: at(14, 0)}
	assert.Equal(t, models.AssignmentUpcoming, future.State(now))
}

func TestCurrentPicksLiveAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.allocate(t, at(9, 0), at(10, 0))
	f.allocate(t, at(10, 0), at(12, 0))

	current, err := f.engine.Current(ctx, f.deviceID, at(10, 30))
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.True(t, current.StartTime.Equal(at(10, 0)))

	none, err := f.engine.Current(ctx, f.deviceID, at(14, 0))
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestListByDeviceDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.allocate(t, at(10, 0), at(11, 0))
	// Crosses midnight into the queried day.
	f.allocate(t, at(23, 0), at(23, 0).Add(2*time.Hour))
	// Entirely on another day.
	f.allocate(t, at(10, 0).AddDate(0, 0, 5), at(11, 0).AddDate(0, 0, 5))

	list, err := f.engine.ListByDeviceDay(ctx, f.deviceID, at(12, 0))
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
