package player

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signage-server/signage-server-pro/internal/models"
	"github.com/signage-server/signage-server-pro/internal/scheduling"
	"github.com/signage-server/signage-server-pro/internal/storage"
)

const secretKey = "sec-0001"

type fixture struct {
	store   *storage.MemoryStore
	channel *Channel
	device  *models.Device
	client  *models.AgencyClient
	ad      *models.Ad
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
		SecretKey: secretKey,
		Status:    models.DeviceInactive,
	}
	require.NoError(t, store.CreateDevice(ctx, device))

	ad := &models.Ad{AgencyID: agency.ID, Title: "Latte Promo", FileURL: "/uploads/latte.mp4"}
	require.NoError(t, store.CreateAd(ctx, ad))

	engine := scheduling.NewEngine(store, zerolog.Nop())
	return &fixture{
		store:   store,
		channel: NewChannel(store, engine, zerolog.Nop()),
		device:  device,
		client:  client,
		ad:      ad,
	}
}

func (f *fixture) book(t *testing.T, start, end time.Time) {
	t.Helper()
	require.NoError(t, f.store.CreateAssignment(context.Background(), &models.Assignment{
		ClientID:  f.client.ID,
		DeviceID:  f.device.ID,
		AdID:      f.ad.ID,
		StartTime: start,
		EndTime:   end,
	}))
}

func TestConnectActivatesAndReturnsLiveAd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	now := time.Now()
	f.book(t, now.Add(-time.Hour), now.Add(time.Hour))

	device, state, err := f.channel.Connect(ctx, secretKey)
	require.NoError(t, err)
	assert.Equal(t, models.DeviceActive, device.Status)
	assert.Equal(t, "/uploads/latte.mp4", state.VideoURL)
	assert.Equal(t, "Latte Promo", state.Title)

	stored, err := f.store.GetDevice(ctx, f.device.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeviceActive, stored.Status)
}

func TestConnectRejectsPublicKey(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.channel.Connect(context.Background(), "pub-0001")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, _, err = f.channel.Connect(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestDisconnectIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.channel.Connect(ctx, secretKey)
	require.NoError(t, err)

	require.NoError(t, f.channel.Disconnect(ctx, secretKey))
	require.NoError(t, f.channel.Disconnect(ctx, secretKey))

	stored, err := f.store.GetDevice(ctx, f.device.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeviceInactive, stored.Status)
}

func TestPollDistinguishesStandbyFromIdle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Nothing scheduled at all.
	state, err := f.channel.Poll(ctx, secretKey, time.Now())
	require.NoError(t, err)
	assert.False(t, state.AssignedButNotPlaying)
	assert.Empty(t, state.VideoURL)

	// A booking later today: standby, not idle.
	now := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	f.book(t, now.Add(2*time.Hour), now.Add(3*time.Hour))

	state, err = f.channel.Poll(ctx, secretKey, now)
	require.NoError(t, err)
	assert.True(t, state.AssignedButNotPlaying)
	assert.Empty(t, state.VideoURL)

	// During the booking: the ad plays.
	state, err = f.channel.Poll(ctx, secretKey, now.Add(150*time.Minute))
	require.NoError(t, err)
	assert.False(t, state.AssignedButNotPlaying)
	assert.Equal(t, "/uploads/latte.mp4", state.VideoURL)
}
