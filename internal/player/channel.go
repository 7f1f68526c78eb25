package player

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/signage-server/signage-server-pro/internal/models"
	"github.com/signage-server/signage-server-pro/internal/scheduling"
	"github.com/signage-server/signage-server-pro/internal/storage"
)

// ErrInvalidKey is returned when no device matches the presented key
var ErrInvalidKey = errors.New("invalid device key")

// PlayState tells a device what it should be doing right now
type PlayState struct {
	VideoURL string `json:"videoUrl,omitempty"`
	Title    string `json:"title,omitempty"`
	// AssignedButNotPlaying distinguishes "you have a booking today
	// but not at this moment" from "nothing scheduled at all". The
	// player shows a standby card for the former and an idle screen
	// for the latter.
	AssignedButNotPlaying bool `json:"assignedButNotPlaying"`
}

// Channel is the device-facing heartbeat surface. Devices identify
// with their secret key in the request body; there is no token
// handshake beyond that.
type Channel struct {
	store  storage.Store
	engine *scheduling.Engine
	log    zerolog.Logger
}

// NewChannel creates a device player channel
func NewChannel(store storage.Store, engine *scheduling.Engine, log zerolog.Logger) *Channel {
	return &Channel{
		store:  store,
		engine: engine,
		log:    log.With().Str("component", "player").Logger(),
	}
}

// resolve matches a key against device secret keys only. Public keys
// identify devices in URLs and must not authenticate the channel.
func (c *Channel) resolve(ctx context.Context, key string) (*models.Device, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	device, err := c.store.GetDeviceBySecretKey(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidKey
	}
	if err != nil {
		return nil, err
	}
	return device, nil
}

// Connect marks the device ACTIVE and returns what it should play
// right now, if anything.
func (c *Channel) Connect(ctx context.Context, key string) (*models.Device, *PlayState, error) {
	device, err := c.resolve(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	if err := c.store.UpdateDeviceStatus(ctx, device.ID, models.DeviceActive); err != nil {
		return nil, nil, err
	}
	device.Status = models.DeviceActive

	state, err := c.playState(ctx, device, time.Now())
	if err != nil {
		return nil, nil, err
	}

	c.log.Info().Str("device", device.UUID).Msg("device connected")
	return device, state, nil
}

// Disconnect marks the device INACTIVE. Safe to call repeatedly, the
// player fires it on page unload without waiting for the result.
func (c *Channel) Disconnect(ctx context.Context, key string) error {
	device, err := c.resolve(ctx, key)
	if err != nil {
		return err
	}

	if err := c.store.UpdateDeviceStatus(ctx, device.ID, models.DeviceInactive); err != nil {
		return err
	}

	c.log.Info().Str("device", device.UUID).Msg("device disconnected")
	return nil
}

// Poll re-resolves what the device should be playing at this moment
func (c *Channel) Poll(ctx context.Context, key string, now time.Time) (*PlayState, error) {
	device, err := c.resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	return c.playState(ctx, device, now)
}

func (c *Channel) playState(ctx context.Context, device *models.Device, now time.Time) (*PlayState, error) {
	live, err := c.engine.Current(ctx, device.ID, now)
	if err != nil {
		return nil, err
	}

	if live != nil && live.Ad != nil {
		return &PlayState{
			VideoURL: live.Ad.FileURL,
			Title:    live.Ad.Title,
		}, nil
	}

	// Nothing live right now: report whether today holds any booking
	// at all for this device.
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Millisecond)
	today, err := c.store.ListAssignments(ctx, storage.AssignmentFilters{
		DeviceID:  &device.ID,
		Contained: &storage.TimeRange{From: dayStart, To: dayEnd},
	})
	if err != nil {
		return nil, err
	}

	return &PlayState{AssignedButNotPlaying: len(today) > 0}, nil
}
