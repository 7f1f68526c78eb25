package scheduling

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/signage-server/signage-server-pro/internal/storage"
)

const halfHourSlots = 48

// AvailabilityGrid reports, for each hour of the given calendar day,
// whether any assignment on the device touches that hour. Bookings are
// first quantized to 30-minute buckets and pairs of buckets are then
// folded into an hour flag by OR, so a booking covering only part of
// an hour still marks the whole hour booked. Agencies book in
// whole-hour increments, the half-hour pass keeps partial legacy
// bookings visible.
func (e *Engine) AvailabilityGrid(ctx context.Context, deviceID uuid.UUID, day time.Time) ([24]bool, error) {
	var grid [24]bool

	dayStart, dayEnd := dayBounds(day)
	assignments, err := e.store.ListAssignments(ctx, storage.AssignmentFilters{
		DeviceID:     &deviceID,
		Intersecting: &storage.TimeRange{From: dayStart, To: dayEnd},
	})
	if err != nil {
		return grid, err
	}

	var half [halfHourSlots]bool
	for _, a := range assignments {
		start := a.StartTime
		if start.Before(dayStart) {
			start = dayStart
		}
		end := a.EndTime
		if end.After(dayEnd) {
			end = dayEnd.Add(time.Millisecond)
		}

		startMin := start.Sub(dayStart).Minutes()
		endMin := end.Sub(dayStart).Minutes()

		first := int(math.Floor(startMin / 30))
		last := int(math.Ceil(endMin / 30))
		for i := first; i < last && i < halfHourSlots; i++ {
			half[i] = true
		}
	}

	for h := 0; h < 24; h++ {
		grid[h] = half[2*h] || half[2*h+1]
	}

	return grid, nil
}
