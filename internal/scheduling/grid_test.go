package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookedHours(grid [24]bool) []int {
	var hours []int
	for h, booked := range grid {
		if booked {
			hours = append(hours, h)
		}
	}
	return hours
}

func TestAvailabilityGridPartialHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// [09:30, 10:15) touches the second half of hour 9 and the first
	// half of hour 10.
	f.allocate(t, at(9, 30), at(10, 15))

	grid, err := f.engine.AvailabilityGrid(ctx, f.deviceID, at(0, 0))
	require.NoError(t, err)
	assert.Equal(t, []int{9, 10}, bookedHours(grid))
}

func TestAvailabilityGridWholeHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.allocate(t, at(10, 0), at(12, 0))

	grid, err := f.engine.AvailabilityGrid(ctx, f.deviceID, at(0, 0))
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11}, bookedHours(grid))
}

func TestAvailabilityGridEmptyDay(t *testing.T) {
	f := newFixture(t)

	grid, err := f.engine.AvailabilityGrid(context.Background(), f.deviceID, at(0, 0))
	require.NoError(t, err)
	assert.Empty(t, bookedHours(grid))
}

func TestAvailabilityGridClampsCrossMidnight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Spans 22:00 on the queried day to 02:00 next day.
	f.allocate(t, at(22, 0), at(22, 0).Add(4*time.Hour))

	grid, err := f.engine.AvailabilityGrid(ctx, f.deviceID, at(0, 0))
	require.NoError(t, err)
	assert.Equal(t, []int{22, 23}, bookedHours(grid))

	next, err := f.engine.AvailabilityGrid(ctx, f.deviceID, at(0, 0).AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, bookedHours(next))
}
