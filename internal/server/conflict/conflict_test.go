package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/rackbook/internal/common"
	"github.com/dmitrijs2005/rackbook/internal/server/models"
)

var t0 = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func devicesFixture() []models.Device {
	return []models.Device{
		{ID: 1, Name: "Server 1", Status: common.DeviceAvailable, MaxDuration: 180},
		{ID: 2, Name: "Server 2", Status: common.DeviceMaintenance, MaxDuration: 180},
		{ID: 3, Name: "Server 3", Status: common.DeviceAvailable, MaxDuration: 0},
	}
}

func at(m int) time.Time { return t0.Add(time.Duration(m) * time.Minute) }

func TestProposeBooking(t *testing.T) {
	bookings := []models.Booking{
		{ID: 10, DeviceID: 1, Start: at(0), End: at(60)},
		{ID: 11, DeviceID: 3, Start: at(0), End: at(600)},
	}

	tests := []struct {
		name string
		p    Proposal
		want error
	}{
		{"free slot", Proposal{DeviceID: 1, Start: at(120), End: at(180)}, nil},
		{"touching end", Proposal{DeviceID: 1, Start: at(60), End: at(120)}, nil},
		{"touching start", Proposal{DeviceID: 1, Start: at(-60), End: at(0)}, nil},
		{"overlap", Proposal{DeviceID: 1, Start: at(30), End: at(90)}, common.ErrTimeConflict},
		{"containing", Proposal{DeviceID: 1, Start: at(-10), End: at(70)}, common.ErrTimeConflict},
		{"other device busy is fine", Proposal{DeviceID: 3, Start: at(1000), End: at(1100)}, nil},
		{"unknown device", Proposal{DeviceID: 99, Start: at(0), End: at(10)}, common.ErrDeviceUnavailable},
		{"maintenance", Proposal{DeviceID: 2, Start: at(0), End: at(10)}, common.ErrDeviceUnavailable},
		{"end before start", Proposal{DeviceID: 1, Start: at(200), End: at(190)}, common.ErrInvalidInterval},
		{"empty interval", Proposal{DeviceID: 1, Start: at(200), End: at(200)}, common.ErrInvalidInterval},
		{"over max duration, not enforced", Proposal{DeviceID: 1, Start: at(200), End: at(440)}, nil},
		{"exactly max duration", Proposal{DeviceID: 1, Start: at(200), End: at(380), EnforceMaxDuration: true}, nil},
		{"over max duration", Proposal{DeviceID: 1, Start: at(200), End: at(381), EnforceMaxDuration: true}, common.ErrDurationExceeded},
		{"no limit", Proposal{DeviceID: 3, Start: at(700), End: at(2000), EnforceMaxDuration: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ProposeBooking(devicesFixture(), bookings, tt.p)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestProposeBooking_AvailabilityCheckedFirst(t *testing.T) {
	err := ProposeBooking(devicesFixture(), nil, Proposal{DeviceID: 2, Start: at(10), End: at(0)})
	assert.ErrorIs(t, err, common.ErrDeviceUnavailable)
}

func TestProposeBooking_ExcludesItselfOnEdit(t *testing.T) {
	bookings := []models.Booking{
		{ID: 1, DeviceID: 1, Start: at(0), End: at(60)},
		{ID: 2, DeviceID: 1, Start: at(120), End: at(180)},
	}

	// Shift booking 1 by 30 minutes: only overlaps its old self.
	assert.NoError(t, ProposeBooking(devicesFixture(), bookings, Proposal{DeviceID: 1, Start: at(30), End: at(90), ExcludeID: 1}))

	// Stretch booking 1 into booking 2.
	err := ProposeBooking(devicesFixture(), bookings, Proposal{DeviceID: 1, Start: at(0), End: at(150), ExcludeID: 1})
	assert.ErrorIs(t, err, common.ErrTimeConflict)

	// Without the exclusion the same move conflicts with itself.
	err = ProposeBooking(devicesFixture(), bookings, Proposal{DeviceID: 1, Start: at(30), End: at(90)})
	assert.ErrorIs(t, err, common.ErrTimeConflict)
}

func TestProposeBooking_ZonesCompareAsInstants(t *testing.T) {
	bookings := []models.Booking{{ID: 1, DeviceID: 1, Start: at(0), End: at(60)}}
	tokyo := time.FixedZone("JST", 9*60*60)

	start := at(60).In(tokyo)
	assert.NoError(t, ProposeBooking(devicesFixture(), bookings, Proposal{DeviceID: 1, Start: start, End: start.Add(time.Hour)}))

	start = at(59).In(tokyo)
	assert.ErrorIs(t, ProposeBooking(devicesFixture(), bookings, Proposal{DeviceID: 1, Start: start, End: start.Add(time.Hour)}), common.ErrTimeConflict)
}

// Accepting a proposal and appending it never breaks the no-overlap property.
func TestProposeBooking_ScenarioKeepsNoOverlap(t *testing.T) {
	var bookings []models.Booking
	accept := func(id int64, start, end int) error {
		p := Proposal{DeviceID: 1, Start: at(start), End: at(end)}
		if err := ProposeBooking(devicesFixture(), bookings, p); err != nil {
			return err
		}
		bookings = append(bookings, models.Booking{ID: id, DeviceID: 1, Start: p.Start, End: p.End})
		return nil
	}

	require.NoError(t, accept(1, 0, 60))
	assert.ErrorIs(t, accept(2, 30, 90), common.ErrTimeConflict)
	require.NoError(t, accept(3, 60, 120))

	for i := range bookings {
		for j := range bookings {
			if i != j {
				assert.False(t, bookings[i].Overlaps(bookings[j].Start, bookings[j].End))
			}
		}
	}
}
