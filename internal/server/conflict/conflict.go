// Package conflict decides whether a booking may be placed on a device.
package conflict

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/rackbook/internal/common"
	"github.com/dmitrijs2005/rackbook/internal/server/models"
)

// Proposal is a booking the caller wants to create or move. ExcludeID is the
// id of the booking being edited, zero for a new one. The device's
// max_duration is only checked when EnforceMaxDuration is set.
type Proposal struct {
	DeviceID           int64
	Start              time.Time
	End                time.Time
	ExcludeID          int64
	EnforceMaxDuration bool
}

// ProposeBooking returns nil when p is admissible against the current
// collections. Otherwise the error matches one of common.ErrDeviceUnavailable,
// common.ErrInvalidInterval, common.ErrDurationExceeded (opt-in) or
// common.ErrTimeConflict, checked in that order.
func ProposeBooking(devices []models.Device, bookings []models.Booking, p Proposal) error {
	device := findDevice(devices, p.DeviceID)
	if device == nil {
		return fmt.Errorf("device %d not found: %w", p.DeviceID, common.ErrDeviceUnavailable)
	}
	if !device.Available() {
		return fmt.Errorf("device %d is %s: %w", device.ID, device.Status, common.ErrDeviceUnavailable)
	}

	if !p.End.After(p.Start) {
		return fmt.Errorf("end must be after start: %w", common.ErrInvalidInterval)
	}

	if p.EnforceMaxDuration && device.MaxDuration > 0 {
		limit := time.Duration(device.MaxDuration) * time.Minute
		if p.End.Sub(p.Start) > limit {
			return fmt.Errorf("longer than %d minutes: %w", device.MaxDuration, common.ErrDurationExceeded)
		}
	}

	if clash := FindOverlap(bookings, p); clash != nil {
		return fmt.Errorf("overlaps booking %d: %w", clash.ID, common.ErrTimeConflict)
	}

	return nil
}

// FindOverlap returns the first booking on p's device, other than the one
// being edited, whose interval intersects p.
func FindOverlap(bookings []models.Booking, p Proposal) *models.Booking {
	for i := range bookings {
		b := &bookings[i]
		if b.DeviceID != p.DeviceID {
			continue
		}
		if p.ExcludeID != 0 && b.ID == p.ExcludeID {
			continue
		}
		if b.Overlaps(p.Start, p.End) {
			return b
		}
	}
	return nil
}

func findDevice(devices []models.Device, id int64) *models.Device {
	for i := range devices {
		if devices[i].ID == id {
			return &devices[i]
		}
	}
	return nil
}
