// Package models holds the records stored in the device, booking and user
// collections.
package models

import "github.com/dmitrijs2005/rackbook/internal/common"

// Device is a bookable server.
type Device struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required,max=100"`
	Status      string `json:"status" validate:"required,oneof=available unavailable maintenance"`
	Location    string `json:"location" validate:"max=200"`
	MaxDuration int    `json:"max_duration" validate:"gte=0"`
}

// Available reports whether new bookings may be placed on the device.
func (d *Device) Available() bool {
	return d.Status == common.DeviceAvailable
}

// DevicePatch carries the fields of a partial device update; nil means
// "leave as is".
type DevicePatch struct {
	Name        *string `json:"name"`
	Status      *string `json:"status"`
	Location    *string `json:"location"`
	MaxDuration *int    `json:"max_duration"`
}

// Apply merges the patch into d. The id never changes.
func (p DevicePatch) Apply(d *Device) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	if p.Location != nil {
		d.Location = *p.Location
	}
	if p.MaxDuration != nil {
		d.MaxDuration = *p.MaxDuration
	}
}
