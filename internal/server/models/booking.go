package models

import "time"

// Booking reserves a device for the half-open interval [Start, End).
type Booking struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId" validate:"gte=0"`
	DeviceID  int64     `json:"deviceId" validate:"gt=0"`
	Start     time.Time `json:"start" validate:"required"`
	End       time.Time `json:"end" validate:"required"`
	Reason    string    `json:"reason" validate:"max=500"`
	Status    string    `json:"status" validate:"required,oneof=confirmed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Overlaps reports whether b intersects [start, end). Intervals that only
// touch at an endpoint do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.End) && end.After(b.Start)
}
