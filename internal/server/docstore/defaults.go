package docstore

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/rackbook/internal/common"
	"github.com/dmitrijs2005/rackbook/internal/server/models"
)

// Bootstrap values for a fresh bucket.
const (
	DefaultDeviceCount       = 7
	DefaultDeviceLocation    = "Data Center A"
	DefaultDeviceMaxDuration = 180
)

// Seed holds the plaintext passwords of the bootstrap accounts and the
// function that hashes them before they are stored.
type Seed struct {
	AdminPassword string
	UserPassword  string
	Hash          func(password string) (string, error)
}

// DefaultDevices returns "Server 1" .. "Server 7", all available.
func DefaultDevices() []models.Device {
	devices := make([]models.Device, 0, DefaultDeviceCount)
	for i := 1; i <= DefaultDeviceCount; i++ {
		devices = append(devices, models.Device{
			ID:          int64(i),
			Name:        fmt.Sprintf("Server %d", i),
			Status:      common.DeviceAvailable,
			Location:    DefaultDeviceLocation,
			MaxDuration: DefaultDeviceMaxDuration,
		})
	}
	return devices
}

// DefaultUsers returns the admin and the demo user with hashed passwords.
func DefaultUsers(seed Seed) ([]models.User, error) {
	adminHash, err := seed.Hash(seed.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	userHash, err := seed.Hash(seed.UserPassword)
	if err != nil {
		return nil, fmt.Errorf("hash user password: %w", err)
	}

	return []models.User{
		{ID: 1, Email: "admin@demo.com", Password: adminHash, Name: "Admin", Role: common.RoleAdmin},
		{ID: 2, Email: "user@demo.com", Password: userHash, Name: "User1", Role: common.RoleUser},
	}, nil
}

// RegisterDefaults registers the three collections. Default devices and the
// empty booking list are served without being written; the seed users are
// persisted on first access so their hashes stay stable.
func RegisterDefaults(s *Store, seed Seed) {
	s.Register(Devices, Collection{
		Key: "devices.json",
		Default: func(context.Context) (any, bool, error) {
			return DefaultDevices(), false, nil
		},
	})
	s.Register(Bookings, Collection{
		Key: "bookings.json",
		Default: func(context.Context) (any, bool, error) {
			return []models.Booking{}, false, nil
		},
	})
	s.Register(Users, Collection{
		Key: "users.json",
		Default: func(context.Context) (any, bool, error) {
			users, err := DefaultUsers(seed)
			if err != nil {
				return nil, false, err
			}
			return users, true, nil
		},
	})
}
