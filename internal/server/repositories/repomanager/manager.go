package repomanager

import (
	"context"

	"github.com/dmitrijs2005/rackbook/internal/server/repositories/bookings"
	"github.com/dmitrijs2005/rackbook/internal/server/repositories/devices"
	"github.com/dmitrijs2005/rackbook/internal/server/repositories/users"
)

type RepositoryManager interface {
	Devices() devices.Repository
	Bookings() bookings.Repository
	Users() users.Repository
	Ping(ctx context.Context) error
}
