package bookings

import (
	"context"

	"github.com/dmitrijs2005/rackbook/internal/server/models"
)

// CheckFunc inspects a pending change against the bookings as currently
// stored. Returning an error aborts the change.
type CheckFunc func(current []models.Booking) error

type Repository interface {
	List(ctx context.Context) ([]models.Booking, error)
	ListByDevice(ctx context.Context, deviceID int64) ([]models.Booking, error)
	Get(ctx context.Context, id int64) (*models.Booking, error)
	Create(ctx context.Context, booking *models.Booking, check CheckFunc) (*models.Booking, error)
	Update(ctx context.Context, id int64, fn func(b *models.Booking, current []models.Booking) error) (*models.Booking, error)
	Delete(ctx context.Context, id int64, check func(b *models.Booking) error) error
}
