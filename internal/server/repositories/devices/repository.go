package devices

import (
	"context"

	"github.com/dmitrijs2005/rackbook/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Device, error)
	Get(ctx context.Context, id int64) (*models.Device, error)
	Create(ctx context.Context, device *models.Device) (*models.Device, error)
	Update(ctx context.Context, id int64, fn func(d *models.Device) error) (*models.Device, error)
	Delete(ctx context.Context, id int64) error
}
