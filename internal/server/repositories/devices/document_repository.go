// Package devices stores devices in the "devices" collection.
package devices

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/rackbook/internal/common"
	"github.com/dmitrijs2005/rackbook/internal/server/docstore"
	"github.com/dmitrijs2005/rackbook/internal/server/idalloc"
	"github.com/dmitrijs2005/rackbook/internal/server/models"
)

type DocumentRepository struct {
	store *docstore.Store
	ids   idalloc.Strategy
}

func NewDocumentRepository(s *docstore.Store, ids idalloc.Strategy) *DocumentRepository {
	return &DocumentRepository{store: s, ids: ids}
}

func (r *DocumentRepository) List(ctx context.Context) ([]models.Device, error) {
	return docstore.LoadAll[models.Device](ctx, r.store, docstore.Devices)
}

func (r *DocumentRepository) Get(ctx context.Context, id int64) (*models.Device, error) {
	devices, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range devices {
		if devices[i].ID == id {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("device %d: %w", id, common.ErrorNotFound)
}

// Create assigns the next id and appends the device.
func (r *DocumentRepository) Create(ctx context.Context, device *models.Device) (*models.Device, error) {
	var created models.Device
	err := docstore.Mutate(ctx, r.store, docstore.Devices, func(devices []models.Device) ([]models.Device, error) {
		created = *device
		created.ID = r.ids.Next(idalloc.IDs(devices, deviceID))
		return append(devices, created), nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies fn to the stored device and writes it back. An error from fn
// leaves the collection untouched.
func (r *DocumentRepository) Update(ctx context.Context, id int64, fn func(d *models.Device) error) (*models.Device, error) {
	var updated models.Device
	err := docstore.Mutate(ctx, r.store, docstore.Devices, func(devices []models.Device) ([]models.Device, error) {
		for i := range devices {
			if devices[i].ID != id {
				continue
			}
			if err := fn(&devices[i]); err != nil {
				return nil, err
			}
			devices[i].ID = id
			updated = devices[i]
			return devices, nil
		}
		return nil, fmt.Errorf("device %d: %w", id, common.ErrorNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	return docstore.Mutate(ctx, r.store, docstore.Devices, func(devices []models.Device) ([]models.Device, error) {
		kept := devices[:0]
		for _, d := range devices {
			if d.ID != id {
				kept = append(kept, d)
			}
		}
		if len(kept) == len(devices) {
			return nil, fmt.Errorf("device %d: %w", id, common.ErrorNotFound)
		}
		return kept, nil
	})
}

func deviceID(d models.Device) int64 { return d.ID }
